// Package profanity rejects text containing banned terms.
//
// Matching is a case-insensitive substring test with no word boundaries, so a
// banned term inside a longer word also matches. That false-positive rate is
// accepted.
package profanity

import "strings"

type Filter struct {
	terms []string
}

// New lowercases and de-duplicates terms; blank terms are ignored.
func New(terms []string) *Filter {
	seen := make(map[string]struct{}, len(terms))
	f := &Filter{}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		f.terms = append(f.terms, t)
	}
	return f
}

func (f *Filter) IsProfane(text string) bool {
	if len(f.terms) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, t := range f.terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// Terms returns a copy of the normalized term list.
func (f *Filter) Terms() []string {
	out := make([]string, len(f.terms))
	copy(out, f.terms)
	return out
}
