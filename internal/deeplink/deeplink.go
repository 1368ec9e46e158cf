// Package deeplink parses and builds the start parameters carried by
// comment and view-comments links.
package deeplink

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	commentPrefix = "comment_"
	viewPrefix    = "view_"
)

type Kind int

const (
	ActionMenu Kind = iota
	ActionCompose
	ActionView
)

func (k Kind) String() string {
	switch k {
	case ActionCompose:
		return "compose"
	case ActionView:
		return "view"
	default:
		return "menu"
	}
}

type Action struct {
	Kind    Kind
	Ordinal uint64
}

// Route maps a start parameter to an action. Anything unrecognised,
// including a missing, zero or non-numeric ordinal, yields ActionMenu.
func Route(param string) Action {
	param = strings.TrimSpace(param)
	switch {
	case strings.HasPrefix(param, commentPrefix):
		if n, ok := parseOrdinal(param[len(commentPrefix):]); ok {
			return Action{Kind: ActionCompose, Ordinal: n}
		}
	case strings.HasPrefix(param, viewPrefix):
		if n, ok := parseOrdinal(param[len(viewPrefix):]); ok {
			return Action{Kind: ActionView, Ordinal: n}
		}
	}
	return Action{Kind: ActionMenu}
}

func parseOrdinal(s string) (uint64, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

func CommentParam(ordinal uint64) string { return commentPrefix + strconv.FormatUint(ordinal, 10) }
func ViewParam(ordinal uint64) string { return viewPrefix + strconv.FormatUint(ordinal, 10) }

// Builder renders https://<base>/<bot>?start=<param> links.
type Builder struct {
	base string
	bot  string
}

func NewBuilder(base, bot string) Builder {
	return Builder{
		base: strings.TrimRight(base, "/"),
		bot:  strings.TrimPrefix(bot, "@"),
	}
}

func (b Builder) Link(param string) string {
	return fmt.Sprintf("%s/%s?start=%s", b.base, b.bot, url.QueryEscape(param))
}

func (b Builder) CommentLink(ordinal uint64) string { return b.Link(CommentParam(ordinal)) }
func (b Builder) ViewLink(ordinal uint64) string { return b.Link(ViewParam(ordinal)) }
