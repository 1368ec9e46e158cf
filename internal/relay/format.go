package relay

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf16"
)

// maxMessageLen is the chat message limit, counted in UTF-16 code units.
const maxMessageLen = 4096

// footerReserve leaves room for the "showing latest" line.
const footerReserve = 64

const (
	bullet   = "• "
	ellipsis = "…"
)

// FormatSubmission renders the channel body for a submission.
func FormatSubmission(ordinal uint64, kind Kind, text string) string {
	return fmt.Sprintf(
		"🔒 <b>Anonymous Confession #%d</b>\n<b>Type:</b> %s\n\n%s",
		ordinal, kind.Label(), html.EscapeString(text),
	)
}

func formatAdminMessage(text string) string {
	return "📩 <b>New Admin Message</b>\n\n" + html.EscapeString(text)
}

// FormatThread renders a non-empty thread. When the whole thread does not
// fit in one message the oldest comments are left out, and a newest comment
// that is too long on its own is cut short.
func FormatThread(ordinal uint64, thread []string) string {
	header := fmt.Sprintf("💬 <b>Comments for Confession #%d</b>", ordinal)

	items := make([]string, len(thread))
	for i, c := range thread {
		items[i] = bullet + html.EscapeString(c)
	}

	// Each kept item costs its length plus the blank line before it.
	budget := maxMessageLen - utf16Len(header) - footerReserve
	start := len(items)
	used := 0
	for start > 0 {
		n := utf16Len(items[start-1]) + 2
		if used+n > budget {
			break
		}
		used += n
		start--
	}
	if start == len(items) && start > 0 {
		start--
		items[start] = bullet + clipEscaped(thread[start], budget-utf16Len(bullet)-2)
	}

	if start > 0 {
		header += fmt.Sprintf("\n<i>showing latest %d of %d</i>", len(items)-start, len(items))
	}
	return header + "\n\n" + strings.Join(items[start:], "\n\n")
}

// clipEscaped escapes s and cuts it to at most limit UTF-16 units, ellipsis
// included. Entities are never split.
func clipEscaped(s string, limit int) string {
	limit -= utf16Len(ellipsis)
	var sb strings.Builder
	n := 0
	for _, r := range s {
		e := html.EscapeString(string(r))
		w := utf16Len(e)
		if n+w > limit {
			break
		}
		sb.WriteString(e)
		n += w
	}
	return sb.String() + ellipsis
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if w := utf16.RuneLen(r); w > 0 {
			n += w
		} else {
			n++
		}
	}
	return n
}
