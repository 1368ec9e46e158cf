// Package relay turns inbound chat events into anonymous channel posts,
// comments and admin messages.
package relay

import "context"

type Kind int

const (
	KindText Kind = iota
	KindImage
	KindVoice
	KindSticker
)

// Label is the type name shown in a published header.
func (k Kind) Label() string {
	switch k {
	case KindImage:
		return "Image"
	case KindVoice:
		return "Voice"
	case KindSticker:
		return "Sticker"
	default:
		return "Text"
	}
}

// placeholder stands in for a missing caption.
func (k Kind) placeholder() string {
	switch k {
	case KindImage:
		return "(photo)"
	case KindVoice:
		return "(voice message)"
	case KindSticker:
		return "(sticker)"
	default:
		return ""
	}
}

func (k Kind) ack() string {
	switch k {
	case KindImage:
		return "📷 Posted anonymously!"
	case KindVoice:
		return "🎤 Posted anonymously!"
	case KindSticker:
		return "👍 Sticker posted anonymously!"
	default:
		return "✅ Posted anonymously!"
	}
}

// Event is one inbound message. Text holds the message text or the media
// caption; MediaID references the attached file for media kinds.
type Event struct {
	ID      string
	Sender  int64
	Kind    Kind
	Text    string
	MediaID string
}

// Post is a submission ready for the public channel. Body is HTML.
type Post struct {
	Ordinal    uint64
	Kind       Kind
	Body       string
	MediaID    string
	CommentURL string
	ViewURL    string
}

// Transport delivers outbound messages. Implementations may block on
// network I/O and are never called with pipeline locks held.
type Transport interface {
	Publish(ctx context.Context, p Post) error
	NotifyAdmin(ctx context.Context, body string) error
}

// Reply is what the sender sees in response to an event.
type Reply struct {
	Text string
	HTML bool
	// Menu asks the transport to attach the main menu.
	Menu bool
}
