package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eliseohh/confessbot/internal/comments"
	"github.com/eliseohh/confessbot/internal/deeplink"
	"github.com/eliseohh/confessbot/internal/logger"
	"github.com/eliseohh/confessbot/internal/profanity"
	"github.com/eliseohh/confessbot/internal/ratelimit"
	"github.com/eliseohh/confessbot/internal/sequence"
	"github.com/eliseohh/confessbot/internal/session"
	"github.com/google/uuid"
)

const defaultBanner = "🌟 <b>Welcome to the Confession Bot</b>\n\n" +
	"💬 Submit confessions anonymously\n" +
	"🔒 No tracking • No logs"

// User-facing replies.
const (
	msgBanned         = "❌ Contains banned words"
	msgPostFailed     = "⚠️ Could not post right now. Please try again later."
	msgCommentSaved   = "✅ Comment posted anonymously!"
	msgCommentFailed  = "⚠️ Could not save your comment. Please send it again."
	msgAdminSent      = "📤 Sent to admin!"
	msgAdminFailed    = "⚠️ Could not reach the admin. Please send it again."
	msgAdminPrompt    = "📩 Send your message to admin:"
	msgNoComments     = "📭 No comments yet."
	msgComposeComment = "✍️ Write your comment for confession #%d:"
	msgWait           = "⏳ Wait %d seconds."
)

type Options struct {
	Limiter   *ratelimit.Limiter
	Counter   *sequence.Counter
	Filter    *profanity.Filter
	Store     *comments.Store
	Sessions  *session.State
	Links     deeplink.Builder
	Transport Transport
	// FilterCaptions extends the banned-word check to image captions.
	FilterCaptions bool
	// Banner is the HTML welcome text shown with the main menu.
	Banner string
}

// Pipeline owns all shared relay state. It is safe for concurrent use.
type Pipeline struct {
	limiter        *ratelimit.Limiter
	counter        *sequence.Counter
	filter         *profanity.Filter
	store          *comments.Store
	sessions       *session.State
	links          deeplink.Builder
	transport      Transport
	filterCaptions bool
	banner         string
	submitters     *keyedMutex
}

func New(o Options) *Pipeline {
	banner := o.Banner
	if banner == "" {
		banner = defaultBanner
	}
	return &Pipeline{
		limiter:        o.Limiter,
		counter:        o.Counter,
		filter:         o.Filter,
		store:          o.Store,
		sessions:       o.Sessions,
		links:          o.Links,
		transport:      o.Transport,
		filterCaptions: o.FilterCaptions,
		banner:         banner,
		submitters:     newKeyedMutex(),
	}
}

type step int

const (
	stepSubmit step = iota
	stepAdminMessage
	stepComment
)

// classify picks the single step an event runs. Only text messages consume
// a pending session flag, and taking the flag clears it in the same step.
func (p *Pipeline) classify(ev Event) (step, session.Flag) {
	if ev.Kind != KindText {
		return stepSubmit, session.Flag{}
	}
	f := p.sessions.Take(ev.Sender)
	switch f.Mode {
	case session.AwaitingAdminMessage:
		return stepAdminMessage, f
	case session.AwaitingComment:
		return stepComment, f
	default:
		return stepSubmit, f
	}
}

// Handle runs one inbound message through the relay and returns the reply
// for its sender. Failures are reported in the reply, never as errors.
func (p *Pipeline) Handle(ctx context.Context, ev Event) Reply {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	log := logger.With("event_id", ev.ID, "kind", ev.Kind.Label())

	st, flag := p.classify(ev)
	switch st {
	case stepAdminMessage:
		return p.relayToAdmin(ctx, log, ev, flag)
	case stepComment:
		return p.addComment(log, ev, flag)
	default:
		return p.submit(ctx, log, ev)
	}
}

func (p *Pipeline) relayToAdmin(ctx context.Context, log *slog.Logger, ev Event, flag session.Flag) Reply {
	if err := p.transport.NotifyAdmin(ctx, formatAdminMessage(ev.Text)); err != nil {
		log.Error("admin_relay_failed", "error", err)
		p.sessions.Restore(ev.Sender, flag)
		return Reply{Text: msgAdminFailed}
	}
	log.Info("admin_message_relayed")
	return Reply{Text: msgAdminSent}
}

func (p *Pipeline) addComment(log *slog.Logger, ev Event, flag session.Flag) Reply {
	if err := p.store.Append(flag.Ordinal, ev.Text); err != nil {
		log.Error("comment_save_failed", "ordinal", flag.Ordinal, "error", err)
		p.sessions.Restore(ev.Sender, flag)
		return Reply{Text: msgCommentFailed}
	}
	log.Info("comment_added", "ordinal", flag.Ordinal)
	return Reply{Text: msgCommentSaved}
}

// submit is the default path. Submissions from one sender are serialized
// so the cooldown holds even when events are handled concurrently.
func (p *Pipeline) submit(ctx context.Context, log *slog.Logger, ev Event) Reply {
	unlock := p.submitters.Lock(ev.Sender)
	defer unlock()

	if ok, wait := p.limiter.Check(ev.Sender); !ok {
		return Reply{Text: fmt.Sprintf(msgWait, wait)}
	}

	if p.screened(ev) && p.filter.IsProfane(ev.Text) {
		return Reply{Text: msgBanned}
	}

	text := ev.Text
	if text == "" {
		text = ev.Kind.placeholder()
	}

	// The ordinal is spent from here on, even if publishing fails.
	ordinal := p.counter.Next()
	post := Post{
		Ordinal:    ordinal,
		Kind:       ev.Kind,
		Body:       FormatSubmission(ordinal, ev.Kind, text),
		MediaID:    ev.MediaID,
		CommentURL: p.links.CommentLink(ordinal),
		ViewURL:    p.links.ViewLink(ordinal),
	}

	// Recorded before dispatch: a send that fails on our side may still have
	// reached the channel, and a retry must not duplicate the post.
	p.limiter.Record(ev.Sender)

	if err := p.transport.Publish(ctx, post); err != nil {
		log.Error("publish_failed", "ordinal", ordinal, "error", err)
		return Reply{Text: msgPostFailed}
	}

	log.Info("submission_published", "ordinal", ordinal)
	return Reply{Text: ev.Kind.ack()}
}

// screened reports whether the banned-word check applies to ev.
func (p *Pipeline) screened(ev Event) bool {
	switch ev.Kind {
	case KindText:
		return true
	case KindImage:
		return p.filterCaptions && ev.Text != ""
	default:
		return false
	}
}

// Start handles the start command and its optional deep-link parameter.
func (p *Pipeline) Start(sender int64, param string) Reply {
	action := deeplink.Route(param)
	switch action.Kind {
	case deeplink.ActionCompose:
		p.sessions.SetAwaitingComment(sender, action.Ordinal)
		return Reply{Text: fmt.Sprintf(msgComposeComment, action.Ordinal)}
	case deeplink.ActionView:
		return p.View(action.Ordinal)
	default:
		if param != "" {
			logger.Debug("deep_link_fallback", "action", action.Kind.String())
		}
		return p.Menu()
	}
}

// View renders the comment thread for ordinal.
func (p *Pipeline) View(ordinal uint64) Reply {
	thread := p.store.Read(ordinal)
	if len(thread) == 0 {
		return Reply{Text: msgNoComments}
	}
	return Reply{Text: FormatThread(ordinal, thread), HTML: true}
}

// ContactAdmin arms the admin-message mode for sender.
func (p *Pipeline) ContactAdmin(sender int64) Reply {
	p.sessions.SetAwaitingAdminMessage(sender)
	return Reply{Text: msgAdminPrompt}
}

func (p *Pipeline) Menu() Reply {
	return Reply{Text: p.banner, HTML: true, Menu: true}
}
