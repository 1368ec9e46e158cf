package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/eliseohh/confessbot/internal/relay"
	tele "gopkg.in/telebot.v3"
)

// sender is the part of *tele.Bot the dispatcher needs.
type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// chatRef addresses a chat by numeric id or @username.
type chatRef string

func (c chatRef) Recipient() string { return string(c) }

// ParseChat turns a configured chat reference into a recipient.
func ParseChat(ref string) tele.Recipient {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return tele.ChatID(id)
	}
	return chatRef(ref)
}

// Dispatcher publishes relay posts to the channel and relays admin messages.
// Sends are bounded by the bot's HTTP client timeout.
type Dispatcher struct {
	api     sender
	channel tele.Recipient
	admin   tele.Recipient
}

func NewDispatcher(api sender, channel, admin tele.Recipient) *Dispatcher {
	return &Dispatcher{api: api, channel: channel, admin: admin}
}

func postMarkup(p relay.Post) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(m.Row(
		m.URL("💬 Comment", p.CommentURL),
		m.URL("👀 View Comments", p.ViewURL),
	))
	return m
}

func (d *Dispatcher) Publish(ctx context.Context, p relay.Post) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: postMarkup(p)}
	file := tele.File{FileID: p.MediaID}

	switch p.Kind {
	case relay.KindImage:
		return d.send(ctx, d.channel, &tele.Photo{File: file, Caption: p.Body}, opts)
	case relay.KindVoice:
		return d.send(ctx, d.channel, &tele.Voice{File: file, Caption: p.Body}, opts)
	case relay.KindSticker:
		// Stickers take no caption: header first, then the sticker.
		if err := d.send(ctx, d.channel, p.Body, opts); err != nil {
			return err
		}
		return d.send(ctx, d.channel, &tele.Sticker{File: file})
	default:
		return d.send(ctx, d.channel, p.Body, opts)
	}
}

func (d *Dispatcher) NotifyAdmin(ctx context.Context, body string) error {
	return d.send(ctx, d.admin, body, tele.ModeHTML)
}

// send runs a telebot call to completion. A call that has started is never
// abandoned, so an error here means the request itself failed; ctx only
// stops calls that have not started yet.
func (d *Dispatcher) send(ctx context.Context, to tele.Recipient, what interface{}, opts ...interface{}) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send to %s: %w", to.Recipient(), err)
	}
	if _, err := d.api.Send(to, what, opts...); err != nil {
		return fmt.Errorf("send to %s: %w", to.Recipient(), err)
	}
	return nil
}
