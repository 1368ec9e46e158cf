package bot

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/eliseohh/confessbot/internal/logger"
	"github.com/eliseohh/confessbot/internal/relay"
	"github.com/google/uuid"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"
)

type Bot struct {
	api      *tele.Bot
	relay    *relay.Pipeline
	menu     *menu
	inflight *inflight
}

type Config struct {
	Token       string
	Channel     string
	ChannelURL  string
	AdminID     int64
	PollTimeout time.Duration
	SendTimeout time.Duration
}

// New connects to the bot API and builds the relay on top of it. The
// relay's transport is always the bot's own dispatcher.
func New(cfg Config, opts relay.Options) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: cfg.PollTimeout},
		OnError: func(err error, c tele.Context) {
			logger.Error("handler_error", "error", err)
		},
	}
	// Long polls share the client, so its timeout covers a poll plus a send.
	if cfg.SendTimeout > 0 {
		pref.Client = &http.Client{Timeout: cfg.PollTimeout + cfg.SendTimeout}
	}

	api, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	opts.Transport = NewDispatcher(api, ParseChat(cfg.Channel), tele.ChatID(cfg.AdminID))
	b := &Bot{
		api:      api,
		relay:    relay.New(opts),
		menu:     newMenu(cfg.ChannelURL),
		inflight: newInflight(),
	}
	b.register()
	return b, nil
}

// Start polls until ctx is done, then waits for running handlers so the
// caller can release shared state afterwards.
func (b *Bot) Start(ctx context.Context) error {
	logger.Info("bot_started", "username", b.api.Me.Username)
	go func() {
		<-ctx.Done()
		b.api.Stop()
	}()
	b.api.Start()
	b.inflight.drain()
	logger.Info("bot_drained")
	return nil
}

func (b *Bot) register() {
	b.api.Use(b.inflight.track, middleware.Recover(onPanic))

	b.api.Handle("/start", b.handleStart)

	b.api.Handle(&b.menu.send, b.handleMenuSend)
	b.api.Handle(&b.menu.comments, b.handleMenuComments)
	b.api.Handle(&b.menu.contact, b.handleMenuContact)
	b.api.Handle(&b.menu.rules, b.handleMenuRules)
	b.api.Handle(&b.menu.about, b.handleMenuAbout)

	b.api.Handle(tele.OnText, b.handleText)
	b.api.Handle(tele.OnPhoto, b.handlePhoto)
	b.api.Handle(tele.OnVoice, b.handleVoice)
	b.api.Handle(tele.OnSticker, b.handleSticker)
}

// private drops anything outside one-to-one chats so group traffic never
// becomes a submission.
func private(c tele.Context) bool {
	chat := c.Chat()
	return chat != nil && chat.Type == tele.ChatPrivate && c.Sender() != nil
}

// /start [comment_<n>|view_<n>]
func (b *Bot) handleStart(c tele.Context) error {
	if !private(c) {
		return nil
	}
	return b.reply(c, b.relay.Start(c.Sender().ID, c.Message().Payload))
}

func (b *Bot) handleText(c tele.Context) error {
	if !private(c) {
		return nil
	}
	text := c.Message().Text
	// Unregistered commands are ignored rather than published.
	if strings.HasPrefix(text, "/") {
		return nil
	}
	return b.dispatch(c, relay.Event{Kind: relay.KindText, Text: text})
}

func (b *Bot) handlePhoto(c tele.Context) error {
	m := c.Message()
	if !private(c) || m.Photo == nil {
		return nil
	}
	return b.dispatch(c, relay.Event{Kind: relay.KindImage, Text: m.Caption, MediaID: m.Photo.FileID})
}

func (b *Bot) handleVoice(c tele.Context) error {
	m := c.Message()
	if !private(c) || m.Voice == nil {
		return nil
	}
	return b.dispatch(c, relay.Event{Kind: relay.KindVoice, MediaID: m.Voice.FileID})
}

func (b *Bot) handleSticker(c tele.Context) error {
	m := c.Message()
	if !private(c) || m.Sticker == nil {
		return nil
	}
	return b.dispatch(c, relay.Event{Kind: relay.KindSticker, MediaID: m.Sticker.FileID})
}

func (b *Bot) dispatch(c tele.Context, ev relay.Event) error {
	ev.ID = uuid.NewString()
	ev.Sender = c.Sender().ID
	return b.reply(c, b.relay.Handle(context.Background(), ev))
}

func (b *Bot) reply(c tele.Context, r relay.Reply) error {
	opts := &tele.SendOptions{}
	if r.HTML {
		opts.ParseMode = tele.ModeHTML
	}
	if r.Menu {
		opts.ReplyMarkup = b.menu.markup
	}
	return c.Send(r.Text, opts)
}
