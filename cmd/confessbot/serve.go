package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/eliseohh/confessbot/internal/bot"
	"github.com/eliseohh/confessbot/internal/comments"
	"github.com/eliseohh/confessbot/internal/config"
	"github.com/eliseohh/confessbot/internal/deeplink"
	"github.com/eliseohh/confessbot/internal/logger"
	"github.com/eliseohh/confessbot/internal/profanity"
	"github.com/eliseohh/confessbot/internal/ratelimit"
	"github.com/eliseohh/confessbot/internal/relay"
	"github.com/eliseohh/confessbot/internal/sequence"
	"github.com/eliseohh/confessbot/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	// b.Start drains running handlers before it returns, so this runs last.
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("comment_store_close_failed", "error", err)
		}
	}()

	b, err := bot.New(bot.Config{
		Token:       cfg.Token,
		Channel:     cfg.Channel,
		ChannelURL:  cfg.ChannelURL,
		AdminID:     cfg.AdminID,
		PollTimeout: cfg.PollTimeout,
		SendTimeout: cfg.SendTimeout,
	}, relay.Options{
		Limiter:        ratelimit.New(cfg.Cooldown),
		Counter:        sequence.New(),
		Filter:         profanity.New(cfg.BannedWords),
		Store:          store,
		Sessions:       session.New(cfg.SessionTTL),
		Links:          deeplink.NewBuilder(cfg.DeepLinkBase, cfg.BotUsername),
		FilterCaptions: cfg.FilterCaptions,
		Banner:         banner(cfg),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.Start(ctx) })
	g.Go(func() error {
		return comments.NewScheduler(store, cfg.Store.SnapshotCron, cfg.Store.SnapshotDir).Run(ctx)
	})

	logger.Info("confessbot_running", "backend", cfg.Store.Backend, "cooldown", cfg.Cooldown.String())
	err = g.Wait()
	logger.Info("confessbot_stopped")
	return err
}

func openStore(cfg *config.Config) (*comments.Store, error) {
	backend, err := comments.NewBackend(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	return comments.Open(backend), nil
}

func banner(cfg *config.Config) string {
	var sb strings.Builder
	sb.WriteString("🌟 <b>Welcome to the Confession Bot</b>\n\n")
	sb.WriteString("💬 Submit confessions anonymously\n")
	sb.WriteString("🔒 No tracking • No logs")
	if strings.HasPrefix(cfg.Channel, "@") {
		sb.WriteString("\n\n📢 Channel: " + cfg.Channel)
	}
	return sb.String()
}

