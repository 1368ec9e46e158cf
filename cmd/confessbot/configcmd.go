package main

import (
	"fmt"
	"strings"

	"github.com/eliseohh/confessbot/internal/profanity"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate the configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd, true)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "token:           %s\n", cfg.RedactedToken())
		fmt.Fprintf(w, "channel:         %s\n", cfg.Channel)
		fmt.Fprintf(w, "admin_id:        %d\n", cfg.AdminID)
		fmt.Fprintf(w, "bot_username:    %s\n", cfg.BotUsername)
		fmt.Fprintf(w, "cooldown:        %s\n", cfg.Cooldown)
		fmt.Fprintf(w, "banned_words:    %d\n", len(profanity.New(cfg.BannedWords).Terms()))
		fmt.Fprintf(w, "filter_captions: %t\n", cfg.FilterCaptions)
		ttl := "none"
		if cfg.SessionTTL > 0 {
			ttl = cfg.SessionTTL.String()
		}
		fmt.Fprintf(w, "session_ttl:     %s\n", ttl)
		fmt.Fprintf(w, "store:           %s (%s)\n", cfg.Store.Backend, cfg.Store.Path)
		if cfg.Store.SnapshotCron != "" {
			fmt.Fprintf(w, "snapshots:       %s -> %s\n", cfg.Store.SnapshotCron, cfg.Store.SnapshotDir)
		}
		fmt.Fprintln(w, strings.Repeat("-", 24))
		fmt.Fprintln(w, "ok")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configCheckCmd)
}
