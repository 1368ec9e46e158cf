package main

import (
	"fmt"
	"os"

	"github.com/eliseohh/confessbot/internal/config"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "confessbot",
	Short: "Anonymous confession relay for Telegram",
	Long: `confessbot republishes anonymous submissions to a public channel under
sequential numbers and keeps comment threads reachable through deep links.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().String("env-file", config.DefaultDotEnv, "dotenv file path")

	rootCmd.AddCommand(serveCmd, commentsCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads and validates configuration from the persistent flags.
func loadConfig(cmd *cobra.Command, requireToken bool) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	dotenv, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(path, dotenv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(requireToken); err != nil {
		return nil, err
	}
	return cfg, nil
}
