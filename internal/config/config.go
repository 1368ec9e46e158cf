package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath         = "./confessbot.yaml"
	DefaultDotEnv       = ".env"
	EnvPrefix           = "CONFESSBOT_"
	defaultCooldown     = 15 * time.Second
	defaultPollTimeout  = 10 * time.Second
	defaultSendTimeout  = 10 * time.Second
	defaultDeepLinkBase = "https://t.me"
)

// Backend names accepted by store.backend.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendPebble = "pebble"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Token          string        `yaml:"token" env:"TOKEN"`
	Channel        string        `yaml:"channel" env:"CHANNEL"`
	ChannelURL     string        `yaml:"channel_url" env:"CHANNEL_URL"`
	AdminID        int64         `yaml:"admin_id" env:"ADMIN_ID"`
	BotUsername    string        `yaml:"bot_username" env:"BOT_USERNAME"`
	DeepLinkBase   string        `yaml:"deep_link_base" env:"DEEP_LINK_BASE"`
	Cooldown       time.Duration `yaml:"cooldown" env:"COOLDOWN"`
	BannedWords    []string      `yaml:"banned_words" env:"BANNED_WORDS" envSeparator:","`
	FilterCaptions bool          `yaml:"filter_captions" env:"FILTER_CAPTIONS"`
	SessionTTL     time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`
	PollTimeout    time.Duration `yaml:"poll_timeout" env:"POLL_TIMEOUT"`
	SendTimeout    time.Duration `yaml:"send_timeout" env:"SEND_TIMEOUT"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL"`
	Store          StoreConfig   `yaml:"store" envPrefix:"STORE_"`
}

type StoreConfig struct {
	Backend      string `yaml:"backend" env:"BACKEND"`
	Path         string `yaml:"path" env:"PATH"`
	SnapshotCron string `yaml:"snapshot_cron" env:"SNAPSHOT_CRON"`
	SnapshotDir  string `yaml:"snapshot_dir" env:"SNAPSHOT_DIR"`
}

// DefaultStorePath names the store location used when store.path is unset.
func DefaultStorePath(backend string) string {
	switch backend {
	case BackendSQLite:
		return "comments.db"
	case BackendPebble:
		return "comments.pebble"
	default:
		return "comments.json"
	}
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		DeepLinkBase: defaultDeepLinkBase,
		Cooldown:     defaultCooldown,
		BannedWords:  []string{"badword1", "badword2"},
		PollTimeout:  defaultPollTimeout,
		SendTimeout:  defaultSendTimeout,
		LogLevel:     "info",
		Store: StoreConfig{
			Backend: BackendJSON,
		},
	}
}

// Load layers defaults, the YAML file at path, the dotenv file and the
// process environment, in that order. Missing files are skipped.
func Load(path, dotenv string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.BotUsername = strings.TrimPrefix(strings.TrimSpace(c.BotUsername), "@")
	c.DeepLinkBase = strings.TrimRight(c.DeepLinkBase, "/")
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath(c.Store.Backend)
	}
	words := c.BannedWords[:0]
	for _, w := range c.BannedWords {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	c.BannedWords = words
}

// Validate checks the fields every command needs. The token is only
// required when requireToken is set, so offline subcommands can run
// without credentials.
func (c *Config) Validate(requireToken bool) error {
	if requireToken && c.Token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalid)
	}
	if c.Channel == "" {
		return fmt.Errorf("%w: channel is required", ErrInvalid)
	}
	if c.AdminID == 0 {
		return fmt.Errorf("%w: admin_id is required", ErrInvalid)
	}
	if c.BotUsername == "" {
		return fmt.Errorf("%w: bot_username is required", ErrInvalid)
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("%w: cooldown must be positive", ErrInvalid)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("%w: session_ttl must not be negative", ErrInvalid)
	}
	switch c.Store.Backend {
	case BackendJSON, BackendSQLite, BackendPebble:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalid, c.Store.Backend)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("%w: store.path is required", ErrInvalid)
	}
	if c.Store.SnapshotCron != "" {
		if !gronx.IsValid(c.Store.SnapshotCron) {
			return fmt.Errorf("%w: invalid snapshot_cron %q", ErrInvalid, c.Store.SnapshotCron)
		}
		if c.Store.SnapshotDir == "" {
			return fmt.Errorf("%w: snapshot_dir is required when snapshot_cron is set", ErrInvalid)
		}
	}
	return nil
}

// RedactedToken keeps the first and last rune of the token.
func (c *Config) RedactedToken() string {
	r := []rune(c.Token)
	if len(r) == 0 {
		return ""
	}
	if len(r) <= 2 {
		return "<redacted>"
	}
	return string(r[0]) + "*****" + string(r[len(r)-1])
}
