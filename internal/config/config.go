// Package config loads knowme settings from defaults, an optional YAML
// file and KNOWME_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/knowme/internal/scoring"
	"github.com/abhisek/knowme/internal/session"
)

// EnvPrefix prefixes every environment override, e.g. KNOWME_HTTP_ADDR.
const EnvPrefix = "KNOWME"

// Config holds all runtime settings.
type Config struct {
	DB          DBConfig          `mapstructure:"db"`
	Questions   QuestionsConfig   `mapstructure:"questions"`
	Bot         BotConfig         `mapstructure:"bot"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Session     SessionConfig     `mapstructure:"session"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Log         LogConfig         `mapstructure:"log"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Status      StatusConfig      `mapstructure:"status"`
}

type DBConfig struct {
	// Path of the SQLite file. Empty means the per-user data directory.
	Path string `mapstructure:"path"`
}

type QuestionsConfig struct {
	// Path of a question bank JSON file. Empty means the built-in bank.
	Path string `mapstructure:"path"`
}

type BotConfig struct {
	// LinkBase is prepended to a test id to form its shareable link.
	LinkBase string `mapstructure:"link_base"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"` // Default: ":8080"
}

type SessionConfig struct {
	Backend   string        `mapstructure:"backend"` // "memory" or "redis"
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	File   string `mapstructure:"file"`   // rotated JSON log; empty disables
	Format string `mapstructure:"format"` // console or json, for stderr
}

type LeaderboardConfig struct {
	Limit int `mapstructure:"limit"`
}

type StatusConfig struct {
	Ranges scoring.Ranges `mapstructure:"ranges"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Bot: BotConfig{
			LinkBase: "https://t.me/knowme_bot?start=",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Session: SessionConfig{
			Backend:   session.BackendMemory,
			TTL:       24 * time.Hour,
			KeyPrefix: "knowme:",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Leaderboard: LeaderboardConfig{
			Limit: 10,
		},
		Status: StatusConfig{
			Ranges: scoring.DefaultRanges(),
		},
	}
}

// Load reads configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Status.Ranges) == 0 {
		cfg.Status.Ranges = scoring.DefaultRanges()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	var errs []error
	switch c.Session.Backend {
	case session.BackendMemory, session.BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("session.backend: %w: %q", session.ErrUnknownBackend, c.Session.Backend))
	}
	if c.Session.Backend == session.BackendRedis && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required for the redis session backend"))
	}
	if c.Bot.LinkBase == "" {
		errs = append(errs, errors.New("bot.link_base must not be empty"))
	}
	if c.Leaderboard.Limit <= 0 {
		errs = append(errs, fmt.Errorf("leaderboard.limit must be positive, got %d", c.Leaderboard.Limit))
	}
	if err := c.Status.Ranges.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("status.ranges: %w", err))
	}
	return errors.Join(errs...)
}

// SessionOptions translates the session and redis sections for session.Open.
func (c Config) SessionOptions() session.Options {
	return session.Options{
		Backend:       c.Session.Backend,
		RedisAddr:     c.Redis.Addr,
		RedisPassword: c.Redis.Password,
		RedisDB:       c.Redis.DB,
		KeyPrefix:     c.Session.KeyPrefix,
		TTL:           c.Session.TTL,
	}
}

// setDefaults registers every scalar key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("db.path", d.DB.Path)
	v.SetDefault("questions.path", d.Questions.Path)
	v.SetDefault("bot.link_base", d.Bot.LinkBase)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("session.backend", d.Session.Backend)
	v.SetDefault("session.ttl", d.Session.TTL)
	v.SetDefault("session.key_prefix", d.Session.KeyPrefix)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("leaderboard.limit", d.Leaderboard.Limit)
}
