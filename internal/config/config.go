package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string     `env:"PORT" envDefault:"8080"`
	Environment string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// DataDir holds procedural/, variables.yaml and events.json.
	DataDir string `env:"DATA_DIR" envDefault:"./data"`
	// RedisURL enables generation stats when set.
	RedisURL string `env:"REDIS_URL"`

	// RNGSeed fixes the seed of every new session. Zero draws a random seed per session.
	RNGSeed        uint64  `env:"RNG_SEED" envDefault:"0"`
	HistorySize    int     `env:"HISTORY_SIZE" envDefault:"4"`
	WildcardChance float64 `env:"WILDCARD_CHANCE" envDefault:"0.10"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges env tags cannot express.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.HistorySize < 2 {
		return fmt.Errorf("HISTORY_SIZE must be at least 2, got %d", c.HistorySize)
	}
	if c.WildcardChance < 0 || c.WildcardChance > 1 {
		return fmt.Errorf("WILDCARD_CHANCE must be between 0 and 1, got %g", c.WildcardChance)
	}
	return nil
}

// Level maps LOG_LEVEL to a slog level. Unknown names fall back to info.
func (c *Config) Level() slog.Level {
	return parseLogLevel(c.LogLevel)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
