// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken     string        `env:"DISCORD_TOKEN"`
	StoragePath      string        `env:"STORAGE_PATH" envDefault:"datastore.json"`
	CommandPrefix    string        `env:"COMMAND_PREFIX" envDefault:"!"`
	DeveloperID      string        `env:"DEVELOPER_ID"`
	DenialMessageTTL time.Duration `env:"DENIAL_MESSAGE_TTL" envDefault:"1m"`
	FilterWarningTTL time.Duration `env:"FILTER_WARNING_TTL" envDefault:"1m"`
	CommandCooldown  time.Duration `env:"COMMAND_COOLDOWN" envDefault:"3s"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile          string        `env:"LOG_FILE"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; the system environment is used instead.
	_ = godotenv.Load()
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	if c.CommandPrefix == "" {
		return errors.New("COMMAND_PREFIX must not be empty")
	}
	if c.DenialMessageTTL < 0 {
		return fmt.Errorf("DENIAL_MESSAGE_TTL must not be negative, got %s", c.DenialMessageTTL)
	}
	if c.FilterWarningTTL < 0 {
		return fmt.Errorf("FILTER_WARNING_TTL must not be negative, got %s", c.FilterWarningTTL)
	}
	if c.CommandCooldown < 0 {
		return fmt.Errorf("COMMAND_COOLDOWN must not be negative, got %s", c.CommandCooldown)
	}
	return nil
}

// IsDeveloper reports whether userID is the configured developer.
func IsDeveloper(cfg *Config, userID string) bool {
	return cfg != nil && cfg.DeveloperID != "" && cfg.DeveloperID == userID
}
