// internal/config/config.go
//
// Server configuration read from the environment.
// Every variable has a default suited to local development; Load rejects
// values the server cannot run with.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// DevSecret is the session secret used when SESSION_SECRET is unset.
const DevSecret = "dev_secret_change_me"

type Config struct {
	Port            string        `env:"PORT" envDefault:"5175"`
	LogLevel        zerolog.Level `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty       bool          `env:"LOG_PRETTY" envDefault:"false"`
	ClientOrigin    string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	SessionSecret   string        `env:"SESSION_SECRET" envDefault:"dev_secret_change_me"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SessionCookie   string        `env:"SESSION_COOKIE" envDefault:"qgisgame_session"`
	SecureCookies   bool          `env:"SECURE_COOKIES" envDefault:"false"`
	CatalogFile     string        `env:"CATALOG_FILE"`
	CatalogDB       string        `env:"CATALOG_DB"`
	DefaultLang     string        `env:"DEFAULT_LANG" envDefault:"fr"`
	RandomSeed      uint64        `env:"RANDOM_SEED" envDefault:"0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if _, err := language.Parse(c.DefaultLang); err != nil {
		return fmt.Errorf("DEFAULT_LANG %q: %w", c.DefaultLang, err)
	}
	return nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string { return ":" + c.Port }

// Lang is the parsed DEFAULT_LANG.
func (c Config) Lang() language.Tag { return language.Make(c.DefaultLang) }

// UsesDevSecret reports whether the built-in session secret is in use.
func (c Config) UsesDevSecret() bool { return c.SessionSecret == DevSecret }
