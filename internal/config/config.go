// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting of the taskboard binary. Command-line flags
// override the values parsed here.
type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	DBPath          string        `env:"DB_PATH" envDefault:"data/taskboard.db"`
	StaticDir       string        `env:"STATIC_DIR" envDefault:"web/dist"`
	JWTSecret       string        `env:"JWT_SECRET"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile         string        `env:"LOG_FILE"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

const prefix = "TASKBOARD_"

// Load parses TASKBOARD_* variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings. Commands that sign or verify tokens pass
// needSecret.
func (c Config) Validate(needSecret bool) error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	if needSecret && c.JWTSecret == "" {
		errs = append(errs, errors.New(prefix+"JWT_SECRET is required"))
	}
	if c.TokenTTL < 0 {
		errs = append(errs, errors.New("token ttl must not be negative"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	return errors.Join(errs...)
}
