// internal/config/config.go
//
// Process configuration, read from the environment (after an optional .env
// file has been loaded by main).
//
// Environment variables:
//   PORT               listen port (default 5175)
//   LOG_LEVEL          zerolog level (default info)
//   LOG_PRETTY         human console output instead of JSON
//   DATABASE_PATH      sqlite file for the problem store
//   PROBLEMS_FILE      CSV problem file; empty uses the embedded set
//   PROBLEM_SOURCE     "sqlite" (seed DB from CSV, play from DB) or "csv"
//   JWT_SECRET         HMAC key for session tokens
//   SESSION_TOKEN_TTL  session token lifetime
//   SESSION_IDLE_TTL   idle sessions are evicted after this long
//   CLIENT_ORIGIN      allowed CORS origin
//   DAILY_SALT         salt for the problem of the day
//   REQUEST_TIMEOUT    per-request handler timeout

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config is the full process configuration.
type Config struct {
	Port           string        `env:"PORT" envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty      bool          `env:"LOG_PRETTY" envDefault:"false"`
	DatabasePath   string        `env:"DATABASE_PATH" envDefault:"./data/turing.db"`
	ProblemsFile   string        `env:"PROBLEMS_FILE"`
	ProblemSource  string        `env:"PROBLEM_SOURCE" envDefault:"sqlite"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	TokenTTL       time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"24h"`
	IdleTTL        time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	DailySalt      string        `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks cross-field rules env tags cannot express.
func (c Config) Validate() error {
	switch c.ProblemSource {
	case SourceCSV:
	case SourceSQLite:
		if c.DatabasePath == "" {
			return errors.New("config: PROBLEM_SOURCE=sqlite requires DATABASE_PATH")
		}
	default:
		return fmt.Errorf("config: unknown PROBLEM_SOURCE %q", c.ProblemSource)
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must not be empty")
	}
	if c.TokenTTL <= 0 || c.IdleTTL <= 0 {
		return errors.New("config: session TTLs must be positive")
	}
	return nil
}

// UseDatabase reports whether the sqlite store should be opened.
func (c Config) UseDatabase() bool { return c.ProblemSource == SourceSQLite }
