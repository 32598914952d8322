package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendJSON   Backend = "json"
)

const (
	// DefaultDebounce is the quiet period for coalescing writes.
	DefaultDebounce = 1000 * time.Millisecond

	defaultTenant = "bravely"
)

// Config holds everything read from the environment. A .env file in the
// working directory is loaded first; real environment variables win.
type Config struct {
	Backend      Backend
	StorePath    string
	Tenant       string // namespaces the document key so deployments don't collide
	SessionToken string
	MentorPIN    string
	Debounce     time.Duration
	LogLevel     string
}

// ConfigError marks invalid or missing backing-store configuration. It
// is advisory: callers fall back to the local json store instead of
// failing.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Load reads configuration from .env and the environment. The returned
// error, when non-nil, is always a *ConfigError and the returned Config
// is still usable: it has been downgraded to the local json fallback.
func Load() (Config, error) {
	// Missing .env is fine; the environment alone may be complete.
	_ = godotenv.Load()

	cfg := Config{
		Backend:      BackendSQLite,
		Tenant:       defaultTenant,
		SessionToken: os.Getenv("BRAVELY_SESSION_TOKEN"),
		MentorPIN:    "1234",
		Debounce:     DefaultDebounce,
		LogLevel:     os.Getenv("BRAVELY_LOG_LEVEL"),
	}

	if t := os.Getenv("BRAVELY_TENANT"); t != "" {
		cfg.Tenant = t
	}
	if pin := os.Getenv("BRAVELY_MENTOR_PIN"); pin != "" {
		cfg.MentorPIN = pin
	}
	if ms := os.Getenv("BRAVELY_DEBOUNCE_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n > 0 {
			cfg.Debounce = time.Duration(n) * time.Millisecond
		}
	}

	var cfgErr *ConfigError

	switch b := os.Getenv("BRAVELY_BACKEND"); b {
	case "", string(BackendSQLite):
		cfg.Backend = BackendSQLite
	case string(BackendJSON):
		cfg.Backend = BackendJSON
	default:
		cfgErr = &ConfigError{Field: "BRAVELY_BACKEND", Reason: fmt.Sprintf("unknown backend %q", b)}
		cfg.Backend = BackendJSON
	}

	cfg.StorePath = os.Getenv("BRAVELY_STORE_PATH")
	if cfg.StorePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			cfgErr = &ConfigError{Field: "BRAVELY_STORE_PATH", Reason: "unset and home directory unavailable"}
			cfg.Backend = BackendJSON
			cfg.StorePath = filepath.Join(os.TempDir(), cfg.Tenant)
		} else {
			cfg.StorePath = filepath.Join(home, ".config", "bravely")
		}
	}

	if cfgErr != nil {
		return cfg, cfgErr
	}
	return cfg, nil
}

// DocumentPath returns the tenant-namespaced path of the state document
// for the configured backend.
func (c Config) DocumentPath() string {
	ext := ".db"
	if c.Backend == BackendJSON {
		ext = ".json"
	}
	return filepath.Join(c.StorePath, c.Tenant+ext)
}
