// Package env reads configuration from environment variables.
package env

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/config"
	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
)

// Prefix namespaces process settings.
const Prefix = "SERCHA_CONNECT_"

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Settings holds process-wide configuration.
type Settings struct {
	RedirectBaseURL string        `env:"REDIRECT_BASE_URL" envDefault:"http://localhost:8080"`
	AppBaseURL      string        `env:"APP_BASE_URL"      envDefault:"/"`
	Addr            string        `env:"ADDR"              envDefault:":8080"`
	ExchangeTimeout time.Duration `env:"EXCHANGE_TIMEOUT"  envDefault:"15s"`
	StateTTL        time.Duration `env:"STATE_TTL"         envDefault:"10m"`
	Store           string        `env:"STORE"             envDefault:"sqlite"`
	DataDir         string        `env:"DATA_DIR"`
	ConfigDir       string        `env:"CONFIG_DIR"`
	RateLimit       float64       `env:"RATE_LIMIT"        envDefault:"10"`
	RateBurst       int           `env:"RATE_BURST"        envDefault:"20"`
	Verbose         bool          `env:"VERBOSE"`
	// OTelEndpoint is an OTLP/HTTP traces URL. Tracing is off when empty.
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load reads Settings from the process environment.
func Load() (Settings, error) {
	return LoadFrom(nil)
}

// LoadFrom reads Settings from environ, or the process environment when nil.
func LoadFrom(environ map[string]string) (Settings, error) {
	var s Settings
	opts := env.Options{Prefix: Prefix, Environment: environ}
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks settings that would otherwise fail late.
func (s Settings) Validate() error {
	u, err := url.Parse(s.RedirectBaseURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: %sREDIRECT_BASE_URL must be an absolute URL", domain.ErrInvalidInput, Prefix)
	}
	switch s.Store {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("%w: %sSTORE must be %q or %q", domain.ErrInvalidInput, Prefix, StoreMemory, StoreSQLite)
	}
	if s.ExchangeTimeout <= 0 || s.StateTTL <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", domain.ErrInvalidInput)
	}
	if s.RateLimit < 0 || s.RateBurst < 0 {
		return fmt.Errorf("%w: rate limits must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

// Ensure Source implements the interface.
var _ driven.CredentialSource = Source{}

// Source resolves credential keys from environment variables.
// Keys are dynamic (one pair per provider), so they are looked up directly
// rather than through a tagged struct.
type Source struct {
	environ map[string]string
}

// NewSource creates a Source over environ, or the process environment when nil.
func NewSource(environ map[string]string) Source {
	return Source{environ: environ}
}

// Lookup returns the trimmed value of key when set and non-blank.
func (s Source) Lookup(key string) (string, bool) {
	var v string
	if s.environ != nil {
		v = s.environ[key]
	} else {
		v, _ = os.LookupEnv(key)
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// providerEnv holds raw per-provider override values.
type providerEnv struct {
	Scopes  string `env:"SCOPES"`
	Sandbox string `env:"SANDBOX"`
}

// Ensure Overrides implements the interface.
var _ config.OverrideReader = Overrides{}

// Overrides reads <NAME>_SCOPES and <NAME>_SANDBOX.
type Overrides struct {
	environ map[string]string
}

// NewOverrides creates an override reader over environ, or the process
// environment when nil.
func NewOverrides(environ map[string]string) Overrides {
	return Overrides{environ: environ}
}

// ProviderOverride reads the override for name.
func (o Overrides) ProviderOverride(name string) (config.Override, error) {
	var raw providerEnv
	opts := env.Options{Prefix: domain.EnvPrefix(name), Environment: o.environ}
	if err := env.ParseWithOptions(&raw, opts); err != nil {
		return config.Override{}, fmt.Errorf("parse %s overrides: %w", name, err)
	}

	var out config.Override
	if raw.Scopes != "" {
		out.Scopes = config.SplitScopes(raw.Scopes)
	}
	if raw.Sandbox != "" {
		b, err := config.ParseBool(raw.Sandbox)
		if err != nil {
			return config.Override{}, fmt.Errorf("%sSANDBOX: %w", domain.EnvPrefix(name), err)
		}
		out.Sandbox = &b
	}
	return out, nil
}
