// Package config builds process configuration from environment variables so
// main stays lean. All components receive their settings by injection; there
// are no lazily-constructed package-level clients.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config captures everything the gate process needs. Processed with the
// GATE_ prefix, e.g. GATE_ADDR, GATE_POSTGRES_URL, GATE_PROTECTED_PREFIXES.
type Config struct {
	// HTTP server
	Addr            string        `split_words:"true" default:":8080"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`

	// Frontend upstream the gate proxies allowed page requests to.
	UpstreamURL *url.URL `split_words:"true" default:"http://localhost:3000"`

	// Logging
	LogLevel  string `split_words:"true" default:"info"`
	LogFormat string `split_words:"true" default:"text"`

	// Account store. Empty URL selects the in-memory store (development).
	PostgresURL string `split_words:"true"`

	// Session store. Empty URL selects the in-memory store (development).
	RedisURL          string        `split_words:"true"`
	RedisPoolSize     int           `split_words:"true" default:"10"`
	RedisMinIdleConns int           `split_words:"true" default:"2"`
	RedisDialTimeout  time.Duration `split_words:"true" default:"5s"`
	RedisReadTimeout  time.Duration `split_words:"true" default:"3s"`
	RedisWriteTimeout time.Duration `split_words:"true" default:"3s"`

	// Audit fan-out. Empty broker list selects the store-backed publisher.
	KafkaBrokers []string `split_words:"true"`
	AuditTopic   string   `split_words:"true" default:"careergate.audit"`

	// Identity resolution
	JWTSigningKey   string   `split_words:"true"`
	AuthProviderURL *url.URL `split_words:"true"`
	AuthProviderKey string   `split_words:"true"`

	// First-party sessions
	SessionCookieName   string        `split_words:"true" default:"fcs_session"`
	SessionTTL          time.Duration `split_words:"true" default:"24h"`
	SessionRefreshAfter time.Duration `split_words:"true" default:"1h"`

	// Gate policy
	ProtectedPrefixes  []string `split_words:"true" default:"/builder,/success,/dashboard"`
	BlockedAdminPolicy string   `split_words:"true" default:"block-wins"`
}

// Load processes the environment into a Config and validates cross-field
// constraints that envconfig tags cannot express.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("gate", &c); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	switch c.BlockedAdminPolicy {
	case "block-wins", "role-exempts":
	default:
		return nil, fmt.Errorf("invalid GATE_BLOCKED_ADMIN_POLICY %q (want block-wins or role-exempts)", c.BlockedAdminPolicy)
	}

	if c.SessionRefreshAfter >= c.SessionTTL {
		return nil, fmt.Errorf("GATE_SESSION_REFRESH_AFTER (%s) must be shorter than GATE_SESSION_TTL (%s)", c.SessionRefreshAfter, c.SessionTTL)
	}

	return &c, nil
}
