package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careergate/pkg/testutil"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "http://localhost:3000", cfg.UpstreamURL.String())
	assert.Equal(t, []string{"/builder", "/success", "/dashboard"}, cfg.ProtectedPrefixes)
	assert.Equal(t, "block-wins", cfg.BlockedAdminPolicy)
	assert.Equal(t, "fcs_session", cfg.SessionCookieName)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.PostgresURL)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	testutil.Given(t, "a customized environment", func(t *testing.T) {
		t.Setenv("GATE_ADDR", ":9090")
		t.Setenv("GATE_PROTECTED_PREFIXES", "/app,/resume")
		t.Setenv("GATE_BLOCKED_ADMIN_POLICY", "role-exempts")
		t.Setenv("GATE_KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, []string{"/app", "/resume"}, cfg.ProtectedPrefixes)
		assert.Equal(t, "role-exempts", cfg.BlockedAdminPolicy)
		assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	})
}

func TestLoadValidation(t *testing.T) {
	testutil.Given(t, "an unknown blocked-admin policy", func(t *testing.T) {
		t.Setenv("GATE_BLOCKED_ADMIN_POLICY", "coin-flip")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GATE_BLOCKED_ADMIN_POLICY")
	})

	testutil.Given(t, "a refresh window longer than the session TTL", func(t *testing.T) {
		t.Setenv("GATE_SESSION_TTL", "1h")
		t.Setenv("GATE_SESSION_REFRESH_AFTER", "2h")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GATE_SESSION_REFRESH_AFTER")
	})
}
