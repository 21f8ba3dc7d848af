package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "revocations.json", cfg.RevocationFile)
	assert.Zero(t, cfg.ChallengeTTL)
	assert.Zero(t, cfg.SessionTTL)
}

func TestFromEnvTTLOverrides(t *testing.T) {
	t.Setenv("AEGIS_CHALLENGE_TTL", "90s")
	t.Setenv("AEGIS_SESSION_TTL", "5m")

	cfg := FromEnv()

	assert.Equal(t, 90*time.Second, cfg.ChallengeTTL)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
}

// Bad or non-positive durations fall back to the defaults instead of
// configuring a zero lifetime.
func TestFromEnvRejectsBadTTL(t *testing.T) {
	t.Setenv("AEGIS_CHALLENGE_TTL", "ninety seconds")
	t.Setenv("AEGIS_SESSION_TTL", "-5m")

	cfg := FromEnv()

	assert.Zero(t, cfg.ChallengeTTL)
	assert.Zero(t, cfg.SessionTTL)
}
