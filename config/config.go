package config

import (
	"log"
	"os"
	"time"
)

// Config captures everything main needs to wire the service. Secrets arrive
// via environment; the loader does not invent an issuer key.
type Config struct {
	Addr string

	// IssuerKeyHex is the issuer's secp256k1 signing key. Required: the
	// service refuses to start without it.
	IssuerKeyHex string

	// SessionSecret signs session tokens.
	SessionSecret string

	// RedisURL selects the redis-backed challenge and revocation stores
	// when set.
	RedisURL string

	// DatabaseURL selects the postgres-backed revocation store when set.
	// Takes precedence over the file store, not over redis.
	DatabaseURL string

	// RevocationFile is the fallback revocation store location.
	RevocationFile string

	// ChallengeTTL and SessionTTL override the default lifetimes when
	// non-zero.
	ChallengeTTL time.Duration
	SessionTTL   time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:           getenv("AEGIS_ADDR", ":9000"),
		IssuerKeyHex:   os.Getenv("AEGIS_ISSUER_KEY"),
		SessionSecret:  os.Getenv("AEGIS_SESSION_SECRET"),
		RedisURL:       os.Getenv("REDIS_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RevocationFile: getenv("AEGIS_REVOCATION_FILE", "revocations.json"),
		ChallengeTTL:   getduration("AEGIS_CHALLENGE_TTL"),
		SessionTTL:     getduration("AEGIS_SESSION_TTL"),
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "dev-session-secret-change-in-production"
		log.Println("AEGIS_SESSION_SECRET not set; using development default")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getduration parses an optional duration variable ("90s", "5m"). Zero means
// unset; an unparsable value is ignored with a warning rather than silently
// becoming zero downstream.
func getduration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("%s=%q is not a positive duration; using default", key, v)
		return 0
	}
	return d
}
