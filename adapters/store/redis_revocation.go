package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/idemlab/aegis/ports"
)

// RedisRevocationStore keeps revoked credential ids in a Redis set. Every
// IsRevoked issues a SISMEMBER, which satisfies the always-read-current-state
// contract for multi-writer deployments.
type RedisRevocationStore struct {
	client     *redis.Client
	setKey     string
	updatedKey string
}

// NewRedisRevocationStore creates a Redis-backed revocation store.
func NewRedisRevocationStore(client *redis.Client) ports.RevocationStore {
	return &RedisRevocationStore{
		client:     client,
		setKey:     "aegis:revoked",
		updatedKey: "aegis:revoked:updated_at",
	}
}

// Revoke adds a credential id to the set. SADD is idempotent.
func (s *RedisRevocationStore) Revoke(ctx context.Context, credentialID string) error {
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, s.setKey, credentialID)
	pipe.Set(ctx, s.updatedKey, time.Now().UTC().Format(time.RFC3339), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke credential: %w", err)
	}
	return nil
}

// IsRevoked checks set membership for a credential id.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, credentialID string) (bool, error) {
	revoked, err := s.client.SIsMember(ctx, s.setKey, credentialID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return revoked, nil
}
