package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/idemlab/aegis/core"
	"github.com/idemlab/aegis/ports"
)

// RedisChallengeStore is a Redis implementation of the ChallengeStore
// interface. The key TTL mirrors the challenge TTL, so Redis expiry does the
// sweeping and Sweep is a no-op.
type RedisChallengeStore struct {
	client *redis.Client
	prefix string
}

// NewRedisChallengeStore creates a new Redis challenge store.
func NewRedisChallengeStore(client *redis.Client) ports.ChallengeStore {
	return &RedisChallengeStore{
		client: client,
		prefix: "aegis:challenge:",
	}
}

// Put stores a challenge under its subject key, replacing any prior entry.
// SET with a TTL is atomic, so last writer wins for concurrent issues.
func (s *RedisChallengeStore) Put(ctx context.Context, ch *core.Challenge) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	// An already-expired challenge still gets written under a short grace
	// TTL, so it overwrites any prior live challenge and a later consume
	// reports expiry rather than not-found, matching the memory store.
	ttl := time.Until(ch.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}

	key := s.prefix + challengeKey(ch.SubjectID)
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}
	return nil
}

// Get returns the live challenge for a subject.
func (s *RedisChallengeStore) Get(ctx context.Context, subjectID string) (*core.Challenge, error) {
	key := s.prefix + challengeKey(subjectID)

	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrChallengeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch challenge: %w", err)
	}

	var ch core.Challenge
	if err := json.Unmarshal(payload, &ch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	return &ch, nil
}

// Delete removes the challenge for a subject.
func (s *RedisChallengeStore) Delete(ctx context.Context, subjectID string) error {
	key := s.prefix + challengeKey(subjectID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	return nil
}

// Sweep is a no-op; Redis key expiry removes stale challenges.
func (s *RedisChallengeStore) Sweep(ctx context.Context, now time.Time) error {
	return nil
}
