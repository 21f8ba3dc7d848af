package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/idemlab/aegis/core"
	"github.com/idemlab/aegis/ports"
)

// MemoryChallengeStore is an in-memory implementation of the ChallengeStore
// interface. Entries are keyed by lower-cased subject identity so the same
// account never holds two live challenges under different casings.
//
// Two concurrent Puts for the same subject race last-writer-wins, silently
// invalidating the loser. That is the documented behavior, not an accident.
type MemoryChallengeStore struct {
	challenges map[string]*core.Challenge
	mu         sync.RWMutex
}

// NewMemoryChallengeStore creates a new in-memory challenge store.
func NewMemoryChallengeStore() ports.ChallengeStore {
	return &MemoryChallengeStore{
		challenges: make(map[string]*core.Challenge),
	}
}

func challengeKey(subjectID string) string {
	return strings.ToLower(subjectID)
}

// Put stores a challenge, replacing any existing entry for the same subject.
func (s *MemoryChallengeStore) Put(ctx context.Context, ch *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[challengeKey(ch.SubjectID)] = ch
	return nil
}

// Get returns the stored challenge for a subject.
func (s *MemoryChallengeStore) Get(ctx context.Context, subjectID string) (*core.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, ok := s.challenges[challengeKey(subjectID)]
	if !ok {
		return nil, core.ErrChallengeNotFound
	}
	return ch, nil
}

// Delete removes the challenge for a subject.
func (s *MemoryChallengeStore) Delete(ctx context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.challenges, challengeKey(subjectID))
	return nil
}

// Sweep removes all entries expired as of now. It bounds memory when clients
// request challenges and never complete the flow.
func (s *MemoryChallengeStore) Sweep(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, ch := range s.challenges {
		if ch.Expired(now) {
			delete(s.challenges, key)
		}
	}
	return nil
}
