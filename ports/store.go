package ports

import (
	"context"
	"time"

	"github.com/idemlab/aegis/core"
)

// ChallengeStore persists live challenges keyed by subject identity. Put
// overwrites any existing entry for the same subject, which is what enforces
// the one-live-challenge-per-identity invariant. Backends are interchangeable
// without touching protocol logic.
type ChallengeStore interface {
	// Put stores a challenge for its subject, replacing any prior entry.
	Put(ctx context.Context, ch *core.Challenge) error

	// Get returns the live challenge for a subject, or
	// core.ErrChallengeNotFound.
	Get(ctx context.Context, subjectID string) (*core.Challenge, error)

	// Delete removes the challenge for a subject. Deleting a missing entry
	// is not an error.
	Delete(ctx context.Context, subjectID string) error

	// Sweep removes entries expired as of now. Backends with native TTL
	// support may implement this as a no-op.
	Sweep(ctx context.Context, now time.Time) error
}

// RevocationStore is the authoritative record of revoked credential ids.
//
// Contract: IsRevoked consults current persisted state on every call; no
// long-lived in-memory cache is permitted, so out-of-band edits to the
// backing store are honored immediately. Revoke is idempotent and there is
// no un-revoke operation. An absent or malformed backing store reads as
// empty, never as an error.
type RevocationStore interface {
	Revoke(ctx context.Context, credentialID string) error
	IsRevoked(ctx context.Context, credentialID string) (bool, error)
}
