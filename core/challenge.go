package core

import "time"

// Challenge is a single-use authentication challenge. It exists only between
// issuance and consumption; consuming it deletes it from the store, so a
// stored challenge is by definition the only live one for its subject.
type Challenge struct {
	ID        string    // Unique identifier for the challenge
	SubjectID string    // DID of the identity being challenged
	Nonce     string    // Random nonce to be signed by the subject's key
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // When the challenge expires
}

// Expired reports whether the challenge is past its TTL at the given instant.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Session represents a validated session token's view of the world: one
// subject, one validity window. A session never authorizes actions for any
// identity other than SubjectID.
type Session struct {
	SubjectID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
