package ports

import (
	"time"

	"github.com/idemlab/aegis/core"
)

// SessionTokenizer mints and validates short-lived bearer session tokens.
// A token is scoped to exactly one subject identity and authorizes credential
// issuance for that identity only.
type SessionTokenizer interface {
	// Mint creates a signed session token for the subject.
	Mint(subjectID string) (string, error)

	// Validate parses and checks a session token, returning the embedded
	// session. Fails with core.ErrTokenExpired, core.ErrInvalidToken, or
	// core.ErrWrongTokenType.
	Validate(token string) (*core.Session, error)

	// SessionTTL reports the lifetime of minted tokens.
	SessionTTL() time.Duration
}
