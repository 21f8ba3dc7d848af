package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/idemlab/aegis/core"
	"github.com/idemlab/aegis/ports"
)

// AudienceSession is the token-type discriminator. Validation rejects any
// token whose audience differs, so a secret shared with other token kinds
// cannot be confused into authorizing issuance.
const AudienceSession = "aegis:session"

// DefaultSessionTTL is the session token lifetime.
const DefaultSessionTTL = 10 * time.Minute

// JWTTokenizer implements the SessionTokenizer interface with HS256 JWTs
// signed by the service secret.
type JWTTokenizer struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTTokenizer creates a session tokenizer from the service secret.
func NewJWTTokenizer(secret []byte) ports.SessionTokenizer {
	return &JWTTokenizer{secret: secret, ttl: DefaultSessionTTL}
}

// NewJWTTokenizerWithTTL creates a session tokenizer with a custom lifetime.
func NewJWTTokenizerWithTTL(secret []byte, ttl time.Duration) ports.SessionTokenizer {
	return &JWTTokenizer{secret: secret, ttl: ttl}
}

// SessionTTL returns the lifetime of minted tokens.
func (j *JWTTokenizer) SessionTTL() time.Duration {
	return j.ttl
}

// Mint creates a signed session token scoped to one subject.
func (j *JWTTokenizer) Mint(subjectID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		Audience:  jwt.ClaimStrings{AudienceSession},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		ID:        uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signedToken, nil
}

// Validate parses a session token and returns the embedded session.
func (j *JWTTokenizer) Validate(tokenStr string) (*core.Session, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithAudience(AudienceSession))

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, core.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return nil, core.ErrWrongTokenType
	case err != nil:
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, core.ErrInvalidToken
	}
	// iat and exp are optional at the parse layer; a session token without
	// a lifetime is malformed.
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, core.ErrInvalidToken
	}

	session := &core.Session{
		SubjectID: claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	return session, nil
}
