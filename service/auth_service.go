package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/idemlab/aegis/core"
	"github.com/idemlab/aegis/credential"
	"github.com/idemlab/aegis/ports"
)

const (
	// DefaultChallengeTTL is how long an issued challenge stays valid.
	DefaultChallengeTTL = 5 * time.Minute

	// DefaultSweepInterval is how often expired challenges are removed.
	DefaultSweepInterval = 60 * time.Second
)

// AuthService owns the challenge/response protocol: it issues single-use
// challenges and exchanges a signed challenge for a session token.
type AuthService struct {
	store     ports.ChallengeStore
	tokenizer ports.SessionTokenizer

	challengeTTL  time.Duration
	sweepInterval time.Duration
}

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithChallengeTTL overrides the challenge lifetime.
func WithChallengeTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		s.challengeTTL = ttl
	}
}

// WithSweepInterval overrides the sweep cadence.
func WithSweepInterval(interval time.Duration) AuthOption {
	return func(s *AuthService) {
		s.sweepInterval = interval
	}
}

// NewAuthService creates a new authentication service.
func NewAuthService(store ports.ChallengeStore, tokenizer ports.SessionTokenizer, opts ...AuthOption) *AuthService {
	s := &AuthService{
		store:         store,
		tokenizer:     tokenizer,
		challengeTTL:  DefaultChallengeTTL,
		sweepInterval: DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChallengeTTL returns the configured challenge lifetime.
func (s *AuthService) ChallengeTTL() time.Duration {
	return s.challengeTTL
}

// SessionTTL returns the lifetime of minted session tokens.
func (s *AuthService) SessionTTL() time.Duration {
	return s.tokenizer.SessionTTL()
}

// CreateChallenge issues a fresh challenge for the subject, replacing any
// prior live one. At most one challenge is live per identity; a concurrent
// issue for the same identity races last-writer-wins.
func (s *AuthService) CreateChallenge(ctx context.Context, subjectID string) (*core.Challenge, error) {
	if _, err := core.ParseIdentity(subjectID); err != nil {
		return nil, err
	}

	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now()
	challenge := &core.Challenge{
		ID:        uuid.New().String(),
		SubjectID: subjectID,
		// The timestamp prefix guarantees uniqueness across restarts; the
		// random tail carries the entropy.
		Nonce:     fmt.Sprintf("%d.%s", now.UnixNano(), hex.EncodeToString(nonceBytes)),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}

	if err := s.store.Put(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}
	return challenge, nil
}

// consumeChallenge fetches, checks, and deletes the live challenge for a
// subject. Success removes it, so an identical replay always fails.
func (s *AuthService) consumeChallenge(ctx context.Context, subjectID, nonce string) (*core.Challenge, error) {
	challenge, err := s.store.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	if challenge.Expired(time.Now()) {
		// Expired entries are garbage either way; drop eagerly.
		_ = s.store.Delete(ctx, subjectID)
		return nil, core.ErrChallengeExpired
	}

	if challenge.Nonce != nonce {
		return nil, core.ErrChallengeMismatch
	}

	if err := s.store.Delete(ctx, subjectID); err != nil {
		return nil, fmt.Errorf("failed to consume challenge: %w", err)
	}
	return challenge, nil
}

// Login exchanges a signed challenge for a session token. The signature must
// be an EIP-191 personal-message signature over the exact nonce, made by the
// key controlling the subject identity.
func (s *AuthService) Login(ctx context.Context, subjectID, nonce, signature string) (string, error) {
	expectedAddr, err := core.ParseIdentity(subjectID)
	if err != nil {
		return "", err
	}

	if _, err := s.consumeChallenge(ctx, subjectID, nonce); err != nil {
		return "", err
	}

	recovered, err := credential.RecoverPersonalSigner(nonce, signature)
	if err != nil {
		return "", err
	}
	if recovered != expectedAddr {
		return "", core.ErrAddressMismatch
	}

	token, err := s.tokenizer.Mint(subjectID)
	if err != nil {
		return "", fmt.Errorf("failed to mint session token: %w", err)
	}
	return token, nil
}

// ValidateSession parses and checks a session token.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*core.Session, error) {
	return s.tokenizer.Validate(token)
}

// StartSweeper runs the periodic expired-challenge sweep until ctx is
// cancelled. It is the only background activity in the service.
func (s *AuthService) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if err := s.store.Sweep(ctx, now); err != nil {
					log.Printf("challenge sweep failed: %v", err)
				}
			}
		}
	}()
}
