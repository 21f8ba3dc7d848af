package service

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"time"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"github.com/idemlab/aegis/core"
	"github.com/idemlab/aegis/credential"
	"github.com/idemlab/aegis/ports"
)

// DefaultValidityDays is applied when an issuance request does not name a
// validity period.
const DefaultValidityDays = 365

// IssuerService builds and signs verifiable credentials for
// session-authenticated subjects.
type IssuerService struct {
	signingKey  *ecdsa.PrivateKey
	issuerID    string
	tokenizer   ports.SessionTokenizer
	revocations ports.RevocationStore
	audit       ports.AuditPublisher
}

// NewIssuerService creates a credential issuer. A nil signing key is a
// configuration error; callers must refuse to start on it rather than serve
// degraded requests.
func NewIssuerService(
	signingKey *ecdsa.PrivateKey,
	tokenizer ports.SessionTokenizer,
	revocations ports.RevocationStore,
	audit ports.AuditPublisher,
) (*IssuerService, error) {
	if signingKey == nil {
		return nil, core.ErrMissingIssuerKey
	}

	return &IssuerService{
		signingKey:  signingKey,
		issuerID:    core.IdentityFromAddress(gethcrypto.PubkeyToAddress(signingKey.PublicKey)),
		tokenizer:   tokenizer,
		revocations: revocations,
		audit:       audit,
	}, nil
}

// IssuerID returns the issuer's own identity, derived from the signing key.
func (s *IssuerService) IssuerID() string {
	return s.issuerID
}

// Issue validates the session token, checks the requested subject against
// the embedded one, and returns a signed credential. The reserved "id" key
// inside credentialSubject is always overwritten with the subject identity;
// caller-supplied values for it are discarded.
func (s *IssuerService) Issue(ctx context.Context, sessionToken, subjectID string, claims core.Claims, validityDays int) (*core.VerifiableCredential, error) {
	session, err := s.tokenizer.Validate(sessionToken)
	if err != nil {
		return nil, err
	}

	if _, err := core.ParseIdentity(subjectID); err != nil {
		return nil, err
	}
	if !core.SameIdentity(session.SubjectID, subjectID) {
		return nil, core.ErrSubjectMismatch
	}

	if claims == nil {
		return nil, core.ErrNilClaims
	}
	if validityDays <= 0 {
		validityDays = DefaultValidityDays
	}

	subject := make(core.Claims, len(claims)+1)
	for k, v := range claims {
		subject[k] = v
	}
	subject["id"] = subjectID

	now := time.Now().UTC()
	vc := &core.VerifiableCredential{
		Context:           []string{core.CredentialsContext},
		ID:                "urn:uuid:" + uuid.New().String(),
		Type:              []string{core.TypeVerifiableCredential},
		Issuer:            s.issuerID,
		CredentialSubject: subject,
		IssuanceDate:      now.Format(time.RFC3339),
		ExpirationDate:    now.AddDate(0, 0, validityDays).Format(time.RFC3339),
	}

	if err := credential.SignCredential(vc, s.signingKey); err != nil {
		return nil, fmt.Errorf("failed to sign credential: %w", err)
	}

	record := core.AuditRecord{
		Timestamp:    now,
		IssuerID:     s.issuerID,
		SubjectID:    subjectID,
		CredentialID: vc.ID,
		Types:        vc.Type,
	}
	if err := s.audit.PublishIssuance(ctx, record); err != nil {
		// The credential is already issued; losing one audit message is
		// preferable to failing the issuance.
		log.Printf("failed to publish issuance audit record: %v", err)
	}

	return vc, nil
}

// Revoke invalidates a credential id. Idempotent; there is no un-revoke.
func (s *IssuerService) Revoke(ctx context.Context, credentialID string) error {
	return s.revocations.Revoke(ctx, credentialID)
}

// IsRevoked reports the current revocation state of a credential id.
func (s *IssuerService) IsRevoked(ctx context.Context, credentialID string) (bool, error) {
	return s.revocations.IsRevoked(ctx, credentialID)
}
