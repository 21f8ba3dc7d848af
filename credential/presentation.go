package credential

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/idemlab/aegis/core"
	"github.com/idemlab/aegis/ports"
)

// Verification failure reasons. Failure is a normal business outcome, so
// these travel in the result, not in an error.
const (
	ReasonMalformedPresentation = "malformed presentation"
	ReasonInvalidProof          = "invalid proof"
	ReasonMalformedCredential   = "malformed credential"
	ReasonCredentialRevoked     = "credential revoked"
	ReasonCredentialExpired     = "credential expired"
	ReasonInvalidCredentialSig  = "invalid credential signature"
	ReasonVerified              = "presentation verified"
)

// Result is the structured outcome of presentation verification.
type Result struct {
	Verified        bool   `json:"verified"`
	Reason          string `json:"reason"`
	CredentialID    string `json:"credential_id,omitempty"`
	CredentialCount int    `json:"credential_count,omitempty"`
}

func failure(reason, credentialID string) Result {
	return Result{Verified: false, Reason: reason, CredentialID: credentialID}
}

// BuildPresentation bundles credentials into a holder-signed presentation.
// Credentials are embedded verbatim; there is no selective disclosure.
func BuildPresentation(holderID string, holderKey *ecdsa.PrivateKey, envelopes []core.Envelope) (*core.VerifiablePresentation, error) {
	if _, err := core.ParseIdentity(holderID); err != nil {
		return nil, err
	}
	if len(envelopes) == 0 {
		return nil, core.ErrEmptyPresentation
	}

	vp := &core.VerifiablePresentation{
		Context:              []string{core.CredentialsContext},
		Type:                 []string{core.TypeVerifiablePresentation},
		Holder:               holderID,
		VerifiableCredential: envelopes,
	}

	if err := SignPresentation(vp, holderKey); err != nil {
		return nil, fmt.Errorf("failed to sign presentation: %w", err)
	}
	return vp, nil
}

// Verifier screens presentations: holder proof, then each embedded
// credential against the revocation registry, its expiry, and its issuer
// signature, in list order, short-circuiting on the first failure.
//
// Verification is not transactional with concurrent revocations; a revoke
// racing an in-flight verify affects only credentials checked after it.
type Verifier struct {
	revocations ports.RevocationStore
	now         func() time.Time
}

// NewVerifier creates a presentation verifier backed by a revocation store.
func NewVerifier(revocations ports.RevocationStore) *Verifier {
	return &Verifier{revocations: revocations, now: time.Now}
}

// Verify always returns a structured result; it never fails with an error
// for a verification outcome. An error is reserved for the revocation store
// being unreachable, where neither "verified" nor "rejected" would be
// truthful.
func (v *Verifier) Verify(ctx context.Context, vp *core.VerifiablePresentation) (Result, error) {
	if vp == nil || !vp.HasType(core.TypeVerifiablePresentation) {
		return failure(ReasonMalformedPresentation, ""), nil
	}
	if len(vp.VerifiableCredential) == 0 {
		return failure(ReasonMalformedPresentation, ""), nil
	}

	if err := VerifyPresentationProof(vp); err != nil {
		return failure(ReasonInvalidProof, ""), nil
	}

	for _, env := range vp.VerifiableCredential {
		id, err := env.CredentialID()
		if err != nil {
			return failure(ReasonMalformedCredential, ""), nil
		}

		revoked, err := v.revocations.IsRevoked(ctx, id)
		if err != nil {
			return Result{}, fmt.Errorf("revocation check failed: %w", err)
		}
		if revoked {
			return failure(ReasonCredentialRevoked, id), nil
		}

		expiresAt, hasExpiry, err := env.Expiration()
		if err != nil {
			return failure(ReasonMalformedCredential, id), nil
		}
		if hasExpiry && v.now().After(expiresAt) {
			return failure(ReasonCredentialExpired, id), nil
		}

		if err := v.verifySignature(env); err != nil {
			return failure(ReasonInvalidCredentialSig, id), nil
		}
	}

	return Result{
		Verified:        true,
		Reason:          ReasonVerified,
		CredentialCount: len(vp.VerifiableCredential),
	}, nil
}

func (v *Verifier) verifySignature(env core.Envelope) error {
	switch env.Kind() {
	case core.EncodingInline:
		return VerifyCredentialProof(env.Inline)

	case core.EncodingJWT:
		issuerID, err := env.IssuerID()
		if err != nil {
			return err
		}
		issuerAddr, err := core.ParseIdentity(issuerID)
		if err != nil {
			return err
		}
		return VerifyJWT(env.JWT, issuerAddr)

	default:
		return core.ErrUnknownEncoding
	}
}
