package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CredentialsContext is the base JSON-LD context for credentials and
	// presentations.
	CredentialsContext = "https://www.w3.org/2018/credentials/v1"

	// TypeVerifiableCredential is the mandatory credential type tag.
	TypeVerifiableCredential = "VerifiableCredential"

	// TypeVerifiablePresentation is the mandatory presentation type tag.
	TypeVerifiablePresentation = "VerifiablePresentation"
)

// Claims is an arbitrary string-keyed assertion set. No schema is enforced;
// the issuer owns the reserved "id" key inside credentialSubject.
type Claims map[string]any

// Proof is a recoverable secp256k1 signature over the canonical JSON of the
// enclosing document with the proof itself omitted.
type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	ProofValue         string `json:"proofValue"`
}

// VerifiableCredential is a signed claim set about a subject. It is immutable
// once issued; ID is globally unique and is the sole revocation key.
type VerifiableCredential struct {
	Context           []string `json:"@context"`
	ID                string   `json:"id"`
	Type              []string `json:"type"`
	Issuer            string   `json:"issuer"`
	CredentialSubject Claims   `json:"credentialSubject"`
	IssuanceDate      string   `json:"issuanceDate"`
	ExpirationDate    string   `json:"expirationDate,omitempty"`
	Proof             *Proof   `json:"proof,omitempty"`
}

// VerifiablePresentation is a holder-signed bundle of credentials. The proof
// signer must be the key controlling Holder.
type VerifiablePresentation struct {
	Context              []string   `json:"@context"`
	Type                 []string   `json:"type"`
	Holder               string     `json:"holder"`
	VerifiableCredential []Envelope `json:"verifiableCredential"`
	Proof                *Proof     `json:"proof,omitempty"`
}

// HasType reports whether the presentation carries the given type tag.
func (vp *VerifiablePresentation) HasType(t string) bool {
	for _, vt := range vp.Type {
		if vt == t {
			return true
		}
	}
	return false
}

// Encoding discriminates the credential wire encodings an envelope can carry.
type Encoding int

const (
	EncodingInline Encoding = iota // JSON object with an embedded proof
	EncodingJWT                    // opaque compact JWT string
)

// Envelope is a tagged union over the two credential encodings. Exactly one
// arm is set. All id, issuer, and expiry extraction lives here so callers
// never type-sniff at the call site.
type Envelope struct {
	Inline *VerifiableCredential
	JWT    string
}

// NewInlineEnvelope wraps an inline-proof credential object.
func NewInlineEnvelope(vc *VerifiableCredential) Envelope {
	return Envelope{Inline: vc}
}

// NewJWTEnvelope wraps an opaque JWT-encoded credential.
func NewJWTEnvelope(token string) Envelope {
	return Envelope{JWT: token}
}

// Kind returns the encoding this envelope carries.
func (e Envelope) Kind() Encoding {
	if e.Inline != nil {
		return EncodingInline
	}
	return EncodingJWT
}

// CredentialID resolves the credential id regardless of encoding: the id
// field of an inline object, or the jti claim of a JWT credential.
func (e Envelope) CredentialID() (string, error) {
	switch {
	case e.Inline != nil:
		if e.Inline.ID == "" {
			return "", fmt.Errorf("%w: inline credential has no id", ErrUnknownEncoding)
		}
		return e.Inline.ID, nil

	case e.JWT != "":
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(e.JWT, claims); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnknownEncoding, err)
		}
		id, ok := claims["jti"].(string)
		if !ok || id == "" {
			return "", fmt.Errorf("%w: jwt credential has no jti", ErrUnknownEncoding)
		}
		return id, nil

	default:
		return "", ErrUnknownEncoding
	}
}

// Expiration returns the credential's expiration instant, if it carries one.
func (e Envelope) Expiration() (time.Time, bool, error) {
	switch {
	case e.Inline != nil:
		if e.Inline.ExpirationDate == "" {
			return time.Time{}, false, nil
		}
		t, err := time.Parse(time.RFC3339, e.Inline.ExpirationDate)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: bad expirationDate: %v", ErrUnknownEncoding, err)
		}
		return t, true, nil

	case e.JWT != "":
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(e.JWT, claims); err != nil {
			return time.Time{}, false, fmt.Errorf("%w: %v", ErrUnknownEncoding, err)
		}
		exp, err := claims.GetExpirationTime()
		if err != nil || exp == nil {
			return time.Time{}, false, nil
		}
		return exp.Time, true, nil

	default:
		return time.Time{}, false, ErrUnknownEncoding
	}
}

// IssuerID resolves the issuer identity regardless of encoding.
func (e Envelope) IssuerID() (string, error) {
	switch {
	case e.Inline != nil:
		return e.Inline.Issuer, nil

	case e.JWT != "":
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(e.JWT, claims); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnknownEncoding, err)
		}
		iss, _ := claims["iss"].(string)
		if iss == "" {
			return "", fmt.Errorf("%w: jwt credential has no issuer", ErrUnknownEncoding)
		}
		return iss, nil

	default:
		return "", ErrUnknownEncoding
	}
}

// MarshalJSON encodes the inline arm as a JSON object and the JWT arm as a
// JSON string, matching how mixed credential lists appear on the wire.
func (e Envelope) MarshalJSON() ([]byte, error) {
	switch {
	case e.Inline != nil:
		return json.Marshal(e.Inline)
	case e.JWT != "":
		return json.Marshal(e.JWT)
	default:
		return nil, ErrUnknownEncoding
	}
}

// UnmarshalJSON decodes a JSON string into the JWT arm and a JSON object into
// the inline arm.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = Envelope{JWT: s}
		return nil
	}

	var vc VerifiableCredential
	if err := json.Unmarshal(data, &vc); err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownEncoding, err)
	}
	*e = Envelope{Inline: &vc}
	return nil
}

// AuditRecord captures a credential issuance for the audit stream. It carries
// identities and the credential id only, never claim content.
type AuditRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	IssuerID     string    `json:"issuer_id"`
	SubjectID    string    `json:"subject_id"`
	CredentialID string    `json:"credential_id"`
	Types        []string  `json:"types"`
}
