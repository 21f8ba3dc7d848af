package credential

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"

	"github.com/idemlab/aegis/core"
)

// JWTClaims is the JWT-VC claim mapping: registered claims carry the
// identities and validity window, the vc claim carries everything else.
type JWTClaims struct {
	jwt.RegisteredClaims
	VC map[string]any `json:"vc"`
}

// EncodeJWT renders a credential as an opaque ES256K-R compact JWT. The
// inline proof, if any, is not carried over; the JWT signature is the proof.
func EncodeJWT(vc *core.VerifiableCredential, issuerKey *ecdsa.PrivateKey) (string, error) {
	if issuerKey == nil {
		return "", core.ErrMissingIssuerKey
	}

	issuedAt, err := time.Parse(time.RFC3339, vc.IssuanceDate)
	if err != nil {
		return "", fmt.Errorf("bad issuanceDate: %w", err)
	}

	subject, _ := vc.CredentialSubject["id"].(string)

	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    vc.Issuer,
			Subject:   subject,
			ID:        vc.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
		VC: map[string]any{
			"@context":          vc.Context,
			"type":              vc.Type,
			"credentialSubject": vc.CredentialSubject,
		},
	}

	if vc.ExpirationDate != "" {
		expiresAt, err := time.Parse(time.RFC3339, vc.ExpirationDate)
		if err != nil {
			return "", fmt.Errorf("bad expirationDate: %w", err)
		}
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	token := jwt.NewWithClaims(ES256KR, claims)

	signed, err := token.SignedString(issuerKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign credential jwt: %w", err)
	}
	return signed, nil
}

// VerifyJWT checks a JWT credential's signature against the expected issuer
// account. Expiry is deliberately not enforced here; the presentation
// verifier owns the expiry decision so it can report it as a distinct
// outcome.
func VerifyJWT(tokenStr string, issuerAddr common.Address) error {
	_, err := jwt.ParseWithClaims(tokenStr, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*SigningMethodES256KR); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return issuerAddr, nil
	}, jwt.WithoutClaimsValidation())

	if err != nil {
		if errors.Is(err, core.ErrInvalidSignature) {
			return core.ErrInvalidSignature
		}
		return fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}
	return nil
}
