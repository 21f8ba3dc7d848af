package credential

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"

	"github.com/idemlab/aegis/core"
)

// SigningMethodES256KR implements the ES256K-R JWT algorithm: a recoverable
// secp256k1 signature over the SHA-256 of the signing string. The 65th byte
// carries the recovery id, so verification needs only the expected account
// address, not the public key.
type SigningMethodES256KR struct{}

// ES256KR is the shared ES256K-R signing method instance.
var ES256KR = &SigningMethodES256KR{}

func init() {
	jwt.RegisterSigningMethod(ES256KR.Alg(), func() jwt.SigningMethod {
		return ES256KR
	})
}

// Alg returns the algorithm identifier.
func (m *SigningMethodES256KR) Alg() string {
	return "ES256K-R"
}

// Sign produces a 65-byte recoverable signature. Key must be an
// *ecdsa.PrivateKey on the secp256k1 curve.
func (m *SigningMethodES256KR) Sign(signingString string, key interface{}) ([]byte, error) {
	privateKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, jwt.ErrInvalidKeyType
	}

	digest := sha256.Sum256([]byte(signingString))
	sig, err := gethcrypto.Sign(digest[:], privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	return sig, nil
}

// Verify recovers the signer from the signature and compares it to the
// expected account. Key must be a common.Address or *ecdsa.PublicKey.
func (m *SigningMethodES256KR) Verify(signingString string, sig []byte, key interface{}) error {
	var expected common.Address
	switch k := key.(type) {
	case common.Address:
		expected = k
	case *ecdsa.PublicKey:
		expected = gethcrypto.PubkeyToAddress(*k)
	default:
		return jwt.ErrInvalidKeyType
	}

	if len(sig) != 65 {
		return core.ErrInvalidSignature
	}

	digest := sha256.Sum256([]byte(signingString))
	recovered, err := recoverSigner(digest[:], sig)
	if err != nil {
		return core.ErrInvalidSignature
	}
	if recovered != expected {
		return core.ErrInvalidSignature
	}
	return nil
}
