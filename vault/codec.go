// Package vault provides passphrase-based at-rest protection for credentials
// held client-side. Keys are derived with PBKDF2-SHA256 and records are
// sealed with AES-256-GCM; the derivation parameters are package constants so
// two builds of the software always agree on them.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/idemlab/aegis/core"
)

const (
	// Iterations is the PBKDF2 iteration count. Fixed, never caller-supplied.
	Iterations = 310_000

	// SaltSize is the per-record random salt length in bytes.
	SaltSize = 16

	// KeySize selects AES-256.
	KeySize = 32
)

// ErrWrongPassphraseOrCorrupted is the single failure every decryption
// problem collapses to. Distinguishing a wrong passphrase from a corrupted
// record would hand an attacker an oracle, so we deliberately do not.
var ErrWrongPassphraseOrCorrupted = errors.New("wrong passphrase or corrupted record")

// EncryptedCredential is a sealed credential record. Salt and IV are public;
// the passphrase is what protects the payload.
type EncryptedCredential struct {
	CipherText string `json:"cipher_text"`
	Salt       string `json:"salt"`
	IV         string `json:"iv"`
}

// DeriveKey stretches a passphrase into an AES-256 key with PBKDF2-SHA256.
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, Iterations, KeySize, sha256.New)
}

func newAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals a credential envelope under a passphrase. A fresh salt and
// IV are drawn per call and never reused.
func Encrypt(env core.Envelope, passphrase string) (*EncryptedCredential, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize credential: %w", err)
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	iv := make([]byte, aead.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := aead.Seal(nil, iv, payload, nil)

	return &EncryptedCredential{
		CipherText: base64.StdEncoding.EncodeToString(sealed),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		IV:         base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// Decrypt opens a sealed record. Every failure mode returns
// ErrWrongPassphraseOrCorrupted.
func Decrypt(rec *EncryptedCredential, passphrase string) (core.Envelope, error) {
	var env core.Envelope

	sealed, err := base64.StdEncoding.DecodeString(rec.CipherText)
	if err != nil {
		return env, ErrWrongPassphraseOrCorrupted
	}
	salt, err := base64.StdEncoding.DecodeString(rec.Salt)
	if err != nil {
		return env, ErrWrongPassphraseOrCorrupted
	}
	iv, err := base64.StdEncoding.DecodeString(rec.IV)
	if err != nil {
		return env, ErrWrongPassphraseOrCorrupted
	}

	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return env, ErrWrongPassphraseOrCorrupted
	}
	if len(iv) != aead.NonceSize() {
		return env, ErrWrongPassphraseOrCorrupted
	}

	payload, err := aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return env, ErrWrongPassphraseOrCorrupted
	}

	if err := json.Unmarshal(payload, &env); err != nil {
		return env, ErrWrongPassphraseOrCorrupted
	}
	return env, nil
}
