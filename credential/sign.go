// Package credential implements credential and presentation signing,
// encoding, and verification. Proofs are recoverable secp256k1 signatures
// over the EIP-191 personal-message hash of the canonical JSON of the signed
// document with its proof omitted; the signer is recovered from the
// signature and compared to the address the issuer or holder DID resolves
// to.
package credential

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/idemlab/aegis/core"
)

// ProofTypeSecp256k1Recovery identifies the proof suite used for inline
// proofs.
const ProofTypeSecp256k1Recovery = "EcdsaSecp256k1RecoverySignature2020"

const (
	proofPurposeAssertion      = "assertionMethod"
	proofPurposeAuthentication = "authentication"
)

// credentialSigningBytes returns the canonical bytes a credential proof
// covers: the JSON encoding of the credential without its proof.
func credentialSigningBytes(vc *core.VerifiableCredential) ([]byte, error) {
	unsigned := *vc
	unsigned.Proof = nil
	return json.Marshal(&unsigned)
}

// presentationSigningBytes returns the canonical bytes a presentation proof
// covers.
func presentationSigningBytes(vp *core.VerifiablePresentation) ([]byte, error) {
	unsigned := *vp
	unsigned.Proof = nil
	return json.Marshal(&unsigned)
}

func newProof(signerDID, purpose string, payload []byte, key *ecdsa.PrivateKey) (*core.Proof, error) {
	digest := accounts.TextHash(payload)
	sig, err := gethcrypto.Sign(digest, key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign proof: %w", err)
	}

	return &core.Proof{
		Type:               ProofTypeSecp256k1Recovery,
		Created:            time.Now().UTC().Format(time.RFC3339),
		VerificationMethod: signerDID + "#controller",
		ProofPurpose:       purpose,
		ProofValue:         hexutil.Encode(sig),
	}, nil
}

// recoverSigner recovers the signing address from a 65-byte recoverable
// signature. Recovery ids 27/28 produced by wallet personal_sign are
// normalized to 0/1.
func recoverSigner(digest, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, core.ErrInvalidSignature
	}

	normalized := make([]byte, 65)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	pub, err := gethcrypto.SigToPub(digest, normalized)
	if err != nil {
		return common.Address{}, core.ErrInvalidSignature
	}
	return gethcrypto.PubkeyToAddress(*pub), nil
}

// RecoverPersonalSigner recovers the account that personal-signed message.
func RecoverPersonalSigner(message string, sigHex string) (common.Address, error) {
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}
	return recoverSigner(accounts.TextHash([]byte(message)), sig)
}

// SignCredential attaches an assertion proof signed by the issuer key. The
// credential's issuer field must already name the issuer DID.
func SignCredential(vc *core.VerifiableCredential, issuerKey *ecdsa.PrivateKey) error {
	if issuerKey == nil {
		return core.ErrMissingIssuerKey
	}

	payload, err := credentialSigningBytes(vc)
	if err != nil {
		return fmt.Errorf("failed to canonicalize credential: %w", err)
	}

	proof, err := newProof(vc.Issuer, proofPurposeAssertion, payload, issuerKey)
	if err != nil {
		return err
	}
	vc.Proof = proof
	return nil
}

// VerifyCredentialProof checks an inline credential proof against the
// credential's own issuer identity.
func VerifyCredentialProof(vc *core.VerifiableCredential) error {
	if vc.Proof == nil || vc.Proof.ProofValue == "" {
		return core.ErrInvalidSignature
	}

	issuerAddr, err := core.ParseIdentity(vc.Issuer)
	if err != nil {
		return err
	}

	payload, err := credentialSigningBytes(vc)
	if err != nil {
		return fmt.Errorf("failed to canonicalize credential: %w", err)
	}

	sig, err := hexutil.Decode(vc.Proof.ProofValue)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}

	recovered, err := recoverSigner(accounts.TextHash(payload), sig)
	if err != nil {
		return err
	}
	if recovered != issuerAddr {
		return core.ErrInvalidSignature
	}
	return nil
}

// SignPresentation attaches an authentication proof signed by the holder key.
func SignPresentation(vp *core.VerifiablePresentation, holderKey *ecdsa.PrivateKey) error {
	payload, err := presentationSigningBytes(vp)
	if err != nil {
		return fmt.Errorf("failed to canonicalize presentation: %w", err)
	}

	proof, err := newProof(vp.Holder, proofPurposeAuthentication, payload, holderKey)
	if err != nil {
		return err
	}
	vp.Proof = proof
	return nil
}

// VerifyPresentationProof checks that the presentation proof was signed by
// the key controlling the holder identity.
func VerifyPresentationProof(vp *core.VerifiablePresentation) error {
	if vp.Proof == nil || vp.Proof.ProofValue == "" {
		return core.ErrInvalidSignature
	}

	holderAddr, err := core.ParseIdentity(vp.Holder)
	if err != nil {
		return err
	}

	payload, err := presentationSigningBytes(vp)
	if err != nil {
		return fmt.Errorf("failed to canonicalize presentation: %w", err)
	}

	sig, err := hexutil.Decode(vp.Proof.ProofValue)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}

	recovered, err := recoverSigner(accounts.TextHash(payload), sig)
	if err != nil {
		return err
	}
	if recovered != holderAddr {
		return core.ErrInvalidSignature
	}
	return nil
}
