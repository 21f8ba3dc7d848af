package credential

import (
	"strings"
	"testing"
	"time"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idemlab/aegis/core"
)

func TestEncodeJWTRoundTrip(t *testing.T) {
	issuer := newTestActor(t)
	holder := newTestActor(t)
	issuerAddr := gethcrypto.PubkeyToAddress(issuer.key.PublicKey)

	vc := issuer.issue(t, holder.did, "urn:uuid:jwt-1", time.Now().Add(time.Hour))

	token, err := EncodeJWT(vc, issuer.key)
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(token, ".")))

	require.NoError(t, VerifyJWT(token, issuerAddr))

	claims := &JWTClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, vc.ID, claims.ID)
	assert.Equal(t, vc.Issuer, claims.Issuer)
	assert.Equal(t, holder.did, claims.Subject)
	assert.Equal(t, "member", claims.VC["credentialSubject"].(map[string]any)["role"])
}

func TestEncodeJWTRequiresKey(t *testing.T) {
	issuer := newTestActor(t)
	holder := newTestActor(t)
	vc := issuer.issue(t, holder.did, "urn:uuid:jwt-1", time.Time{})

	_, err := EncodeJWT(vc, nil)
	require.ErrorIs(t, err, core.ErrMissingIssuerKey)
}

func TestVerifyJWTRejectsWrongIssuer(t *testing.T) {
	issuer := newTestActor(t)
	other := newTestActor(t)
	holder := newTestActor(t)

	vc := issuer.issue(t, holder.did, "urn:uuid:jwt-1", time.Time{})
	token, err := EncodeJWT(vc, issuer.key)
	require.NoError(t, err)

	err = VerifyJWT(token, gethcrypto.PubkeyToAddress(other.key.PublicKey))
	require.ErrorIs(t, err, core.ErrInvalidSignature)
}

func TestVerifyJWTRejectsTamperedPayload(t *testing.T) {
	issuer := newTestActor(t)
	holder := newTestActor(t)
	issuerAddr := gethcrypto.PubkeyToAddress(issuer.key.PublicKey)

	vc := issuer.issue(t, holder.did, "urn:uuid:jwt-1", time.Time{})
	token, err := EncodeJWT(vc, issuer.key)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forged, err := EncodeJWT(issuer.issue(t, holder.did, "urn:uuid:jwt-2", time.Time{}), issuer.key)
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	// Splice the payload of one token onto the signature of another.
	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]
	err = VerifyJWT(spliced, issuerAddr)
	require.ErrorIs(t, err, core.ErrInvalidSignature)
}

func TestES256KRSignVerify(t *testing.T) {
	actor := newTestActor(t)
	addr := gethcrypto.PubkeyToAddress(actor.key.PublicKey)

	sig, err := ES256KR.Sign("header.payload", actor.key)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	require.NoError(t, ES256KR.Verify("header.payload", sig, addr))
	require.NoError(t, ES256KR.Verify("header.payload", sig, &actor.key.PublicKey))

	require.ErrorIs(t, ES256KR.Verify("header.tampered", sig, addr), core.ErrInvalidSignature)
	require.ErrorIs(t, ES256KR.Verify("header.payload", sig[:64], addr), core.ErrInvalidSignature)

	require.ErrorIs(t, ES256KR.Verify("header.payload", sig, "not-a-key"), jwt.ErrInvalidKeyType)
	_, err = ES256KR.Sign("header.payload", "not-a-key")
	require.ErrorIs(t, err, jwt.ErrInvalidKeyType)
}
