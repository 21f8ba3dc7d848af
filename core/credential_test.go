package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inlineCredential(id string) *VerifiableCredential {
	return &VerifiableCredential{
		Context: []string{CredentialsContext},
		ID:      id,
		Type:    []string{TypeVerifiableCredential},
		Issuer:  "did:ethr:0x0000000000000000000000000000000000000001",
		CredentialSubject: Claims{
			"id":   "did:ethr:0x0000000000000000000000000000000000000002",
			"role": "member",
		},
		IssuanceDate: time.Now().UTC().Format(time.RFC3339),
	}
}

func jwtCredential(t *testing.T, id string, exp time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"iss": "did:ethr:0x0000000000000000000000000000000000000001",
		"jti": id,
	}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}

	// Signature validity is irrelevant for envelope extraction.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestEnvelopeCredentialID(t *testing.T) {
	t.Run("inline object", func(t *testing.T) {
		env := NewInlineEnvelope(inlineCredential("urn:uuid:inline-1"))

		id, err := env.CredentialID()
		require.NoError(t, err)
		assert.Equal(t, "urn:uuid:inline-1", id)
	})

	t.Run("jwt token", func(t *testing.T) {
		env := NewJWTEnvelope(jwtCredential(t, "urn:uuid:jwt-1", time.Time{}))

		id, err := env.CredentialID()
		require.NoError(t, err)
		assert.Equal(t, "urn:uuid:jwt-1", id)
	})

	t.Run("inline without id", func(t *testing.T) {
		vc := inlineCredential("")
		env := NewInlineEnvelope(vc)

		_, err := env.CredentialID()
		require.ErrorIs(t, err, ErrUnknownEncoding)
	})

	t.Run("garbage jwt", func(t *testing.T) {
		env := NewJWTEnvelope("not.a.jwt")

		_, err := env.CredentialID()
		require.ErrorIs(t, err, ErrUnknownEncoding)
	})

	t.Run("empty envelope", func(t *testing.T) {
		var env Envelope

		_, err := env.CredentialID()
		require.ErrorIs(t, err, ErrUnknownEncoding)
	})
}

func TestEnvelopeExpiration(t *testing.T) {
	t.Run("inline with expiry", func(t *testing.T) {
		vc := inlineCredential("urn:uuid:a")
		expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		vc.ExpirationDate = expiry.Format(time.RFC3339)

		got, ok, err := NewInlineEnvelope(vc).Expiration()
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got.Equal(expiry))
	})

	t.Run("inline without expiry", func(t *testing.T) {
		_, ok, err := NewInlineEnvelope(inlineCredential("urn:uuid:a")).Expiration()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("jwt with exp claim", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour).Truncate(time.Second)
		env := NewJWTEnvelope(jwtCredential(t, "urn:uuid:b", expiry))

		got, ok, err := env.Expiration()
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got.Equal(expiry))
	})

	t.Run("jwt without exp claim", func(t *testing.T) {
		env := NewJWTEnvelope(jwtCredential(t, "urn:uuid:c", time.Time{}))

		_, ok, err := env.Expiration()
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestEnvelopeJSONRoundTrip(t *testing.T) {
	vp := VerifiablePresentation{
		Context: []string{CredentialsContext},
		Type:    []string{TypeVerifiablePresentation},
		Holder:  "did:ethr:0x0000000000000000000000000000000000000002",
		VerifiableCredential: []Envelope{
			NewInlineEnvelope(inlineCredential("urn:uuid:inline-1")),
			NewJWTEnvelope(jwtCredential(t, "urn:uuid:jwt-1", time.Time{})),
		},
	}

	payload, err := json.Marshal(&vp)
	require.NoError(t, err)

	var decoded VerifiablePresentation
	require.NoError(t, json.Unmarshal(payload, &decoded))

	require.Len(t, decoded.VerifiableCredential, 2)
	assert.Equal(t, EncodingInline, decoded.VerifiableCredential[0].Kind())
	assert.Equal(t, EncodingJWT, decoded.VerifiableCredential[1].Kind())

	id0, err := decoded.VerifiableCredential[0].CredentialID()
	require.NoError(t, err)
	assert.Equal(t, "urn:uuid:inline-1", id0)

	id1, err := decoded.VerifiableCredential[1].CredentialID()
	require.NoError(t, err)
	assert.Equal(t, "urn:uuid:jwt-1", id1)
}

func TestPresentationHasType(t *testing.T) {
	vp := VerifiablePresentation{Type: []string{TypeVerifiablePresentation, "CustomPresentation"}}
	assert.True(t, vp.HasType(TypeVerifiablePresentation))
	assert.False(t, vp.HasType("SomethingElse"))
}
