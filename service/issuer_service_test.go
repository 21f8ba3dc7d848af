package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idemlab/aegis/adapters/store"
	"github.com/idemlab/aegis/adapters/tokenizer"
	"github.com/idemlab/aegis/core"
	"github.com/idemlab/aegis/credential"
	"github.com/idemlab/aegis/ports"
)

type capturingPublisher struct {
	records []core.AuditRecord
}

func (p *capturingPublisher) PublishIssuance(ctx context.Context, record core.AuditRecord) error {
	p.records = append(p.records, record)
	return nil
}

type issuerFixture struct {
	svc       *IssuerService
	tokenizer ports.SessionTokenizer
	audit     *capturingPublisher
}

func newIssuerFixture(t *testing.T) issuerFixture {
	t.Helper()

	issuer := newTestIdentity(t)
	tk := tokenizer.NewJWTTokenizer(sessionSecret)
	audit := &capturingPublisher{}
	revocations := store.NewFileRevocationStore(filepath.Join(t.TempDir(), "revocations.json"))

	svc, err := NewIssuerService(issuer.key, tk, revocations, audit)
	require.NoError(t, err)

	return issuerFixture{svc: svc, tokenizer: tk, audit: audit}
}

func TestNewIssuerServiceRequiresSigningKey(t *testing.T) {
	_, err := NewIssuerService(nil, tokenizer.NewJWTTokenizer(sessionSecret), nil, nil)
	require.ErrorIs(t, err, core.ErrMissingIssuerKey)
}

func TestIssueSignedCredential(t *testing.T) {
	ctx := context.Background()
	fx := newIssuerFixture(t)
	holder := newTestIdentity(t)

	token, err := fx.tokenizer.Mint(holder.did)
	require.NoError(t, err)

	claims := core.Claims{"role": "member", "tier": "gold"}
	vc, err := fx.svc.Issue(ctx, token, holder.did, claims, 30)
	require.NoError(t, err)

	assert.Contains(t, vc.ID, "urn:uuid:")
	assert.Equal(t, fx.svc.IssuerID(), vc.Issuer)
	assert.Equal(t, []string{core.TypeVerifiableCredential}, vc.Type)
	assert.Equal(t, holder.did, vc.CredentialSubject["id"])
	assert.Equal(t, "member", vc.CredentialSubject["role"])

	issuedAt, err := time.Parse(time.RFC3339, vc.IssuanceDate)
	require.NoError(t, err)
	expiresAt, err := time.Parse(time.RFC3339, vc.ExpirationDate)
	require.NoError(t, err)
	assert.WithinDuration(t, issuedAt.AddDate(0, 0, 30), expiresAt, time.Second)

	require.NotNil(t, vc.Proof)
	require.NoError(t, credential.VerifyCredentialProof(vc))
}

func TestIssueDefaultsValidity(t *testing.T) {
	ctx := context.Background()
	fx := newIssuerFixture(t)
	holder := newTestIdentity(t)

	token, err := fx.tokenizer.Mint(holder.did)
	require.NoError(t, err)

	vc, err := fx.svc.Issue(ctx, token, holder.did, core.Claims{}, 0)
	require.NoError(t, err)

	issuedAt, err := time.Parse(time.RFC3339, vc.IssuanceDate)
	require.NoError(t, err)
	expiresAt, err := time.Parse(time.RFC3339, vc.ExpirationDate)
	require.NoError(t, err)
	assert.WithinDuration(t, issuedAt.AddDate(0, 0, DefaultValidityDays), expiresAt, time.Second)
}

// A session minted for A must never issue for B.
func TestIssueRejectsSubjectMismatch(t *testing.T) {
	ctx := context.Background()
	fx := newIssuerFixture(t)
	alice := newTestIdentity(t)
	bob := newTestIdentity(t)

	token, err := fx.tokenizer.Mint(alice.did)
	require.NoError(t, err)

	_, err = fx.svc.Issue(ctx, token, bob.did, core.Claims{}, 0)
	require.ErrorIs(t, err, core.ErrSubjectMismatch)
	assert.Empty(t, fx.audit.records)
}

func TestIssueRejectsInvalidSession(t *testing.T) {
	ctx := context.Background()
	fx := newIssuerFixture(t)
	holder := newTestIdentity(t)

	_, err := fx.svc.Issue(ctx, "not-a-token", holder.did, core.Claims{}, 0)
	require.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestIssueRejectsNilClaims(t *testing.T) {
	ctx := context.Background()
	fx := newIssuerFixture(t)
	holder := newTestIdentity(t)

	token, err := fx.tokenizer.Mint(holder.did)
	require.NoError(t, err)

	_, err = fx.svc.Issue(ctx, token, holder.did, nil, 0)
	require.ErrorIs(t, err, core.ErrNilClaims)
}

// The reserved "id" claim belongs to the issuer; caller values are discarded.
func TestIssueOverwritesReservedIDClaim(t *testing.T) {
	ctx := context.Background()
	fx := newIssuerFixture(t)
	holder := newTestIdentity(t)

	token, err := fx.tokenizer.Mint(holder.did)
	require.NoError(t, err)

	vc, err := fx.svc.Issue(ctx, token, holder.did, core.Claims{"id": "did:ethr:0x0000000000000000000000000000000000000bad"}, 0)
	require.NoError(t, err)
	assert.Equal(t, holder.did, vc.CredentialSubject["id"])
}

func TestIssuePublishesAuditRecordWithoutClaims(t *testing.T) {
	ctx := context.Background()
	fx := newIssuerFixture(t)
	holder := newTestIdentity(t)

	token, err := fx.tokenizer.Mint(holder.did)
	require.NoError(t, err)

	vc, err := fx.svc.Issue(ctx, token, holder.did, core.Claims{"ssn": "000-00-0000"}, 0)
	require.NoError(t, err)

	require.Len(t, fx.audit.records, 1)
	record := fx.audit.records[0]
	assert.Equal(t, fx.svc.IssuerID(), record.IssuerID)
	assert.Equal(t, holder.did, record.SubjectID)
	assert.Equal(t, vc.ID, record.CredentialID)
	assert.Equal(t, vc.Type, record.Types)
}

func TestRevokePassthrough(t *testing.T) {
	ctx := context.Background()
	fx := newIssuerFixture(t)

	revoked, err := fx.svc.IsRevoked(ctx, "urn:uuid:abc")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, fx.svc.Revoke(ctx, "urn:uuid:abc"))

	revoked, err = fx.svc.IsRevoked(ctx, "urn:uuid:abc")
	require.NoError(t, err)
	assert.True(t, revoked)
}
