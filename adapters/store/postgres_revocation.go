package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/idemlab/aegis/ports"
)

// PostgresRevocationStore persists revoked credential ids in PostgreSQL.
// Each IsRevoked runs a fresh SELECT EXISTS, so revocations written by other
// instances are visible immediately.
//
// Expected schema:
//
//	CREATE TABLE IF NOT EXISTS credential_revocations (
//	    credential_id TEXT PRIMARY KEY,
//	    revoked_at    TIMESTAMPTZ NOT NULL
//	);
type PostgresRevocationStore struct {
	pool *pgxpool.Pool
}

// NewPostgresRevocationStore creates a PostgreSQL-backed revocation store.
func NewPostgresRevocationStore(pool *pgxpool.Pool) ports.RevocationStore {
	return &PostgresRevocationStore{pool: pool}
}

// Revoke inserts a credential id; an existing row is left untouched so the
// original revocation timestamp survives replays.
func (s *PostgresRevocationStore) Revoke(ctx context.Context, credentialID string) error {
	query := `
		INSERT INTO credential_revocations (credential_id, revoked_at)
		VALUES ($1, $2)
		ON CONFLICT (credential_id) DO NOTHING
	`
	if _, err := s.pool.Exec(ctx, query, credentialID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to revoke credential: %w", err)
	}
	return nil
}

// IsRevoked checks whether a credential id has a revocation row.
func (s *PostgresRevocationStore) IsRevoked(ctx context.Context, credentialID string) (bool, error) {
	var revoked bool
	query := `SELECT EXISTS (SELECT 1 FROM credential_revocations WHERE credential_id = $1)`
	if err := s.pool.QueryRow(ctx, query, credentialID).Scan(&revoked); err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return revoked, nil
}
