package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/idemlab/aegis/ports"
)

// revocationDocument is the on-disk shape of the revocation list. It is kept
// deliberately human-editable: consumers must honor out-of-band edits.
type revocationDocument struct {
	Revoked   []string  `json:"revoked"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileRevocationStore persists revoked credential ids in a single JSON file.
// Every IsRevoked call re-reads the file, so edits made outside the process
// are honored immediately. An absent or malformed file reads as an empty
// revocation list, never as an error.
type FileRevocationStore struct {
	path string
	mu   sync.Mutex // serializes read-modify-write cycles within the process
}

// NewFileRevocationStore creates a file-backed revocation store at path. The
// file is created lazily on the first Revoke.
func NewFileRevocationStore(path string) ports.RevocationStore {
	return &FileRevocationStore{path: path}
}

func (s *FileRevocationStore) load() revocationDocument {
	var doc revocationDocument

	payload, err := os.ReadFile(s.path)
	if err != nil {
		return doc
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return revocationDocument{}
	}
	return doc
}

// Revoke appends a credential id to the persisted set. Revoking an already
// revoked id is a no-op. The file is replaced atomically via rename so a
// concurrent reader never observes a torn document.
func (s *FileRevocationStore) Revoke(ctx context.Context, credentialID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	for _, id := range doc.Revoked {
		if id == credentialID {
			return nil
		}
	}

	doc.Revoked = append(doc.Revoked, credentialID)
	doc.UpdatedAt = time.Now().UTC()

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal revocation list: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".revocations-*")
	if err != nil {
		return fmt.Errorf("failed to create temp revocation file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write revocation list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close revocation file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace revocation file: %w", err)
	}
	return nil
}

// IsRevoked reports whether a credential id is in the persisted set. It
// always reads current file state; there is no in-memory cache.
func (s *FileRevocationStore) IsRevoked(ctx context.Context, credentialID string) (bool, error) {
	doc := s.load()
	for _, id := range doc.Revoked {
		if id == credentialID {
			return true, nil
		}
	}
	return false, nil
}
