package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/idemlab/aegis/core"
)

// Vault is a directory of sealed credential records, one JSON file each.
type Vault struct {
	dir string
}

// Open prepares a vault rooted at dir, creating the directory if needed.
func Open(dir string) (*Vault, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}
	return &Vault{dir: dir}, nil
}

// Store seals a credential under the passphrase and writes it as a new
// record. The returned name identifies the record on disk.
func (v *Vault) Store(env core.Envelope, passphrase string) (string, error) {
	rec, err := Encrypt(env, passphrase)
	if err != nil {
		return "", err
	}

	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize record: %w", err)
	}

	name := uuid.New().String() + ".json"
	if err := os.WriteFile(filepath.Join(v.dir, name), payload, 0o600); err != nil {
		return "", fmt.Errorf("failed to write record: %w", err)
	}
	return name, nil
}

// ListAll decrypts every record in the vault. Records that fail to open with
// the given passphrase are skipped and counted, not fatal: one corrupted
// entry must not hide the rest of the wallet.
func (v *Vault) ListAll(passphrase string) ([]core.Envelope, int, error) {
	entries, err := os.ReadDir(v.dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read vault directory: %w", err)
	}

	var envelopes []core.Envelope
	skipped := 0

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		payload, err := os.ReadFile(filepath.Join(v.dir, entry.Name()))
		if err != nil {
			skipped++
			continue
		}

		var rec EncryptedCredential
		if err := json.Unmarshal(payload, &rec); err != nil {
			skipped++
			continue
		}

		env, err := Decrypt(&rec, passphrase)
		if err != nil {
			skipped++
			continue
		}
		envelopes = append(envelopes, env)
	}

	return envelopes, skipped, nil
}
