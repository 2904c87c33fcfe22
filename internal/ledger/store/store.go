// Package store persists the serialized ledger document under a single
// versioned key on the local filesystem. It is the durable copy that
// survives restarts; the in-memory state stays authoritative.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/moumensalem/masroof/internal/ledger"
)

// fileName is the fixed versioned key. Bumping the suffix orphans old
// payloads instead of migrating them.
const fileName = "masroof_ledger_v1.json"

type Store struct {
	path string
}

func New(dir string) *Store {
	return &Store{path: filepath.Join(dir, fileName)}
}

// Load returns the stored document, or (nil, nil) when absent. A corrupt or
// structurally invalid payload is treated as absent so startup never fails
// on bad local data.
func (s *Store) Load() (*ledger.Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading ledger file: %w", err)
	}

	var doc ledger.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		slog.Warn("discarding corrupt ledger file", "path", s.path, "error", err)
		return nil, nil
	}

	if err := doc.Validate(); err != nil {
		slog.Warn("discarding malformed ledger file", "path", s.path, "error", err)
		return nil, nil
	}

	return &doc, nil
}

// Save overwrites the entire stored value. There are no partial writes.
func (s *Store) Save(doc *ledger.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing ledger file: %w", err)
	}

	return nil
}

// Clear removes the stored document. Used by the explicit user reset.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing ledger file: %w", err)
	}

	return nil
}
