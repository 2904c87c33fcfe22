// Package export produces the user-facing data files: CSV for spreadsheets
// and JSON backups, plus the restore path back from a backup.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/moumensalem/masroof/internal/ledger"
)

// csvHeader is written after a UTF-8 byte-order mark so spreadsheet apps
// pick the right encoding.
const csvHeader = "date,kind,category,amount,note"

// Syncer schedules a cloud push after a restore, the same as any other
// mutation would.
type Syncer interface {
	Schedule()
}

// Persister saves the document to the local store.
type Persister interface {
	Save(doc *ledger.Document) error
}

type Service struct {
	state *ledger.State
	local Persister
	sync  Syncer
}

func NewService(state *ledger.State, local Persister, sync Syncer) *Service {
	return &Service{state: state, local: local, sync: sync}
}

// CSV renders the transaction log in entry order. Delimiters inside notes
// and categories are written as-is, matching the exported format of earlier
// releases; the importer compensates on read.
func (s *Service) CSV() []byte {
	doc := s.state.Snapshot()

	var sb strings.Builder

	sb.WriteString("\ufeff")
	sb.WriteString(csvHeader)
	sb.WriteByte('\n')

	for _, t := range doc.Transactions {
		fmt.Fprintf(&sb, "%s,%s,%s,%s,%s\n", t.Date, t.Kind, t.Category, ledger.FormatAmount(t.Amount), t.Note)
	}

	return []byte(sb.String())
}

// WriteCSV writes the CSV export to the given path.
func (s *Service) WriteCSV(path string) error {
	if err := os.WriteFile(path, s.CSV(), 0o644); err != nil {
		return fmt.Errorf("writing csv export: %w", err)
	}

	return nil
}

// Backup serializes the full ledger document.
func (s *Service) Backup() ([]byte, error) {
	raw, err := json.Marshal(s.state.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encoding backup: %w", err)
	}

	return raw, nil
}

// WriteBackup writes a JSON backup to the given path.
func (s *Service) WriteBackup(path string) error {
	raw, err := s.Backup()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}

	return nil
}

// Restore replaces the ledger with the backup read from r. The payload must
// parse as JSON and carry both the transactions and config containers;
// otherwise nothing changes and the file contents are discarded. A
// successful restore persists locally and schedules a cloud sync.
func (s *Service) Restore(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading backup: %w", err)
	}

	var doc ledger.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrBadFormat, err)
	}

	if err := s.state.Replace(&doc); err != nil {
		return err
	}

	if err := s.local.Save(s.state.Snapshot()); err != nil {
		return fmt.Errorf("persisting restored ledger: %w", err)
	}

	s.sync.Schedule()

	return nil
}

// RestoreFile is Restore reading from a file path.
func (s *Service) RestoreFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening backup: %w", err)
	}
	defer f.Close()

	return s.Restore(f)
}
