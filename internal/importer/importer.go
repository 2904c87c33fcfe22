// Package importer reads a previously exported CSV file back into the
// ledger. The export format carries no wallet column, so the caller picks
// the wallet imported rows land in; transfer rows cannot be reconstructed
// and are skipped.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/moumensalem/masroof/internal/encoding"
	"github.com/moumensalem/masroof/internal/ledger"
)

const expectedHeader = "date,kind,category,amount,note"

type Service struct {
	state *ledger.State
}

func NewService(state *ledger.State) *Service {
	return &Service{state: state}
}

// Parse reads the CSV export into upsert params. The whole file is parsed
// before anything is returned, so a malformed row rejects the import with
// no partial result.
func Parse(r io.Reader, wallet string) ([]ledger.UpsertParams, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	cr := csv.NewReader(utf8r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing csv header", ledger.ErrBadFormat)
	}

	if strings.Join(header, ",") != expectedHeader {
		return nil, fmt.Errorf("%w: unexpected csv header %q", ledger.ErrBadFormat, strings.Join(header, ","))
	}

	var params []ledger.UpsertParams

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ledger.ErrBadFormat, line, err)
		}

		if len(record) < 4 {
			return nil, fmt.Errorf("%w: line %d: too few columns", ledger.ErrBadFormat, line)
		}

		kind := ledger.Kind(record[1])

		switch kind {
		case ledger.KindTransfer:
			// Wallet endpoints are not present in the export.
			continue
		case ledger.KindIncome, ledger.KindExpense:
		default:
			return nil, fmt.Errorf("%w: line %d: unknown kind %q", ledger.ErrBadFormat, line, record[1])
		}

		amount, err := ledger.ParseAmount(record[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		// The export never escapes delimiters, so a note containing a
		// comma arrives split across columns; glue it back together.
		note := ""
		if len(record) > 4 {
			note = strings.Join(record[4:], ",")
		}

		params = append(params, ledger.UpsertParams{
			Kind:     kind,
			Amount:   amount,
			Date:     record[0],
			Category: record[2],
			Wallet:   wallet,
			Note:     note,
		})
	}

	return params, nil
}

// Import parses the CSV and inserts every row as a new transaction in the
// given wallet. Returns the number of imported entries.
func (s *Service) Import(r io.Reader, wallet string) (int, error) {
	params, err := Parse(r, wallet)
	if err != nil {
		return 0, err
	}

	for _, p := range params {
		if _, err := s.state.Upsert(p); err != nil {
			return 0, fmt.Errorf("inserting imported row: %w", err)
		}
	}

	return len(params), nil
}
