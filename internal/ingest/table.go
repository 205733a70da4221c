package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/qepting91/hospital-sync/internal/domain"
)

var (
	// ErrEmptyTable is returned when the content has no header row.
	ErrEmptyTable = errors.New("no header row")
	// ErrTooManyFields is returned for a row wider than the header.
	ErrTooManyFields = errors.New("more fields than header")
)

// ReadTable parses comma-delimited content into a Table. The first record is
// the header. Short rows are padded with empty values and stray quotes are
// kept as literal characters; a row with more fields than the header is an
// error.
func ReadTable(r io.Reader) (*domain.Table, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.ReuseRecord = false
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	table := &domain.Table{Columns: header}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table.Rows)+1, err)
		}
		switch {
		case len(record) > len(header):
			return nil, fmt.Errorf("read row %d: %w: got %d, want %d",
				len(table.Rows)+1, ErrTooManyFields, len(record), len(header))
		case len(record) < len(header):
			padded := make([]string, len(header))
			copy(padded, record)
			record = padded
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

// WriteTable writes table as CSV with a header row and no index column.
func WriteTable(w io.Writer, table *domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	rdr, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if rdr != '\uFEFF' {
		_ = br.UnreadRune()
	}
	return br
}
