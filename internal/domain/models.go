package domain

import (
	"context"
	"fmt"
	"time"
)

// CatalogEntry is one dataset record from the catalog listing.
// A zero Modified or empty DownloadURL means the catalog did not provide it.
type CatalogEntry struct {
	Title       string    `json:"title"`
	Themes      []string  `json:"theme"`
	Modified    time.Time `json:"modified"`
	DownloadURL string    `json:"download_url,omitempty"`
}

// HasTheme reports whether the entry is tagged with theme.
func (e CatalogEntry) HasTheme(theme string) bool {
	for _, t := range e.Themes {
		if t == theme {
			return true
		}
	}
	return false
}

// Table is a parsed delimited file: a header row and data rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Status tags the result of processing one catalog entry.
type Status int

const (
	StatusDownloaded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the per-dataset result of a sync attempt.
type Outcome struct {
	Title  string
	Status Status
	Reason string // set when Skipped
	Err    error  // set when Failed
	Path   string // object key written, set when Downloaded
	Rows   int
}

func Downloaded(title, path string, rows int) Outcome {
	return Outcome{Title: title, Status: StatusDownloaded, Path: path, Rows: rows}
}

func Skipped(title, reason string) Outcome {
	return Outcome{Title: title, Status: StatusSkipped, Reason: reason}
}

func Failed(title string, err error) Outcome {
	return Outcome{Title: title, Status: StatusFailed, Err: err}
}

// String renders the operator-facing line for the outcome.
func (o Outcome) String() string {
	switch o.Status {
	case StatusDownloaded:
		return "Downloaded and processed: " + o.Title
	case StatusSkipped:
		return fmt.Sprintf("Skipped: %s (%s)", o.Title, o.Reason)
	default:
		return fmt.Sprintf("Failed: %s - %v", o.Title, o.Err)
	}
}

// CatalogClient fetches the full dataset listing.
type CatalogClient interface {
	FetchAll(ctx context.Context) ([]CatalogEntry, error)
}

// ContentFetcher downloads and parses the tabular content at url.
type ContentFetcher interface {
	FetchTable(ctx context.Context, url string) (*Table, error)
}

// TableSink persists a table under name, replacing any previous object.
type TableSink interface {
	WriteTable(ctx context.Context, name string, table *Table) error
}
