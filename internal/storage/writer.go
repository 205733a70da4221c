package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/qepting91/hospital-sync/internal/domain"
)

// HistoryRecord is one line of the run history file.
type HistoryRecord struct {
	RunAt  time.Time `json:"run_at"`
	Title  string    `json:"title"`
	Status string    `json:"status"`
	Reason string    `json:"reason,omitempty"`
	Error  string    `json:"error,omitempty"`
	Path   string    `json:"path,omitempty"`
	Rows   int       `json:"rows,omitempty"`
}

// NewHistoryRecord flattens an outcome for the history file.
func NewHistoryRecord(runAt time.Time, o domain.Outcome) HistoryRecord {
	rec := HistoryRecord{
		RunAt:  runAt.UTC(),
		Title:  o.Title,
		Status: o.Status.String(),
		Reason: o.Reason,
		Path:   o.Path,
		Rows:   o.Rows,
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	return rec
}

// HistoryWriter is the single owner of the history file. Workers hand it
// records over a channel so appends never interleave.
type HistoryWriter struct {
	FilePath string
	Logger   *slog.Logger
}

// Start appends every record received on input as NDJSON until input is
// closed, then marks wg done.
func (w *HistoryWriter) Start(wg *sync.WaitGroup, input <-chan HistoryRecord) {
	defer wg.Done()
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f, err := w.open()
	if err != nil {
		logger.Error("History file unavailable", "path", w.FilePath, "err", err)
		for range input {
			// drain so senders never block
		}
		return
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for rec := range input {
		if err := enc.Encode(rec); err != nil {
			logger.Warn("History append failed", "title", rec.Title, "err", err)
		}
	}
}

func (w *HistoryWriter) open() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(w.FilePath), 0750); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	// #nosec G304 -- path comes from operator configuration
	f, err := os.OpenFile(w.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	return f, nil
}
