package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qepting91/hospital-sync/internal/domain"
	"github.com/qepting91/hospital-sync/internal/normalize"
)

// Skip reasons.
const (
	ReasonMissingURLOrDate = "missing URL or date"
	ReasonUnusableTitle    = "title has no usable characters"
)

// Extension of every written dataset.
const Extension = ".csv"

// ObjectName is the output name for a dataset title, or "" when the title
// normalizes to nothing.
func ObjectName(title string) string {
	name := normalize.Name(title)
	if name == "" {
		return ""
	}
	return name + Extension
}

// Worker fetches one dataset, normalizes its headers and writes it out.
type Worker struct {
	fetcher domain.ContentFetcher
	sink    domain.TableSink
	logger  *slog.Logger
}

func NewWorker(fetcher domain.ContentFetcher, sink domain.TableSink, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{fetcher: fetcher, sink: sink, logger: logger}
}

// Process never returns an error; failures are carried in the outcome.
func (w *Worker) Process(ctx context.Context, entry domain.CatalogEntry) domain.Outcome {
	if entry.DownloadURL == "" || entry.Modified.IsZero() {
		return domain.Skipped(entry.Title, ReasonMissingURLOrDate)
	}
	name := ObjectName(entry.Title)
	if name == "" {
		return domain.Skipped(entry.Title, ReasonUnusableTitle)
	}

	table, err := w.fetcher.FetchTable(ctx, entry.DownloadURL)
	if err != nil {
		w.logger.Warn("Dataset fetch failed", "title", entry.Title, "url", entry.DownloadURL, "err", err)
		return domain.Failed(entry.Title, fmt.Errorf("fetch %s: %w", entry.DownloadURL, err))
	}

	out := &domain.Table{
		Columns: normalize.Columns(table.Columns),
		Rows:    table.Rows,
	}
	if err := w.sink.WriteTable(ctx, name, out); err != nil {
		w.logger.Warn("Dataset write failed", "title", entry.Title, "object", name, "err", err)
		return domain.Failed(entry.Title, err)
	}

	w.logger.Debug("Dataset written", "title", entry.Title, "object", name, "rows", len(out.Rows))
	return domain.Downloaded(entry.Title, name, len(out.Rows))
}
