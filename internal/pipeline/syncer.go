package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/qepting91/hospital-sync/internal/domain"
)

// ErrDuplicateName marks an entry whose output name is already taken by an
// earlier entry in the same batch.
var ErrDuplicateName = errors.New("duplicate output name")

// DefaultWorkers is the pool size used when Options.Workers is not positive.
const DefaultWorkers = 5

// WatermarkStore persists the last sync time.
type WatermarkStore interface {
	Load(ctx context.Context) (time.Time, error)
	Save(ctx context.Context, t time.Time) error
}

// Options tunes a Syncer.
type Options struct {
	Theme   string
	Workers int
	// Observer, if set, is called from worker goroutines as each outcome
	// is produced. It must be safe for concurrent use.
	Observer func(domain.Outcome)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Syncer runs the incremental sync.
type Syncer struct {
	catalog domain.CatalogClient
	worker  *Worker
	store   WatermarkStore
	opts    Options
	logger  *slog.Logger
}

func NewSyncer(catalog domain.CatalogClient, worker *Worker, store WatermarkStore, opts Options, logger *slog.Logger) *Syncer {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{catalog: catalog, worker: worker, store: store, opts: opts, logger: logger}
}

type job struct {
	index int
	entry domain.CatalogEntry
}

// Run performs one sync and returns one outcome per selected entry, in
// catalog order. The watermark advances once every selected entry has been
// attempted, whatever the individual outcomes. A cancelled run returns the
// outcomes gathered so far with the context error and leaves the watermark
// alone.
func (s *Syncer) Run(ctx context.Context) ([]domain.Outcome, error) {
	mark, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watermark: %w", err)
	}

	entries, err := s.catalog.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}

	selected := Filter(entries, mark, s.opts.Theme)
	s.logger.Info("Starting sync cycle",
		"catalog_entries", len(entries),
		"selected", len(selected),
		"theme", s.opts.Theme,
		"watermark", mark.Format(time.RFC3339),
		"workers", s.opts.Workers)

	outcomes := s.dispatch(ctx, selected)

	if err := ctx.Err(); err != nil {
		return outcomes, fmt.Errorf("sync interrupted, watermark kept at %s: %w", mark.Format(time.RFC3339), err)
	}

	next := s.opts.Now().UTC()
	if next.Before(mark) {
		s.logger.Warn("Clock is behind the stored watermark; keeping it", "now", next, "watermark", mark)
		next = mark
	}
	if err := s.store.Save(ctx, next); err != nil {
		return outcomes, fmt.Errorf("save watermark: %w", err)
	}
	s.logger.Info("Watermark advanced", "watermark", next.Format(time.RFC3339Nano))
	return outcomes, nil
}

func (s *Syncer) dispatch(ctx context.Context, selected []domain.CatalogEntry) []domain.Outcome {
	outcomes := make([]domain.Outcome, len(selected))
	jobQueue := make(chan job, len(selected))

	claimed := make(map[string]bool, len(selected))
	for i, e := range selected {
		if name := ObjectName(e.Title); name != "" && e.DownloadURL != "" {
			if claimed[name] {
				outcomes[i] = domain.Failed(e.Title, fmt.Errorf("%w: %s", ErrDuplicateName, name))
				s.observe(outcomes[i])
				continue
			}
			claimed[name] = true
		}
		jobQueue <- job{index: i, entry: e}
	}
	close(jobQueue)

	var wg sync.WaitGroup
	for i := 0; i < min(s.opts.Workers, len(jobQueue)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobQueue {
				var o domain.Outcome
				select {
				case <-ctx.Done():
					o = domain.Failed(j.entry.Title, ctx.Err())
				default:
					o = s.worker.Process(ctx, j.entry)
				}
				outcomes[j.index] = o
				s.observe(o)
			}
		}()
	}
	wg.Wait()
	return outcomes
}

func (s *Syncer) observe(o domain.Outcome) {
	if s.opts.Observer != nil {
		s.opts.Observer(o)
	}
}
