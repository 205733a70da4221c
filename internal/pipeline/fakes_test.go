package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qepting91/hospital-sync/internal/domain"
)

type fakeCatalog struct {
	entries []domain.CatalogEntry
	err     error
	calls   atomic.Int32
}

func (f *fakeCatalog) FetchAll(context.Context) ([]domain.CatalogEntry, error) {
	f.calls.Add(1)
	return f.entries, f.err
}

type fakeFetcher struct {
	mu       sync.Mutex
	tables   map[string]*domain.Table
	errs     map[string]error
	delays   map[string]time.Duration
	calls    []string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		tables: make(map[string]*domain.Table),
		errs:   make(map[string]error),
		delays: make(map[string]time.Duration),
	}
}

func (f *fakeFetcher) FetchTable(ctx context.Context, url string) (*domain.Table, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, url)
	table, err, delay := f.tables[url], f.errs[url], f.delays[url]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, errors.New("no such table")
	}
	return table, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSink struct {
	mu      sync.Mutex
	written map[string]*domain.Table
	err     error
}

func newFakeSink() *fakeSink {
	return &fakeSink{written: make(map[string]*domain.Table)}
}

func (f *fakeSink) WriteTable(_ context.Context, name string, table *domain.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.written[name] = table
	return nil
}

type memStore struct {
	mu      sync.Mutex
	mark    time.Time
	loadErr error
	saves   []time.Time
}

func (m *memStore) Load(context.Context) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mark, m.loadErr
}

func (m *memStore) Save(_ context.Context, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mark = t
	m.saves = append(m.saves, t)
	return nil
}
