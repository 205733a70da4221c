package collector

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/qepting91/hospital-sync/internal/domain"
)

const mockURLPrefix = "mock://dataset/"

// mockModified anchors generated modification dates so repeated runs see an
// unchanged catalog.
var mockModified = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// MockClient implements domain.CatalogClient and domain.ContentFetcher with
// generated data, for exercising the pipeline without network access.
type MockClient struct {
	Datasets int
	Latency  time.Duration
}

func NewMockClient() *MockClient {
	return &MockClient{Datasets: 8, Latency: 200 * time.Millisecond}
}

func (mc *MockClient) FetchAll(ctx context.Context) ([]domain.CatalogEntry, error) {
	if err := mc.sleep(ctx); err != nil {
		return nil, err
	}

	var entries []domain.CatalogEntry
	for i := 0; i < mc.Datasets; i++ {
		theme := "Hospitals"
		if i%4 == 3 {
			theme = "Nursing homes including rehab services"
		}
		entry := domain.CatalogEntry{
			Title:       fmt.Sprintf("Simulated Hospital Dataset #%d (Mock)", i),
			Themes:      []string{theme},
			Modified:    mockModified.Add(-time.Duration(i) * time.Hour),
			DownloadURL: mockURLPrefix + strconv.Itoa(i),
		}
		if i%5 == 4 {
			entry.DownloadURL = ""
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (mc *MockClient) FetchTable(ctx context.Context, url string) (*domain.Table, error) {
	// Simulate network latency (nice for testing concurrency)
	if err := mc.sleep(ctx); err != nil {
		return nil, err
	}

	table := &domain.Table{
		Columns: []string{"Facility ID", "Facility Name", "Hospital overall rating", "Source URL"},
	}
	rows := 1 + rand.Intn(20)
	for i := 0; i < rows; i++ {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%06d", rand.Intn(999999)),
			fmt.Sprintf("SIMULATED MEDICAL CENTER %d", i),
			strconv.Itoa(1 + rand.Intn(5)),
			url,
		})
	}
	return table, nil
}

func (mc *MockClient) sleep(ctx context.Context) error {
	if mc.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(mc.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
