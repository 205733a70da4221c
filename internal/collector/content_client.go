package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/qepting91/hospital-sync/internal/domain"
	"github.com/qepting91/hospital-sync/internal/ingest"
)

// ContentClient downloads dataset files and parses them as CSV.
type ContentClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// NewContentClient builds a fetcher whose requests are spaced at least
// interval apart across all callers. A zero interval disables pacing.
func NewContentClient(userAgent string, timeout, interval time.Duration) *ContentClient {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &ContentClient{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		userAgent:  userAgent,
	}
}

func (cc *ContentClient) FetchTable(ctx context.Context, url string) (*domain.Table, error) {
	// Wait for token
	if err := cc.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", cc.userAgent)

	resp, err := cc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	table, err := ingest.ReadTable(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return table, nil
}
