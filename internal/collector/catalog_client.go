package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/qepting91/hospital-sync/internal/domain"
	"github.com/qepting91/hospital-sync/internal/watermark"
)

// ErrUnexpectedStatus is returned for any non-2xx HTTP response.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

const defaultUserAgent = "hospital-sync/1.0"

// CatalogClient reads the dataset listing from a DCAT-style metastore
// endpoint such as the CMS provider-data API.
type CatalogClient struct {
	httpClient *http.Client
	url        string
	userAgent  string
	logger     *slog.Logger
}

type catalogItem struct {
	Title        string   `json:"title"`
	Theme        []string `json:"theme"`
	Modified     string   `json:"modified"`
	Distribution []struct {
		DownloadURL string `json:"downloadURL"`
	} `json:"distribution"`
}

type catalogResponse struct {
	Dataset []catalogItem `json:"dataset"`
}

func NewCatalogClient(url, userAgent string, timeout time.Duration, logger *slog.Logger) *CatalogClient {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// FetchAll issues a single GET for the whole listing. The body may be an
// object with a "dataset" array or a bare array of entries.
func (cc *CatalogClient) FetchAll(ctx context.Context) ([]domain.CatalogEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cc.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("User-Agent", cc.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := cc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch catalog: %w: HTTP %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}

	var items []catalogItem
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &items)
	} else {
		var cr catalogResponse
		err = json.Unmarshal(body, &cr)
		items = cr.Dataset
	}
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	entries := make([]domain.CatalogEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, cc.toEntry(item))
	}
	return entries, nil
}

func (cc *CatalogClient) toEntry(item catalogItem) domain.CatalogEntry {
	entry := domain.CatalogEntry{
		Title:  item.Title,
		Themes: item.Theme,
	}
	if entry.Title == "" {
		entry.Title = "unknown"
	}
	if len(item.Distribution) > 0 {
		entry.DownloadURL = item.Distribution[0].DownloadURL
	}
	if item.Modified != "" {
		modified, err := watermark.ParseTime(item.Modified)
		if err != nil {
			cc.logger.Warn("Ignoring unparsable modified date", "title", entry.Title, "modified", item.Modified, "err", err)
		} else {
			entry.Modified = modified
		}
	}
	return entry
}
