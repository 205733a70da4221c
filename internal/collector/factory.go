package collector

import (
	"fmt"
	"log/slog"

	"github.com/qepting91/hospital-sync/internal/config"
	"github.com/qepting91/hospital-sync/internal/domain"
)

// NewCollector selects the catalog and content implementations for the
// configured collector mode.
func NewCollector(cfg config.Config, logger *slog.Logger) (domain.CatalogClient, domain.ContentFetcher, error) {
	switch cfg.CollectorMode {
	case config.ModeHTTP, "":
		catalog := NewCatalogClient(cfg.CatalogURL, cfg.UserAgent, cfg.HTTP.CatalogTimeout, logger)
		content := NewContentClient(cfg.UserAgent, cfg.HTTP.FetchTimeout, cfg.HTTP.FetchInterval)
		return catalog, content, nil
	case config.ModeMock:
		mock := NewMockClient()
		return mock, mock, nil
	default:
		return nil, nil, fmt.Errorf("unknown collector mode: %s (use '%s' or '%s')", cfg.CollectorMode, config.ModeHTTP, config.ModeMock)
	}
}
