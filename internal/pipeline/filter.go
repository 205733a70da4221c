package pipeline

import (
	"time"

	"github.com/qepting91/hospital-sync/internal/domain"
)

// Filter returns, in order, the entries tagged with theme whose Modified is
// strictly after watermark. Entries without a Modified date never match.
func Filter(entries []domain.CatalogEntry, watermark time.Time, theme string) []domain.CatalogEntry {
	var selected []domain.CatalogEntry
	for _, e := range entries {
		if e.Modified.IsZero() || !e.HasTheme(theme) {
			continue
		}
		if e.Modified.After(watermark) {
			selected = append(selected, e)
		}
	}
	return selected
}
