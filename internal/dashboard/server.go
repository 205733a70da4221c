// Package dashboard renders sync history as HTML charts, either served over
// HTTP or written once as a run report.
package dashboard

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/qepting91/hospital-sync/internal/storage"
)

// Render writes a page with an outcome breakdown and the row count of the
// latest successful download of each dataset.
func Render(w io.Writer, records []storage.HistoryRecord) error {
	// 1. Outcome breakdown
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Sync Outcomes"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)

	statusCounts := make(map[string]int)
	for _, r := range records {
		statusCounts[r.Status]++
	}
	var pieItems []opts.PieData
	for _, k := range sortedKeys(statusCounts) {
		pieItems = append(pieItems, opts.PieData{Name: k, Value: statusCounts[k]})
	}
	pie.AddSeries("Datasets", pieItems)

	// 2. Rows per dataset
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Rows Written"}))

	latest := make(map[string]storage.HistoryRecord)
	for _, r := range records {
		if r.Status != "downloaded" {
			continue
		}
		if prev, ok := latest[r.Title]; !ok || !r.RunAt.Before(prev.RunAt) {
			latest[r.Title] = r
		}
	}
	var barX []string
	var barY []opts.BarData
	for _, title := range sortedKeys(latest) {
		barX = append(barX, title)
		barY = append(barY, opts.BarData{Value: latest[title].Rows})
	}
	bar.SetXAxis(barX).AddSeries("Rows", barY)

	page := components.NewPage()
	page.AddCharts(pie, bar)
	return page.Render(w)
}

// WriteReport renders records to path, replacing any previous report.
func WriteReport(path string, records []storage.HistoryRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	// #nosec G304 -- path comes from operator configuration
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Render(f, records); err != nil {
		_ = f.Close()
		return fmt.Errorf("render report: %w", err)
	}
	return f.Close()
}

// Handler serves the rendered history file on every request.
func Handler(historyPath string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		records, err := LoadHistory(historyPath)
		if err != nil {
			slog.Error("Load history failed", "path", historyPath, "err", err)
			http.Error(w, "history unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := Render(w, records); err != nil {
			slog.Error("Render dashboard failed", "err", err)
		}
	})
}

// StartServer serves the dashboard on port until the listener fails.
func StartServer(historyPath string, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/", Handler(historyPath))
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// LoadHistory reads an NDJSON history file. A missing file is an empty
// history; undecodable lines are skipped.
func LoadHistory(path string) ([]storage.HistoryRecord, error) {
	// #nosec G304 -- path comes from operator configuration
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var records []storage.HistoryRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r storage.HistoryRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err == nil {
			records = append(records, r)
		}
	}
	return records, scanner.Err()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
