// Package watermark persists the timestamp of the last completed sync run.
package watermark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrMalformedWatermark is returned by Load when the persisted file exists
// but cannot be interpreted. Callers must not treat it as a first run.
var ErrMalformedWatermark = errors.New("malformed watermark")

// Epoch is the watermark of an environment that has never synced.
var Epoch = time.Unix(0, 0).UTC()

// Layouts accepted when reading last_run and catalog dates. The naive forms
// are what earlier versions of the job wrote from the host clock, so Load
// reads them in the local zone. Catalog dates carry no zone and are UTC.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type fileFormat struct {
	LastRun *string `json:"last_run"`
}

// Store reads and writes the watermark file.
type Store struct {
	Path string
}

func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load returns the persisted watermark, or Epoch when the file does not exist.
func (s *Store) Load(_ context.Context) (time.Time, error) {
	// #nosec G304 -- path comes from operator configuration
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Epoch, nil
		}
		return time.Time{}, fmt.Errorf("read watermark %s: %w", s.Path, err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrMalformedWatermark, s.Path, err)
	}
	if ff.LastRun == nil {
		return time.Time{}, fmt.Errorf("%w: %s: last_run is missing", ErrMalformedWatermark, s.Path)
	}

	t, err := parseIn(*ff.LastRun, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrMalformedWatermark, s.Path, err)
	}
	return t, nil
}

// Save replaces the persisted watermark with t. The new value is written to
// a temporary file next to the target and renamed over it.
func (s *Store) Save(_ context.Context, t time.Time) error {
	value := t.UTC().Format(time.RFC3339Nano)
	data, err := json.Marshal(fileFormat{LastRun: &value})
	if err != nil {
		return fmt.Errorf("marshal watermark: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create watermark directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary watermark file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temporary watermark file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temporary watermark file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary watermark file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("rename watermark file: %w", err)
	}
	committed = true
	return nil
}

// ParseTime parses an ISO-8601 timestamp or date as found in catalog
// "modified" fields. Values without a zone are UTC.
func ParseTime(value string) (time.Time, error) {
	return parseIn(value, time.UTC)
}

func parseIn(value string, loc *time.Location) (time.Time, error) {
	var firstErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q: %w", value, firstErr)
}
