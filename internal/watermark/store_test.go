package watermark

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissingFileReturnsEpoch(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "last_run.json"))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Equal(Epoch), "got %v", got)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "state", "last_run.json"))
	want := time.Date(2025, 3, 14, 15, 9, 26, 535897932, time.UTC)

	require.NoError(t, store.Save(context.Background(), want))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, want.Equal(got), "want %v, got %v", want, got)
}

func TestStore_SaveReplacesPreviousValue(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "last_run.json"))
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

	require.NoError(t, store.Save(context.Background(), first))
	require.NoError(t, store.Save(context.Background(), second))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, second.Equal(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, "last_run.json", entries[0].Name())
}

func TestStore_SaveWritesUTC(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "last_run.json")
	store := NewStore(path)
	loc := time.FixedZone("EST", -5*60*60)

	require.NoError(t, store.Save(context.Background(), time.Date(2024, 2, 1, 7, 0, 0, 0, loc)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_run":"2024-02-01T12:00:00Z"}`, string(data))
}

func TestStore_LoadLegacyNaiveTimestamp(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "last_run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"last_run": "2024-05-08T10:11:12.345678"}`), 0600))

	got, err := NewStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 5, 8, 10, 11, 12, 345678000, time.Local).Equal(got), "got %v", got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestStore_LoadZonedTimestampIgnoresLocalZone(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "last_run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"last_run": "2024-05-08T10:11:12+02:00"}`), 0600))

	got, err := NewStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 5, 8, 8, 11, 12, 0, time.UTC).Equal(got), "got %v", got)
}

func TestStore_LoadMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "yesterday"},
		{name: "missing last_run", content: `{"other": "2024-01-01T00:00:00Z"}`},
		{name: "unparsable timestamp", content: `{"last_run": "last tuesday"}`},
		{name: "wrong type", content: `{"last_run": 12345}`},
		{name: "empty file", content: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "last_run.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := NewStore(path).Load(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedWatermark)
		})
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2024-05-08", want: time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)},
		{in: "2024-05-08T01:02:03", want: time.Date(2024, 5, 8, 1, 2, 3, 0, time.UTC)},
		{in: "2024-05-08T01:02:03+02:00", want: time.Date(2024, 5, 7, 23, 2, 3, 0, time.UTC)},
		{in: "1970-01-01T00:00:00", want: Epoch},
		{in: "05/08/2024", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}
