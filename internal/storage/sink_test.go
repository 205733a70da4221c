package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	"github.com/qepting91/hospital-sync/internal/domain"
)

func testTable() *domain.Table {
	return &domain.Table{
		Columns: []string{"facility_id", "facility_name"},
		Rows:    [][]string{{"010001", "SOUTHEAST HEALTH"}, {"010005", "MARSHALL MEDICAL"}},
	}
}

func TestBlobSink_WriteTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	sink := NewBlobSink(bucket)
	require.NoError(t, sink.WriteTable(ctx, "hospital_general_information.csv", testTable()))

	data, err := bucket.ReadAll(ctx, "hospital_general_information.csv")
	require.NoError(t, err)
	assert.Equal(t, "facility_id,facility_name\n010001,SOUTHEAST HEALTH\n010005,MARSHALL MEDICAL\n", string(data))
}

func TestBlobSink_WriteTableOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	sink := NewBlobSink(bucket)
	require.NoError(t, sink.WriteTable(ctx, "t.csv", testTable()))
	require.NoError(t, sink.WriteTable(ctx, "t.csv", &domain.Table{Columns: []string{"only"}}))

	data, err := bucket.ReadAll(ctx, "t.csv")
	require.NoError(t, err)
	assert.Equal(t, "only\n", string(data))
}

func TestBlobSink_CancelledWriteCommitsNothing(t *testing.T) {
	t.Parallel()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewBlobSink(bucket).WriteTable(ctx, "t.csv", testTable())
	require.Error(t, err)

	exists, err := bucket.Exists(context.Background(), "t.csv")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOpenBucket_LocalDirectory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "hospital_datasets")

	bucket, err := OpenBucket(ctx, "", dir)
	require.NoError(t, err)
	defer bucket.Close()

	require.NoError(t, NewBlobSink(bucket).WriteTable(ctx, "general.csv", testTable()))

	data, err := os.ReadFile(filepath.Join(dir, "general.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "facility_id,facility_name\n")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the csv file should be written")
}

func TestOpenBucket_URL(t *testing.T) {
	t.Parallel()

	bucket, err := OpenBucket(context.Background(), "mem://", "ignored")
	require.NoError(t, err)
	require.NoError(t, bucket.Close())
}

func TestOpenBucket_BadURL(t *testing.T) {
	t.Parallel()

	_, err := OpenBucket(context.Background(), "nosuchscheme://bucket", "")
	assert.Error(t, err)
}
