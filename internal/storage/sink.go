// Package storage persists synced tables and the run history.
package storage

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	"github.com/qepting91/hospital-sync/internal/domain"
	"github.com/qepting91/hospital-sync/internal/ingest"
)

// OpenBucket opens the output location. A non-empty bucketURL (mem://,
// file:///abs/path, ...) wins; otherwise dir is opened as a local directory
// and created if it does not exist.
func OpenBucket(ctx context.Context, bucketURL, dir string) (*blob.Bucket, error) {
	if bucketURL != "" {
		b, err := blob.OpenBucket(ctx, bucketURL)
		if err != nil {
			return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
		}
		return b, nil
	}
	b, err := fileblob.OpenBucket(dir, &fileblob.Options{
		CreateDir: true,
		NoTempDir: true,
		Metadata:  fileblob.MetadataDontWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("open output directory %s: %w", dir, err)
	}
	return b, nil
}

// BlobSink writes tables as CSV objects into a bucket.
type BlobSink struct {
	bucket *blob.Bucket
}

func NewBlobSink(bucket *blob.Bucket) *BlobSink {
	return &BlobSink{bucket: bucket}
}

// WriteTable writes table to the object name, replacing any existing object.
// Nothing is committed if writing fails part way.
func (s *BlobSink) WriteTable(ctx context.Context, name string, table *domain.Table) error {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(wctx, name, &blob.WriterOptions{ContentType: "text/csv"})
	if err != nil {
		return fmt.Errorf("open %s for writing: %w", name, err)
	}
	if err := ingest.WriteTable(w, table); err != nil {
		// Cancelling before Close aborts the write.
		cancel()
		_ = w.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}
