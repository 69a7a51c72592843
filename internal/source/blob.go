package source

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// driver
	_ "gocloud.dev/blob/gcsblob"  // gs:// driver
	_ "gocloud.dev/blob/s3blob"   // s3:// driver

	"github.com/veralake/medallion-etl/internal/record"
	"github.com/veralake/medallion-etl/internal/silver"
)

// BlobSource reads raw extracts from an object-store bucket with the same
// ingest_date=… key layout as the local source.
type BlobSource struct {
	bucket *blob.Bucket
	prefix string
}

// NewBlobSource opens the bucket behind the given gocloud URL.
func NewBlobSource(bucketURL, prefix string) (*BlobSource, error) {
	bucket, err := blob.OpenBucket(context.Background(), bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open source bucket %s: %w", bucketURL, err)
	}
	return &BlobSource{bucket: bucket, prefix: prefix}, nil
}

// Partitions lists the distinct ingest-date values present in the bucket.
func (s *BlobSource) Partitions(ctx context.Context) ([]string, error) {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var dates []string
	for _, key := range keys {
		if d := ExtractIngestDate(key); d != "unknown" && !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// Read collects every raw record for one entity across the given partitions.
func (s *BlobSource) Read(ctx context.Context, e silver.Entity, ingestDates []string) ([]record.Raw, error) {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, err
	}

	wantDate := make(map[string]bool, len(ingestDates))
	for _, d := range ingestDates {
		wantDate[d] = true
	}

	var matched []string
	for _, key := range keys {
		name := path.Base(key)
		if !isExtract(name) {
			continue
		}
		if got, err := silver.Route(name); err != nil || got != e {
			continue
		}
		if len(ingestDates) > 0 && !wantDate[ExtractIngestDate(key)] {
			continue
		}
		matched = append(matched, key)
	}
	sort.Strings(matched)

	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: entity %s", ErrNoInput, e)
	}

	var records []record.Raw
	for _, key := range matched {
		recs, err := s.readKey(ctx, key)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

func (s *BlobSource) readKey(ctx context.Context, key string) ([]record.Raw, error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	defer r.Close()

	dr, err := openExtract(r, key)
	if err != nil {
		return nil, err
	}
	defer dr.Close()

	recs, err := parseRecords(dr, path.Dir(key), path.Base(key), ExtractIngestDate(key))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	return recs, nil
}

func (s *BlobSource) listKeys(ctx context.Context) ([]string, error) {
	var keys []string
	it := s.bucket.List(&blob.ListOptions{Prefix: s.prefix})
	for {
		obj, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list source bucket: %w", err)
		}
		if !strings.HasSuffix(obj.Key, "/") {
			keys = append(keys, obj.Key)
		}
	}
	return keys, nil
}

// Close releases the bucket handle.
func (s *BlobSource) Close() error {
	return s.bucket.Close()
}
