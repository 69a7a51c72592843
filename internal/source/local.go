package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/veralake/medallion-etl/internal/record"
	"github.com/veralake/medallion-etl/internal/silver"
)

// LocalSource reads raw extracts from a local directory laid out as
// <root>/ingest_date=YYYY-MM-DD/<table>_bronze.csv[.gz|.zst].
type LocalSource struct {
	root string
}

// NewLocalSource creates a local raw source rooted at dir.
func NewLocalSource(dir string) (*LocalSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("source directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", dir)
	}
	return &LocalSource{root: dir}, nil
}

// Partitions lists the ingest-date partition folders, sorted.
func (s *LocalSource) Partitions(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list partitions in %s: %w", s.root, err)
	}

	var dates []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if v, ok := strings.CutPrefix(e.Name(), "ingest_date="); ok && v != "" {
			dates = append(dates, v)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// Read collects every raw record for one entity across the given
// partitions. Files are visited in sorted path order so input order, and
// with it the deduplicator's final tie-break, is deterministic.
func (s *LocalSource) Read(ctx context.Context, e silver.Entity, ingestDates []string) ([]record.Raw, error) {
	if len(ingestDates) == 0 {
		all, err := s.Partitions(ctx)
		if err != nil {
			return nil, err
		}
		ingestDates = all
	}

	var paths []string
	for _, date := range ingestDates {
		dir := filepath.Join(s.root, "ingest_date="+date)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !isExtract(entry.Name()) {
				continue
			}
			if got, err := silver.Route(entry.Name()); err != nil || got != e {
				continue
			}
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: entity %s", ErrNoInput, e)
	}

	var records []record.Raw
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := s.readFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

func (s *LocalSource) readFile(path string) ([]record.Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r, err := openExtract(f, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	folder := filepath.ToSlash(filepath.Dir(path))
	recs, err := parseRecords(r, folder, filepath.Base(path), ExtractIngestDate(filepath.ToSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return recs, nil
}

// Close is a no-op for the local source.
func (s *LocalSource) Close() error {
	return nil
}
