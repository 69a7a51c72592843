// Package source reads lineage-stamped raw CSV extracts, keyed by entity
// type and ingest-date partition.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/veralake/medallion-etl/internal/record"
	"github.com/veralake/medallion-etl/internal/silver"
)

// ErrNoInput is returned when an entity table has no raw files at all.
// This is a fatal precondition: the layer pass cannot proceed without it.
var ErrNoInput = errors.New("no raw input found")

// RawSource supplies raw records per entity type and ingest-date partition.
type RawSource interface {
	// Partitions lists the available ingest-date partition values.
	Partitions(ctx context.Context) ([]string, error)

	// Read returns every raw record for one entity across the given
	// partitions (all partitions when none are given). Returns ErrNoInput
	// when the entity has no files.
	Read(ctx context.Context, e silver.Entity, ingestDates []string) ([]record.Raw, error)

	// Close releases any resources.
	Close() error
}

// Config configures the raw source backend.
type Config struct {
	Backend   string `yaml:"backend"`    // "local" | "bucket"
	LocalDir  string `yaml:"local_dir"`  // root of the ingest_date=… layout
	BucketURL string `yaml:"bucket_url"` // gocloud URL
	Prefix    string `yaml:"prefix"`     // key prefix within the bucket
}

// NewRawSource creates a raw source based on configuration.
func NewRawSource(cfg Config) (RawSource, error) {
	switch cfg.Backend {
	case "local", "":
		if cfg.LocalDir == "" {
			return nil, fmt.Errorf("local_dir required for local source")
		}
		return NewLocalSource(cfg.LocalDir)
	case "bucket":
		if cfg.BucketURL == "" {
			return nil, fmt.Errorf("bucket_url required for bucket source")
		}
		return NewBlobSource(cfg.BucketURL, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown source backend: %s", cfg.Backend)
	}
}

// ExtractIngestDate pulls the partition value out of an ingest_date=… path
// segment, or "unknown" when the path carries none.
func ExtractIngestDate(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if v, ok := strings.CutPrefix(seg, "ingest_date="); ok && v != "" {
			return v
		}
	}
	return "unknown"
}

// lineageLayouts are the layouts accepted for the stamped lineage
// timestamps. The ingestion collaborator writes RFC3339; the fallback
// covers hand-fed fixtures.
var lineageLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"}

func parseLineageTS(s string) time.Time {
	for _, layout := range lineageLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseRecords decodes one CSV extract into raw records. The reserved
// lineage columns are split off into the Lineage struct; every other
// column stays raw. A missing value is the empty string.
func parseRecords(r io.Reader, folder, fileName, ingestDate string) ([]record.Raw, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var records []record.Raw
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		fields := make(map[string]string, len(header))
		lin := record.Lineage{
			SourceFolder: folder,
			SourceFile:   fileName,
			IngestDate:   ingestDate,
		}
		for i, col := range header {
			if i >= len(row) {
				break
			}
			val := row[i]
			switch col {
			case record.ColSourceFolder:
				if val != "" {
					lin.SourceFolder = val
				}
			case record.ColSourceFile:
				if val != "" {
					lin.SourceFile = val
				}
			case record.ColSourceIngestDate:
				if val != "" {
					lin.IngestDate = val
				}
			case record.ColSourceModifiedTS:
				lin.ModifiedTS = parseLineageTS(val)
			case record.ColProcessedTS:
				lin.ProcessedTS = parseLineageTS(val)
			default:
				fields[col] = val
			}
		}

		records = append(records, record.Raw{Fields: fields, Lineage: lin})
	}

	return records, nil
}
