// Package catalog records pipeline runs and published tables in a
// PostgreSQL catalog so operators can query lineage and data quality
// without scanning the lake.
package catalog

import (
	"context"
	"time"
)

// Config points the writer at the catalog database. An empty DSN disables
// the catalog entirely.
type Config struct {
	DSN       string
	Namespace string
}

// RunRecord describes one pipeline invocation.
type RunRecord struct {
	RunID      string
	Namespace  string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string // "succeeded" | "failed"
	Error      string
}

// TableRecord describes one published table build.
type TableRecord struct {
	RunID           string
	Layer           string
	Table           string
	IngestDate      string // empty for full-table layers
	RowCount        int64
	ByteSize        int64
	Checksum        string
	StoragePath     string
	SchemaVersion   string
	ProducerVersion string
}

// QualityRecord carries the per-table quality counters of one run.
type QualityRecord struct {
	RunID         string
	Layer         string
	Table         string
	RowsIn        int64
	RowsDropped   int64
	Duplicates    int64
	FieldsNulled  int64
	FactsRejected int64
}

// Writer persists run, table and quality records.
type Writer interface {
	RecordRun(ctx context.Context, rec RunRecord) error
	RecordTable(ctx context.Context, rec TableRecord) error
	RecordQuality(ctx context.Context, rec QualityRecord) error
	Close() error
}

// NewWriter creates a catalog writer. With an empty DSN the pipeline runs
// without a catalog and every record is discarded.
func NewWriter(cfg Config) (Writer, error) {
	if cfg.DSN == "" {
		return noopWriter{}, nil
	}
	return NewPostgresWriter(cfg)
}

type noopWriter struct{}

func (noopWriter) RecordRun(context.Context, RunRecord) error         { return nil }
func (noopWriter) RecordTable(context.Context, TableRecord) error     { return nil }
func (noopWriter) RecordQuality(context.Context, QualityRecord) error { return nil }
func (noopWriter) Close() error                                       { return nil }
