package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veralake/medallion-etl/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// PostgresWriter implements Writer using PostgreSQL.
type PostgresWriter struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewPostgresWriter connects to the catalog database and ensures the
// _meta_* tables exist.
func NewPostgresWriter(cfg Config) (*PostgresWriter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logging.Component("catalog").Info("connected to PostgreSQL catalog", "namespace", cfg.Namespace)
	return &PostgresWriter{pool: pool, cfg: cfg}, nil
}

// RecordRun upserts one pipeline invocation. The pipeline writes it once
// at start and again on completion with the final status.
func (w *PostgresWriter) RecordRun(ctx context.Context, rec RunRecord) error {
	query := `
		INSERT INTO _meta_runs (run_id, namespace, started_at, finished_at, status, error)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id)
		DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			status = EXCLUDED.status,
			error = EXCLUDED.error
	`

	var finished *time.Time
	if !rec.FinishedAt.IsZero() {
		finished = &rec.FinishedAt
	}
	var errMsg *string
	if rec.Error != "" {
		errMsg = &rec.Error
	}

	namespace := rec.Namespace
	if namespace == "" {
		namespace = w.cfg.Namespace
	}

	_, err := w.pool.Exec(ctx, query,
		rec.RunID, namespace, rec.StartedAt, finished, rec.Status, errMsg)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RecordTable writes the lineage row for one published table.
func (w *PostgresWriter) RecordTable(ctx context.Context, rec TableRecord) error {
	query := `
		INSERT INTO _meta_tables (
			run_id, layer, table_name, ingest_date, row_count, byte_size,
			checksum, storage_path, schema_version, producer_version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id, layer, table_name, ingest_date)
		DO UPDATE SET
			row_count = EXCLUDED.row_count,
			byte_size = EXCLUDED.byte_size,
			checksum = EXCLUDED.checksum,
			created_at = NOW()
	`

	_, err := w.pool.Exec(ctx, query,
		rec.RunID, rec.Layer, rec.Table, rec.IngestDate, rec.RowCount,
		rec.ByteSize, rec.Checksum, rec.StoragePath, rec.SchemaVersion,
		rec.ProducerVersion)
	if err != nil {
		return fmt.Errorf("record table: %w", err)
	}
	return nil
}

// RecordQuality writes the quality counters for one table pass.
func (w *PostgresWriter) RecordQuality(ctx context.Context, rec QualityRecord) error {
	query := `
		INSERT INTO _meta_quality (
			run_id, layer, table_name, rows_in, rows_dropped,
			duplicates, fields_nulled, facts_rejected
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id, layer, table_name)
		DO UPDATE SET
			rows_in = EXCLUDED.rows_in,
			rows_dropped = EXCLUDED.rows_dropped,
			duplicates = EXCLUDED.duplicates,
			fields_nulled = EXCLUDED.fields_nulled,
			facts_rejected = EXCLUDED.facts_rejected,
			created_at = NOW()
	`

	_, err := w.pool.Exec(ctx, query,
		rec.RunID, rec.Layer, rec.Table, rec.RowsIn, rec.RowsDropped,
		rec.Duplicates, rec.FieldsNulled, rec.FactsRejected)
	if err != nil {
		return fmt.Errorf("record quality: %w", err)
	}
	return nil
}

// Close releases database connections.
func (w *PostgresWriter) Close() error {
	w.pool.Close()
	return nil
}
