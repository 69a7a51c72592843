// Package pipeline orchestrates a full pipeline run: raw extracts are
// cleaned into the Silver layer, the Silver tables are published, then read
// back and shaped into the Gold dimensional model. Every run reprocesses
// its input from scratch; published tables are replaced, never patched.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/parquet-go/parquet-go/compress"

	"github.com/veralake/medallion-etl/internal/audit"
	"github.com/veralake/medallion-etl/internal/catalog"
	"github.com/veralake/medallion-etl/internal/config"
	"github.com/veralake/medallion-etl/internal/gold"
	"github.com/veralake/medallion-etl/internal/logging"
	"github.com/veralake/medallion-etl/internal/metrics"
	"github.com/veralake/medallion-etl/internal/silver"
	"github.com/veralake/medallion-etl/internal/source"
	"github.com/veralake/medallion-etl/internal/storage"
	"github.com/veralake/medallion-etl/internal/tables"
)

const producerName = "medallion-etl"

// Version is the producer version stamped into manifests and audit events.
// Overridden at build time.
var Version = "dev"

// ErrSilverMissing indicates the Gold pass could not find a published
// Silver table it depends on. This is a fatal precondition.
var ErrSilverMissing = errors.New("silver table missing")

// Pipeline wires the source, the transformers and the stores into one
// runnable unit.
type Pipeline struct {
	cfg   config.Config
	src   source.RawSource
	store storage.LayerStore
	cat   catalog.Writer
	aud   audit.Emitter
	codec compress.Codec

	runID string
	log   *slog.Logger
}

// New creates a pipeline for one run.
func New(cfg config.Config, src source.RawSource, store storage.LayerStore, cat catalog.Writer, aud audit.Emitter) *Pipeline {
	runID := logging.GenerateRunID()
	return &Pipeline{
		cfg:   cfg,
		src:   src,
		store: store,
		cat:   cat,
		aud:   aud,
		codec: tables.Codec(cfg.Run.Compression),
		runID: runID,
		log:   logging.Component("pipeline").With("run_id", runID),
	}
}

// TableArtifact describes one table published during a run.
type TableArtifact struct {
	Layer      string
	Table      string
	IngestDate string
	Path       string
	Checksum   string
	Rows       int64
	Bytes      int64
}

// Report summarizes one pipeline run.
type Report struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	IngestDates []string
	Silver      []silver.Stats
	Gold        gold.Stats
	Tables      []TableArtifact
}

// Run executes the full Silver then Gold pass and records the outcome.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: p.runID, StartedAt: time.Now().UTC()}

	if err := p.cat.RecordRun(ctx, catalog.RunRecord{
		RunID:     p.runID,
		Namespace: p.cfg.Catalog.Namespace,
		StartedAt: report.StartedAt,
		Status:    "running",
	}); err != nil {
		p.log.Warn("failed to record run start", "error", err)
	}

	runErr := p.run(ctx, report)
	report.FinishedAt = time.Now().UTC()

	status := "succeeded"
	errMsg := ""
	if runErr != nil {
		status = "failed"
		errMsg = runErr.Error()
	}
	if err := p.cat.RecordRun(ctx, catalog.RunRecord{
		RunID:      p.runID,
		Namespace:  p.cfg.Catalog.Namespace,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Status:     status,
		Error:      errMsg,
	}); err != nil {
		p.log.Warn("failed to record run outcome", "error", err)
	}

	elapsed := report.FinishedAt.Sub(report.StartedAt)
	if runErr != nil {
		p.log.Error("run failed", "error", runErr, "duration_ms", elapsed.Milliseconds())
		return report, runErr
	}
	p.log.Info("run complete",
		"duration_ms", elapsed.Milliseconds(),
		"tables", len(report.Tables))
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, report *Report) error {
	dates := p.cfg.Run.IngestDates
	if len(dates) == 0 {
		all, err := p.src.Partitions(ctx)
		if err != nil {
			return fmt.Errorf("list raw partitions: %w", err)
		}
		dates = all
	}
	if len(dates) == 0 {
		return fmt.Errorf("%w: no ingest partitions in source", source.ErrNoInput)
	}
	report.IngestDates = dates

	if err := p.runSilver(ctx, dates, report); err != nil {
		p.observeLayer(storage.LayerSilver, report.StartedAt, false)
		return err
	}
	p.observeLayer(storage.LayerSilver, report.StartedAt, true)

	goldStart := time.Now()
	if err := p.runGold(ctx, dates, report); err != nil {
		p.observeLayer(storage.LayerGold, goldStart, false)
		return err
	}
	p.observeLayer(storage.LayerGold, goldStart, true)
	return nil
}

func (p *Pipeline) observeLayer(layer string, start time.Time, ok bool) {
	m := metrics.Get()
	if m == nil {
		return
	}
	m.SetLayerUp(layer, ok)
	m.RunDuration.WithLabelValues(layer).Observe(time.Since(start).Seconds())
}
