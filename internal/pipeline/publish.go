package pipeline

import (
	"context"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/veralake/medallion-etl/internal/catalog"
	"github.com/veralake/medallion-etl/internal/logging"
	"github.com/veralake/medallion-etl/internal/metrics"
	"github.com/veralake/medallion-etl/internal/storage"
	"github.com/veralake/medallion-etl/internal/tables"
)

// publishTable encodes rows and writes the parquet artifact plus its
// manifest. The parquet file lands first; the manifest marks the publish
// as complete, so a reader never trusts a table without one.
func publishTable[R any](ctx context.Context, p *Pipeline, ref storage.TableRef, rows []R) (TableArtifact, error) {
	start := time.Now()
	log := logging.TableLogger(p.runID, ref.Layer, ref.Table)

	data, err := tables.Encode(rows, p.codec)
	if err != nil {
		return TableArtifact{}, fmt.Errorf("encode %s/%s: %w", ref.Layer, ref.Table, err)
	}
	checksum := tables.ComputeChecksum(data)

	if err := p.store.WriteTable(ctx, ref, data); err != nil {
		if m := metrics.Get(); m != nil {
			m.StorageErrors.WithLabelValues(ref.Layer, ref.Table).Inc()
		}
		return TableArtifact{}, fmt.Errorf("write %s/%s: %w", ref.Layer, ref.Table, err)
	}

	manifest := &storage.Manifest{
		Table: storage.TableDesc{
			Layer:      ref.Layer,
			Name:       ref.Table,
			IngestDate: ref.IngestDate,
		},
		File:          path.Base(ref.Path("")),
		Checksum:      checksum,
		RowCount:      int64(len(rows)),
		ByteSize:      int64(len(data)),
		SchemaVersion: tables.SchemaVersion,
		Producer: storage.ProducerInfo{
			Name:    producerName,
			Version: Version,
			RunID:   p.runID,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := p.store.WriteManifest(ctx, ref, manifest); err != nil {
		if m := metrics.Get(); m != nil {
			m.StorageErrors.WithLabelValues(ref.Layer, ref.Table).Inc()
		}
		return TableArtifact{}, fmt.Errorf("write manifest %s/%s: %w", ref.Layer, ref.Table, err)
	}

	if err := p.cat.RecordTable(ctx, catalog.TableRecord{
		RunID:           p.runID,
		Layer:           ref.Layer,
		Table:           ref.Table,
		IngestDate:      ref.IngestDate,
		RowCount:        int64(len(rows)),
		ByteSize:        int64(len(data)),
		Checksum:        checksum,
		StoragePath:     ref.Path(""),
		SchemaVersion:   tables.SchemaVersion,
		ProducerVersion: Version,
	}); err != nil {
		if m := metrics.Get(); m != nil {
			m.CatalogErrors.WithLabelValues(p.cfg.Catalog.Namespace).Inc()
		}
		log.Warn("failed to record table in catalog", "error", err)
	}

	if m := metrics.Get(); m != nil {
		m.ObserveTable(ref.Layer, ref.Table, float64(len(rows)), float64(len(data)))
		m.TablePublishDuration.WithLabelValues(ref.Layer, ref.Table).Observe(time.Since(start).Seconds())
	}

	log.Info("published table",
		"ingest_date", ref.IngestDate,
		"rows", len(rows),
		"bytes", len(data),
		"checksum", checksum)

	return TableArtifact{
		Layer:      ref.Layer,
		Table:      ref.Table,
		IngestDate: ref.IngestDate,
		Path:       ref.Path(""),
		Checksum:   checksum,
		Rows:       int64(len(rows)),
		Bytes:      int64(len(data)),
	}, nil
}

// publishPartitioned splits Silver rows by their lineage ingest date and
// publishes one partition per requested date. Dates with no surviving
// rows still get a valid empty table.
func publishPartitioned[R any](ctx context.Context, p *Pipeline, table string, rows []R, dates []string, dateOf func(R) string) ([]TableArtifact, error) {
	groups := make(map[string][]R, len(dates))
	for _, d := range dates {
		groups[d] = nil
	}
	for _, r := range rows {
		groups[dateOf(r)] = append(groups[dateOf(r)], r)
	}

	keys := make([]string, 0, len(groups))
	for d := range groups {
		keys = append(keys, d)
	}
	sort.Strings(keys)

	arts := make([]TableArtifact, 0, len(keys))
	for _, d := range keys {
		ref := storage.TableRef{Layer: storage.LayerSilver, Table: table, IngestDate: d}
		art, err := publishTable(ctx, p, ref, groups[d])
		if err != nil {
			return nil, err
		}
		arts = append(arts, art)
	}
	return arts, nil
}

// rowsOf converts cleaned records to their storage rows.
func rowsOf[S, R any](in []S, conv func(S) R) []R {
	out := make([]R, 0, len(in))
	for _, s := range in {
		out = append(out, conv(s))
	}
	return out
}
