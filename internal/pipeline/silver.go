package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veralake/medallion-etl/internal/audit"
	"github.com/veralake/medallion-etl/internal/catalog"
	"github.com/veralake/medallion-etl/internal/metrics"
	"github.com/veralake/medallion-etl/internal/silver"
	"github.com/veralake/medallion-etl/internal/storage"
	"github.com/veralake/medallion-etl/internal/tables"
)

// runSilver reads, cleans and publishes every entity table. Entities are
// independent of each other so they transform in parallel, bounded by the
// configured worker count.
func (p *Pipeline) runSilver(ctx context.Context, dates []string, report *Report) error {
	tr := silver.NewTransformer()
	var out silver.Tables
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Perf.Workers)
	for _, e := range silver.Entities() {
		g.Go(func() error {
			if m := metrics.Get(); m != nil {
				m.TablesInFlight.Inc()
				defer m.TablesInFlight.Dec()
			}

			start := time.Now()
			raws, err := p.src.Read(gctx, e, dates)
			if err != nil {
				if m := metrics.Get(); m != nil {
					m.SourceErrors.WithLabelValues(string(e)).Inc()
				}
				return fmt.Errorf("read raw %s: %w", e, err)
			}

			// Each entity fills its own Tables field; only the stats
			// slice is shared.
			stats, err := tr.Transform(e, raws, &out)
			if err != nil {
				return err
			}

			if m := metrics.Get(); m != nil {
				m.TableTransformDuration.WithLabelValues(storage.LayerSilver, string(e)).
					Observe(time.Since(start).Seconds())
				m.ObserveSilverStats(string(e),
					float64(stats.RowsIn), float64(stats.DroppedNoKey),
					float64(stats.Duplicates), float64(stats.NulledFields))
			}
			if err := p.cat.RecordQuality(ctx, catalog.QualityRecord{
				RunID:        p.runID,
				Layer:        storage.LayerSilver,
				Table:        string(e),
				RowsIn:       int64(stats.RowsIn),
				RowsDropped:  int64(stats.DroppedNoKey),
				Duplicates:   int64(stats.Duplicates),
				FieldsNulled: int64(stats.NulledFields),
			}); err != nil {
				p.log.Warn("failed to record quality", "table", e, "error", err)
			}

			mu.Lock()
			report.Silver = append(report.Silver, stats)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(report.Silver, func(i, j int) bool {
		return report.Silver[i].Entity < report.Silver[j].Entity
	})

	return p.publishSilver(ctx, &out, dates, report)
}

func (p *Pipeline) publishSilver(ctx context.Context, out *silver.Tables, dates []string, report *Report) error {
	auditTables := make(map[string]audit.TableInfo)
	add := func(arts []TableArtifact, err error) error {
		if err != nil {
			return err
		}
		report.Tables = append(report.Tables, arts...)
		for _, a := range arts {
			auditTables[a.Table+"/ingest_date="+a.IngestDate] = audit.TableInfo{
				Checksum:    a.Checksum,
				RowCount:    a.Rows,
				ByteSize:    a.Bytes,
				StoragePath: a.Path,
			}
		}
		return nil
	}

	ingestDate := func(lc tables.LineageColumns) string { return lc.IngestDate }

	if err := add(publishPartitioned(ctx, p, tables.TableCustomers,
		rowsOf(out.Customers, tables.FromCustomer), dates,
		func(r tables.CustomerRow) string { return ingestDate(r.LineageColumns) })); err != nil {
		return err
	}
	if err := add(publishPartitioned(ctx, p, tables.TableOrders,
		rowsOf(out.Orders, tables.FromOrder), dates,
		func(r tables.OrderRow) string { return ingestDate(r.LineageColumns) })); err != nil {
		return err
	}
	if err := add(publishPartitioned(ctx, p, tables.TableOrderItems,
		rowsOf(out.OrderItems, tables.FromOrderItem), dates,
		func(r tables.OrderItemRow) string { return ingestDate(r.LineageColumns) })); err != nil {
		return err
	}
	if err := add(publishPartitioned(ctx, p, tables.TableProducts,
		rowsOf(out.Products, tables.FromProduct), dates,
		func(r tables.ProductRow) string { return ingestDate(r.LineageColumns) })); err != nil {
		return err
	}
	if err := add(publishPartitioned(ctx, p, tables.TableShipments,
		rowsOf(out.Shipments, tables.FromShipment), dates,
		func(r tables.ShipmentRow) string { return ingestDate(r.LineageColumns) })); err != nil {
		return err
	}

	p.emitAudit(storage.LayerSilver, dates, auditTables)
	return nil
}

func (p *Pipeline) emitAudit(layer string, dates []string, tbls map[string]audit.TableInfo) {
	evt := &audit.Event{
		Run: audit.RunInfo{
			Namespace:   p.cfg.Catalog.Namespace,
			RunID:       p.runID,
			Layer:       layer,
			IngestDates: dates,
		},
		Tables:   tbls,
		Producer: audit.ProducerInfo{Name: producerName, Version: Version},
	}
	if err := p.aud.Emit(evt); err != nil {
		if m := metrics.Get(); m != nil {
			m.AuditErrors.WithLabelValues(p.runID).Inc()
		}
		p.log.Warn("failed to emit audit event", "layer", layer, "error", err)
	}
}
