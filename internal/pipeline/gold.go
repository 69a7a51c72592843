package pipeline

import (
	"context"
	"fmt"

	"github.com/veralake/medallion-etl/internal/audit"
	"github.com/veralake/medallion-etl/internal/catalog"
	"github.com/veralake/medallion-etl/internal/gold"
	"github.com/veralake/medallion-etl/internal/metrics"
	"github.com/veralake/medallion-etl/internal/storage"
	"github.com/veralake/medallion-etl/internal/tables"
)

// runGold reads the published Silver tables back from storage and builds
// the dimensional model. Going through storage rather than memory keeps
// the layers separable: a Gold-only rerun sees exactly what any other
// consumer of the Silver layer would see.
func (p *Pipeline) runGold(ctx context.Context, dates []string, report *Report) error {
	in, err := p.loadSilver(ctx, dates)
	if err != nil {
		return err
	}

	out, stats := gold.NewTransformer().Transform(in)
	report.Gold = stats

	if m := metrics.Get(); m != nil {
		m.FactsRejected.WithLabelValues(tables.TableFactOrders).Add(float64(stats.OrdersRejected))
		m.FactsRejected.WithLabelValues(tables.TableFactOrderItems).Add(float64(stats.ItemsRejected))
	}
	p.recordGoldQuality(ctx, tables.TableFactOrders, len(in.Orders), stats.OrdersRejected)
	p.recordGoldQuality(ctx, tables.TableFactOrderItems, len(in.OrderItems), stats.ItemsRejected)

	auditTables := make(map[string]audit.TableInfo)
	add := func(art TableArtifact, err error) error {
		if err != nil {
			return err
		}
		report.Tables = append(report.Tables, art)
		auditTables[art.Table] = audit.TableInfo{
			Checksum:    art.Checksum,
			RowCount:    art.Rows,
			ByteSize:    art.Bytes,
			StoragePath: art.Path,
		}
		return nil
	}

	goldRef := func(table string) storage.TableRef {
		return storage.TableRef{Layer: storage.LayerGold, Table: table}
	}
	if err := add(publishTable(ctx, p, goldRef(tables.TableDimCustomers), out.DimCustomers)); err != nil {
		return err
	}
	if err := add(publishTable(ctx, p, goldRef(tables.TableDimProducts), out.DimProducts)); err != nil {
		return err
	}
	if err := add(publishTable(ctx, p, goldRef(tables.TableFactOrders), out.FactOrders)); err != nil {
		return err
	}
	if err := add(publishTable(ctx, p, goldRef(tables.TableFactOrderItems), out.FactOrderItems)); err != nil {
		return err
	}

	p.emitAudit(storage.LayerGold, dates, auditTables)
	return nil
}

func (p *Pipeline) recordGoldQuality(ctx context.Context, table string, rowsIn, rejected int) {
	if err := p.cat.RecordQuality(ctx, catalog.QualityRecord{
		RunID:         p.runID,
		Layer:         storage.LayerGold,
		Table:         table,
		RowsIn:        int64(rowsIn),
		FactsRejected: int64(rejected),
	}); err != nil {
		p.log.Warn("failed to record quality", "table", table, "error", err)
	}
}

func (p *Pipeline) loadSilver(ctx context.Context, dates []string) (gold.Input, error) {
	var in gold.Input
	var err error

	if in.Customers, err = loadRows[tables.CustomerRow](ctx, p, tables.TableCustomers, dates); err != nil {
		return gold.Input{}, err
	}
	if in.Orders, err = loadRows[tables.OrderRow](ctx, p, tables.TableOrders, dates); err != nil {
		return gold.Input{}, err
	}
	if in.OrderItems, err = loadRows[tables.OrderItemRow](ctx, p, tables.TableOrderItems, dates); err != nil {
		return gold.Input{}, err
	}
	if in.Products, err = loadRows[tables.ProductRow](ctx, p, tables.TableProducts, dates); err != nil {
		return gold.Input{}, err
	}
	if in.Shipments, err = loadRows[tables.ShipmentRow](ctx, p, tables.TableShipments, dates); err != nil {
		return gold.Input{}, err
	}
	return in, nil
}

// loadRows reads one Silver table across every requested partition.
func loadRows[R any](ctx context.Context, p *Pipeline, table string, dates []string) ([]R, error) {
	var all []R
	for _, d := range dates {
		ref := storage.TableRef{Layer: storage.LayerSilver, Table: table, IngestDate: d}
		ok, err := p.store.Exists(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("check %s ingest_date=%s: %w", table, d, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s ingest_date=%s", ErrSilverMissing, table, d)
		}

		data, err := p.store.ReadTable(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("read %s ingest_date=%s: %w", table, d, err)
		}
		rows, err := tables.Decode[R](data)
		if err != nil {
			return nil, fmt.Errorf("decode %s ingest_date=%s: %w", table, d, err)
		}
		all = append(all, rows...)
	}
	return all, nil
}
