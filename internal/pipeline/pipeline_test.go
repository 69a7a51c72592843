package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/veralake/medallion-etl/internal/audit"
	"github.com/veralake/medallion-etl/internal/catalog"
	"github.com/veralake/medallion-etl/internal/config"
	"github.com/veralake/medallion-etl/internal/gold"
	"github.com/veralake/medallion-etl/internal/silver"
	"github.com/veralake/medallion-etl/internal/source"
	"github.com/veralake/medallion-etl/internal/storage"
	"github.com/veralake/medallion-etl/internal/tables"
)

func writeRaw(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// seedRawData lays out one ingest partition with the usual defects: a
// duplicate customer, a record without its key, Brazilian-locale money,
// a number-word quantity and two dangling foreign keys.
func seedRawData(t *testing.T, root string) {
	t.Helper()
	part := filepath.Join(root, "ingest_date=2024-03-15")

	writeRaw(t, part, "customers_bronze.csv",
		"customer_id,state,city,created_ts,phone,_processed_ts\n"+
			"C1,SP,São Paulo,2023-05-01 10:00:00,+5511987654321,2024-03-15T01:00:00Z\n"+
			"C1,RJ,Rio,2023-05-01 10:00:00,,2024-03-15T02:00:00Z\n"+
			",SP,Santos,2023-05-01 10:00:00,,2024-03-15T01:00:00Z\n"+
			"C2,XX,Curitiba,2023-06-01 09:00:00,1234,2024-03-15T01:00:00Z\n")

	writeRaw(t, part, "orders_bronze.csv",
		"order_id,customer_id,order_ts,status,payment_method,total_amount,currency,sales_channel\n"+
			"O1,C1,2024-03-14 09:00:00,delivered,credit_card,\"2.026,00\",BRL,web\n"+
			"O2,C9,2024-03-14 10:00:00,created,pix,\"50,00\",BRL,app\n")

	writeRaw(t, part, "order_items_bronze.csv",
		"order_id,product_id,quantity,unit_price,discount_amount\n"+
			"O1,P1,two,\"50,00\",\"15,005\"\n"+
			"O1,P9,1,\"10,00\",0\n")

	writeRaw(t, part, "products_bronze.csv",
		"product_id,category,brand,created_ts\n"+
			"P1,Electronics,Acme,2023-01-01 00:00:00\n")

	writeRaw(t, part, "shipments_bronze.csv",
		"order_id,carrier,shipping_cost,shipped_ts,delivered_ts,promised_ts,delivery_status\n"+
			"O1,Correios,\"12,50\",2024-03-15 08:00:00,2024-03-17 08:30:00,2024-03-16 08:00:00,delivered\n")
}

func newTestPipeline(t *testing.T, rawDir, lakeDir string) (*Pipeline, storage.LayerStore) {
	t.Helper()

	src, err := source.NewLocalSource(rawDir)
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewLocalStore(lakeDir, "")
	if err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.NewWriter(catalog.Config{})
	if err != nil {
		t.Fatal(err)
	}
	aud, err := audit.NewEmitter(audit.Config{})
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{}
	cfg.Run.Compression = "snappy"
	cfg.Catalog.Namespace = "test"
	cfg.Perf.Workers = 2

	t.Cleanup(func() {
		src.Close()
		store.Close()
	})
	return New(cfg, src, store, cat, aud), store
}

func TestRunFullLifecycle(t *testing.T) {
	rawDir := t.TempDir()
	lakeDir := t.TempDir()
	seedRawData(t, rawDir)

	p, store := newTestPipeline(t, rawDir, lakeDir)
	ctx := context.Background()

	report, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.IngestDates) != 1 || report.IngestDates[0] != "2024-03-15" {
		t.Fatalf("IngestDates = %v", report.IngestDates)
	}

	statsBy := make(map[silver.Entity]silver.Stats)
	for _, s := range report.Silver {
		statsBy[s.Entity] = s
	}
	cust := statsBy[silver.EntityCustomers]
	if cust.RowsIn != 4 || cust.RowsOut != 2 || cust.DroppedNoKey != 1 || cust.Duplicates != 1 {
		t.Errorf("customer stats = %+v", cust)
	}
	if report.Gold.OrdersRejected != 1 || report.Gold.ItemsRejected != 1 {
		t.Errorf("gold stats = %+v", report.Gold)
	}

	// 5 silver partitions + 4 gold tables.
	if len(report.Tables) != 9 {
		t.Fatalf("published %d tables, want 9", len(report.Tables))
	}

	// The duplicate resolved as a whole record: the later-processed
	// version wins every field, including its empty phone.
	silverRef := storage.TableRef{Layer: storage.LayerSilver, Table: tables.TableCustomers, IngestDate: "2024-03-15"}
	data, err := store.ReadTable(ctx, silverRef)
	if err != nil {
		t.Fatal(err)
	}
	custRows, err := tables.Decode[tables.CustomerRow](data)
	if err != nil {
		t.Fatal(err)
	}
	if len(custRows) != 2 {
		t.Fatalf("silver customers = %d rows, want 2", len(custRows))
	}
	c1 := custRows[0]
	if c1.CustomerID != "C1" || c1.State == nil || *c1.State != "RJ" {
		t.Errorf("dedup winner = %+v, want later-processed RJ version", c1)
	}
	if c1.Phone != nil {
		t.Errorf("winner's empty phone must stay null, got %q", *c1.Phone)
	}
	if custRows[1].State != nil {
		t.Errorf("invalid state must be null, got %q", *custRows[1].State)
	}

	data, err = store.ReadTable(ctx, storage.TableRef{Layer: storage.LayerGold, Table: tables.TableFactOrders})
	if err != nil {
		t.Fatal(err)
	}
	facts, err := tables.Decode[tables.FactOrderRow](data)
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 1 {
		t.Fatalf("fact_orders = %d rows, want only the resolvable order", len(facts))
	}
	f := facts[0]
	if f.OrderID != "O1" || f.CustomerKey != gold.CustomerKey("C1") {
		t.Errorf("fact keys: %+v", f)
	}
	if f.GrossAmount == nil || *f.GrossAmount != 100 {
		t.Errorf("GrossAmount = %v, want 100 (quantity word resolved to 2)", f.GrossAmount)
	}
	if f.DiscountTotal == nil || *f.DiscountTotal != 15.01 {
		t.Errorf("DiscountTotal = %v, want 15.01 (sub-cent discount kept through silver)", f.DiscountTotal)
	}
	if f.NetAmount == nil || *f.NetAmount != 85 {
		t.Errorf("NetAmount = %v, want 85.00 half-up from 84.995", f.NetAmount)
	}
	if f.DeliveryTimeHours == nil || *f.DeliveryTimeHours != 48.5 {
		t.Errorf("DeliveryTimeHours = %v, want 48.5", f.DeliveryTimeHours)
	}
	if f.IsLate == nil || !*f.IsLate {
		t.Error("delivery a day past the promise must flag late")
	}

	data, err = store.ReadTable(ctx, storage.TableRef{Layer: storage.LayerGold, Table: tables.TableFactOrderItems})
	if err != nil {
		t.Fatal(err)
	}
	items, err := tables.Decode[tables.FactOrderItemRow](data)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("fact_order_items = %d rows, want 1 after FK rejection", len(items))
	}
	if items[0].ProductKey != gold.ProductKey("P1") {
		t.Errorf("ProductKey = %q", items[0].ProductKey)
	}
}

func TestRunIdempotent(t *testing.T) {
	rawDir := t.TempDir()
	lakeDir := t.TempDir()
	seedRawData(t, rawDir)

	ctx := context.Background()

	p1, store := newTestPipeline(t, rawDir, lakeDir)
	if _, err := p1.Run(ctx); err != nil {
		t.Fatal(err)
	}
	first, err := store.ReadTable(ctx, storage.TableRef{Layer: storage.LayerGold, Table: tables.TableFactOrders})
	if err != nil {
		t.Fatal(err)
	}
	firstRows, err := tables.Decode[tables.FactOrderRow](first)
	if err != nil {
		t.Fatal(err)
	}

	p2, _ := newTestPipeline(t, rawDir, lakeDir)
	if _, err := p2.Run(ctx); err != nil {
		t.Fatal(err)
	}
	second, err := store.ReadTable(ctx, storage.TableRef{Layer: storage.LayerGold, Table: tables.TableFactOrders})
	if err != nil {
		t.Fatal(err)
	}
	secondRows, err := tables.Decode[tables.FactOrderRow](second)
	if err != nil {
		t.Fatal(err)
	}

	if len(firstRows) != len(secondRows) {
		t.Fatalf("rerun changed row count: %d vs %d", len(firstRows), len(secondRows))
	}
	for i := range firstRows {
		if firstRows[i].OrderID != secondRows[i].OrderID ||
			*firstRows[i].NetAmount != *secondRows[i].NetAmount {
			t.Errorf("rerun changed row %d: %+v vs %+v", i, firstRows[i], secondRows[i])
		}
	}
}

func TestRunFailsWithoutRawInput(t *testing.T) {
	rawDir := t.TempDir()
	lakeDir := t.TempDir()

	p, _ := newTestPipeline(t, rawDir, lakeDir)
	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("empty source must fail the run")
	}
}

func TestRunFailsWhenEntityMissing(t *testing.T) {
	rawDir := t.TempDir()
	lakeDir := t.TempDir()
	// Only customers present; the other entity tables have no files.
	writeRaw(t, filepath.Join(rawDir, "ingest_date=2024-03-15"), "customers_bronze.csv",
		"customer_id,state\nC1,SP\n")

	p, _ := newTestPipeline(t, rawDir, lakeDir)
	_, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("missing entity table must fail the run")
	}
}
