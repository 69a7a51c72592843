package silver

import (
	"reflect"
	"testing"
	"time"

	"github.com/veralake/medallion-etl/internal/record"
)

func rawCustomer(fields map[string]string, processed time.Time) record.Raw {
	return record.Raw{
		Fields: fields,
		Lineage: record.Lineage{
			SourceFolder: "input/customers",
			SourceFile:   "customers_bronze.csv",
			IngestDate:   "2024-03-01",
			ModifiedTS:   processed,
			ProcessedTS:  processed,
		},
	}
}

func TestCustomers_MissingIDDroppedAndCounted(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	raws := []record.Raw{
		rawCustomer(map[string]string{"customer_id": "", "state": "SP"}, ts),
		rawCustomer(map[string]string{"customer_id": "c1", "state": "SP", "city": "Campinas"}, ts),
	}

	rows, stats := NewTransformer().Customers(raws)

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if stats.DroppedNoKey != 1 {
		t.Errorf("DroppedNoKey = %d, want 1", stats.DroppedNoKey)
	}
	if rows[0].City.Val != "campinas" {
		t.Errorf("city = %q, want campinas", rows[0].City.Val)
	}
}

func TestCustomers_MalformedFieldNullsNotDrops(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	raws := []record.Raw{
		rawCustomer(map[string]string{
			"customer_id": "c1",
			"state":       "not-a-state",
			"phone":       "123",
			"created_ts":  "garbage",
		}, ts),
	}

	rows, stats := NewTransformer().Customers(raws)

	if len(rows) != 1 {
		t.Fatalf("malformed fields must not drop the record, got %d rows", len(rows))
	}
	r := rows[0]
	if r.State.Valid || r.Phone.Valid || r.CreatedTS.Valid {
		t.Errorf("all malformed fields should be null: %+v", r)
	}
	if stats.NulledFields != 3 {
		t.Errorf("NulledFields = %d, want 3", stats.NulledFields)
	}
}

func TestOrders_MissingEitherKeyDrops(t *testing.T) {
	ts := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	mk := func(orderID, customerID string) record.Raw {
		return record.Raw{
			Fields:  map[string]string{"order_id": orderID, "customer_id": customerID, "total_amount": "10,5"},
			Lineage: record.Lineage{ProcessedTS: ts, ModifiedTS: ts},
		}
	}

	rows, stats := NewTransformer().Orders([]record.Raw{
		mk("o1", "c1"),
		mk("", "c1"),
		mk("o2", ""),
	})

	if len(rows) != 1 || stats.DroppedNoKey != 2 {
		t.Errorf("rows=%d dropped=%d, want 1/2", len(rows), stats.DroppedNoKey)
	}
	if !rows[0].TotalAmount.Valid || rows[0].TotalAmount.Val.String() != "10.5" {
		t.Errorf("total_amount = %+v, want 10.50", rows[0].TotalAmount)
	}
}

func TestShipments_StatusClearsTimestamps(t *testing.T) {
	ts := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	mk := func(status, shipped, delivered string) record.Raw {
		return record.Raw{
			Fields: map[string]string{
				"order_id":        "o1",
				"delivery_status": status,
				"shipped_ts":      shipped,
				"delivered_ts":    delivered,
			},
			Lineage: record.Lineage{ProcessedTS: ts, ModifiedTS: ts},
		}
	}

	tr := NewTransformer()

	rows, _ := tr.Shipments([]record.Raw{mk("label_created", "2024-03-01T08:00:00Z", "2024-03-02T08:00:00Z")})
	if rows[0].ShippedTS.Valid || rows[0].DeliveredTS.Valid {
		t.Error("label_created must clear both shipping timestamps")
	}

	rows, _ = tr.Shipments([]record.Raw{mk("in_transit", "2024-03-01T08:00:00Z", "2024-03-02T08:00:00Z")})
	if !rows[0].ShippedTS.Valid {
		t.Error("in_transit keeps shipped_ts")
	}
	if rows[0].DeliveredTS.Valid {
		t.Error("in_transit must clear delivered_ts")
	}
}

func TestShipments_DeliveredBeforeShippedNullsBoth(t *testing.T) {
	ts := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	raw := record.Raw{
		Fields: map[string]string{
			"order_id":        "o1",
			"delivery_status": "delivered",
			"shipped_ts":      "2024-03-05T08:00:00Z",
			"delivered_ts":    "2024-03-01T08:00:00Z",
		},
		Lineage: record.Lineage{ProcessedTS: ts, ModifiedTS: ts},
	}

	rows, _ := NewTransformer().Shipments([]record.Raw{raw})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].ShippedTS.Valid || rows[0].DeliveredTS.Valid {
		t.Error("inverted pair must null both timestamps, never just one")
	}
}

func TestTransform_Idempotent(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	raws := []record.Raw{
		rawCustomer(map[string]string{"customer_id": "c2", "state": "rj", "city": "Niterói"}, ts),
		rawCustomer(map[string]string{"customer_id": "c1", "state": "SP", "phone": "(11) 94002-8922"}, ts),
		rawCustomer(map[string]string{"customer_id": "c1", "state": "MG"}, ts.Add(time.Hour)),
	}

	tr := NewTransformer()
	first, _ := tr.Customers(raws)
	second, _ := tr.Customers(raws)

	if !reflect.DeepEqual(first, second) {
		t.Error("running the transform twice over unchanged input must yield identical output")
	}
	// Deterministic ordering by key regardless of input order.
	if first[0].CustomerID != "c1" || first[1].CustomerID != "c2" {
		t.Errorf("output not sorted by key: %+v", first)
	}
	if first[0].State.Val != "MG" {
		t.Errorf("latest version should win, got %q", first[0].State.Val)
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		file string
		want Entity
	}{
		{"order_items_bronze.csv", EntityOrderItems},
		{"orders_bronze.csv", EntityOrders},
		{"CUSTOMERS_bronze.csv", EntityCustomers},
		{"products_bronze.csv.gz", EntityProducts},
		{"shipments_bronze.csv", EntityShipments},
	}
	for _, tt := range tests {
		got, err := Route(tt.file)
		if err != nil {
			t.Errorf("Route(%q) error: %v", tt.file, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Route(%q) = %s, want %s", tt.file, got, tt.want)
		}
	}

	if _, err := Route("unknown_table.csv"); err == nil {
		t.Error("unknown table should error")
	}
}
