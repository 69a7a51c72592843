package gold

import (
	"testing"
	"time"

	"github.com/veralake/medallion-etl/internal/tables"
)

func fptr(v float64) *float64   { return &v }
func iptr(v int64) *int64       { return &v }
func sptr(v string) *string     { return &v }
func tptr(v time.Time) *time.Time { return &v }

func TestSurrogateKeysStable(t *testing.T) {
	if CustomerKey("C123") != CustomerKey("C123") {
		t.Error("same natural key must yield the same surrogate")
	}
	if CustomerKey("C123") == CustomerKey("C124") {
		t.Error("distinct natural keys must yield distinct surrogates")
	}
	if CustomerKey("X1") == ProductKey("X1") {
		t.Error("customer and product namespaces must not collide")
	}
	if got := CustomerKey("C123"); len(got) != 36 {
		t.Errorf("surrogate %q is not a canonical UUID", got)
	}
}

func TestBuildDimCustomers(t *testing.T) {
	created := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	dims := BuildDimCustomers([]tables.CustomerRow{
		{CustomerID: "C1", State: sptr("SP"), City: sptr("sao paulo"), CreatedTS: tptr(created), Phone: sptr("11987654321")},
		{CustomerID: "C2"},
	})
	if len(dims) != 2 {
		t.Fatalf("got %d rows, want 2", len(dims))
	}
	if dims[0].CustomerKey != CustomerKey("C1") {
		t.Errorf("CustomerKey = %q", dims[0].CustomerKey)
	}
	if *dims[0].State != "SP" || *dims[0].City != "sao paulo" || !dims[0].CreatedTS.Equal(created) {
		t.Errorf("attributes not carried: %+v", dims[0])
	}
	if dims[1].State != nil || dims[1].City != nil || dims[1].CreatedTS != nil {
		t.Errorf("null attributes must stay null: %+v", dims[1])
	}
}

func TestBuildFactOrderItems(t *testing.T) {
	orderIDs := map[string]bool{"O1": true}
	productKeys := map[string]string{"P1": ProductKey("P1")}

	items := []tables.OrderItemRow{
		{OrderID: "O1", ProductID: "P1", Quantity: iptr(2), UnitPrice: fptr(50), DiscountAmount: fptr(15.005)},
		{OrderID: "O1", ProductID: "P1", Quantity: nil, UnitPrice: fptr(10)},
		{OrderID: "O1", ProductID: "P9"},
		{OrderID: "O9", ProductID: "P1"},
	}

	rows, rejected := BuildFactOrderItems(items, orderIDs, productKeys)
	if rejected != 2 {
		t.Fatalf("rejected = %d, want 2 dangling lines", rejected)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	if rows[0].ProductKey != ProductKey("P1") {
		t.Errorf("ProductKey = %q", rows[0].ProductKey)
	}
	if got := *rows[0].ItemNetAmount; got != 85 {
		t.Errorf("ItemNetAmount = %v, want 85.00 after half-up rounding", got)
	}
	if got := *rows[1].ItemNetAmount; got != 0 {
		t.Errorf("null quantity must aggregate as zero, got %v", got)
	}
	if rows[1].Quantity != nil {
		t.Error("null quantity must stay null on the published row")
	}
}

func TestBuildFactOrders(t *testing.T) {
	customerKeys := map[string]string{"C1": CustomerKey("C1")}
	orders := []tables.OrderRow{
		{OrderID: "O1", CustomerID: "C1", Status: sptr("delivered"), PaymentMethod: sptr("credit_card")},
		{OrderID: "O2", CustomerID: "C1"},
		{OrderID: "O3", CustomerID: "C-gone"},
	}
	items := []tables.FactOrderItemRow{
		{OrderID: "O1", Quantity: iptr(2), UnitPrice: fptr(50), DiscountAmount: fptr(15.005)},
		{OrderID: "O1", Quantity: iptr(1), UnitPrice: fptr(10)},
	}
	shipped := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	delivered := shipped.Add(48*time.Hour + 30*time.Minute)
	promised := shipped.Add(24 * time.Hour)
	shipments := []tables.ShipmentRow{
		{OrderID: "O1", Carrier: sptr("correios"), ShippingCost: fptr(12.5),
			ShippedTS: tptr(shipped), DeliveredTS: tptr(delivered), PromisedTS: tptr(promised)},
	}

	rows, rejected := BuildFactOrders(orders, items, shipments, customerKeys)
	if rejected != 1 {
		t.Fatalf("rejected = %d, want 1 dangling customer", rejected)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	o1 := rows[0]
	if *o1.GrossAmount != 110 {
		t.Errorf("GrossAmount = %v, want 110", *o1.GrossAmount)
	}
	if *o1.DiscountTotal != 15.01 {
		t.Errorf("DiscountTotal = %v, want 15.01", *o1.DiscountTotal)
	}
	if *o1.NetAmount != 95 {
		t.Errorf("NetAmount = %v, want 95.00 from half-up rounding of 94.995", *o1.NetAmount)
	}
	if *o1.Carrier != "correios" || *o1.ShippingCost != 12.5 {
		t.Errorf("shipment join missing: %+v", o1)
	}
	if *o1.DeliveryTimeHours != 48.5 {
		t.Errorf("DeliveryTimeHours = %v, want 48.5", *o1.DeliveryTimeHours)
	}
	if o1.IsLate == nil || !*o1.IsLate {
		t.Error("delivered after promised must flag late")
	}

	o2 := rows[1]
	if *o2.GrossAmount != 0 || *o2.NetAmount != 0 {
		t.Errorf("order without lines must total zero: %+v", o2)
	}
	if o2.Carrier != nil || o2.DeliveryTimeHours != nil || o2.IsLate != nil {
		t.Errorf("order without shipment must keep delivery fields null: %+v", o2)
	}
}

func TestLateFlagNullWhenPromiseMissing(t *testing.T) {
	delivered := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	if got := lateFlag(&delivered, nil); got != nil {
		t.Error("missing promise must not read as on time")
	}
	promised := delivered.Add(time.Hour)
	if got := lateFlag(&delivered, &promised); got == nil || *got {
		t.Error("delivered before promised must read as on time")
	}
}

func TestTransform(t *testing.T) {
	in := Input{
		Customers: []tables.CustomerRow{{CustomerID: "C1"}},
		Products:  []tables.ProductRow{{ProductID: "P1"}},
		Orders: []tables.OrderRow{
			{OrderID: "O1", CustomerID: "C1"},
			{OrderID: "O2", CustomerID: "C-gone"},
		},
		OrderItems: []tables.OrderItemRow{
			{OrderID: "O1", ProductID: "P1", Quantity: iptr(3), UnitPrice: fptr(20)},
			{OrderID: "O1", ProductID: "P-gone"},
		},
	}

	out, stats := NewTransformer().Transform(in)
	if len(out.DimCustomers) != 1 || len(out.DimProducts) != 1 {
		t.Fatalf("dims = %d/%d", len(out.DimCustomers), len(out.DimProducts))
	}
	if stats.OrdersRejected != 1 || stats.ItemsRejected != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(out.FactOrders) != 1 || len(out.FactOrderItems) != 1 {
		t.Fatalf("facts = %d/%d", len(out.FactOrders), len(out.FactOrderItems))
	}
	if out.FactOrders[0].CustomerKey != out.DimCustomers[0].CustomerKey {
		t.Error("fact must carry the dimension surrogate")
	}
	if *out.FactOrders[0].NetAmount != 60 {
		t.Errorf("NetAmount = %v, want 60", *out.FactOrders[0].NetAmount)
	}
}
