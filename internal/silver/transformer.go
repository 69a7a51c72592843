package silver

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/veralake/medallion-etl/internal/logging"
	"github.com/veralake/medallion-etl/internal/normalize"
	"github.com/veralake/medallion-etl/internal/record"
)

// Delivery statuses that contradict the presence of shipping timestamps.
// A label that was only created cannot have shipped; in-transit or lost
// shipments cannot have been delivered.
var (
	notShippedStatuses   = map[string]bool{"label_created": true}
	notDeliveredStatuses = map[string]bool{"label_created": true, "in_transit": true, "lost": true}
)

// Stats summarizes one table's Silver pass.
type Stats struct {
	Entity       Entity
	RowsIn       int
	RowsOut      int
	DroppedNoKey int // records missing their entity identifier
	Duplicates   int // losing versions discarded by the deduplicator
	NulledFields int // non-empty raw values that failed normalization
}

// Transformer applies the field normalizers and the deduplicator to raw
// batches, one entity table at a time.
type Transformer struct {
	log *slog.Logger
}

func NewTransformer() *Transformer {
	return &Transformer{log: logging.Component("silver")}
}

// Transform runs the processor for one entity table and stores the cleaned
// rows into out.
func (t *Transformer) Transform(e Entity, raws []record.Raw, out *Tables) (Stats, error) {
	switch e {
	case EntityCustomers:
		rows, stats := t.Customers(raws)
		out.Customers = rows
		return stats, nil
	case EntityOrders:
		rows, stats := t.Orders(raws)
		out.Orders = rows
		return stats, nil
	case EntityOrderItems:
		rows, stats := t.OrderItems(raws)
		out.OrderItems = rows
		return stats, nil
	case EntityProducts:
		rows, stats := t.Products(raws)
		out.Products = rows
		return stats, nil
	case EntityShipments:
		rows, stats := t.Shipments(raws)
		out.Shipments = rows
		return stats, nil
	default:
		return Stats{}, fmt.Errorf("%w: %s", ErrUnknownTable, e)
	}
}

// nullCounter tracks raw values that were present but unresolvable.
type nullCounter struct{ n int }

func (c *nullCounter) track(raw string, valid bool) {
	if raw != "" && !valid {
		c.n++
	}
}

// Customers cleans the customers table: validated UF code, normalized city,
// digit-only phone, parsed creation timestamp.
func (t *Transformer) Customers(raws []record.Raw) ([]Customer, Stats) {
	stats := Stats{Entity: EntityCustomers, RowsIn: len(raws)}
	var nc nullCounter

	rows := make([]Customer, 0, len(raws))
	for _, raw := range raws {
		id := raw.Get("customer_id")
		if id == "" {
			stats.DroppedNoKey++
			continue
		}

		c := Customer{
			CustomerID: id,
			State:      normalize.StateCode(raw.Get("state")),
			City:       normalize.CleanString(raw.Get("city")),
			CreatedTS:  normalize.ParseTimestamp(raw.Get("created_ts")),
			Phone:      normalize.Phone(raw.Get("phone")),
			Lineage:    raw.Lineage,
		}
		nc.track(raw.Get("state"), c.State.Valid)
		nc.track(raw.Get("created_ts"), c.CreatedTS.Valid)
		nc.track(raw.Get("phone"), c.Phone.Valid)
		rows = append(rows, c)
	}

	deduped := Deduplicate(rows,
		func(c Customer) string { return c.CustomerID },
		func(c Customer) record.Lineage { return c.Lineage })
	stats.Duplicates = len(rows) - len(deduped)

	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].CustomerID < deduped[j].CustomerID
	})

	stats.RowsOut = len(deduped)
	stats.NulledFields = nc.n
	t.logStats(stats)
	return deduped, stats
}

// Orders cleans the orders table.
func (t *Transformer) Orders(raws []record.Raw) ([]Order, Stats) {
	stats := Stats{Entity: EntityOrders, RowsIn: len(raws)}
	var nc nullCounter

	rows := make([]Order, 0, len(raws))
	for _, raw := range raws {
		orderID := raw.Get("order_id")
		customerID := raw.Get("customer_id")
		if orderID == "" || customerID == "" {
			stats.DroppedNoKey++
			continue
		}

		o := Order{
			OrderID:       orderID,
			CustomerID:    customerID,
			OrderTS:       normalize.ParseTimestamp(raw.Get("order_ts")),
			Status:        normalize.CleanString(raw.Get("status")),
			PaymentMethod: normalize.CleanString(raw.Get("payment_method")),
			TotalAmount:   normalize.Money(raw.Get("total_amount")),
			Currency:      normalize.CleanString(raw.Get("currency")),
			SalesChannel:  normalize.CleanString(raw.Get("sales_channel")),
			Lineage:       raw.Lineage,
		}
		nc.track(raw.Get("order_ts"), o.OrderTS.Valid)
		nc.track(raw.Get("total_amount"), o.TotalAmount.Valid)
		rows = append(rows, o)
	}

	deduped := Deduplicate(rows,
		func(o Order) string { return o.OrderID },
		func(o Order) record.Lineage { return o.Lineage })
	stats.Duplicates = len(rows) - len(deduped)

	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].OrderID < deduped[j].OrderID
	})

	stats.RowsOut = len(deduped)
	stats.NulledFields = nc.n
	t.logStats(stats)
	return deduped, stats
}

// OrderItems cleans the order line table, keyed by (order_id, product_id).
func (t *Transformer) OrderItems(raws []record.Raw) ([]OrderItem, Stats) {
	stats := Stats{Entity: EntityOrderItems, RowsIn: len(raws)}
	var nc nullCounter

	rows := make([]OrderItem, 0, len(raws))
	for _, raw := range raws {
		orderID := raw.Get("order_id")
		productID := raw.Get("product_id")
		if orderID == "" || productID == "" {
			stats.DroppedNoKey++
			continue
		}

		it := OrderItem{
			OrderID:        orderID,
			ProductID:      productID,
			Quantity:       normalize.Quantity(raw.Get("quantity")),
			UnitPrice:      normalize.Money(raw.Get("unit_price")),
			DiscountAmount: normalize.Money(raw.Get("discount_amount")),
			Lineage:        raw.Lineage,
		}
		nc.track(raw.Get("quantity"), it.Quantity.Valid)
		nc.track(raw.Get("unit_price"), it.UnitPrice.Valid)
		nc.track(raw.Get("discount_amount"), it.DiscountAmount.Valid)
		rows = append(rows, it)
	}

	deduped := Deduplicate(rows,
		func(it OrderItem) string { return it.OrderID + "\x00" + it.ProductID },
		func(it OrderItem) record.Lineage { return it.Lineage })
	stats.Duplicates = len(rows) - len(deduped)

	sort.Slice(deduped, func(i, j int) bool {
		if deduped[i].OrderID != deduped[j].OrderID {
			return deduped[i].OrderID < deduped[j].OrderID
		}
		return deduped[i].ProductID < deduped[j].ProductID
	})

	stats.RowsOut = len(deduped)
	stats.NulledFields = nc.n
	t.logStats(stats)
	return deduped, stats
}

// Products cleans the products table.
func (t *Transformer) Products(raws []record.Raw) ([]Product, Stats) {
	stats := Stats{Entity: EntityProducts, RowsIn: len(raws)}
	var nc nullCounter

	rows := make([]Product, 0, len(raws))
	for _, raw := range raws {
		id := raw.Get("product_id")
		if id == "" {
			stats.DroppedNoKey++
			continue
		}

		p := Product{
			ProductID: id,
			Category:  normalize.CleanString(raw.Get("category")),
			Brand:     normalize.CleanString(raw.Get("brand")),
			CreatedTS: normalize.ParseTimestamp(raw.Get("created_ts")),
			Lineage:   raw.Lineage,
		}
		nc.track(raw.Get("created_ts"), p.CreatedTS.Valid)
		rows = append(rows, p)
	}

	deduped := Deduplicate(rows,
		func(p Product) string { return p.ProductID },
		func(p Product) record.Lineage { return p.Lineage })
	stats.Duplicates = len(rows) - len(deduped)

	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].ProductID < deduped[j].ProductID
	})

	stats.RowsOut = len(deduped)
	stats.NulledFields = nc.n
	t.logStats(stats)
	return deduped, stats
}

// Shipments cleans the shipments table. Shipping timestamps are reconciled
// with the delivery status before the pair ordering check: a status that
// says the parcel never shipped (or was never delivered) clears the
// corresponding stamps.
func (t *Transformer) Shipments(raws []record.Raw) ([]Shipment, Stats) {
	stats := Stats{Entity: EntityShipments, RowsIn: len(raws)}
	var nc nullCounter

	rows := make([]Shipment, 0, len(raws))
	for _, raw := range raws {
		orderID := raw.Get("order_id")
		if orderID == "" {
			stats.DroppedNoKey++
			continue
		}

		status := normalize.CleanString(raw.Get("delivery_status"))

		rawShipped := raw.Get("shipped_ts")
		rawDelivered := raw.Get("delivered_ts")
		if status.Valid && notShippedStatuses[status.Val] {
			rawShipped, rawDelivered = "", ""
		} else if status.Valid && notDeliveredStatuses[status.Val] {
			rawDelivered = ""
		}

		shipped, delivered := normalize.TimestampPair(rawShipped, rawDelivered)

		s := Shipment{
			OrderID:        orderID,
			Carrier:        normalize.CleanString(raw.Get("carrier")),
			ShippingCost:   normalize.Money(raw.Get("shipping_cost")),
			ShippedTS:      shipped,
			DeliveredTS:    delivered,
			PromisedTS:     normalize.ParseTimestamp(raw.Get("promised_ts")),
			DeliveryStatus: status,
			Lineage:        raw.Lineage,
		}
		nc.track(rawShipped, s.ShippedTS.Valid)
		nc.track(rawDelivered, s.DeliveredTS.Valid)
		nc.track(raw.Get("shipping_cost"), s.ShippingCost.Valid)
		nc.track(raw.Get("promised_ts"), s.PromisedTS.Valid)
		rows = append(rows, s)
	}

	deduped := Deduplicate(rows,
		func(s Shipment) string { return s.OrderID },
		func(s Shipment) record.Lineage { return s.Lineage })
	stats.Duplicates = len(rows) - len(deduped)

	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].OrderID < deduped[j].OrderID
	})

	stats.RowsOut = len(deduped)
	stats.NulledFields = nc.n
	t.logStats(stats)
	return deduped, stats
}

func (t *Transformer) logStats(s Stats) {
	t.log.Info("table cleaned",
		"table", string(s.Entity),
		"rows_in", s.RowsIn,
		"rows_out", s.RowsOut,
		"dropped_no_key", s.DroppedNoKey,
		"duplicates", s.Duplicates,
		"nulled_fields", s.NulledFields,
	)
}
