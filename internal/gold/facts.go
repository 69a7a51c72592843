package gold

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/veralake/medallion-etl/internal/normalize"
	"github.com/veralake/medallion-etl/internal/tables"
)

// Stats counts the records a fact pass rejected because a foreign key
// resolved to no dimension or parent row. Rejected records never reach the
// published tables.
type Stats struct {
	OrdersRejected int
	ItemsRejected  int
}

func moneyPtr(d decimal.Decimal) *float64 {
	v := normalize.RoundMoney(d).InexactFloat64()
	return &v
}

// decOf treats a null metric as zero for aggregation. The Silver table
// keeps the null; only the derived totals coalesce.
func decOf(p *float64) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*p)
}

func intOf(p *int64) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(*p)
}

// BuildFactOrderItems builds the order line fact table. Lines whose order
// is absent from the orders table, or whose product is absent from the
// product dimension, are rejected rather than published with dangling keys.
func BuildFactOrderItems(items []tables.OrderItemRow, orderIDs map[string]bool, productKeys map[string]string) ([]tables.FactOrderItemRow, int) {
	rows := make([]tables.FactOrderItemRow, 0, len(items))
	rejected := 0
	for _, it := range items {
		key, ok := productKeys[it.ProductID]
		if !ok || !orderIDs[it.OrderID] {
			rejected++
			continue
		}

		net := intOf(it.Quantity).Mul(decOf(it.UnitPrice)).Sub(decOf(it.DiscountAmount))
		rows = append(rows, tables.FactOrderItemRow{
			OrderID:        it.OrderID,
			ProductKey:     key,
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			DiscountAmount: it.DiscountAmount,
			ItemNetAmount:  moneyPtr(net),
		})
	}
	return rows, rejected
}

// BuildFactOrders builds the order fact table: one row per order with
// monetary totals aggregated from its accepted lines and delivery metrics
// joined from the shipments table. Orders whose customer is absent from
// the customer dimension are rejected.
func BuildFactOrders(orders []tables.OrderRow, items []tables.FactOrderItemRow, shipments []tables.ShipmentRow, customerKeys map[string]string) ([]tables.FactOrderRow, int) {
	type totals struct {
		gross    decimal.Decimal
		discount decimal.Decimal
	}
	perOrder := make(map[string]totals, len(orders))
	for _, it := range items {
		t := perOrder[it.OrderID]
		t.gross = t.gross.Add(intOf(it.Quantity).Mul(decOf(it.UnitPrice)))
		t.discount = t.discount.Add(decOf(it.DiscountAmount))
		perOrder[it.OrderID] = t
	}

	shipmentByOrder := make(map[string]tables.ShipmentRow, len(shipments))
	for _, s := range shipments {
		shipmentByOrder[s.OrderID] = s
	}

	rows := make([]tables.FactOrderRow, 0, len(orders))
	rejected := 0
	for _, o := range orders {
		key, ok := customerKeys[o.CustomerID]
		if !ok {
			rejected++
			continue
		}

		t := perOrder[o.OrderID]
		row := tables.FactOrderRow{
			OrderID:       o.OrderID,
			CustomerKey:   key,
			CustomerID:    o.CustomerID,
			OrderTS:       o.OrderTS,
			GrossAmount:   moneyPtr(t.gross),
			DiscountTotal: moneyPtr(t.discount),
			NetAmount:     moneyPtr(t.gross.Sub(t.discount)),
			PaymentMethod: o.PaymentMethod,
			StatusFinal:   o.Status,
		}

		if s, ok := shipmentByOrder[o.OrderID]; ok {
			row.Carrier = s.Carrier
			row.ShippingCost = s.ShippingCost
			row.ShippedTS = s.ShippedTS
			row.DeliveredTS = s.DeliveredTS
			row.DeliveryTimeHours = deliveryHours(s.ShippedTS, s.DeliveredTS)
			row.IsLate = lateFlag(s.DeliveredTS, s.PromisedTS)
		}

		rows = append(rows, row)
	}
	return rows, rejected
}

// deliveryHours is the shipped-to-delivered span in hours, or null when
// either end is missing.
func deliveryHours(shipped, delivered *time.Time) *float64 {
	if shipped == nil || delivered == nil {
		return nil
	}
	h := decimal.NewFromFloat(delivered.Sub(*shipped).Hours()).Round(2).InexactFloat64()
	return &h
}

// lateFlag compares the actual delivery against the promised instant. The
// flag stays null when either side is missing so a missing promise never
// reads as on time.
func lateFlag(delivered, promised *time.Time) *bool {
	if delivered == nil || promised == nil {
		return nil
	}
	late := delivered.After(*promised)
	return &late
}
