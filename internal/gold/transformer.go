package gold

import (
	"log/slog"

	"github.com/veralake/medallion-etl/internal/logging"
	"github.com/veralake/medallion-etl/internal/tables"
)

// Input is the full set of published Silver tables the Gold pass reads.
type Input struct {
	Customers  []tables.CustomerRow
	Orders     []tables.OrderRow
	OrderItems []tables.OrderItemRow
	Products   []tables.ProductRow
	Shipments  []tables.ShipmentRow
}

// Output is the dimensional model produced by one Gold pass.
type Output struct {
	DimCustomers   []tables.DimCustomerRow
	DimProducts    []tables.DimProductRow
	FactOrders     []tables.FactOrderRow
	FactOrderItems []tables.FactOrderItemRow
}

// Transformer builds the Gold layer from the Silver tables. Dimensions are
// built first so the fact builders can validate foreign keys against them.
type Transformer struct {
	log *slog.Logger
}

func NewTransformer() *Transformer {
	return &Transformer{log: logging.Component("gold")}
}

// Transform runs the full dimensional build.
func (t *Transformer) Transform(in Input) (Output, Stats) {
	out := Output{
		DimCustomers: BuildDimCustomers(in.Customers),
		DimProducts:  BuildDimProducts(in.Products),
	}

	customerKeys := make(map[string]string, len(out.DimCustomers))
	for _, d := range out.DimCustomers {
		customerKeys[d.CustomerID] = d.CustomerKey
	}
	productKeys := make(map[string]string, len(out.DimProducts))
	for _, d := range out.DimProducts {
		productKeys[d.ProductID] = d.ProductKey
	}
	orderIDs := make(map[string]bool, len(in.Orders))
	for _, o := range in.Orders {
		orderIDs[o.OrderID] = true
	}

	var stats Stats
	out.FactOrderItems, stats.ItemsRejected = BuildFactOrderItems(in.OrderItems, orderIDs, productKeys)
	out.FactOrders, stats.OrdersRejected = BuildFactOrders(in.Orders, out.FactOrderItems, in.Shipments, customerKeys)

	if stats.ItemsRejected > 0 {
		t.log.Warn("rejected order lines with dangling keys", "count", stats.ItemsRejected)
	}
	if stats.OrdersRejected > 0 {
		t.log.Warn("rejected orders with dangling customer keys", "count", stats.OrdersRejected)
	}
	t.log.Info("dimensional build complete",
		"dim_customers", len(out.DimCustomers),
		"dim_products", len(out.DimProducts),
		"fact_orders", len(out.FactOrders),
		"fact_order_items", len(out.FactOrderItems))

	return out, stats
}
