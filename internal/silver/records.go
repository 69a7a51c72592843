package silver

import (
	"github.com/veralake/medallion-etl/internal/record"
)

// Customer is a cleaned customer entity version.
type Customer struct {
	CustomerID string
	State      record.Text
	City       record.Text
	CreatedTS  record.Timestamp
	Phone      record.Text
	Lineage    record.Lineage
}

// Order is a cleaned order entity version.
type Order struct {
	OrderID       string
	CustomerID    string
	OrderTS       record.Timestamp
	Status        record.Text
	PaymentMethod record.Text
	TotalAmount   record.Number
	Currency      record.Text
	SalesChannel  record.Text
	Lineage       record.Lineage
}

// OrderItem is a cleaned order line. Its dedup key is (order_id, product_id).
type OrderItem struct {
	OrderID        string
	ProductID      string
	Quantity       record.Integer
	UnitPrice      record.Number
	DiscountAmount record.Number
	Lineage        record.Lineage
}

// Product is a cleaned product entity version.
type Product struct {
	ProductID string
	Category  record.Text
	Brand     record.Text
	CreatedTS record.Timestamp
	Lineage   record.Lineage
}

// Shipment is a cleaned shipment entity version, keyed by order.
type Shipment struct {
	OrderID        string
	Carrier        record.Text
	ShippingCost   record.Number
	ShippedTS      record.Timestamp
	DeliveredTS    record.Timestamp
	PromisedTS     record.Timestamp
	DeliveryStatus record.Text
	Lineage        record.Lineage
}

// Tables bundles the cleaned output of one Silver pass.
type Tables struct {
	Customers  []Customer
	Orders     []Order
	OrderItems []OrderItem
	Products   []Product
	Shipments  []Shipment
}
