// Package tables defines the parquet schemas for the Silver and Gold layers
// and the conversions between cleaned records and their stored rows.
package tables

import (
	"time"
)

// SchemaVersion is the version of the table schemas.
// Increment this when making breaking changes.
const SchemaVersion = "1.0.0"

// LineageColumns carries the provenance attributes stamped on ingestion.
// Embedded in every Silver row.
type LineageColumns struct {
	SourceFolder string    `parquet:"_source_file_folder"`
	SourceFile   string    `parquet:"_source_file_name"`
	IngestDate   string    `parquet:"_source_file_ingest_date"`
	ModifiedTS   time.Time `parquet:"_source_file_modified_ts"`
	ProcessedTS  time.Time `parquet:"_processed_ts"`
}

// CustomerRow is a Silver customers row.
type CustomerRow struct {
	CustomerID string     `parquet:"customer_id"`
	State      *string    `parquet:"state,optional"`
	City       *string    `parquet:"city,optional"`
	CreatedTS  *time.Time `parquet:"created_ts,optional"`
	Phone      *string    `parquet:"phone,optional"`
	LineageColumns
}

// OrderRow is a Silver orders row.
type OrderRow struct {
	OrderID       string     `parquet:"order_id"`
	CustomerID    string     `parquet:"customer_id"`
	OrderTS       *time.Time `parquet:"order_ts,optional"`
	Status        *string    `parquet:"status,optional"`
	PaymentMethod *string    `parquet:"payment_method,optional"`
	TotalAmount   *float64   `parquet:"total_amount,optional"`
	Currency      *string    `parquet:"currency,optional"`
	SalesChannel  *string    `parquet:"sales_channel,optional"`
	LineageColumns
}

// OrderItemRow is a Silver order_items row.
type OrderItemRow struct {
	OrderID        string   `parquet:"order_id"`
	ProductID      string   `parquet:"product_id"`
	Quantity       *int64   `parquet:"quantity,optional"`
	UnitPrice      *float64 `parquet:"unit_price,optional"`
	DiscountAmount *float64 `parquet:"discount_amount,optional"`
	LineageColumns
}

// ProductRow is a Silver products row.
type ProductRow struct {
	ProductID string     `parquet:"product_id"`
	Category  *string    `parquet:"category,optional"`
	Brand     *string    `parquet:"brand,optional"`
	CreatedTS *time.Time `parquet:"created_ts,optional"`
	LineageColumns
}

// ShipmentRow is a Silver shipments row.
type ShipmentRow struct {
	OrderID        string     `parquet:"order_id"`
	Carrier        *string    `parquet:"carrier,optional"`
	ShippingCost   *float64   `parquet:"shipping_cost,optional"`
	ShippedTS      *time.Time `parquet:"shipped_ts,optional"`
	DeliveredTS    *time.Time `parquet:"delivered_ts,optional"`
	PromisedTS     *time.Time `parquet:"promised_ts,optional"`
	DeliveryStatus *string    `parquet:"delivery_status,optional"`
	LineageColumns
}

// DimCustomerRow is a Gold customer dimension row. Descriptive attributes
// only; the surrogate key is stable across runs for a given natural key.
type DimCustomerRow struct {
	CustomerKey string     `parquet:"customer_key"`
	CustomerID  string     `parquet:"customer_id"`
	State       *string    `parquet:"state,optional"`
	City        *string    `parquet:"city,optional"`
	CreatedTS   *time.Time `parquet:"created_ts,optional"`
}

// DimProductRow is a Gold product dimension row.
type DimProductRow struct {
	ProductKey string     `parquet:"product_key"`
	ProductID  string     `parquet:"product_id"`
	Category   *string    `parquet:"category,optional"`
	Brand      *string    `parquet:"brand,optional"`
	CreatedTS  *time.Time `parquet:"created_ts,optional"`
}

// FactOrderRow is a Gold order fact row: one row per order event with
// dimension foreign keys and derived metrics.
type FactOrderRow struct {
	OrderID           string     `parquet:"order_id"`
	CustomerKey       string     `parquet:"customer_key"`
	CustomerID        string     `parquet:"customer_id"`
	OrderTS           *time.Time `parquet:"order_ts,optional"`
	GrossAmount       *float64   `parquet:"gross_amount,optional"`
	DiscountTotal     *float64   `parquet:"discount_total,optional"`
	NetAmount         *float64   `parquet:"net_amount,optional"`
	PaymentMethod     *string    `parquet:"payment_method,optional"`
	StatusFinal       *string    `parquet:"status_final,optional"`
	Carrier           *string    `parquet:"carrier,optional"`
	ShippingCost      *float64   `parquet:"shipping_cost,optional"`
	ShippedTS         *time.Time `parquet:"shipped_ts,optional"`
	DeliveredTS       *time.Time `parquet:"delivered_ts,optional"`
	DeliveryTimeHours *float64   `parquet:"delivery_time_hours,optional"`
	IsLate            *bool      `parquet:"is_late,optional"`
}

// FactOrderItemRow is a Gold order line fact row.
type FactOrderItemRow struct {
	OrderID        string   `parquet:"order_id"`
	ProductKey     string   `parquet:"product_key"`
	ProductID      string   `parquet:"product_id"`
	Quantity       *int64   `parquet:"quantity,optional"`
	UnitPrice      *float64 `parquet:"unit_price,optional"`
	DiscountAmount *float64 `parquet:"discount_amount,optional"`
	ItemNetAmount  *float64 `parquet:"item_net_amount,optional"`
}

// Silver table names.
const (
	TableCustomers  = "customers"
	TableOrders     = "orders"
	TableOrderItems = "order_items"
	TableProducts   = "products"
	TableShipments  = "shipments"
)

// Gold table names.
const (
	TableDimCustomers   = "dim_customers"
	TableDimProducts    = "dim_products"
	TableFactOrders     = "fact_orders"
	TableFactOrderItems = "fact_order_items"
)
