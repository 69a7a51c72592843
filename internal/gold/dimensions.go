// Package gold shapes the cleaned Silver tables into a dimensional model:
// descriptive dimensions with stable surrogate keys and per-event fact
// tables with derived metrics.
package gold

import (
	"github.com/google/uuid"

	"github.com/veralake/medallion-etl/internal/tables"
)

// Fixed namespaces for surrogate key derivation. The same natural key must
// map to the same surrogate on every run, so the keys are name-based UUIDs
// rather than sequence numbers.
var (
	nsCustomer = uuid.MustParse("9a1f8b54-2d6e-4c0a-9f3b-5e7d1c2a8b40")
	nsProduct  = uuid.MustParse("c47e3d19-8f02-4b6d-a1c5-0e9b7f4d2361")
)

// CustomerKey derives the stable surrogate key for a customer natural key.
func CustomerKey(customerID string) string {
	return uuid.NewSHA1(nsCustomer, []byte(customerID)).String()
}

// ProductKey derives the stable surrogate key for a product natural key.
func ProductKey(productID string) string {
	return uuid.NewSHA1(nsProduct, []byte(productID)).String()
}

// BuildDimCustomers projects the Silver customers table into the customer
// dimension. Operational fields like the phone number stay behind in
// Silver; the dimension carries descriptive attributes only.
func BuildDimCustomers(customers []tables.CustomerRow) []tables.DimCustomerRow {
	dims := make([]tables.DimCustomerRow, 0, len(customers))
	for _, c := range customers {
		dims = append(dims, tables.DimCustomerRow{
			CustomerKey: CustomerKey(c.CustomerID),
			CustomerID:  c.CustomerID,
			State:       c.State,
			City:        c.City,
			CreatedTS:   c.CreatedTS,
		})
	}
	return dims
}

// BuildDimProducts projects the Silver products table into the product
// dimension.
func BuildDimProducts(products []tables.ProductRow) []tables.DimProductRow {
	dims := make([]tables.DimProductRow, 0, len(products))
	for _, p := range products {
		dims = append(dims, tables.DimProductRow{
			ProductKey: ProductKey(p.ProductID),
			ProductID:  p.ProductID,
			Category:   p.Category,
			Brand:      p.Brand,
			CreatedTS:  p.CreatedTS,
		})
	}
	return dims
}
