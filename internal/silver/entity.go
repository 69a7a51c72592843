// Package silver cleans and standardizes raw records into typed,
// deduplicated entity tables.
package silver

import (
	"errors"
	"fmt"
	"strings"
)

// Entity identifies one of the raw entity tables the pipeline understands.
type Entity string

const (
	EntityCustomers  Entity = "customers"
	EntityOrders     Entity = "orders"
	EntityOrderItems Entity = "order_items"
	EntityProducts   Entity = "products"
	EntityShipments  Entity = "shipments"
)

// Entities lists every entity table in processing order.
func Entities() []Entity {
	return []Entity{
		EntityCustomers,
		EntityOrders,
		EntityOrderItems,
		EntityProducts,
		EntityShipments,
	}
}

// ErrUnknownTable is returned when a raw file name matches no entity.
var ErrUnknownTable = errors.New("no processor registered for table")

// routing is checked in order; order_items must come before orders so the
// substring match resolves correctly.
var routing = []struct {
	match  string
	entity Entity
}{
	{"order_items", EntityOrderItems},
	{"orders", EntityOrders},
	{"customers", EntityCustomers},
	{"products", EntityProducts},
	{"shipments", EntityShipments},
}

// Route resolves a raw file name to its entity table.
func Route(fileName string) (Entity, error) {
	name := strings.ToLower(fileName)
	for _, r := range routing {
		if strings.Contains(name, r.match) {
			return r.entity, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownTable, fileName)
}
