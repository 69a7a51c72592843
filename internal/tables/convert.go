package tables

import (
	"github.com/veralake/medallion-etl/internal/record"
	"github.com/veralake/medallion-etl/internal/silver"
)

func lineageOf(l record.Lineage) LineageColumns {
	return LineageColumns{
		SourceFolder: l.SourceFolder,
		SourceFile:   l.SourceFile,
		IngestDate:   l.IngestDate,
		ModifiedTS:   l.ModifiedTS.UTC(),
		ProcessedTS:  l.ProcessedTS.UTC(),
	}
}

func (lc LineageColumns) lineage() record.Lineage {
	return record.Lineage{
		SourceFolder: lc.SourceFolder,
		SourceFile:   lc.SourceFile,
		IngestDate:   lc.IngestDate,
		ModifiedTS:   lc.ModifiedTS.UTC(),
		ProcessedTS:  lc.ProcessedTS.UTC(),
	}
}

// FromCustomer converts a cleaned record to its Silver row.
func FromCustomer(c silver.Customer) CustomerRow {
	return CustomerRow{
		CustomerID:     c.CustomerID,
		State:          c.State.Ptr(),
		City:           c.City.Ptr(),
		CreatedTS:      c.CreatedTS.Ptr(),
		Phone:          c.Phone.Ptr(),
		LineageColumns: lineageOf(c.Lineage),
	}
}

// ToRecord rebuilds the cleaned record from a stored Silver row.
func (r CustomerRow) ToRecord() silver.Customer {
	return silver.Customer{
		CustomerID: r.CustomerID,
		State:      record.TextFromPtr(r.State),
		City:       record.TextFromPtr(r.City),
		CreatedTS:  record.TimestampFromPtr(r.CreatedTS),
		Phone:      record.TextFromPtr(r.Phone),
		Lineage:    r.LineageColumns.lineage(),
	}
}

func FromOrder(o silver.Order) OrderRow {
	return OrderRow{
		OrderID:        o.OrderID,
		CustomerID:     o.CustomerID,
		OrderTS:        o.OrderTS.Ptr(),
		Status:         o.Status.Ptr(),
		PaymentMethod:  o.PaymentMethod.Ptr(),
		TotalAmount:    o.TotalAmount.Ptr(),
		Currency:       o.Currency.Ptr(),
		SalesChannel:   o.SalesChannel.Ptr(),
		LineageColumns: lineageOf(o.Lineage),
	}
}

func (r OrderRow) ToRecord() silver.Order {
	return silver.Order{
		OrderID:       r.OrderID,
		CustomerID:    r.CustomerID,
		OrderTS:       record.TimestampFromPtr(r.OrderTS),
		Status:        record.TextFromPtr(r.Status),
		PaymentMethod: record.TextFromPtr(r.PaymentMethod),
		TotalAmount:   record.NumberFromPtr(r.TotalAmount),
		Currency:      record.TextFromPtr(r.Currency),
		SalesChannel:  record.TextFromPtr(r.SalesChannel),
		Lineage:       r.LineageColumns.lineage(),
	}
}

func FromOrderItem(it silver.OrderItem) OrderItemRow {
	return OrderItemRow{
		OrderID:        it.OrderID,
		ProductID:      it.ProductID,
		Quantity:       it.Quantity.Ptr(),
		UnitPrice:      it.UnitPrice.Ptr(),
		DiscountAmount: it.DiscountAmount.Ptr(),
		LineageColumns: lineageOf(it.Lineage),
	}
}

func (r OrderItemRow) ToRecord() silver.OrderItem {
	return silver.OrderItem{
		OrderID:        r.OrderID,
		ProductID:      r.ProductID,
		Quantity:       record.IntegerFromPtr(r.Quantity),
		UnitPrice:      record.NumberFromPtr(r.UnitPrice),
		DiscountAmount: record.NumberFromPtr(r.DiscountAmount),
		Lineage:        r.LineageColumns.lineage(),
	}
}

func FromProduct(p silver.Product) ProductRow {
	return ProductRow{
		ProductID:      p.ProductID,
		Category:       p.Category.Ptr(),
		Brand:          p.Brand.Ptr(),
		CreatedTS:      p.CreatedTS.Ptr(),
		LineageColumns: lineageOf(p.Lineage),
	}
}

func (r ProductRow) ToRecord() silver.Product {
	return silver.Product{
		ProductID: r.ProductID,
		Category:  record.TextFromPtr(r.Category),
		Brand:     record.TextFromPtr(r.Brand),
		CreatedTS: record.TimestampFromPtr(r.CreatedTS),
		Lineage:   r.LineageColumns.lineage(),
	}
}

func FromShipment(s silver.Shipment) ShipmentRow {
	return ShipmentRow{
		OrderID:        s.OrderID,
		Carrier:        s.Carrier.Ptr(),
		ShippingCost:   s.ShippingCost.Ptr(),
		ShippedTS:      s.ShippedTS.Ptr(),
		DeliveredTS:    s.DeliveredTS.Ptr(),
		PromisedTS:     s.PromisedTS.Ptr(),
		DeliveryStatus: s.DeliveryStatus.Ptr(),
		LineageColumns: lineageOf(s.Lineage),
	}
}

func (r ShipmentRow) ToRecord() silver.Shipment {
	return silver.Shipment{
		OrderID:        r.OrderID,
		Carrier:        record.TextFromPtr(r.Carrier),
		ShippingCost:   record.NumberFromPtr(r.ShippingCost),
		ShippedTS:      record.TimestampFromPtr(r.ShippedTS),
		DeliveredTS:    record.TimestampFromPtr(r.DeliveredTS),
		PromisedTS:     record.TimestampFromPtr(r.PromisedTS),
		DeliveryStatus: record.TextFromPtr(r.DeliveryStatus),
		Lineage:        r.LineageColumns.lineage(),
	}
}
