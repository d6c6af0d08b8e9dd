package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is one inventory item, unique per (code, inventory_name). Codes
// are stored with leading zeros stripped so the same physical product
// matches across base and update files. Products created from the base file
// carry the aggregated initial balance; products first seen in an update
// file are stubs with zero initial balance and cost. Attributes are never
// overwritten by movement files.
type Product struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	InventoryName   string          `json:"inventory_name" db:"inventory_name"`
	Code            string          `json:"code" db:"code"`
	Description     string          `json:"description" db:"description"`
	Group           string          `json:"group" db:"product_group"`
	InitialBalance  decimal.Decimal `json:"initial_balance" db:"initial_balance"`
	InitialUnitCost decimal.Decimal `json:"initial_unit_cost" db:"initial_unit_cost"`
}

// WarehouseDetail keeps one warehouse's share of a product's initial stock,
// created only during base import. Warehouse-scoped balance queries read
// these rows instead of the aggregated product balance so per-warehouse
// initial stock is neither double counted nor dropped.
type WarehouseDetail struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	ProductID       uuid.UUID       `json:"product_id" db:"product_id"`
	Warehouse       string          `json:"warehouse" db:"warehouse"`
	InitialQuantity decimal.Decimal `json:"initial_quantity" db:"initial_quantity"`
	InitialValue    decimal.Decimal `json:"initial_value" db:"initial_value"`
}
