package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Document types found in movement files.
const (
	DocumentTypeEntry = "EA" // entrada de almacén
	DocumentTypeExit  = "SA" // salida de almacén
)

// InventoryRecord is one append-only ledger entry derived from a movement
// file row. Quantity is signed: positive for inward movement, negative for
// outward. A document may repeat the same product across rows only when the
// rows differ by cost center. Records are never updated; they are deleted
// only en masse when their batch is replaced or the partition base is
// reloaded.
type InventoryRecord struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	BatchID        uuid.UUID       `json:"batch_id" db:"batch_id"`
	ProductID      uuid.UUID       `json:"product_id" db:"product_id"`
	Warehouse      string          `json:"warehouse" db:"warehouse"`
	Date           time.Time       `json:"date" db:"movement_date"`
	DocumentType   string          `json:"document_type" db:"document_type"`
	DocumentNumber string          `json:"document_number" db:"document_number"`
	Quantity       decimal.Decimal `json:"quantity" db:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	Total          decimal.Decimal `json:"total" db:"total"`
	Category       string          `json:"category" db:"category"`
	Lot            string          `json:"lot" db:"lot"`
	FinalQuantity  decimal.Decimal `json:"final_quantity" db:"final_quantity"`
	CostCenter     string          `json:"cost_center" db:"cost_center"`
}

// LedgerRow is an InventoryRecord joined with its product, the shape
// returned by record listings and product history.
type LedgerRow struct {
	ID                 uuid.UUID       `json:"id"`
	ProductCode        string          `json:"product_code"`
	ProductDescription string          `json:"product_description"`
	Warehouse          string          `json:"warehouse"`
	Date               time.Time       `json:"date"`
	DocumentType       string          `json:"document_type"`
	DocumentNumber     string          `json:"document_number"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
	Total              decimal.Decimal `json:"total"`
	Category           string          `json:"category"`
	CostCenter         string          `json:"cost_center"`
	BatchID            uuid.UUID       `json:"batch_id"`
}

// RecordFilter narrows record listings. Zero values mean "no filter".
type RecordFilter struct {
	Warehouse string
	Category  string
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
	Limit     int
}
