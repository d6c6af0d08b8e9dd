package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rotation classifications derived from the monthly running balance of the
// current calendar year.
const (
	RotationActive   = "Activo"
	RotationStagnant = "Estancado"
	RotationObsolete = "Obsoleto"
)

// AnalysisFilter narrows the per-product analysis. Category, Warehouse and
// Search are applied before derivation; Rotation, Stagnant and HighRotation
// apply to the computed fields afterwards.
type AnalysisFilter struct {
	Category     string
	Warehouse    string
	Search       string
	Rotation     string
	Stagnant     *bool
	HighRotation *bool
	Limit        int
}

// AnalysisRow is the flat per-product analytics record.
type AnalysisRow struct {
	Code         string          `json:"code"`
	Description  string          `json:"description"`
	Group        string          `json:"group"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	CurrentValue decimal.Decimal `json:"current_value"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Consumed     bool            `json:"consumed"`
	Stagnant     bool            `json:"stagnant"`
	Rotation     string          `json:"rotation"`
	HighRotation bool            `json:"high_rotation"`
}

// MonthlyFilter narrows the trailing monthly movement report.
type MonthlyFilter struct {
	Warehouse string
	Category  string
	Search    string
}

// MonthlyMovement is one month of aggregated flow, oldest first.
type MonthlyMovement struct {
	Month          string          `json:"month"` // YYYY-MM
	Entries        decimal.Decimal `json:"entries"`
	Exits          decimal.Decimal `json:"exits"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// Summary aggregates one partition.
type Summary struct {
	InventoryName string          `json:"inventory_name"`
	TotalProducts int             `json:"total_products"`
	TotalRecords  int             `json:"total_records"`
	TotalBatches  int             `json:"total_batches"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// RowError is one skipped source row and the reason it was dropped.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportOutcome accumulates what one importer pass actually did, so callers
// can assert on exactly what was created and what was dropped instead of
// digging through logs.
type ImportOutcome struct {
	Created    int        `json:"created"`
	Duplicates int        `json:"duplicates"`
	RowErrors  []RowError `json:"row_errors,omitempty"`
}

// Merge folds another outcome into this one.
func (o *ImportOutcome) Merge(other ImportOutcome) {
	o.Created += other.Created
	o.Duplicates += other.Duplicates
	o.RowErrors = append(o.RowErrors, other.RowErrors...)
}

// ImportSummary is the result of one successful upload transaction.
type ImportSummary struct {
	BatchID       uuid.UUID `json:"batch_id"`
	InventoryName string    `json:"inventory_name"`
	BaseRecords   int       `json:"base_records"`
	UpdateRecords int       `json:"update_records"`
	Duplicates    int       `json:"duplicates"`
}
