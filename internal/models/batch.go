package models

import (
	"time"

	"github.com/google/uuid"
)

// ImportBatch records one upload transaction. The checksum is an
// order-independent fingerprint of every uploaded file, unique per
// inventory, so re-uploading the same file set replaces the prior batch
// instead of accumulating duplicates.
type ImportBatch struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	InventoryName string     `json:"inventory_name" db:"inventory_name"`
	FileName      string     `json:"file_name" db:"file_name"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	ProcessedAt   *time.Time `json:"processed_at" db:"processed_at"`
	RowsTotal     int        `json:"rows_total" db:"rows_total"`
	RowsImported  int        `json:"rows_imported" db:"rows_imported"`
	Checksum      string     `json:"checksum" db:"checksum"`
}
