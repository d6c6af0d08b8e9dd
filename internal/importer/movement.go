package importer

import (
	"context"
	"fmt"
	"strings"

	"stockledger/internal/models"
	"stockledger/internal/repositories"
	"stockledger/internal/spreadsheet"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MovementImporter consumes update files: each row becomes one signed
// ledger entry, with stub products created for codes the base never saw,
// and cross-batch duplicate rows skipped.
type MovementImporter struct {
	products repositories.ProductRepository
	records  repositories.RecordRepository
	log      *logrus.Entry
}

func NewMovementImporter(products repositories.ProductRepository, records repositories.RecordRepository) *MovementImporter {
	return &MovementImporter{
		products: products,
		records:  records,
		log:      logrus.WithField("component", "movement_importer"),
	}
}

// Run imports one resolved update table under the given batch.
func (im *MovementImporter) Run(ctx context.Context, inventoryName string, batchID uuid.UUID, table *spreadsheet.Table) (models.ImportOutcome, error) {
	outcome := models.ImportOutcome{}

	if missing := table.Missing(spreadsheet.UpdateRequiredColumns); len(missing) > 0 {
		return outcome, fmt.Errorf("update file missing required columns: %s", strings.Join(missing, ", "))
	}

	products, err := im.resolveProducts(ctx, inventoryName, table)
	if err != nil {
		return outcome, err
	}

	var queue []*models.InventoryRecord
	for i := 0; i < table.Len(); i++ {
		code := spreadsheet.NormalizeCode(table.Get(i, spreadsheet.ColItem))
		rawDate := strings.TrimSpace(table.Get(i, spreadsheet.ColDate))
		rawDoc := strings.TrimSpace(table.Get(i, spreadsheet.ColDocument))
		if code == "" || rawDate == "" || rawDoc == "" {
			continue
		}

		product, ok := products[code]
		if !ok {
			outcome.RowErrors = append(outcome.RowErrors, models.RowError{
				Row: i, Reason: fmt.Sprintf("product %s could not be resolved", code),
			})
			continue
		}

		entries := spreadsheet.CleanNumber(table.Get(i, spreadsheet.ColEntries))
		exits := spreadsheet.CleanNumber(table.Get(i, spreadsheet.ColExits))
		quantity := entries.Sub(exits)
		if quantity.IsZero() {
			continue // no-movement rows carry no ledger value
		}

		date, err := spreadsheet.ParseLedgerDate(rawDate)
		if err != nil {
			outcome.RowErrors = append(outcome.RowErrors, models.RowError{Row: i, Reason: err.Error()})
			continue
		}

		docType, docNumber := spreadsheet.ParseDocument(rawDoc)

		unitCost := spreadsheet.CleanNumber(table.Get(i, spreadsheet.ColUnitCost))
		total := spreadsheet.CleanNumber(table.Get(i, spreadsheet.ColTotal))
		if total.IsZero() {
			total = quantity.Abs().Mul(unitCost)
		}
		if unitCost.IsZero() && !total.IsZero() {
			unitCost = total.Div(quantity.Abs())
		}

		warehouse := spreadsheet.CleanText(table.Get(i, spreadsheet.ColLocation))
		costCenter := spreadsheet.CleanText(table.Get(i, spreadsheet.ColCostCenter))

		duplicate, err := im.records.ExistsDuplicate(ctx, product.ID, docType, docNumber, costCenter, date, warehouse)
		if err != nil {
			return outcome, err
		}
		if duplicate {
			outcome.Duplicates++
			continue
		}

		queue = append(queue, &models.InventoryRecord{
			ID:             uuid.New(),
			BatchID:        batchID,
			ProductID:      product.ID,
			Warehouse:      warehouse,
			Date:           date,
			DocumentType:   docType,
			DocumentNumber: docNumber,
			Quantity:       quantity,
			UnitCost:       unitCost,
			Total:          total,
			Category:       spreadsheet.CleanText(table.Get(i, spreadsheet.ColCategory)),
			Lot:            spreadsheet.CleanText(table.Get(i, spreadsheet.ColLot)),
			FinalQuantity:  spreadsheet.CleanNumber(table.Get(i, spreadsheet.ColQuantity)),
			CostCenter:     costCenter,
		})

		if len(queue) >= chunkSize {
			im.flush(ctx, queue, &outcome)
			queue = queue[:0]
		}
	}

	if len(queue) > 0 {
		im.flush(ctx, queue, &outcome)
	}

	im.log.WithFields(logrus.Fields{
		"inventory":  inventoryName,
		"batch":      batchID,
		"created":    outcome.Created,
		"duplicates": outcome.Duplicates,
		"errors":     len(outcome.RowErrors),
	}).Info("update file imported")
	return outcome, nil
}

// resolveProducts batch-resolves every distinct code in the table, creating
// stub products (zero initial balance and cost) for codes the partition has
// never seen. Update-only codes are newly discovered inventory, not errors.
func (im *MovementImporter) resolveProducts(ctx context.Context, inventoryName string, table *spreadsheet.Table) (map[string]*models.Product, error) {
	firstRow := make(map[string]int)
	var codes []string
	for i := 0; i < table.Len(); i++ {
		code := spreadsheet.NormalizeCode(table.Get(i, spreadsheet.ColItem))
		if code == "" {
			continue
		}
		if _, seen := firstRow[code]; !seen {
			firstRow[code] = i
			codes = append(codes, code)
		}
	}

	products, err := im.products.GetByCodes(ctx, inventoryName, codes)
	if err != nil {
		return nil, err
	}

	for _, code := range codes {
		if _, ok := products[code]; ok {
			continue
		}
		row := firstRow[code]
		description := spreadsheet.CleanText(table.Get(row, spreadsheet.ColDesc))
		if description == "" {
			description = "Producto " + code
		}
		stub := &models.Product{
			ID:              uuid.New(),
			InventoryName:   inventoryName,
			Code:            code,
			Description:     description,
			Group:           spreadsheet.CleanText(table.Get(row, spreadsheet.ColCategory)),
			InitialBalance:  decimal.Zero,
			InitialUnitCost: decimal.Zero,
		}
		if err := im.products.Insert(ctx, stub); err != nil {
			im.log.WithError(err).WithField("code", code).Warn("could not create stub product, its rows will be skipped")
			continue
		}
		products[code] = stub
	}
	return products, nil
}

// flush writes queued entries in one bulk statement, degrading to row-by-row
// on failure so one poisoned row cannot sink the chunk.
func (im *MovementImporter) flush(ctx context.Context, queue []*models.InventoryRecord, outcome *models.ImportOutcome) {
	inserted, err := im.records.BulkInsert(ctx, queue)
	if err == nil {
		outcome.Created += int(inserted)
		return
	}

	im.log.WithError(err).Warn("bulk record insert failed, retrying row by row")
	for _, rec := range queue {
		ok, insErr := im.records.Insert(ctx, rec)
		if insErr != nil {
			outcome.RowErrors = append(outcome.RowErrors, models.RowError{
				Reason: fmt.Sprintf("record %s%s for product %s: %v", rec.DocumentType, rec.DocumentNumber, rec.ProductID, insErr),
			})
			continue
		}
		if ok {
			outcome.Created++
		}
	}
}
