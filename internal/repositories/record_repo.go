package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthFlow is one month of raw in/out flow for a partition.
type MonthFlow struct {
	Year    int
	Month   int
	Entries decimal.Decimal
	Exits   decimal.Decimal
}

type RecordRepository interface {
	Insert(ctx context.Context, record *models.InventoryRecord) (bool, error)
	BulkInsert(ctx context.Context, records []*models.InventoryRecord) (int64, error)
	ExistsDuplicate(ctx context.Context, productID uuid.UUID, docType, docNumber, costCenter string, date time.Time, warehouse string) (bool, error)
	DeleteByBatch(ctx context.Context, batchID uuid.UUID) error
	DeleteByInventory(ctx context.Context, inventoryName string) error
	CountByInventory(ctx context.Context, inventoryName string) (int, error)
	List(ctx context.Context, inventoryName string, filter *models.RecordFilter) ([]*models.LedgerRow, error)
	HistoryByProduct(ctx context.Context, inventoryName, code string) ([]*models.LedgerRow, error)
	TotalQuantityByProduct(ctx context.Context, inventoryName string) (map[uuid.UUID]decimal.Decimal, error)
	QuantityBeforeByProduct(ctx context.Context, inventoryName string, before time.Time) (map[uuid.UUID]decimal.Decimal, error)
	MonthlyQuantityByProduct(ctx context.Context, inventoryName string, year int) (map[uuid.UUID]map[int]decimal.Decimal, error)
	LatestUnitCostByProduct(ctx context.Context, inventoryName string) (map[uuid.UUID]decimal.Decimal, error)
	NetQuantityBefore(ctx context.Context, inventoryName string, filter *models.MonthlyFilter, before time.Time) (decimal.Decimal, error)
	FlowsByMonth(ctx context.Context, inventoryName string, filter *models.MonthlyFilter, from, to time.Time) ([]MonthFlow, error)
}

type recordRepo struct {
	db Database
}

func NewRecordRepo(db Database) RecordRepository {
	return &recordRepo{db: db}
}

const recordInsertColumns = `id, batch_id, product_id, warehouse, movement_date, document_type, document_number, quantity, unit_cost, total, category, lot, final_quantity, cost_center`

// Insert writes a single ledger entry. The unique constraint on
// (document_type, document_number, product, batch, cost_center) absorbs
// in-batch duplicates; the return value reports whether a row was written.
func (r *recordRepo) Insert(ctx context.Context, record *models.InventoryRecord) (bool, error) {
	query := `
		INSERT INTO inventory_records (` + recordInsertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (document_type, document_number, product_id, batch_id, cost_center) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		record.ID, record.BatchID, record.ProductID, record.Warehouse, record.Date,
		record.DocumentType, record.DocumentNumber, record.Quantity, record.UnitCost,
		record.Total, record.Category, record.Lot, record.FinalQuantity, record.CostCenter,
	)
	if err != nil {
		return false, fmt.Errorf("insert record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// BulkInsert writes queued ledger entries in one multi-row statement and
// returns how many actually landed.
func (r *recordRepo) BulkInsert(ctx context.Context, records []*models.InventoryRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	placeholders := make([]string, 0, len(records))
	args := make([]any, 0, len(records)*14)
	for i, rec := range records {
		base := i * 14
		ph := make([]string, 14)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ", ")+")")
		args = append(args,
			rec.ID, rec.BatchID, rec.ProductID, rec.Warehouse, rec.Date,
			rec.DocumentType, rec.DocumentNumber, rec.Quantity, rec.UnitCost,
			rec.Total, rec.Category, rec.Lot, rec.FinalQuantity, rec.CostCenter,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO inventory_records (`+recordInsertColumns+`)
		VALUES %s
		ON CONFLICT (document_type, document_number, product_id, batch_id, cost_center) DO NOTHING
	`, strings.Join(placeholders, ", "))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk insert %d records: %w", len(records), err)
	}
	return tag.RowsAffected(), nil
}

// ExistsDuplicate is the cross-batch duplicate check: a match against ANY
// prior batch in the partition makes the incoming row a duplicate. The
// product reference already scopes the partition.
func (r *recordRepo) ExistsDuplicate(ctx context.Context, productID uuid.UUID, docType, docNumber, costCenter string, date time.Time, warehouse string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM inventory_records
			WHERE product_id = $1 AND document_type = $2 AND document_number = $3
			  AND cost_center = $4 AND movement_date = $5 AND warehouse = $6
		)
	`
	err := r.db.QueryRow(ctx, query, productID, docType, docNumber, costCenter, date, warehouse).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duplicate record: %w", err)
	}
	return exists, nil
}

func (r *recordRepo) DeleteByBatch(ctx context.Context, batchID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM inventory_records WHERE batch_id = $1`, batchID); err != nil {
		return fmt.Errorf("delete records for batch: %w", err)
	}
	return nil
}

func (r *recordRepo) DeleteByInventory(ctx context.Context, inventoryName string) error {
	query := `
		DELETE FROM inventory_records
		WHERE product_id IN (SELECT id FROM products WHERE inventory_name = $1)
	`
	if _, err := r.db.Exec(ctx, query, inventoryName); err != nil {
		return fmt.Errorf("delete records for %s: %w", inventoryName, err)
	}
	return nil
}

func (r *recordRepo) CountByInventory(ctx context.Context, inventoryName string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM inventory_records ir
		JOIN products p ON p.id = ir.product_id
		WHERE p.inventory_name = $1
	`
	if err := r.db.QueryRow(ctx, query, inventoryName).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

const ledgerRowColumns = `
	ir.id, p.code, p.description, ir.warehouse, ir.movement_date,
	ir.document_type, ir.document_number, ir.quantity, ir.unit_cost,
	ir.total, ir.category, ir.cost_center, ir.batch_id`

func (r *recordRepo) List(ctx context.Context, inventoryName string, filter *models.RecordFilter) ([]*models.LedgerRow, error) {
	if filter == nil {
		filter = &models.RecordFilter{}
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}

	query := `
		SELECT ` + ledgerRowColumns + `
		FROM inventory_records ir
		JOIN products p ON p.id = ir.product_id
		WHERE p.inventory_name = $1
	`
	args := []any{inventoryName}
	argn := 1

	if filter.Warehouse != "" {
		argn++
		query += fmt.Sprintf(` AND ir.warehouse ILIKE $%d`, argn)
		args = append(args, "%"+filter.Warehouse+"%")
	}
	if filter.Category != "" {
		argn++
		query += fmt.Sprintf(` AND ir.category ILIKE $%d`, argn)
		args = append(args, "%"+filter.Category+"%")
	}
	if filter.DateFrom != nil {
		argn++
		query += fmt.Sprintf(` AND ir.movement_date >= $%d`, argn)
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		argn++
		query += fmt.Sprintf(` AND ir.movement_date <= $%d`, argn)
		args = append(args, *filter.DateTo)
	}
	if filter.Search != "" {
		argn++
		query += fmt.Sprintf(` AND (p.code ILIKE $%d OR p.description ILIKE $%d OR ir.document_number ILIKE $%d)`, argn, argn, argn)
		args = append(args, "%"+filter.Search+"%")
	}

	argn++
	query += fmt.Sprintf(` ORDER BY ir.movement_date DESC LIMIT $%d`, argn)
	args = append(args, limit)

	return r.queryLedgerRows(ctx, query, args...)
}

func (r *recordRepo) HistoryByProduct(ctx context.Context, inventoryName, code string) ([]*models.LedgerRow, error) {
	query := `
		SELECT ` + ledgerRowColumns + `
		FROM inventory_records ir
		JOIN products p ON p.id = ir.product_id
		WHERE p.inventory_name = $1 AND p.code = $2
		ORDER BY ir.movement_date ASC
	`
	return r.queryLedgerRows(ctx, query, inventoryName, code)
}

func (r *recordRepo) queryLedgerRows(ctx context.Context, query string, args ...any) ([]*models.LedgerRow, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger rows: %w", err)
	}
	defer rows.Close()

	var ledger []*models.LedgerRow
	for rows.Next() {
		row := &models.LedgerRow{}
		if err := rows.Scan(
			&row.ID, &row.ProductCode, &row.ProductDescription, &row.Warehouse, &row.Date,
			&row.DocumentType, &row.DocumentNumber, &row.Quantity, &row.UnitCost,
			&row.Total, &row.Category, &row.CostCenter, &row.BatchID,
		); err != nil {
			return nil, err
		}
		ledger = append(ledger, row)
	}
	return ledger, rows.Err()
}

func (r *recordRepo) TotalQuantityByProduct(ctx context.Context, inventoryName string) (map[uuid.UUID]decimal.Decimal, error) {
	query := `
		SELECT ir.product_id, COALESCE(SUM(ir.quantity), 0)
		FROM inventory_records ir
		JOIN products p ON p.id = ir.product_id
		WHERE p.inventory_name = $1
		GROUP BY ir.product_id
	`
	return r.queryQuantityByProduct(ctx, query, inventoryName)
}

func (r *recordRepo) QuantityBeforeByProduct(ctx context.Context, inventoryName string, before time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	query := `
		SELECT ir.product_id, COALESCE(SUM(ir.quantity), 0)
		FROM inventory_records ir
		JOIN products p ON p.id = ir.product_id
		WHERE p.inventory_name = $1 AND ir.movement_date < $2
		GROUP BY ir.product_id
	`
	return r.queryQuantityByProduct(ctx, query, inventoryName, before)
}

func (r *recordRepo) queryQuantityByProduct(ctx context.Context, query string, args ...any) (map[uuid.UUID]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sum quantities by product: %w", err)
	}
	defer rows.Close()

	sums := make(map[uuid.UUID]decimal.Decimal)
	for rows.Next() {
		var id uuid.UUID
		var sum decimal.Decimal
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, err
		}
		sums[id] = sum
	}
	return sums, rows.Err()
}

// MonthlyQuantityByProduct nets each product's movement per calendar month
// of the given year.
func (r *recordRepo) MonthlyQuantityByProduct(ctx context.Context, inventoryName string, year int) (map[uuid.UUID]map[int]decimal.Decimal, error) {
	query := `
		SELECT ir.product_id, EXTRACT(MONTH FROM ir.movement_date)::int, COALESCE(SUM(ir.quantity), 0)
		FROM inventory_records ir
		JOIN products p ON p.id = ir.product_id
		WHERE p.inventory_name = $1 AND EXTRACT(YEAR FROM ir.movement_date) = $2
		GROUP BY ir.product_id, EXTRACT(MONTH FROM ir.movement_date)
	`
	rows, err := r.db.Query(ctx, query, inventoryName, year)
	if err != nil {
		return nil, fmt.Errorf("monthly quantities by product: %w", err)
	}
	defer rows.Close()

	monthly := make(map[uuid.UUID]map[int]decimal.Decimal)
	for rows.Next() {
		var id uuid.UUID
		var month int
		var sum decimal.Decimal
		if err := rows.Scan(&id, &month, &sum); err != nil {
			return nil, err
		}
		if monthly[id] == nil {
			monthly[id] = make(map[int]decimal.Decimal)
		}
		monthly[id][month] = sum
	}
	return monthly, rows.Err()
}

// LatestUnitCostByProduct picks, per product, the unit cost of the most
// recent movement that actually carried a cost.
func (r *recordRepo) LatestUnitCostByProduct(ctx context.Context, inventoryName string) (map[uuid.UUID]decimal.Decimal, error) {
	query := `
		SELECT DISTINCT ON (ir.product_id) ir.product_id, ir.unit_cost
		FROM inventory_records ir
		JOIN products p ON p.id = ir.product_id
		WHERE p.inventory_name = $1 AND ir.unit_cost <> 0
		ORDER BY ir.product_id, ir.movement_date DESC
	`
	rows, err := r.db.Query(ctx, query, inventoryName)
	if err != nil {
		return nil, fmt.Errorf("latest unit costs: %w", err)
	}
	defer rows.Close()

	costs := make(map[uuid.UUID]decimal.Decimal)
	for rows.Next() {
		var id uuid.UUID
		var cost decimal.Decimal
		if err := rows.Scan(&id, &cost); err != nil {
			return nil, err
		}
		costs[id] = cost
	}
	return costs, rows.Err()
}

func monthlyFilterClauses(filter *models.MonthlyFilter, args *[]any, argn *int) string {
	if filter == nil {
		return ""
	}
	var clause string
	if filter.Warehouse != "" {
		*argn++
		clause += fmt.Sprintf(` AND ir.warehouse ILIKE $%d`, *argn)
		*args = append(*args, "%"+filter.Warehouse+"%")
	}
	if filter.Category != "" {
		*argn++
		clause += fmt.Sprintf(` AND ir.category ILIKE $%d`, *argn)
		*args = append(*args, "%"+filter.Category+"%")
	}
	if filter.Search != "" {
		*argn++
		clause += fmt.Sprintf(` AND (p.code ILIKE $%d OR p.description ILIKE $%d)`, *argn, *argn)
		*args = append(*args, "%"+filter.Search+"%")
	}
	return clause
}

func (r *recordRepo) NetQuantityBefore(ctx context.Context, inventoryName string, filter *models.MonthlyFilter, before time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(ir.quantity), 0)
		FROM inventory_records ir
		JOIN products p ON p.id = ir.product_id
		WHERE p.inventory_name = $1 AND ir.movement_date < $2
	`
	args := []any{inventoryName, before}
	argn := 2
	query += monthlyFilterClauses(filter, &args, &argn)

	var sum decimal.Decimal
	if err := r.db.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("net quantity before %s: %w", before.Format("2006-01-02"), err)
	}
	return sum, nil
}

func (r *recordRepo) FlowsByMonth(ctx context.Context, inventoryName string, filter *models.MonthlyFilter, from, to time.Time) ([]MonthFlow, error) {
	query := `
		SELECT
			EXTRACT(YEAR FROM ir.movement_date)::int,
			EXTRACT(MONTH FROM ir.movement_date)::int,
			COALESCE(SUM(CASE WHEN ir.quantity > 0 THEN ir.quantity ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN ir.quantity < 0 THEN -ir.quantity ELSE 0 END), 0)
		FROM inventory_records ir
		JOIN products p ON p.id = ir.product_id
		WHERE p.inventory_name = $1 AND ir.movement_date >= $2 AND ir.movement_date < $3
	`
	args := []any{inventoryName, from, to}
	argn := 3
	query += monthlyFilterClauses(filter, &args, &argn)
	query += ` GROUP BY 1, 2 ORDER BY 1, 2`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("monthly flows: %w", err)
	}
	defer rows.Close()

	var flows []MonthFlow
	for rows.Next() {
		var f MonthFlow
		if err := rows.Scan(&f.Year, &f.Month, &f.Entries, &f.Exits); err != nil {
			return nil, err
		}
		flows = append(flows, f)
	}
	return flows, rows.Err()
}
