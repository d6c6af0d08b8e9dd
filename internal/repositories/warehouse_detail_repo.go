package repositories

import (
	"context"
	"fmt"
	"strings"

	"stockledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WarehouseDetailRepository interface {
	BulkInsert(ctx context.Context, details []*models.WarehouseDetail) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.WarehouseDetail, error)
	SumInitialQuantity(ctx context.Context, inventoryName string, filter *models.MonthlyFilter) (decimal.Decimal, error)
	DeleteByInventory(ctx context.Context, inventoryName string) error
}

type warehouseDetailRepo struct {
	db Database
}

func NewWarehouseDetailRepo(db Database) WarehouseDetailRepository {
	return &warehouseDetailRepo{db: db}
}

func (r *warehouseDetailRepo) BulkInsert(ctx context.Context, details []*models.WarehouseDetail) error {
	if len(details) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(details))
	args := make([]any, 0, len(details)*5)
	for i, d := range details {
		base := i * 5
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		args = append(args, d.ID, d.ProductID, d.Warehouse, d.InitialQuantity, d.InitialValue)
	}

	query := fmt.Sprintf(`
		INSERT INTO warehouse_details (id, product_id, warehouse, initial_quantity, initial_value)
		VALUES %s
		ON CONFLICT (product_id, warehouse) DO NOTHING
	`, strings.Join(placeholders, ", "))

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("bulk insert %d warehouse details: %w", len(details), err)
	}
	return nil
}

func (r *warehouseDetailRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.WarehouseDetail, error) {
	query := `
		SELECT id, product_id, warehouse, initial_quantity, initial_value
		FROM warehouse_details
		WHERE product_id = $1
		ORDER BY warehouse
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list warehouse details: %w", err)
	}
	defer rows.Close()

	var details []*models.WarehouseDetail
	for rows.Next() {
		d := &models.WarehouseDetail{}
		if err := rows.Scan(&d.ID, &d.ProductID, &d.Warehouse, &d.InitialQuantity, &d.InitialValue); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// SumInitialQuantity totals the initial stock held across a partition,
// narrowed by the report filter. An empty warehouse filter sums the
// aggregated product balances instead, so partition-wide callers do not
// double count multi-warehouse products.
func (r *warehouseDetailRepo) SumInitialQuantity(ctx context.Context, inventoryName string, filter *models.MonthlyFilter) (decimal.Decimal, error) {
	if filter == nil {
		filter = &models.MonthlyFilter{}
	}

	var sum decimal.Decimal
	if filter.Warehouse == "" {
		query := `SELECT COALESCE(SUM(initial_balance), 0) FROM products WHERE inventory_name = $1`
		args := []any{inventoryName}
		if filter.Category != "" {
			args = append(args, "%"+filter.Category+"%")
			query += fmt.Sprintf(" AND product_group ILIKE $%d", len(args))
		}
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			query += fmt.Sprintf(" AND (code ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
		}
		if err := r.db.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
			return decimal.Zero, fmt.Errorf("sum initial balances: %w", err)
		}
		return sum, nil
	}

	query := `
		SELECT COALESCE(SUM(wd.initial_quantity), 0)
		FROM warehouse_details wd
		JOIN products p ON p.id = wd.product_id
		WHERE p.inventory_name = $1 AND wd.warehouse ILIKE $2
	`
	args := []any{inventoryName, "%" + filter.Warehouse + "%"}
	if filter.Category != "" {
		args = append(args, "%"+filter.Category+"%")
		query += fmt.Sprintf(" AND p.product_group ILIKE $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (p.code ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args))
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum warehouse initial quantity: %w", err)
	}
	return sum, nil
}

func (r *warehouseDetailRepo) DeleteByInventory(ctx context.Context, inventoryName string) error {
	query := `
		DELETE FROM warehouse_details
		WHERE product_id IN (SELECT id FROM products WHERE inventory_name = $1)
	`
	if _, err := r.db.Exec(ctx, query, inventoryName); err != nil {
		return fmt.Errorf("delete warehouse details for %s: %w", inventoryName, err)
	}
	return nil
}
