package repositories

import (
	"context"
	"fmt"
	"strings"

	"stockledger/internal/models"
)

type ProductRepository interface {
	Insert(ctx context.Context, product *models.Product) error
	BulkInsert(ctx context.Context, products []*models.Product) error
	GetByCodes(ctx context.Context, inventoryName string, codes []string) (map[string]*models.Product, error)
	ExistingCodes(ctx context.Context, inventoryName string) (map[string]struct{}, error)
	ExistsByInventory(ctx context.Context, inventoryName string) (bool, error)
	List(ctx context.Context, inventoryName string) ([]*models.Product, error)
	ListForAnalysis(ctx context.Context, inventoryName, category, warehouse, search string, limit int) ([]*models.Product, error)
	DeleteByInventory(ctx context.Context, inventoryName string) error
	CountByInventory(ctx context.Context, inventoryName string) (int, error)
	DistinctInventories(ctx context.Context) ([]string, error)
}

type productRepo struct {
	db Database
}

func NewProductRepo(db Database) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, inventory_name, code, description, product_group, initial_balance, initial_unit_cost`

func (r *productRepo) Insert(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, inventory_name, code, description, product_group, initial_balance, initial_unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (inventory_name, code) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		product.ID, product.InventoryName, product.Code, product.Description,
		product.Group, product.InitialBalance, product.InitialUnitCost,
	)
	if err != nil {
		return fmt.Errorf("insert product %s: %w", product.Code, err)
	}
	return nil
}

// BulkInsert writes products in one multi-row statement. Conflicting codes
// are ignored so a retried upload cannot fail on an existing product.
func (r *productRepo) BulkInsert(ctx context.Context, products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(products))
	args := make([]any, 0, len(products)*7)
	for i, p := range products {
		base := i * 7
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, p.ID, p.InventoryName, p.Code, p.Description, p.Group, p.InitialBalance, p.InitialUnitCost)
	}

	query := fmt.Sprintf(`
		INSERT INTO products (id, inventory_name, code, description, product_group, initial_balance, initial_unit_cost)
		VALUES %s
		ON CONFLICT (inventory_name, code) DO NOTHING
	`, strings.Join(placeholders, ", "))

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("bulk insert %d products: %w", len(products), err)
	}
	return nil
}

func (r *productRepo) GetByCodes(ctx context.Context, inventoryName string, codes []string) (map[string]*models.Product, error) {
	products := make(map[string]*models.Product, len(codes))
	if len(codes) == 0 {
		return products, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE inventory_name = $1 AND code = ANY($2)
	`
	rows, err := r.db.Query(ctx, query, inventoryName, codes)
	if err != nil {
		return nil, fmt.Errorf("get products by codes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &models.Product{}
		if err := scanProduct(rows, p); err != nil {
			return nil, err
		}
		products[p.Code] = p
	}
	return products, rows.Err()
}

func (r *productRepo) ExistingCodes(ctx context.Context, inventoryName string) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT code FROM products WHERE inventory_name = $1`, inventoryName)
	if err != nil {
		return nil, fmt.Errorf("list product codes: %w", err)
	}
	defer rows.Close()

	codes := make(map[string]struct{})
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes[code] = struct{}{}
	}
	return codes, rows.Err()
}

func (r *productRepo) ExistsByInventory(ctx context.Context, inventoryName string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE inventory_name = $1)`, inventoryName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check inventory products: %w", err)
	}
	return exists, nil
}

func (r *productRepo) List(ctx context.Context, inventoryName string) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE inventory_name = $1
		ORDER BY code
	`
	rows, err := r.db.Query(ctx, query, inventoryName)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := scanProduct(rows, p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListForAnalysis pre-filters products for the analytics engine. Warehouse
// membership is satisfied by either a base-file warehouse detail or any
// ledger movement through the warehouse.
func (r *productRepo) ListForAnalysis(ctx context.Context, inventoryName, category, warehouse, search string, limit int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.inventory_name = $1
	`
	args := []any{inventoryName}
	argn := 1

	if category != "" {
		argn++
		query += fmt.Sprintf(` AND p.product_group ILIKE $%d`, argn)
		args = append(args, "%"+category+"%")
	}
	if warehouse != "" {
		argn++
		query += fmt.Sprintf(` AND (
			EXISTS (
				SELECT 1 FROM warehouse_details wd
				WHERE wd.product_id = p.id AND wd.warehouse ILIKE $%d
			) OR
			EXISTS (
				SELECT 1 FROM inventory_records ir
				WHERE ir.product_id = p.id AND ir.warehouse ILIKE $%d
			)
		)`, argn, argn)
		args = append(args, "%"+warehouse+"%")
	}
	if search != "" {
		argn++
		query += fmt.Sprintf(` AND (p.code ILIKE $%d OR p.description ILIKE $%d)`, argn, argn)
		args = append(args, "%"+search+"%")
	}

	query += ` ORDER BY p.code`
	if limit > 0 {
		argn++
		query += fmt.Sprintf(` LIMIT $%d`, argn)
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products for analysis: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := scanProduct(rows, p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepo) DeleteByInventory(ctx context.Context, inventoryName string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM products WHERE inventory_name = $1`, inventoryName); err != nil {
		return fmt.Errorf("delete products for %s: %w", inventoryName, err)
	}
	return nil
}

func (r *productRepo) CountByInventory(ctx context.Context, inventoryName string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE inventory_name = $1`, inventoryName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (r *productRepo) DistinctInventories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT inventory_name FROM products ORDER BY inventory_name`)
	if err != nil {
		return nil, fmt.Errorf("list inventories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, p *models.Product) error {
	return row.Scan(&p.ID, &p.InventoryName, &p.Code, &p.Description, &p.Group, &p.InitialBalance, &p.InitialUnitCost)
}
