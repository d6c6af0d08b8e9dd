package importer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"stockledger/internal/models"
	"stockledger/internal/repositories"
	"stockledger/internal/spreadsheet"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// chunkSize bounds bulk-insert statements.
const chunkSize = 500

// BaseImporter consumes the base snapshot file: per-product-per-warehouse
// rows are aggregated into Product records plus one WarehouseDetail per
// (product, warehouse) pair.
type BaseImporter struct {
	products repositories.ProductRepository
	details  repositories.WarehouseDetailRepository
	log      *logrus.Entry
}

func NewBaseImporter(products repositories.ProductRepository, details repositories.WarehouseDetailRepository) *BaseImporter {
	return &BaseImporter{
		products: products,
		details:  details,
		log:      logrus.WithField("component", "base_importer"),
	}
}

// baseRow is one cleaned snapshot row.
type baseRow struct {
	code        string
	description string
	group       string
	warehouse   string
	quantity    decimal.Decimal
	unitCost    decimal.Decimal
	totalValue  decimal.Decimal
	cutoffDate  string
	month       string
	unit        string
}

// productGroup aggregates the snapshot rows sharing (code, description, group).
type productGroup struct {
	code        string
	description string
	group       string
	quantity    decimal.Decimal
	totalValue  decimal.Decimal
	firstCost   decimal.Decimal
	warehouses  map[string]struct{}
}

// Run imports the base table and returns how many products were created.
// Per-row problems are collected, never fatal; the only file-level failure
// is a table that resolved none of the required columns.
func (im *BaseImporter) Run(ctx context.Context, inventoryName string, table *spreadsheet.Table) (models.ImportOutcome, error) {
	outcome := models.ImportOutcome{}

	if missing := table.Missing(spreadsheet.BaseColumns); len(missing) > 0 {
		return outcome, fmt.Errorf("base file missing required columns: %s", strings.Join(missing, ", "))
	}

	rows := im.cleanRows(table)

	groups, order := groupRows(rows)

	existing, err := im.products.ExistingCodes(ctx, inventoryName)
	if err != nil {
		return outcome, err
	}

	products := make([]*models.Product, 0, len(order))
	processed := make(map[string]struct{}, len(order))
	byCode := make(map[string]uuid.UUID, len(order))
	for _, key := range order {
		g := groups[key]
		if _, done := processed[g.code]; done {
			continue // first occurrence wins
		}
		if _, alreadyLoaded := existing[g.code]; alreadyLoaded {
			continue // base never overwrites an existing product
		}

		quantity, cost := resolveQuantityAndCost(g)

		product := &models.Product{
			ID:              uuid.New(),
			InventoryName:   inventoryName,
			Code:            g.code,
			Description:     g.description,
			Group:           g.group,
			InitialBalance:  quantity,
			InitialUnitCost: cost,
		}
		products = append(products, product)
		processed[g.code] = struct{}{}
		byCode[g.code] = product.ID
	}

	created := im.insertProducts(ctx, products, &outcome)
	outcome.Created = created

	if err := im.insertWarehouseDetails(ctx, rows, byCode, &outcome); err != nil {
		return outcome, err
	}

	im.log.WithFields(logrus.Fields{
		"inventory": inventoryName,
		"created":   outcome.Created,
		"errors":    len(outcome.RowErrors),
	}).Info("base snapshot imported")
	return outcome, nil
}

// cleanRows normalizes the raw table, dropping rows without a code or a
// description.
func (im *BaseImporter) cleanRows(table *spreadsheet.Table) []baseRow {
	rows := make([]baseRow, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		code := spreadsheet.NormalizeCode(table.Get(i, spreadsheet.ColCode))
		description := spreadsheet.CleanText(table.Get(i, spreadsheet.ColDescription))
		if code == "" || description == "" {
			continue
		}
		rows = append(rows, baseRow{
			code:        code,
			description: description,
			group:       spreadsheet.CleanText(table.Get(i, spreadsheet.ColGroup)),
			warehouse:   spreadsheet.CleanText(table.Get(i, spreadsheet.ColWarehouse)),
			quantity:    spreadsheet.ParseDecimal(table.Get(i, spreadsheet.ColBaseQuantity)),
			unitCost:    spreadsheet.ParseDecimal(table.Get(i, spreadsheet.ColBaseUnitCost)),
			totalValue:  spreadsheet.ParseDecimal(table.Get(i, spreadsheet.ColBaseTotal)),
			cutoffDate:  spreadsheet.CleanText(table.Get(i, spreadsheet.ColCutoffDate)),
			month:       spreadsheet.CleanText(table.Get(i, spreadsheet.ColMonth)),
			unit:        spreadsheet.CleanText(table.Get(i, spreadsheet.ColUnit)),
		})
	}
	return rows
}

func groupRows(rows []baseRow) (map[string]*productGroup, []string) {
	groups := make(map[string]*productGroup)
	var order []string
	for _, row := range rows {
		key := row.code + "\x00" + row.description + "\x00" + row.group
		g, ok := groups[key]
		if !ok {
			g = &productGroup{
				code:        row.code,
				description: row.description,
				group:       row.group,
				firstCost:   row.unitCost,
				warehouses:  make(map[string]struct{}),
			}
			groups[key] = g
			order = append(order, key)
		}
		g.quantity = g.quantity.Add(row.quantity)
		g.totalValue = g.totalValue.Add(row.totalValue)
		g.warehouses[row.warehouse] = struct{}{}
	}
	return groups, order
}

// resolveQuantityAndCost computes the value-weighted unit cost for a group,
// with the zero-quantity-but-positive-value repair: stock that is all value
// and no quantity is preserved instead of discarded.
func resolveQuantityAndCost(g *productGroup) (decimal.Decimal, decimal.Decimal) {
	quantity := g.quantity

	var cost decimal.Decimal
	if !quantity.IsZero() {
		cost = g.totalValue.Div(quantity)
		return quantity, cost
	}

	cost = g.firstCost
	if g.totalValue.IsPositive() {
		if cost.IsPositive() {
			quantity = g.totalValue.Div(cost)
		} else {
			cost = decimal.NewFromInt(1)
			quantity = g.totalValue
		}
	}
	return quantity, cost
}

// insertProducts bulk-inserts in chunks, degrading to row-by-row on a bulk
// failure so one poisoned row cannot sink a whole chunk.
func (im *BaseImporter) insertProducts(ctx context.Context, products []*models.Product, outcome *models.ImportOutcome) int {
	created := 0
	for start := 0; start < len(products); start += chunkSize {
		end := start + chunkSize
		if end > len(products) {
			end = len(products)
		}
		chunk := products[start:end]

		if err := im.products.BulkInsert(ctx, chunk); err != nil {
			im.log.WithError(err).Warn("bulk product insert failed, retrying row by row")
			for _, p := range chunk {
				if insErr := im.products.Insert(ctx, p); insErr != nil {
					outcome.RowErrors = append(outcome.RowErrors, models.RowError{
						Reason: fmt.Sprintf("product %s: %v", p.Code, insErr),
					})
					continue
				}
				created++
			}
			continue
		}
		created += len(chunk)
	}
	return created
}

// insertWarehouseDetails writes one row per (code, warehouse) pair of the
// raw ungrouped input, holding that warehouse's own share rather than the
// aggregate.
func (im *BaseImporter) insertWarehouseDetails(ctx context.Context, rows []baseRow, byCode map[string]uuid.UUID, outcome *models.ImportOutcome) error {
	type pairKey struct {
		code      string
		warehouse string
	}
	pairs := make(map[pairKey]*models.WarehouseDetail)
	var order []pairKey
	for _, row := range rows {
		productID, ok := byCode[row.code]
		if !ok {
			continue // product existed before this file or failed to insert
		}
		key := pairKey{code: row.code, warehouse: row.warehouse}
		d, ok := pairs[key]
		if !ok {
			d = &models.WarehouseDetail{
				ID:        uuid.New(),
				ProductID: productID,
				Warehouse: row.warehouse,
			}
			pairs[key] = d
			order = append(order, key)
		}
		d.InitialQuantity = d.InitialQuantity.Add(row.quantity)
		d.InitialValue = d.InitialValue.Add(row.totalValue)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].code != order[j].code {
			return order[i].code < order[j].code
		}
		return order[i].warehouse < order[j].warehouse
	})

	details := make([]*models.WarehouseDetail, 0, len(order))
	for _, key := range order {
		details = append(details, pairs[key])
	}

	for start := 0; start < len(details); start += chunkSize {
		end := start + chunkSize
		if end > len(details) {
			end = len(details)
		}
		if err := im.details.BulkInsert(ctx, details[start:end]); err != nil {
			return err
		}
	}
	return nil
}
