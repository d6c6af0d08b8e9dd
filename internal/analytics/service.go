// Package analytics derives per-product stock, valuation and rotation from
// the movement ledger. Everything is recomputed from the base snapshot plus
// the full ledger on each call; Redis only shortcuts the unfiltered paths.
package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stockledger/internal/caching"
	"stockledger/internal/models"
	"stockledger/internal/repositories"
)

type AnalysisService struct {
	products repositories.ProductRepository
	details  repositories.WarehouseDetailRepository
	records  repositories.RecordRepository
	batches  repositories.BatchRepository
	cache    caching.CacheService
	cacheTTL time.Duration
	now      func() time.Time
}

func NewAnalysisService(
	products repositories.ProductRepository,
	details repositories.WarehouseDetailRepository,
	records repositories.RecordRepository,
	batches repositories.BatchRepository,
	cache caching.CacheService,
	cacheTTL time.Duration,
) *AnalysisService {
	return &AnalysisService{
		products: products,
		details:  details,
		records:  records,
		batches:  batches,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Analyze returns one derived row per product in the partition. Category,
// warehouse and search narrow the product set up front; rotation, stagnant
// and high-rotation filters apply to the computed fields afterwards.
func (s *AnalysisService) Analyze(ctx context.Context, inventoryName string, filter *models.AnalysisFilter) ([]models.AnalysisRow, error) {
	if filter == nil {
		filter = &models.AnalysisFilter{}
	}

	cacheable := isUnfiltered(filter)
	if cacheable && s.cache != nil {
		if rows, err := s.cache.GetAnalysis(ctx, inventoryName); err == nil {
			return rows, nil
		}
	}

	products, err := s.products.ListForAnalysis(ctx, inventoryName, filter.Category, filter.Warehouse, filter.Search, filter.Limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.deriveRows(ctx, inventoryName, products)
	if err != nil {
		return nil, err
	}

	if cacheable && s.cache != nil {
		if err := s.cache.SetAnalysis(ctx, inventoryName, rows, s.cacheTTL); err != nil {
			logrus.WithError(err).WithField("inventory", inventoryName).Warn("failed to cache analysis")
		}
	}

	return filterDerived(rows, filter), nil
}

func (s *AnalysisService) deriveRows(ctx context.Context, inventoryName string, products []*models.Product) ([]models.AnalysisRow, error) {
	year := s.now().Year()
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	totals, err := s.records.TotalQuantityByProduct(ctx, inventoryName)
	if err != nil {
		return nil, err
	}
	preYear, err := s.records.QuantityBeforeByProduct(ctx, inventoryName, yearStart)
	if err != nil {
		return nil, err
	}
	monthly, err := s.records.MonthlyQuantityByProduct(ctx, inventoryName, year)
	if err != nil {
		return nil, err
	}
	latestCosts, err := s.records.LatestUnitCostByProduct(ctx, inventoryName)
	if err != nil {
		return nil, err
	}

	rows := make([]models.AnalysisRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, deriveRow(p, totals[p.ID], preYear[p.ID], monthly[p.ID], latestCosts))
	}
	return rows, nil
}

func deriveRow(
	p *models.Product,
	ledgerTotal decimal.Decimal,
	ledgerPreYear decimal.Decimal,
	netByMonth map[int]decimal.Decimal,
	latestCosts map[uuid.UUID]decimal.Decimal,
) models.AnalysisRow {
	currentStock := p.InitialBalance.Add(ledgerTotal)

	unitCost := p.InitialUnitCost
	if cost, ok := latestCosts[p.ID]; ok && !cost.IsZero() {
		unitCost = cost
	}

	balancePreYear := p.InitialBalance.Add(ledgerPreYear)
	balances := monthlyBalances(balancePreYear, netByMonth)
	rotation := classifyRotation(balancePreYear, balances)

	return models.AnalysisRow{
		Code:         p.Code,
		Description:  p.Description,
		Group:        p.Group,
		CurrentStock: currentStock,
		CurrentValue: currentStock.Mul(unitCost),
		UnitCost:     unitCost,
		Consumed:     currentStock.LessThanOrEqual(decimal.Zero),
		Stagnant:     rotation == models.RotationStagnant || rotation == models.RotationObsolete,
		Rotation:     rotation,
		HighRotation: isHighRotation(balances),
	}
}

func isUnfiltered(f *models.AnalysisFilter) bool {
	return f.Category == "" && f.Warehouse == "" && f.Search == "" &&
		f.Rotation == "" && f.Stagnant == nil && f.HighRotation == nil && f.Limit == 0
}

func filterDerived(rows []models.AnalysisRow, f *models.AnalysisFilter) []models.AnalysisRow {
	if f.Rotation == "" && f.Stagnant == nil && f.HighRotation == nil {
		return rows
	}
	filtered := make([]models.AnalysisRow, 0, len(rows))
	for _, row := range rows {
		if f.Rotation != "" && row.Rotation != f.Rotation {
			continue
		}
		if f.Stagnant != nil && row.Stagnant != *f.Stagnant {
			continue
		}
		if f.HighRotation != nil && row.HighRotation != *f.HighRotation {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// MonthlyMovements aggregates entry/exit flow for the trailing twelve
// months, oldest first, with a running closing balance seeded from the base
// snapshot plus all ledger movement before the window.
func (s *AnalysisService) MonthlyMovements(ctx context.Context, inventoryName string, filter *models.MonthlyFilter) ([]models.MonthlyMovement, error) {
	if filter == nil {
		filter = &models.MonthlyFilter{}
	}

	now := s.now().UTC()
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	windowEnd := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	initial, err := s.details.SumInitialQuantity(ctx, inventoryName, filter)
	if err != nil {
		return nil, err
	}
	preWindow, err := s.records.NetQuantityBefore(ctx, inventoryName, filter, windowStart)
	if err != nil {
		return nil, err
	}
	flows, err := s.records.FlowsByMonth(ctx, inventoryName, filter, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	type monthKey struct{ year, month int }
	flowByMonth := make(map[monthKey]repositories.MonthFlow, len(flows))
	for _, f := range flows {
		flowByMonth[monthKey{f.Year, f.Month}] = f
	}

	balance := initial.Add(preWindow)
	movements := make([]models.MonthlyMovement, 0, 12)
	for i := 0; i < 12; i++ {
		month := windowStart.AddDate(0, i, 0)
		flow := flowByMonth[monthKey{month.Year(), int(month.Month())}]
		balance = balance.Add(flow.Entries).Sub(flow.Exits)
		movements = append(movements, models.MonthlyMovement{
			Month:          month.Format("2006-01"),
			Entries:        flow.Entries,
			Exits:          flow.Exits,
			ClosingBalance: balance,
		})
	}
	return movements, nil
}

// Summary condenses a partition into headline counts and totals.
func (s *AnalysisService) Summary(ctx context.Context, inventoryName string) (*models.Summary, error) {
	if s.cache != nil {
		if summary, err := s.cache.GetSummary(ctx, inventoryName); err == nil {
			return summary, nil
		}
	}

	totalProducts, err := s.products.CountByInventory(ctx, inventoryName)
	if err != nil {
		return nil, err
	}
	totalRecords, err := s.records.CountByInventory(ctx, inventoryName)
	if err != nil {
		return nil, err
	}
	totalBatches, err := s.batches.CountByInventory(ctx, inventoryName)
	if err != nil {
		return nil, err
	}

	products, err := s.products.ListForAnalysis(ctx, inventoryName, "", "", "", 0)
	if err != nil {
		return nil, err
	}
	rows, err := s.deriveRows(ctx, inventoryName, products)
	if err != nil {
		return nil, err
	}

	// Quantity counts only positive stock; value counts every row,
	// negative balances included.
	totalQuantity := decimal.Zero
	totalValue := decimal.Zero
	for _, row := range rows {
		if row.CurrentStock.IsPositive() {
			totalQuantity = totalQuantity.Add(row.CurrentStock)
		}
		totalValue = totalValue.Add(row.CurrentValue)
	}

	summary := &models.Summary{
		InventoryName: inventoryName,
		TotalProducts: totalProducts,
		TotalRecords:  totalRecords,
		TotalBatches:  totalBatches,
		TotalQuantity: totalQuantity,
		TotalValue:    totalValue,
	}

	if s.cache != nil {
		if err := s.cache.SetSummary(ctx, inventoryName, summary, s.cacheTTL); err != nil {
			logrus.WithError(err).WithField("inventory", inventoryName).Warn("failed to cache summary")
		}
	}
	return summary, nil
}
