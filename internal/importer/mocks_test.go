package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"stockledger/internal/models"
	"stockledger/internal/repositories"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Insert(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) BulkInsert(ctx context.Context, products []*models.Product) error {
	return m.Called(ctx, products).Error(0)
}

func (m *mockProductRepo) GetByCodes(ctx context.Context, inventoryName string, codes []string) (map[string]*models.Product, error) {
	args := m.Called(ctx, inventoryName, codes)
	return args.Get(0).(map[string]*models.Product), args.Error(1)
}

func (m *mockProductRepo) ExistingCodes(ctx context.Context, inventoryName string) (map[string]struct{}, error) {
	args := m.Called(ctx, inventoryName)
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *mockProductRepo) ExistsByInventory(ctx context.Context, inventoryName string) (bool, error) {
	args := m.Called(ctx, inventoryName)
	return args.Bool(0), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, inventoryName string) ([]*models.Product, error) {
	args := m.Called(ctx, inventoryName)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *mockProductRepo) ListForAnalysis(ctx context.Context, inventoryName, category, warehouse, search string, limit int) ([]*models.Product, error) {
	args := m.Called(ctx, inventoryName, category, warehouse, search, limit)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *mockProductRepo) DeleteByInventory(ctx context.Context, inventoryName string) error {
	return m.Called(ctx, inventoryName).Error(0)
}

func (m *mockProductRepo) CountByInventory(ctx context.Context, inventoryName string) (int, error) {
	args := m.Called(ctx, inventoryName)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepo) DistinctInventories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

type mockDetailRepo struct {
	mock.Mock
}

func (m *mockDetailRepo) BulkInsert(ctx context.Context, details []*models.WarehouseDetail) error {
	return m.Called(ctx, details).Error(0)
}

func (m *mockDetailRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.WarehouseDetail, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]*models.WarehouseDetail), args.Error(1)
}

func (m *mockDetailRepo) SumInitialQuantity(ctx context.Context, inventoryName string, filter *models.MonthlyFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, inventoryName, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockDetailRepo) DeleteByInventory(ctx context.Context, inventoryName string) error {
	return m.Called(ctx, inventoryName).Error(0)
}

type mockRecordRepo struct {
	mock.Mock
}

func (m *mockRecordRepo) Insert(ctx context.Context, record *models.InventoryRecord) (bool, error) {
	args := m.Called(ctx, record)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecordRepo) BulkInsert(ctx context.Context, records []*models.InventoryRecord) (int64, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRecordRepo) ExistsDuplicate(ctx context.Context, productID uuid.UUID, docType, docNumber, costCenter string, date time.Time, warehouse string) (bool, error) {
	args := m.Called(ctx, productID, docType, docNumber, costCenter, date, warehouse)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecordRepo) DeleteByBatch(ctx context.Context, batchID uuid.UUID) error {
	return m.Called(ctx, batchID).Error(0)
}

func (m *mockRecordRepo) DeleteByInventory(ctx context.Context, inventoryName string) error {
	return m.Called(ctx, inventoryName).Error(0)
}

func (m *mockRecordRepo) CountByInventory(ctx context.Context, inventoryName string) (int, error) {
	args := m.Called(ctx, inventoryName)
	return args.Int(0), args.Error(1)
}

func (m *mockRecordRepo) List(ctx context.Context, inventoryName string, filter *models.RecordFilter) ([]*models.LedgerRow, error) {
	args := m.Called(ctx, inventoryName, filter)
	return args.Get(0).([]*models.LedgerRow), args.Error(1)
}

func (m *mockRecordRepo) HistoryByProduct(ctx context.Context, inventoryName, code string) ([]*models.LedgerRow, error) {
	args := m.Called(ctx, inventoryName, code)
	return args.Get(0).([]*models.LedgerRow), args.Error(1)
}

func (m *mockRecordRepo) TotalQuantityByProduct(ctx context.Context, inventoryName string) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, inventoryName)
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *mockRecordRepo) QuantityBeforeByProduct(ctx context.Context, inventoryName string, before time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, inventoryName, before)
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *mockRecordRepo) MonthlyQuantityByProduct(ctx context.Context, inventoryName string, year int) (map[uuid.UUID]map[int]decimal.Decimal, error) {
	args := m.Called(ctx, inventoryName, year)
	return args.Get(0).(map[uuid.UUID]map[int]decimal.Decimal), args.Error(1)
}

func (m *mockRecordRepo) LatestUnitCostByProduct(ctx context.Context, inventoryName string) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, inventoryName)
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *mockRecordRepo) NetQuantityBefore(ctx context.Context, inventoryName string, filter *models.MonthlyFilter, before time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, inventoryName, filter, before)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockRecordRepo) FlowsByMonth(ctx context.Context, inventoryName string, filter *models.MonthlyFilter, from, to time.Time) ([]repositories.MonthFlow, error) {
	args := m.Called(ctx, inventoryName, filter, from, to)
	return args.Get(0).([]repositories.MonthFlow), args.Error(1)
}
