package services

import (
	"context"
	"fmt"
	"regexp"

	"stockledger/internal/models"
	"stockledger/internal/repositories"
	"stockledger/internal/spreadsheet"
)

var inventoryNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// InventoryService serves the read side of a partition: batches, products,
// ledger rows and product history.
type InventoryService struct {
	batches  repositories.BatchRepository
	products repositories.ProductRepository
	records  repositories.RecordRepository
}

func NewInventoryService(
	batches repositories.BatchRepository,
	products repositories.ProductRepository,
	records repositories.RecordRepository,
) *InventoryService {
	return &InventoryService{
		batches:  batches,
		products: products,
		records:  records,
	}
}

// ListInventories returns every partition name that holds products.
func (s *InventoryService) ListInventories(ctx context.Context) ([]string, error) {
	return s.products.DistinctInventories(ctx)
}

// CreateInventory validates a new partition name. Partitions materialize on
// first import; this only reserves a well-formed, unused name.
func (s *InventoryService) CreateInventory(ctx context.Context, rawName string) (string, error) {
	name := NormalizeInventoryName(rawName)
	if !inventoryNamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, rawName)
	}

	exists, err := s.products.ExistsByInventory(ctx, name)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("%w: %s", ErrInventoryExists, name)
	}
	return name, nil
}

func (s *InventoryService) ListBatches(ctx context.Context, inventoryName string) ([]*models.ImportBatch, error) {
	return s.batches.List(ctx, NormalizeInventoryName(inventoryName))
}

func (s *InventoryService) ListProducts(ctx context.Context, inventoryName string) ([]*models.Product, error) {
	return s.products.List(ctx, NormalizeInventoryName(inventoryName))
}

func (s *InventoryService) ListRecords(ctx context.Context, inventoryName string, filter *models.RecordFilter) ([]*models.LedgerRow, error) {
	return s.records.List(ctx, NormalizeInventoryName(inventoryName), filter)
}

func (s *InventoryService) ProductHistory(ctx context.Context, inventoryName, code string) ([]*models.LedgerRow, error) {
	return s.records.HistoryByProduct(ctx, NormalizeInventoryName(inventoryName), spreadsheet.NormalizeCode(code))
}
