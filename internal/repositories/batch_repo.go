package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BatchRepository interface {
	Create(ctx context.Context, batch *models.ImportBatch) error
	Finalize(ctx context.Context, id uuid.UUID, rowsTotal, rowsImported int, processedAt time.Time) error
	GetByChecksum(ctx context.Context, inventoryName, checksum string) (*models.ImportBatch, error)
	List(ctx context.Context, inventoryName string) ([]*models.ImportBatch, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByInventory(ctx context.Context, inventoryName string) (int, error)
}

type batchRepo struct {
	db Database
}

func NewBatchRepo(db Database) BatchRepository {
	return &batchRepo{db: db}
}

func (r *batchRepo) Create(ctx context.Context, batch *models.ImportBatch) error {
	query := `
		INSERT INTO import_batches (id, inventory_name, file_name, started_at, rows_total, rows_imported, checksum)
		VALUES ($1, $2, $3, NOW(), 0, 0, $4)
	`
	_, err := r.db.Exec(ctx, query, batch.ID, batch.InventoryName, batch.FileName, batch.Checksum)
	if err != nil {
		return fmt.Errorf("create import batch: %w", err)
	}
	return nil
}

func (r *batchRepo) Finalize(ctx context.Context, id uuid.UUID, rowsTotal, rowsImported int, processedAt time.Time) error {
	query := `
		UPDATE import_batches
		SET rows_total = $1, rows_imported = $2, processed_at = $3
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, rowsTotal, rowsImported, processedAt, id)
	if err != nil {
		return fmt.Errorf("finalize import batch: %w", err)
	}
	return nil
}

// GetByChecksum returns nil when no batch with the fingerprint exists in
// the partition.
func (r *batchRepo) GetByChecksum(ctx context.Context, inventoryName, checksum string) (*models.ImportBatch, error) {
	batch := &models.ImportBatch{}
	query := `
		SELECT id, inventory_name, file_name, started_at, processed_at, rows_total, rows_imported, checksum
		FROM import_batches
		WHERE inventory_name = $1 AND checksum = $2
	`
	err := r.db.QueryRow(ctx, query, inventoryName, checksum).Scan(
		&batch.ID, &batch.InventoryName, &batch.FileName, &batch.StartedAt,
		&batch.ProcessedAt, &batch.RowsTotal, &batch.RowsImported, &batch.Checksum,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get batch by checksum: %w", err)
	}
	return batch, nil
}

func (r *batchRepo) List(ctx context.Context, inventoryName string) ([]*models.ImportBatch, error) {
	query := `
		SELECT id, inventory_name, file_name, started_at, processed_at, rows_total, rows_imported, checksum
		FROM import_batches
		WHERE inventory_name = $1
		ORDER BY started_at DESC
	`
	rows, err := r.db.Query(ctx, query, inventoryName)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []*models.ImportBatch
	for rows.Next() {
		batch := &models.ImportBatch{}
		if err := rows.Scan(
			&batch.ID, &batch.InventoryName, &batch.FileName, &batch.StartedAt,
			&batch.ProcessedAt, &batch.RowsTotal, &batch.RowsImported, &batch.Checksum,
		); err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

func (r *batchRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM import_batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

func (r *batchRepo) CountByInventory(ctx context.Context, inventoryName string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM import_batches WHERE inventory_name = $1`, inventoryName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count batches: %w", err)
	}
	return count, nil
}
