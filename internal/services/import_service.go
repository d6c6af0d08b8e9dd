// Package services orchestrates uploads and read paths over the repository
// layer. The import service owns the single transaction every upload runs
// in, so a failed upload never leaves a half-written batch behind.
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"stockledger/internal/caching"
	"stockledger/internal/importer"
	"stockledger/internal/models"
	"stockledger/internal/repositories"
	"stockledger/internal/spreadsheet"
)

// DB is the subset of pgxpool.Pool the import service needs: plain queries
// for pre-checks plus the ability to open the upload transaction.
type DB interface {
	repositories.Database
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Archiver stores the raw uploaded files after a successful import.
type Archiver interface {
	Archive(ctx context.Context, inventoryName string, batchID uuid.UUID, fileName string, content []byte) error
}

// UploadedFile is one file from a multipart upload, fully read into memory.
type UploadedFile struct {
	Name    string
	Content []byte
}

type ImportService struct {
	db      DB
	cache   caching.CacheService
	archive Archiver
	log     *logrus.Entry
}

func NewImportService(db DB, cache caching.CacheService, archive Archiver) *ImportService {
	return &ImportService{
		db:      db,
		cache:   cache,
		archive: archive,
		log:     logrus.WithField("component", "import_service"),
	}
}

// NormalizeInventoryName lowercases and trims a partition name, falling back
// to "default" when nothing usable remains.
func NormalizeInventoryName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return "default"
	}
	return name
}

type resolvedUpload struct {
	file  UploadedFile
	table *spreadsheet.Table
}

// ImportInventory runs one upload end to end: validate, parse every file,
// then apply everything inside a single transaction serialized per
// partition. Re-uploading an identical file set replaces the prior batch.
func (s *ImportService) ImportInventory(ctx context.Context, inventoryName string, baseFile *UploadedFile, updateFiles []UploadedFile) (*models.ImportSummary, error) {
	inventoryName = NormalizeInventoryName(inventoryName)

	if baseFile == nil && len(updateFiles) == 0 {
		return nil, ErrNoFiles
	}

	allFiles := make([]UploadedFile, 0, len(updateFiles)+1)
	if baseFile != nil {
		allFiles = append(allFiles, *baseFile)
	}
	allFiles = append(allFiles, updateFiles...)
	for _, f := range allFiles {
		if err := validateFile(f); err != nil {
			return nil, err
		}
	}

	// Parse before touching the database: one unreadable file fails the
	// whole request with nothing persisted.
	var baseTable *spreadsheet.Table
	if baseFile != nil {
		table, err := spreadsheet.ResolveBaseTable(baseFile.Name, baseFile.Content)
		if err != nil {
			return nil, err
		}
		baseTable = table
	}
	updates := make([]resolvedUpload, 0, len(updateFiles))
	for _, f := range updateFiles {
		table, err := spreadsheet.ResolveUpdateTable(f.Name, f.Content)
		if err != nil {
			return nil, err
		}
		updates = append(updates, resolvedUpload{file: f, table: table})
	}

	contents := make([][]byte, 0, len(allFiles))
	names := make([]string, 0, len(allFiles))
	for _, f := range allFiles {
		contents = append(contents, f.Content)
		names = append(names, f.Name)
	}
	fingerprint := importer.Fingerprint(contents)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serializes concurrent uploads against the same partition; released
	// automatically at commit or rollback.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, inventoryName); err != nil {
		return nil, fmt.Errorf("acquire partition lock: %w", err)
	}

	batches := repositories.NewBatchRepo(tx)
	products := repositories.NewProductRepo(tx)
	details := repositories.NewWarehouseDetailRepo(tx)
	records := repositories.NewRecordRepo(tx)

	hasBase, err := products.ExistsByInventory(ctx, inventoryName)
	if err != nil {
		return nil, err
	}
	if baseFile != nil && hasBase {
		return nil, ErrBaseAlreadyLoaded
	}
	if baseFile == nil && !hasBase {
		return nil, ErrBaseRequired
	}

	prior, err := batches.GetByChecksum(ctx, inventoryName, fingerprint)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		s.log.WithFields(logrus.Fields{
			"inventory": inventoryName,
			"batch_id":  prior.ID,
		}).Info("replacing batch with identical checksum")
		if err := records.DeleteByBatch(ctx, prior.ID); err != nil {
			return nil, err
		}
		if err := batches.Delete(ctx, prior.ID); err != nil {
			return nil, err
		}
	}

	batch := &models.ImportBatch{
		ID:            uuid.New(),
		InventoryName: inventoryName,
		FileName:      strings.Join(names, " + "),
		StartedAt:     time.Now().UTC(),
		Checksum:      fingerprint,
	}
	if err := batches.Create(ctx, batch); err != nil {
		return nil, err
	}

	summary := &models.ImportSummary{BatchID: batch.ID, InventoryName: inventoryName}
	rowsTotal := 0

	if baseTable != nil {
		if err := records.DeleteByInventory(ctx, inventoryName); err != nil {
			return nil, err
		}
		if err := details.DeleteByInventory(ctx, inventoryName); err != nil {
			return nil, err
		}
		if err := products.DeleteByInventory(ctx, inventoryName); err != nil {
			return nil, err
		}

		outcome, err := importer.NewBaseImporter(products, details).Run(ctx, inventoryName, baseTable)
		if err != nil {
			return nil, err
		}
		summary.BaseRecords = outcome.Created
		rowsTotal += baseTable.Len()
	}

	for _, u := range updates {
		outcome, err := importer.NewMovementImporter(products, records).Run(ctx, inventoryName, batch.ID, u.table)
		if err != nil {
			return nil, err
		}
		summary.UpdateRecords += outcome.Created
		summary.Duplicates += outcome.Duplicates
		rowsTotal += u.table.Len()
	}

	if summary.BaseRecords+summary.UpdateRecords == 0 {
		return nil, ErrNoRecordsImported
	}

	if err := batches.Finalize(ctx, batch.ID, rowsTotal, summary.BaseRecords+summary.UpdateRecords, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit import transaction: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateInventory(ctx, inventoryName); err != nil {
			s.log.WithError(err).WithField("inventory", inventoryName).Warn("cache invalidation failed")
		}
	}
	if s.archive != nil {
		for _, f := range allFiles {
			if err := s.archive.Archive(ctx, inventoryName, batch.ID, f.Name, f.Content); err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"inventory": inventoryName,
					"file":      f.Name,
				}).Warn("upload archival failed")
			}
		}
	}

	s.log.WithFields(logrus.Fields{
		"inventory":      inventoryName,
		"batch_id":       batch.ID,
		"base_records":   summary.BaseRecords,
		"update_records": summary.UpdateRecords,
		"duplicates":     summary.Duplicates,
	}).Info("import committed")

	return summary, nil
}

func validateFile(f UploadedFile) error {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if ext != ".xls" && ext != ".xlsx" {
		return fmt.Errorf("%w: %s", ErrBadFileType, f.Name)
	}
	if len(f.Content) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, f.Name)
	}
	return nil
}
