package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"stockledger/internal/analytics"
	"stockledger/internal/caching"
	"stockledger/internal/config"
	"stockledger/internal/handlers"
	"stockledger/internal/jobs"
	"stockledger/internal/repositories"
	"stockledger/internal/services"
	"stockledger/pkg/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	cache := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	archive, err := services.NewArchiveService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create archive client")
	}
	if err := archive.EnsureBucketExists(ctx); err != nil {
		logrus.WithError(err).Warn("upload archival unavailable")
	}

	batchRepo := repositories.NewBatchRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	detailRepo := repositories.NewWarehouseDetailRepo(pool)
	recordRepo := repositories.NewRecordRepo(pool)

	importService := services.NewImportService(pool, cache, archive)
	inventoryService := services.NewInventoryService(batchRepo, productRepo, recordRepo)
	analysisService := analytics.NewAnalysisService(productRepo, detailRepo, recordRepo, batchRepo, cache, cfg.CacheTTL)

	scheduler, err := jobs.NewScheduler(analysisService, productRepo, cfg.RefreshInterval)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create scheduler")
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	handlers.NewInventoryHandlers(importService, inventoryService, analysisService).RegisterRoutes(e)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
