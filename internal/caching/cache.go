// Package caching keeps derived analytics hot in Redis, one namespace per
// inventory partition. Cache failures are treated as misses by callers, so
// a dead Redis only costs recomputation.
package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockledger/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type CacheService interface {
	GetAnalysis(ctx context.Context, inventoryName string) ([]models.AnalysisRow, error)
	SetAnalysis(ctx context.Context, inventoryName string, rows []models.AnalysisRow, ttl time.Duration) error
	GetSummary(ctx context.Context, inventoryName string) (*models.Summary, error)
	SetSummary(ctx context.Context, inventoryName string, summary *models.Summary, ttl time.Duration) error
	InvalidateInventory(ctx context.Context, inventoryName string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logrus.WithError(err).Warn("redis ping failed, analytics caching degraded")
	}

	return &redisCacheService{client: client}
}

func analysisKey(inventoryName string) string {
	return fmt.Sprintf("stockledger:analysis:%s", inventoryName)
}

func summaryKey(inventoryName string) string {
	return fmt.Sprintf("stockledger:summary:%s", inventoryName)
}

func (r *redisCacheService) GetAnalysis(ctx context.Context, inventoryName string) ([]models.AnalysisRow, error) {
	data, err := r.client.Get(ctx, analysisKey(inventoryName)).Bytes()
	if err != nil {
		return nil, err
	}
	var rows []models.AnalysisRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *redisCacheService) SetAnalysis(ctx context.Context, inventoryName string, rows []models.AnalysisRow, ttl time.Duration) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, analysisKey(inventoryName), data, ttl).Err()
}

func (r *redisCacheService) GetSummary(ctx context.Context, inventoryName string) (*models.Summary, error) {
	data, err := r.client.Get(ctx, summaryKey(inventoryName)).Bytes()
	if err != nil {
		return nil, err
	}
	summary := &models.Summary{}
	if err := json.Unmarshal(data, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *redisCacheService) SetSummary(ctx context.Context, inventoryName string, summary *models.Summary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, summaryKey(inventoryName), data, ttl).Err()
}

func (r *redisCacheService) InvalidateInventory(ctx context.Context, inventoryName string) error {
	return r.client.Del(ctx, analysisKey(inventoryName), summaryKey(inventoryName)).Err()
}
