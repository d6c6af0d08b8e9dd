// Package jobs runs the background schedule: a periodic warm of the
// per-partition analytics caches so the first read after an idle stretch
// does not pay the full derivation cost.
package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"stockledger/internal/analytics"
	"stockledger/internal/repositories"
)

type Scheduler struct {
	scheduler gocron.Scheduler
	analysis  *analytics.AnalysisService
	products  repositories.ProductRepository
	interval  time.Duration
	log       *logrus.Entry
}

func NewScheduler(analysis *analytics.AnalysisService, products repositories.ProductRepository, interval time.Duration) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		scheduler: scheduler,
		analysis:  analysis,
		products:  products,
		interval:  interval,
		log:       logrus.WithField("component", "scheduler"),
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.refreshAnalytics, context.Background()),
		gocron.WithName("analytics-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.log.WithField("interval", s.interval).Info("starting background scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	s.log.Info("stopping background scheduler")
	return s.scheduler.Shutdown()
}

// refreshAnalytics recomputes and caches the summary and unfiltered
// analysis for every known partition.
func (s *Scheduler) refreshAnalytics(ctx context.Context) {
	inventories, err := s.products.DistinctInventories(ctx)
	if err != nil {
		s.log.WithError(err).Warn("failed to list inventories for refresh")
		return
	}

	for _, name := range inventories {
		if _, err := s.analysis.Analyze(ctx, name, nil); err != nil {
			s.log.WithError(err).WithField("inventory", name).Warn("analysis refresh failed")
			continue
		}
		if _, err := s.analysis.Summary(ctx, name); err != nil {
			s.log.WithError(err).WithField("inventory", name).Warn("summary refresh failed")
		}
	}
	s.log.WithField("inventories", len(inventories)).Debug("analytics caches refreshed")
}
