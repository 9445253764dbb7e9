// Package scheduler provides background maintenance for the disease
// insight API: periodic cache statistics for observability and a daily
// cache flush so long-running deployments pick up fresher model estimates.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/healthinsight/disease-insight-api/interfaces"
	"github.com/healthinsight/disease-insight-api/logging"
	"github.com/healthinsight/disease-insight-api/metrics"
)

// Compile-time check to ensure Scheduler implements the Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler runs background cache maintenance using dependency injection
type Scheduler struct {
	cache     interfaces.ResponseCache
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with an injected cache
func NewScheduler(responseCache interfaces.ResponseCache) *Scheduler {
	return &Scheduler{
		cache:     responseCache,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start registers the maintenance jobs and launches the scheduler
func (s *Scheduler) Start() error {
	// Keep the cache gauge current even when traffic is idle
	_, err := s.scheduler.Every(5).Minutes().Do(func() {
		entries := s.cache.Len()
		metrics.CacheEntries.Set(float64(entries))
		logging.Debug("Cache statistics", "entries", entries)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cache statistics: %w", err)
	}

	// Daily flush: cached estimates go stale well before they expire
	// from LRU pressure on low-traffic deployments
	_, err = s.scheduler.Every(1).Day().At("06:00").Do(func() {
		removed := s.cache.Clear()
		metrics.CacheEntries.Set(0)
		logging.Info("Scheduled cache flush", "entries_removed", removed)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cache flush: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
