package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/pmstandards/internal/logger"
	redisstore "github.com/MrSnakeDoc/pmstandards/internal/store/redis"
)

// Repairer removes index entries that point at missing documents.
type Repairer interface {
	Repair(ctx context.Context) (redisstore.RepairReport, error)
}

// Janitor periodically sweeps the store indexes for dangling entries.
type Janitor struct {
	store    Repairer
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewJanitor creates a new janitor. interval <= 0 disables it.
func NewJanitor(store Repairer, log logger.Logger, interval time.Duration) *Janitor {
	return &Janitor{
		store:    store,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one sweep right away, then one per interval.
func (j *Janitor) Start(ctx context.Context) error {
	if j.interval <= 0 {
		j.logger.Debug("index janitor disabled")
		return nil
	}

	if _, err := j.Sweep(ctx); err != nil {
		j.logger.Warn("initial index sweep failed", logger.Error(err))
	}

	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := j.Sweep(ctx); err != nil {
					j.logger.Error("index sweep failed", logger.Error(err))
				}
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the janitor
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() { close(j.stopCh) })
}

// Sweep runs one repair pass.
func (j *Janitor) Sweep(ctx context.Context) (redisstore.RepairReport, error) {
	report, err := j.store.Repair(ctx)
	if err != nil {
		return report, err
	}

	if report.Total() > 0 {
		j.logger.Info("dangling index entries removed",
			logger.Int("topics", report.Topics),
			logger.Int("scenarios", report.Scenarios),
			logger.Int("bookmarks", report.Bookmarks),
			logger.Int("lookups", report.Lookups))
	} else {
		j.logger.Debug("no dangling index entries")
	}
	return report, nil
}
