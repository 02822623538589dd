package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/pmstandards/internal/catalog"
	"github.com/MrSnakeDoc/pmstandards/internal/logger"
)

// Seeder imports the reference data into the store.
type Seeder interface {
	Seed(ctx context.Context) (*catalog.SeedReport, error)
}

// ReloadStatus describes the last seeding run.
type ReloadStatus struct {
	Runs      int                 `json:"runs"`
	LastRunAt time.Time           `json:"last_run_at,omitzero"`
	LastError string              `json:"last_error,omitempty"`
	Report    *catalog.SeedReport `json:"report,omitempty"`
}

// FixtureReloader re-seeds the store from the fixture on start, on a timer
// and on manual trigger.
type FixtureReloader struct {
	seeder        Seeder
	logger        logger.Logger
	seedOnStart   bool
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu     sync.RWMutex
	status ReloadStatus
}

// NewFixtureReloader creates a new fixture reloader. interval <= 0 disables
// periodic runs; manualTrigger may be nil.
func NewFixtureReloader(
	seeder Seeder,
	log logger.Logger,
	seedOnStart bool,
	interval time.Duration,
	manualTrigger chan struct{},
) *FixtureReloader {
	return &FixtureReloader{
		seeder:        seeder,
		logger:        log,
		seedOnStart:   seedOnStart,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs the optional initial seed and the reload loop. A failing seed
// is logged and never stops the server: the API keeps serving the fixture
// fallback.
func (fr *FixtureReloader) Start(ctx context.Context) error {
	if fr.seedOnStart {
		fr.run(ctx, "startup")
	}

	var tick <-chan time.Time
	if fr.interval > 0 {
		ticker := time.NewTicker(fr.interval)
		tick = ticker.C
		go func() {
			<-fr.stopCh
			ticker.Stop()
		}()
	}

	go func() {
		for {
			select {
			case <-tick:
				fr.run(ctx, "interval")
			case <-fr.manualTrigger:
				fr.logger.Info("manual reseed triggered")
				fr.run(ctx, "manual")
			case <-fr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (fr *FixtureReloader) Stop() {
	fr.stopOnce.Do(func() { close(fr.stopCh) })
}

// Status returns a snapshot of the last run.
func (fr *FixtureReloader) Status() ReloadStatus {
	fr.mu.RLock()
	defer fr.mu.RUnlock()
	return fr.status
}

func (fr *FixtureReloader) run(ctx context.Context, reason string) {
	report, err := fr.seeder.Seed(ctx)

	fr.mu.Lock()
	fr.status.Runs++
	fr.status.LastRunAt = time.Now()
	if err != nil {
		fr.status.LastError = err.Error()
	} else {
		fr.status.LastError = ""
		fr.status.Report = report
	}
	fr.mu.Unlock()

	switch {
	case errors.Is(err, catalog.ErrNoFixture):
		fr.logger.Warn("no fixture to seed from",
			logger.String("reason", reason))
	case err != nil:
		fr.logger.Error("failed to seed fixture",
			logger.String("reason", reason),
			logger.Error(err))
	}
}
