package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/pmstandards/internal/catalog"
	"github.com/MrSnakeDoc/pmstandards/internal/config"
	"github.com/MrSnakeDoc/pmstandards/internal/httpserver"
	"github.com/MrSnakeDoc/pmstandards/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pmstandards/internal/logger"
	"github.com/MrSnakeDoc/pmstandards/internal/redis"
	"github.com/MrSnakeDoc/pmstandards/internal/scheduler"
	"github.com/MrSnakeDoc/pmstandards/internal/sources/fixture"
	redisstore "github.com/MrSnakeDoc/pmstandards/internal/store/redis"
	"github.com/MrSnakeDoc/pmstandards/internal/utils"
	"github.com/MrSnakeDoc/pmstandards/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	store       *redisstore.Store
	seeder      *catalog.Seeder
	reloader    *scheduler.FixtureReloader
	janitor     *scheduler.Janitor
}

// New connects to the store and wires every component. It fails when Redis
// cannot be reached within the configured connect timeout or ctx ends first.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	log.Info("connecting to document store",
		logger.String("url", config.RedactURL(cfg.StoreURL)))

	redisClient, err := redis.New(ctx, redis.ConnectOptions{
		URL:            cfg.StoreURL,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, log.Named("redis"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	store := redisstore.NewStore(redisClient)
	loader := fixture.NewLoader(cfg.FixtureFile)
	seeder := catalog.NewSeeder(store, loader, log.Named("seeder"))

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewFixtureReloader(
		seeder,
		log.Named("reloader"),
		cfg.SeedOnStart,
		cfg.ReseedInterval,
		reloadTrigger,
	)

	d := deps.Deps{
		Logger:            log,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		AllowedHosts:      cfg.AllowedHosts,
		AllowedCIDRS:      cfg.AllowedCIDRS,
		TrustProxy:        cfg.TrustProxy,
		Store:             store,
		Topics:            catalog.NewTopicLookup(store, loader, log.Named("topics")),
		Processes:         catalog.NewProcessResolver(store),
		Bookmarks:         catalog.NewBookmarkManager(store),
		Fixture:           loader,
		Reloader:          reloader,
		ReloadTrigger:     reloadTrigger,
		CORSOrigins:       cfg.CORSOrigins,
		WriteBurst:        cfg.WriteBurst,
		WriteRefillPerMin: cfg.WriteRefillPerMin,
	}

	return &App{
		cfg:         cfg,
		logger:      log,
		server:      httpserver.New(cfg, log, d),
		redisClient: redisClient,
		store:       store,
		seeder:      seeder,
		reloader:    reloader,
		janitor:     scheduler.NewJanitor(store, log.Named("janitor"), cfg.JanitorInterval),
	}, nil
}

// Run serves the API until ctx is cancelled or the server fails, then shuts
// down gracefully and closes the store connection.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	a.logger.Info("starting pmstandards",
		logger.String("version", version.String()),
		logger.String("listen", a.cfg.ListenPort))

	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start fixture reloader: %w", err)
	}
	a.logger.Info("fixture reloader started",
		logger.String("fixture", a.cfg.FixtureFile),
		logger.Bool("seed_on_start", a.cfg.SeedOnStart),
		logger.Duration("interval", a.cfg.ReseedInterval))
	defer a.reloader.Stop()

	if err := a.janitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start index janitor: %w", err)
	}
	a.logger.Info("index janitor started",
		logger.Duration("interval", a.cfg.JanitorInterval))
	defer a.janitor.Stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("pmstandards stopped cleanly")
	return nil
}

// Seed runs one import of the fixture. With reset, stored topics and
// scenarios are removed first; bookmarks are never touched.
func (a *App) Seed(ctx context.Context, reset bool) (*catalog.SeedReport, error) {
	if reset {
		removed, err := a.store.ResetReference(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to reset reference data: %w", err)
		}
		a.logger.Info("reference data reset", logger.Int("removed", removed))
	}
	return a.seeder.Seed(ctx)
}

// Close releases the store connection. Safe to call more than once.
func (a *App) Close() {
	if a.redisClient == nil {
		return
	}
	utils.CloseLogged(a.redisClient, a.logger, "redis")
	a.redisClient = nil
}
