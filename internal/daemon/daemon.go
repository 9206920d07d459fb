package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lifexp-app/lifexp/internal/api"
	"github.com/lifexp-app/lifexp/internal/app/engagement"
	"github.com/lifexp-app/lifexp/internal/cache"
	"github.com/lifexp-app/lifexp/internal/domain"
	"github.com/lifexp-app/lifexp/internal/health"
	"github.com/lifexp-app/lifexp/internal/infra/postgres"
	"github.com/lifexp-app/lifexp/internal/infra/scheduler"
	"github.com/lifexp-app/lifexp/internal/infra/sqlite"
)

// Daemon is the LifeXP runtime. It wires together all services.
type Daemon struct {
	Config    Config
	Logger    *slog.Logger
	Store     domain.Store
	Service   *engagement.Service
	Cache     *cache.InMemoryProfileCache
	Scheduler *scheduler.Scheduler
	Health    *health.Checker
	Server    *api.Server
	cancel    context.CancelFunc
}

// New creates and initializes a Daemon from the config file.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := NewLogger(cfg.Logging, os.Stderr)

	store, dataDir, err := openStore(context.Background(), cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", "driver", cfg.Storage.Driver)

	d := &Daemon{
		Config: cfg,
		Logger: logger,
		Store:  store,
	}

	opts := engagement.Options{
		MaxWriteRetries: cfg.Progression.MaxWriteRetries,
		DailyQuestCount: cfg.Quests.DailyCount,
		DefaultTimezone: cfg.Quests.TimezoneDefault,
		Logger:          logger,
	}
	if cfg.Cache.Enabled {
		d.Cache = cache.NewInMemoryProfileCache(parseDuration(cfg.Cache.TTL, 30*time.Second), logger)
		opts.Cache = d.Cache
	}
	d.Service = engagement.New(store, opts)

	d.Scheduler, err = scheduler.New(scheduler.Config{Schedule: cfg.Quests.Schedule}, d.Service, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	d.Health = health.NewChecker(store, dataDir, parseDuration(cfg.Telemetry.HealthInterval, time.Minute), logger)

	d.Server = api.NewServer(d.Service, logger)
	d.Server.SetHealth(d.Health)
	d.Server.SetCORSOrigins(cfg.API.CORSOrigins)
	if cfg.Telemetry.Metrics {
		d.Server.EnableMetrics()
	}

	return d, nil
}

// openStore opens the configured store and returns it along with the local
// data directory to watch, which is empty for postgres.
func openStore(ctx context.Context, cfg StorageConfig) (domain.Store, string, error) {
	switch cfg.Driver {
	case "postgres":
		store, err := postgres.Open(ctx, cfg.DSN, postgres.NewConfigFromEnv())
		return store, "", err
	default:
		dir := cfg.Dir
		if dir == "" {
			dir = lifexpHome()
		}
		store, err := sqlite.Open(dir)
		return store, dir, err
	}
}

// Serve starts the HTTP server and background jobs, and blocks until
// shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	if err := d.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			d.Logger.Info("shutting down", "signal", sig.String())
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		d.Scheduler.Stop()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("LifeXP serving on http://%s\n", addr)
	if d.Config.Telemetry.Metrics {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}
	fmt.Printf("  Quest rollover: %s\n", d.Config.Quests.Schedule)

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Scheduler != nil {
		d.Scheduler.Stop()
	}
	if d.Store != nil {
		_ = d.Store.Close()
	}
}
