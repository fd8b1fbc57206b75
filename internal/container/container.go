package container

import (
	"context"
	"fmt"

	"habitboard/adapters/kaggle"
	"habitboard/adapters/store"
	"habitboard/domain/student"
	"habitboard/domain/theme"
	"habitboard/internal/analysis"
	"habitboard/internal/config"
	"habitboard/internal/dashboard"
	"habitboard/internal/dataset"
	"habitboard/internal/metrics"
	"habitboard/internal/watch"
	"habitboard/ui"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB      *sqlx.DB
	Metrics *metrics.Metrics

	// Data
	Fetcher *kaggle.Fetcher
	Loader  *dataset.Loader
	Views   store.Repository

	Service *dashboard.Service
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
		Fetcher: kaggle.NewFetcher(cfg, nil, logger),
		Loader:  dataset.NewLoader(logger),
	}, nil
}

// LoadDataset downloads the dataset if needed and loads it.
// Both steps only log on failure: the dashboard then serves its error page.
func (c *Container) LoadDataset(ctx context.Context) *student.Dataset {
	if err := c.Fetcher.EnsureDataset(ctx); err != nil {
		c.Logger.Warn("dataset fetch failed", zap.Error(err))
	}

	ds, err := c.Loader.Load(c.Config.DataPath())
	if err != nil {
		c.Logger.Error("dataset load failed", zap.String("path", c.Config.DataPath()), zap.Error(err))
		return nil
	}
	return ds
}

// InitStore opens the saved views store. An empty DATABASE_URL or "memory" keeps views in memory.
func (c *Container) InitStore(ctx context.Context) error {
	url := c.Config.Database.URL
	if url == "" || url == "memory" {
		c.Views = store.NewMemory()
		c.Logger.Info("saved views kept in memory")
		return nil
	}

	db, err := store.Open(ctx, url)
	if err != nil {
		return err
	}
	c.DB = db
	c.Views = store.NewSQLRepository(db)
	c.Logger.Info("saved views store ready", zap.String("driver", db.DriverName()))
	return nil
}

// InitService builds the dashboard service over ds, which may be nil
func (c *Container) InitService(ds *student.Dataset) {
	c.Service = dashboard.NewService(ds, theme.Default(), analysis.NewCache(c.Config.Cache.Size), c.Metrics, c.Logger)
}

// Run serves the dashboard, the admin listener and the dataset watcher until ctx is cancelled
func (c *Container) Run(ctx context.Context) error {
	if c.Service == nil {
		return fmt.Errorf("service not initialized")
	}

	server, err := ui.NewServer(ui.Config{
		DataFile: c.Config.Data.File,
		DataDir:  c.Config.Data.Dir,
		GinMode:  c.Config.Server.GinMode,
	}, c.Service, c.Views, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, c.Config.Addr())
	})

	if c.Config.Admin.Enabled {
		admin := ui.AdminRouter(c.Metrics, c.Service.Ready)
		g.Go(func() error {
			return ui.RunAdmin(gctx, c.Config.Server.Host+":"+c.Config.Admin.Port, admin, c.Logger)
		})
	}

	if c.Config.Data.Watch {
		reloader := watch.NewReloader(watch.Config{
			Path:    c.Config.DataPath(),
			Load:    c.Loader.Load,
			Target:  c.Service,
			Metrics: c.Metrics,
			Logger:  c.Logger,
		})
		g.Go(func() error {
			if err := reloader.Run(gctx); err != nil {
				// a missing data directory disables reloads but not the dashboard
				c.Logger.Warn("dataset watcher stopped", zap.Error(err))
			}
			return nil
		})
	}

	return g.Wait()
}

// Close releases the database connection
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Serve is the whole server lifecycle: store, dataset, listeners
func Serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	c, err := New(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.InitStore(ctx); err != nil {
		return err
	}
	c.InitService(c.LoadDataset(ctx))
	return c.Run(ctx)
}
