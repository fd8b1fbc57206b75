// Package watch reloads the dataset when its file changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"habitboard/domain/student"
	"habitboard/internal/metrics"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the file must stay quiet before a reload
const DefaultDebounce = 250 * time.Millisecond

// Swapper receives freshly loaded datasets
type Swapper interface {
	Swap(ds *student.Dataset)
}

// LoadFunc reads and validates the dataset at path
type LoadFunc func(path string) (*student.Dataset, error)

// Config configures a Reloader
type Config struct {
	// Path is the dataset file; its directory is watched
	Path string

	// Debounce collapses bursts of writes into one reload
	Debounce time.Duration

	Load    LoadFunc
	Target  Swapper
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Reloader watches the dataset file and swaps in every version that loads cleanly
type Reloader struct {
	path     string
	debounce time.Duration
	load     LoadFunc
	target   Swapper
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewReloader creates a reloader
func NewReloader(cfg Config) *Reloader {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reloader{
		path:     filepath.Clean(cfg.Path),
		debounce: debounce,
		load:     cfg.Load,
		target:   cfg.Target,
		metrics:  cfg.Metrics,
		logger:   logger.Named("watch"),
	}
}

// Run blocks until ctx is cancelled
func (r *Reloader) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	dir := filepath.Dir(r.path)
	if err := fsw.Add(dir); err != nil {
		return err
	}
	r.logger.Info("watching dataset", zap.String("path", r.path), zap.Duration("debounce", r.debounce))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !r.relevant(event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(r.debounce)
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			r.Reload()
		}
	}
}

// Reload loads the file once. On failure the current dataset stays in place.
func (r *Reloader) Reload() {
	ds, err := r.load(r.path)
	if r.metrics != nil {
		r.metrics.ReloadResult(err)
	}
	if err != nil {
		r.logger.Error("dataset reload failed, keeping previous data", zap.String("path", r.path), zap.Error(err))
		return
	}
	r.target.Swap(ds)
	rows, cols := ds.Shape()
	r.logger.Info("dataset reloaded", zap.Int("rows", rows), zap.Int("columns", cols))
}

func (r *Reloader) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != r.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
