// Package dashboard turns a filter selection and a theme name into a rendered view.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"habitboard/domain/filter"
	"habitboard/domain/student"
	"habitboard/domain/theme"
	"habitboard/internal/analysis"
	"habitboard/internal/charts"
	"habitboard/internal/errors"
	"habitboard/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// View is everything the page needs to redraw after a control change
type View struct {
	Theme   theme.Theme              `json:"theme"`
	Style   string                   `json:"style"`
	KPIs    analysis.KPIs            `json:"kpis"`
	Figures map[string]charts.Figure `json:"figures"`
	Filter  filter.State             `json:"filter"`
}

// Service owns the current dataset and the aggregate cache
type Service struct {
	mu         sync.RWMutex
	data       *student.Dataset
	generation uint64

	themes  *theme.Table
	cache   *analysis.Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService creates a service. ds may be nil when loading failed; Render then reports DATA_MISSING.
func NewService(ds *student.Dataset, themes *theme.Table, cache *analysis.Cache, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	s := &Service{
		data:    ds,
		themes:  themes,
		cache:   cache,
		metrics: m,
		logger:  logger.Named("dashboard"),
	}
	if ds != nil {
		m.DatasetRows.Set(float64(ds.Len()))
	}
	return s
}

// Theme resolves a theme name, falling back to the default theme
func (s *Service) Theme(name string) theme.Theme {
	return s.themes.Lookup(name)
}

// Themes lists the selectable theme names
func (s *Service) Themes() []string {
	return s.themes.Names()
}

// Dataset returns the current dataset, or nil
func (s *Service) Dataset() *student.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Ready reports whether a dataset is loaded
func (s *Service) Ready() bool {
	return s.Dataset() != nil
}

// Options returns the filter choices and the study hours slider bounds
func (s *Service) Options() (student.Options, student.Bounds, error) {
	ds := s.Dataset()
	if ds == nil {
		return student.Options{}, student.Bounds{}, errNoData()
	}
	return ds.Options(), ds.StudyHoursBounds(), nil
}

// Filtered returns the rows matching state
func (s *Service) Filtered(state filter.State) ([]student.Record, error) {
	snap, err := s.Snapshot(state)
	if err != nil {
		return nil, err
	}
	return snap.Records, nil
}

// Swap replaces the dataset. Cached aggregates of the previous generation are dropped.
func (s *Service) Swap(ds *student.Dataset) {
	s.mu.Lock()
	s.data = ds
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.cache.Purge()
	s.metrics.DatasetRows.Set(float64(ds.Len()))
	s.logger.Info("dataset swapped", zap.Uint64("generation", gen), zap.Int("rows", ds.Len()))
}

// Snapshot fetches or computes the aggregates of a selection
// The cache key and the filtered rows both derive from the normalized state.
func (s *Service) Snapshot(state filter.State) (*analysis.Snapshot, error) {
	state = state.Normalized()
	if err := state.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	ds, gen := s.data, s.generation
	s.mu.RUnlock()
	if ds == nil {
		return nil, errNoData()
	}

	key := fmt.Sprintf("%d:%s", gen, state.Fingerprint())
	if snap, ok := s.cache.Get(key); ok {
		s.metrics.CacheHit()
		return snap, nil
	}
	s.metrics.CacheMiss()

	snap := analysis.Compute(state.Apply(ds.Records()), ds.Headers)
	s.cache.Put(key, snap)
	return snap, nil
}

// Render filters, aggregates and builds every chart of the dashboard in the chosen theme
func (s *Service) Render(ctx context.Context, state filter.State, themeName string) (*View, error) {
	start := time.Now()
	th := s.themes.Lookup(themeName)

	snap, err := s.Snapshot(state)
	if err != nil {
		return nil, err
	}

	figures := make([]charts.Figure, len(charts.Catalog))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range charts.Catalog {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			figures[i] = charts.ApplyTemplate(c.Build(snap), th.Template)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to build figures")
	}

	view := &View{
		Theme:   th,
		Style:   th.Style(),
		KPIs:    snap.KPIs,
		Figures: make(map[string]charts.Figure, len(figures)),
		Filter:  state.Normalized(),
	}
	for i, c := range charts.Catalog {
		view.Figures[c.ID] = figures[i]
	}

	elapsed := time.Since(start)
	s.metrics.Renders.WithLabelValues(th.Name).Inc()
	s.metrics.RenderDuration.Observe(elapsed.Seconds())
	s.logger.Debug("rendered dashboard",
		zap.String("theme", th.Name),
		zap.Int("rows", len(snap.Records)),
		zap.Duration("elapsed", elapsed))
	return view, nil
}

func errNoData() error {
	return errors.DataMissing("no dataset loaded")
}
