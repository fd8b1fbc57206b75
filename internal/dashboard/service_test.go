package dashboard_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"habitboard/domain/filter"
	"habitboard/domain/theme"
	"habitboard/internal/analysis"
	"habitboard/internal/charts"
	"habitboard/internal/dashboard"
	"habitboard/internal/errors"
	"habitboard/internal/metrics"
	"habitboard/internal/testkit"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*dashboard.Service, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	svc := dashboard.NewService(testkit.FixtureDataset(), theme.Default(), analysis.NewCache(8), m, zap.NewNop())
	return svc, m
}

func TestRenderBuildsEveryFigure(t *testing.T) {
	svc, m := newService(t)

	view, err := svc.Render(context.Background(), filter.State{}, theme.Dark)
	require.NoError(t, err)

	assert.Equal(t, theme.Dark, view.Theme.Name)
	assert.Equal(t, "dark-dropdown", view.Theme.DropdownClass)
	assert.Equal(t, "6", view.KPIs.StudentCount)
	assert.Equal(t, "75.00", view.KPIs.AvgScore)
	require.Len(t, view.Figures, len(charts.Catalog))
	for _, c := range charts.Catalog {
		fig, ok := view.Figures[c.ID]
		require.True(t, ok, c.ID)
		require.NotNil(t, fig.Layout.Meta, c.ID)
		assert.Equal(t, "plotly_dark", fig.Layout.Meta.Template, c.ID)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues(theme.Dark)))
}

func TestRenderUnknownThemeFallsBackToLight(t *testing.T) {
	svc, _ := newService(t)
	view, err := svc.Render(context.Background(), filter.State{}, "Neon")
	require.NoError(t, err)
	assert.Equal(t, theme.Light, view.Theme.Name)
	assert.Equal(t, "plotly_white", view.Figures[charts.BarID].Layout.Meta.Template)
}

func TestRenderEmptySelection(t *testing.T) {
	svc, _ := newService(t)
	view, err := svc.Render(context.Background(), filter.State{Genders: []string{"Nobody"}}, theme.Light)
	require.NoError(t, err)

	assert.Equal(t, "0", view.KPIs.StudentCount)
	assert.Equal(t, "N/A", view.KPIs.AvgScore)
	assert.Contains(t, view.Figures[charts.ScatterID].Layout.Title.Text, "(Brak danych)")
}

func TestSnapshotCacheHitsAndSwap(t *testing.T) {
	svc, m := newService(t)
	female := filter.State{Genders: []string{"Female"}}
	reordered := filter.State{Genders: []string{"Female", "Female"}}

	first, err := svc.Snapshot(female)
	require.NoError(t, err)
	second, err := svc.Snapshot(reordered)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("miss")))

	smaller, err := testkit.DatasetFromCSV(strings.Replace(testkit.FixtureCSV, "S6,Other,Master,5.0,100,1.0,6.0,100,No,8\n", "", 1))
	require.NoError(t, err)
	svc.Swap(smaller)
	assert.Equal(t, 5.0, testutil.ToFloat64(m.DatasetRows))

	third, err := svc.Snapshot(female)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("miss")))

	all, err := svc.Filtered(filter.State{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSnapshotNormalizesBeforeCaching(t *testing.T) {
	svc, _ := newService(t)

	blank, err := svc.Snapshot(filter.State{Genders: []string{""}})
	require.NoError(t, err)
	assert.Len(t, blank.Records, 6)
	all, err := svc.Snapshot(filter.State{})
	require.NoError(t, err)
	assert.Len(t, all.Records, 6)

	padded, err := svc.Snapshot(filter.State{Genders: []string{" Female"}})
	require.NoError(t, err)
	assert.Len(t, padded.Records, 3)
	clean, err := svc.Snapshot(filter.State{Genders: []string{"Female"}})
	require.NoError(t, err)
	assert.Same(t, padded, clean)
}

func TestNoDataset(t *testing.T) {
	svc := dashboard.NewService(nil, theme.Default(), analysis.NewCache(2), nil, nil)
	assert.False(t, svc.Ready())

	_, err := svc.Render(context.Background(), filter.State{}, theme.Light)
	assert.True(t, errors.HasCode(err, errors.CodeDataMissing))

	_, _, err = svc.Options()
	assert.True(t, errors.HasCode(err, errors.CodeDataMissing))
}

func TestInvalidRange(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Render(context.Background(), filter.State{StudyHours: &filter.Range{Min: 5, Max: 1}}, theme.Light)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestRenderCancelledContext(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Render(ctx, filter.State{}, theme.Light)
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	svc, _ := newService(t)
	opts, bounds, err := svc.Options()
	require.NoError(t, err)
	assert.Equal(t, []string{"Female", "Male", "Other"}, opts.Genders)
	assert.Equal(t, []string{"Bachelor", "High School", "Master"}, opts.Education)
	assert.Equal(t, 1, bounds.Min)
	assert.Equal(t, 6, bounds.Max)
}

func TestExport(t *testing.T) {
	svc, _ := newService(t)
	var buf bytes.Buffer
	require.NoError(t, svc.Export(&buf, filter.State{Jobs: []string{"No"}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{dashboard.SheetData, dashboard.SheetKPI, dashboard.SheetEducation}, f.GetSheetList())

	rows, err := f.GetRows(dashboard.SheetData)
	require.NoError(t, err)
	assert.Len(t, rows, 5) // header + four rows without a job

	kpi, err := f.GetRows(dashboard.SheetKPI)
	require.NoError(t, err)
	assert.Equal(t, []string{"Liczba studentów", "4"}, kpi[1])

	edu, err := f.GetRows(dashboard.SheetEducation)
	require.NoError(t, err)
	require.Len(t, edu, 3)
	// ascending by mean: Master 75, High School 90
	assert.Equal(t, "Master", edu[1][0])
	assert.Equal(t, "High School", edu[2][0])
}
