package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"habitboard/domain/student"
	"habitboard/internal/errors"
	"habitboard/internal/metrics"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu      sync.Mutex
	swapped []*student.Dataset
	notify  chan struct{}
}

func (r *recorder) Swap(ds *student.Dataset) {
	r.mu.Lock()
	r.swapped = append(r.swapped, ds)
	r.mu.Unlock()
	r.notify <- struct{}{}
}

type mockSwapper struct {
	mock.Mock
}

func (m *mockSwapper) Swap(ds *student.Dataset) {
	m.Called(ds)
}

func TestReloadSwapsOnSuccess(t *testing.T) {
	m := metrics.New()
	ds := student.NewDataset("x.csv", nil, []student.Record{{Gender: "Female"}})
	target := new(mockSwapper)
	target.On("Swap", ds).Return().Once()

	r := NewReloader(Config{
		Path:    "x.csv",
		Load:    func(string) (*student.Dataset, error) { return ds, nil },
		Target:  target,
		Metrics: m,
	})
	r.Reload()

	target.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reloads.WithLabelValues("ok")))
}

func TestReloadKeepsPreviousOnFailure(t *testing.T) {
	m := metrics.New()
	target := new(mockSwapper)

	r := NewReloader(Config{
		Path:    "x.csv",
		Load:    func(string) (*student.Dataset, error) { return nil, errors.SchemaInvalid("missing required columns: gender") },
		Target:  target,
		Metrics: m,
	})
	r.Reload()

	target.AssertNotCalled(t, "Swap", mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reloads.WithLabelValues("error")))
}

func TestRelevantEvents(t *testing.T) {
	r := NewReloader(Config{Path: "data/students.csv"})

	assert.True(t, r.relevant(fsnotify.Event{Name: "data/students.csv", Op: fsnotify.Write}))
	assert.True(t, r.relevant(fsnotify.Event{Name: "data/./students.csv", Op: fsnotify.Create}))
	assert.False(t, r.relevant(fsnotify.Event{Name: "data/students.csv", Op: fsnotify.Chmod}))
	assert.False(t, r.relevant(fsnotify.Event{Name: "data/other.csv", Op: fsnotify.Write}))
}

func TestRunDebouncesWritesAndStops(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "students.csv")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	var loads int
	var mu sync.Mutex
	rec := &recorder{notify: make(chan struct{}, 4)}
	r := NewReloader(Config{
		Path:     path,
		Debounce: 50 * time.Millisecond,
		Load: func(string) (*student.Dataset, error) {
			mu.Lock()
			loads++
			mu.Unlock()
			return student.NewDataset(path, nil, nil), nil
		},
		Target: rec,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("v"+string(rune('1'+i))), 0o644))
	}

	select {
	case <-rec.notify:
	case <-time.After(5 * time.Second):
		t.Fatal("dataset was not reloaded")
	}
	time.Sleep(150 * time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, loads)
}
