package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"habitboard/adapters/store"
	"habitboard/internal/config"
	"habitboard/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Data:     config.DataConfig{Dir: dir, File: "students.csv"},
		Kaggle:   config.KaggleConfig{ConfigFile: filepath.Join(dir, "kaggle.json")},
		Database: config.DatabaseConfig{URL: "memory"},
		Cache:    config.CacheConfig{Size: 4},
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestLoadDatasetFromDisk(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.DataPath(), []byte(testkit.FixtureCSV), 0o644))

	c, err := New(cfg, nil)
	require.NoError(t, err)

	ds := c.LoadDataset(context.Background())
	require.NotNil(t, ds)
	assert.Equal(t, 6, ds.Len())

	c.InitService(ds)
	assert.True(t, c.Service.Ready())
}

func TestLoadDatasetMissingWithoutCredentials(t *testing.T) {
	c, err := New(testConfig(t), nil)
	require.NoError(t, err)

	ds := c.LoadDataset(context.Background())
	assert.Nil(t, ds)

	c.InitService(ds)
	assert.False(t, c.Service.Ready())
}

func TestInitStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		c, err := New(testConfig(t), nil)
		require.NoError(t, err)
		require.NoError(t, c.InitStore(context.Background()))

		assert.IsType(t, &store.Memory{}, c.Views)
		assert.Nil(t, c.DB)
		assert.NoError(t, c.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Database.URL = "sqlite3://" + filepath.Join(cfg.Data.Dir, "views.db")

		c, err := New(cfg, nil)
		require.NoError(t, err)
		require.NoError(t, c.InitStore(context.Background()))
		defer c.Close()

		require.NotNil(t, c.DB)
		views, err := c.Views.List(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, views)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Database.URL = "mysql://localhost/views"

		c, err := New(cfg, nil)
		require.NoError(t, err)
		assert.Error(t, c.InitStore(context.Background()))
	})
}

func TestRunWithoutService(t *testing.T) {
	c, err := New(testConfig(t), nil)
	require.NoError(t, err)
	assert.Error(t, c.Run(context.Background()))
}
