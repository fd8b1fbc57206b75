package kaggle

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"habitboard/internal/config"
	"habitboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Data.Dir = filepath.Join(dir, "data")
	cfg.Data.File = "student_habits_performance.csv"
	cfg.Kaggle.Dataset = "owner/student-habits"
	cfg.Kaggle.Zip = "student-habits.zip"
	cfg.Kaggle.ConfigFile = filepath.Join(dir, "kaggle.json")
	cfg.Kaggle.BaseURL = baseURL
	return cfg
}

func writeCredentials(t *testing.T, cfg *config.Config) {
	t.Helper()
	require.NoError(t, os.WriteFile(cfg.Kaggle.ConfigFile, []byte(`{"username":"ada","key":"secret"}`), 0o600))
}

func TestEnsureDatasetDownloadsAndExtracts(t *testing.T) {
	archive := zipBytes(t, map[string]string{"student_habits_performance.csv": "gender\nFemale\n"})
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ada" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write(archive)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL+"/api/v1/datasets/download/")
	writeCredentials(t, cfg)

	require.NoError(t, NewFetcher(cfg, srv.Client(), nil).EnsureDataset(context.Background()))
	assert.Equal(t, "/api/v1/datasets/download/owner/student-habits", gotPath)

	content, err := os.ReadFile(cfg.DataPath())
	require.NoError(t, err)
	assert.Equal(t, "gender\nFemale\n", string(content))
	assert.FileExists(t, filepath.Join(cfg.Data.Dir, cfg.Kaggle.Zip))
}

func TestEnsureDatasetSkipsExistingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	require.NoError(t, os.MkdirAll(cfg.Data.Dir, 0o755))
	require.NoError(t, os.WriteFile(cfg.DataPath(), []byte("x"), 0o644))

	assert.NoError(t, NewFetcher(cfg, srv.Client(), nil).EnsureDataset(context.Background()))
}

func TestEnsureDatasetWithoutCredentials(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:0")

	err := NewFetcher(cfg, nil, nil).EnsureDataset(context.Background())
	assert.True(t, errors.HasCode(err, errors.CodeDataMissing))
	assert.DirExists(t, cfg.Data.Dir)
}

func TestEnsureDatasetServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	writeCredentials(t, cfg)

	err := NewFetcher(cfg, srv.Client(), nil).EnsureDataset(context.Background())
	assert.True(t, errors.HasCode(err, errors.CodeExternalService))
	assert.Contains(t, err.Error(), "403")
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")
	require.NoError(t, os.WriteFile(archive, zipBytes(t, map[string]string{"../escape.txt": "x"}), 0o644))

	_, err := Extract(archive, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestEnsureDatasetMalformedCredentials(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	require.NoError(t, os.WriteFile(cfg.Kaggle.ConfigFile, []byte(`{"username":`), 0o600))

	err := NewFetcher(cfg, srv.Client(), nil).EnsureDataset(context.Background())
	assert.True(t, errors.HasCode(err, errors.CodeExternalService))
	assert.Zero(t, calls)

	require.NoError(t, os.WriteFile(cfg.Kaggle.ConfigFile, []byte(`{"username":"ada"}`), 0o600))
	err = NewFetcher(cfg, srv.Client(), nil).EnsureDataset(context.Background())
	assert.True(t, errors.HasCode(err, errors.CodeExternalService))
	assert.Zero(t, calls)
}

func TestEnsureDatasetRemovesPartialArchive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("PK\x03\x04truncated"))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	writeCredentials(t, cfg)

	err := NewFetcher(cfg, srv.Client(), nil).EnsureDataset(context.Background())
	assert.True(t, errors.HasCode(err, errors.CodeExternalService))
	assert.NoFileExists(t, filepath.Join(cfg.Data.Dir, cfg.Kaggle.Zip))
}
