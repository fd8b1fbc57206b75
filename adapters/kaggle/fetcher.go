// Package kaggle downloads the dataset archive when the data file is absent.
package kaggle

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"habitboard/internal/config"
	"habitboard/internal/errors"

	"go.uber.org/zap"
)

const serviceName = "kaggle"

// Credentials is the content of kaggle.json
type Credentials struct {
	Username string `json:"username"`
	Key      string `json:"key"`
}

// Fetcher makes sure the dataset file exists on disk
type Fetcher struct {
	dataDir    string
	dataFile   string
	dataset    string
	zipName    string
	configFile string
	baseURL    string
	client     *http.Client
	logger     *zap.Logger
}

// NewFetcher creates a fetcher from configuration. client may be nil.
func NewFetcher(cfg *config.Config, client *http.Client, logger *zap.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		dataDir:    cfg.Data.Dir,
		dataFile:   cfg.Data.File,
		dataset:    cfg.Kaggle.Dataset,
		zipName:    cfg.Kaggle.Zip,
		configFile: cfg.Kaggle.ConfigFile,
		baseURL:    strings.TrimRight(cfg.Kaggle.BaseURL, "/"),
		client:     client,
		logger:     logger.Named("kaggle"),
	}
}

// EnsureDataset downloads and unpacks the archive unless the data file already exists.
// There is no retry: failures are logged and returned.
func (f *Fetcher) EnsureDataset(ctx context.Context) error {
	path := filepath.Join(f.dataDir, f.dataFile)
	if _, err := os.Stat(path); err == nil {
		f.logger.Info("dataset already present", zap.String("path", path))
		return nil
	}

	if err := os.MkdirAll(f.dataDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create data directory %s", f.dataDir)
	}

	creds, err := f.credentials()
	if err != nil {
		f.logger.Error("cannot download dataset", zap.Error(err))
		if errors.HasCode(err, errors.CodeDataMissing) {
			return err
		}
		return errors.ExternalServiceError(serviceName, err)
	}

	archive := filepath.Join(f.dataDir, f.zipName)
	if err := f.download(ctx, creds, archive); err != nil {
		f.logger.Error("dataset download failed", zap.String("dataset", f.dataset), zap.Error(err))
		if rmErr := os.Remove(archive); rmErr != nil && !os.IsNotExist(rmErr) {
			f.logger.Warn("failed to remove partial archive", zap.String("archive", archive), zap.Error(rmErr))
		}
		return errors.ExternalServiceError(serviceName, err)
	}

	files, err := Extract(archive, f.dataDir)
	if err != nil {
		f.logger.Error("dataset extraction failed", zap.String("archive", archive), zap.Error(err))
		return errors.ExternalServiceError(serviceName, err)
	}

	f.logger.Info("dataset downloaded", zap.String("dataset", f.dataset), zap.Strings("files", files))
	return nil
}

func (f *Fetcher) credentials() (Credentials, error) {
	raw, err := os.ReadFile(f.configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, errors.DataMissing(fmt.Sprintf("kaggle credentials %s not found", f.configFile))
		}
		return Credentials{}, errors.Wrapf(err, "failed to read %s", f.configFile)
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return Credentials{}, fmt.Errorf("invalid kaggle credentials in %s: %w", f.configFile, err)
	}
	if creds.Username == "" || creds.Key == "" {
		return Credentials{}, fmt.Errorf("kaggle credentials in %s need username and key", f.configFile)
	}
	return creds, nil
}

func (f *Fetcher) download(ctx context.Context, creds Credentials, dest string) error {
	url := f.baseURL + "/" + f.dataset
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(creds.Username, creds.Key)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("failed to save archive: %w", err)
	}
	return out.Close()
}

// Extract unpacks every file of a zip archive into dir and returns the written paths.
// Entries that would land outside dir are rejected.
func Extract(archive, dir string) ([]string, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, entry := range r.File {
		target := filepath.Join(root, entry.Name)
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return written, fmt.Errorf("archive entry %q escapes %s", entry.Name, dir)
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return written, err
			}
			continue
		}
		if err := extractFile(entry, target); err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

func extractFile(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", entry.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to extract %s: %w", entry.Name, err)
	}
	return dst.Close()
}
