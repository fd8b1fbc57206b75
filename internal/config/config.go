package config

import (
	"path/filepath"
	"strings"

	"habitboard/internal/errors"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Admin    AdminConfig
	Data     DataConfig
	Kaggle   KaggleConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Log      LogConfig
}

// ServerConfig holds dashboard listener settings
type ServerConfig struct {
	Host    string `env:"HOST" envDefault:"127.0.0.1"`
	Port    string `env:"PORT" envDefault:"8050"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`
}

// AdminConfig holds the metrics/health/pprof listener settings
type AdminConfig struct {
	Port    string `env:"ADMIN_PORT" envDefault:"9090"`
	Enabled bool   `env:"ADMIN_ENABLED" envDefault:"true"`
}

// DataConfig locates the dataset on disk
type DataConfig struct {
	Dir   string `env:"DATA_DIR" envDefault:"data"`
	File  string `env:"DATA_FILE" envDefault:"student_habits_performance.csv"`
	Watch bool   `env:"WATCH_DATA" envDefault:"true"`
}

// KaggleConfig holds dataset download settings
type KaggleConfig struct {
	Dataset    string `env:"KAGGLE_DATASET" envDefault:"jayaantanaath/student-habits-vs-academic-performance"`
	Zip        string `env:"KAGGLE_ZIP" envDefault:"student-habits-vs-academic-performance.zip"`
	ConfigFile string `env:"KAGGLE_CONFIG" envDefault:"kaggle.json"`
	BaseURL    string `env:"KAGGLE_URL" envDefault:"https://www.kaggle.com/api/v1/datasets/download"`
}

// DatabaseConfig holds the saved views store location
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envDefault:"sqlite3://data/habitboard.db"`
}

// CacheConfig bounds the aggregate cache
type CacheConfig struct {
	Size int `env:"CACHE_SIZE" envDefault:"128"`
}

// LogConfig selects logger verbosity and encoding
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

// DataPath returns the full path of the dataset file
func (c *Config) DataPath() string {
	return filepath.Join(c.Data.Dir, c.Data.File)
}

// Addr returns the dashboard listen address
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Load reads .env (if present) and the process environment, then validates the result.
// loadedDotenv reports whether a .env file was found.
func Load() (cfg *Config, loadedDotenv bool, err error) {
	loadedDotenv = godotenv.Load() == nil

	cfg, err = Parse()
	if err != nil {
		return nil, loadedDotenv, err
	}
	return cfg, loadedDotenv, nil
}

// Parse reads configuration from the process environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// Validate checks the invariants env tags cannot express
func Validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if cfg.Admin.Enabled && cfg.Admin.Port == "" {
		return errors.ConfigInvalid("ADMIN_PORT is required when the admin listener is enabled")
	}
	if cfg.Cache.Size <= 0 {
		return errors.ConfigInvalid("CACHE_SIZE must be positive")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.ConfigInvalid("LOG_LEVEL must be one of debug, info, warn, error")
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "console", "json":
	default:
		return errors.ConfigInvalid("LOG_FORMAT must be console or json")
	}
	if cfg.Data.File == "" {
		return errors.ConfigInvalid("DATA_FILE is required")
	}
	return nil
}
