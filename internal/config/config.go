// Package config loads the pipeline configuration from a YAML file with
// environment variable overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/veralake/medallion-etl/internal/logging"
	"github.com/veralake/medallion-etl/internal/source"
	"github.com/veralake/medallion-etl/internal/storage"
)

type Config struct {
	Run     RunConfig      `yaml:"run"`
	Source  source.Config  `yaml:"source"`
	Storage storage.Config `yaml:"storage"`
	Catalog CatalogConfig  `yaml:"catalog"`
	Audit   AuditConfig    `yaml:"audit"`
	Metrics MetricsConfig  `yaml:"metrics"`
	Perf    PerfConfig     `yaml:"perf"`
	Logging logging.Config `yaml:"logging"`
}

// RunConfig scopes one pipeline invocation.
type RunConfig struct {
	// IngestDates restricts the Silver pass to the given raw partitions.
	// Empty means every partition present in the source.
	IngestDates []string `yaml:"ingest_dates"`

	// Compression is the parquet codec for published tables:
	// "zstd" | "gzip" | "snappy" | "none".
	Compression string `yaml:"compression"`
}

// CatalogConfig points at the Postgres run catalog. The catalog is
// optional; with an empty DSN the pipeline runs without it.
type CatalogConfig struct {
	DSN       string `yaml:"dsn"`
	Namespace string `yaml:"namespace"`
}

// AuditConfig controls the hash-chained run audit trail.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// PerfConfig bounds pipeline concurrency.
type PerfConfig struct {
	// Workers caps how many entity tables are transformed at once.
	Workers int `yaml:"workers"`
}

// Load reads the YAML file at path, applies environment overrides and
// defaults, and validates the result. An empty path skips the file and
// configures from environment and defaults alone.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad is Load for main: it exits the process on a bad configuration.
func MustLoad(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	return cfg
}

func applyEnv(cfg *Config) {
	setStr := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("INGEST_DATES"); v != "" {
		cfg.Run.IngestDates = strings.Split(v, ",")
	}
	setStr(&cfg.Run.Compression, "COMPRESSION")

	setStr(&cfg.Source.Backend, "SOURCE_BACKEND")
	setStr(&cfg.Source.LocalDir, "SOURCE_DIR")
	setStr(&cfg.Source.BucketURL, "SOURCE_BUCKET_URL")
	setStr(&cfg.Source.Prefix, "SOURCE_PREFIX")

	setStr(&cfg.Storage.Backend, "STORAGE_BACKEND")
	setStr(&cfg.Storage.LocalDir, "STORAGE_DIR")
	setStr(&cfg.Storage.BucketURL, "STORAGE_BUCKET_URL")
	setStr(&cfg.Storage.Prefix, "STORAGE_PREFIX")

	setStr(&cfg.Catalog.DSN, "CATALOG_DSN")
	setStr(&cfg.Catalog.Namespace, "CATALOG_NAMESPACE")

	if v := os.Getenv("AUDIT_ENABLED"); v != "" {
		cfg.Audit.Enabled = v == "true"
	}
	setStr(&cfg.Audit.Dir, "AUDIT_DIR")

	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v == "true"
	}
	setStr(&cfg.Metrics.ListenAddr, "METRICS_ADDR")

	if v := os.Getenv("WORKERS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Perf.Workers = parsed
		}
	}

	setStr(&cfg.Logging.Format, "LOG_FORMAT")
	setStr(&cfg.Logging.Level, "LOG_LEVEL")
}

func applyDefaults(cfg *Config) {
	if cfg.Run.Compression == "" {
		cfg.Run.Compression = "zstd"
	}
	if cfg.Source.Backend == "" {
		cfg.Source.Backend = "local"
	}
	if cfg.Source.Backend == "local" && cfg.Source.LocalDir == "" {
		cfg.Source.LocalDir = "./data/raw"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "local"
	}
	if cfg.Storage.Backend == "local" && cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "./data/lake"
	}
	if cfg.Catalog.Namespace == "" {
		cfg.Catalog.Namespace = "default"
	}
	if cfg.Audit.Enabled && cfg.Audit.Dir == "" {
		cfg.Audit.Dir = "./data/audit"
	}
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = ":9104"
	}
	if cfg.Perf.Workers <= 0 {
		cfg.Perf.Workers = 4
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func validate(cfg Config) error {
	switch cfg.Run.Compression {
	case "zstd", "gzip", "snappy", "none":
	default:
		return fmt.Errorf("unknown compression codec: %s", cfg.Run.Compression)
	}
	if cfg.Source.Backend == "bucket" && cfg.Source.BucketURL == "" {
		return fmt.Errorf("source.bucket_url required for the bucket backend")
	}
	if cfg.Storage.Backend == "bucket" && cfg.Storage.BucketURL == "" {
		return fmt.Errorf("storage.bucket_url required for the bucket backend")
	}
	for _, d := range cfg.Run.IngestDates {
		if len(d) != len("2006-01-02") || d[4] != '-' || d[7] != '-' {
			return fmt.Errorf("ingest date %q is not YYYY-MM-DD", d)
		}
	}
	return nil
}
