package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Run.Compression != "zstd" {
		t.Errorf("Compression = %q", cfg.Run.Compression)
	}
	if cfg.Source.Backend != "local" || cfg.Source.LocalDir == "" {
		t.Errorf("source defaults missing: %+v", cfg.Source)
	}
	if cfg.Perf.Workers != 4 {
		t.Errorf("Workers = %d", cfg.Perf.Workers)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "info" {
		t.Errorf("logging defaults missing: %+v", cfg.Logging)
	}
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
run:
  compression: gzip
  ingest_dates: ["2024-03-15"]
storage:
  backend: local
  local_dir: /tmp/lake
perf:
  workers: 2
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COMPRESSION", "snappy")
	t.Setenv("WORKERS", "8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Run.Compression != "snappy" {
		t.Errorf("env must override file, got %q", cfg.Run.Compression)
	}
	if cfg.Perf.Workers != 8 {
		t.Errorf("Workers = %d", cfg.Perf.Workers)
	}
	if cfg.Storage.LocalDir != "/tmp/lake" {
		t.Errorf("LocalDir = %q", cfg.Storage.LocalDir)
	}
	if len(cfg.Run.IngestDates) != 1 || cfg.Run.IngestDates[0] != "2024-03-15" {
		t.Errorf("IngestDates = %v", cfg.Run.IngestDates)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("COMPRESSION", "lz77")
	if _, err := Load(""); err == nil {
		t.Error("unknown codec must fail validation")
	}
	t.Setenv("COMPRESSION", "zstd")

	t.Setenv("INGEST_DATES", "15/03/2024")
	if _, err := Load(""); err == nil {
		t.Error("malformed ingest date must fail validation")
	}
}
