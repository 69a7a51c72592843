// Package storage persists layer tables (parquet + manifest) to a local
// directory or an object-store bucket.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Layer names as they appear in storage paths.
const (
	LayerSilver = "silver"
	LayerGold   = "gold"
)

// TableRef describes one stored table artifact. Silver tables carry an
// ingest-date partition; Gold tables do not.
type TableRef struct {
	Layer      string // "silver" | "gold"
	Table      string // e.g. "customers", "fact_orders"
	IngestDate string // "YYYY-MM-DD" for silver partitions, "" for gold
}

// DirPath returns the directory key for this table artifact.
func (r TableRef) DirPath(prefix string) string {
	if r.IngestDate != "" {
		return fmt.Sprintf("%s%s/%s/ingest_date=%s", prefix, r.Layer, r.Table, r.IngestDate)
	}
	return fmt.Sprintf("%s%s/%s", prefix, r.Layer, r.Table)
}

// Path returns the storage key for the parquet file.
func (r TableRef) Path(prefix string) string {
	if r.IngestDate != "" {
		return fmt.Sprintf("%s/part-%s.parquet", r.DirPath(prefix), r.IngestDate)
	}
	return fmt.Sprintf("%s/%s.parquet", r.DirPath(prefix), r.Table)
}

// ManifestPath returns the storage key for the table's manifest.
func (r TableRef) ManifestPath(prefix string) string {
	return r.DirPath(prefix) + "/_manifest.json"
}

// Manifest describes a published table artifact.
type Manifest struct {
	Table         TableDesc    `json:"table"`
	File          string       `json:"file"`
	Checksum      string       `json:"checksum"`
	RowCount      int64        `json:"row_count"`
	ByteSize      int64        `json:"byte_size"`
	SchemaVersion string       `json:"schema_version"`
	Producer      ProducerInfo `json:"producer"`
	CreatedAt     time.Time    `json:"created_at"`
}

// TableDesc identifies the table a manifest belongs to.
type TableDesc struct {
	Layer      string `json:"layer"`
	Name       string `json:"name"`
	IngestDate string `json:"ingest_date,omitempty"`
}

// ProducerInfo describes the software that produced the artifact.
type ProducerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	RunID   string `json:"run_id,omitempty"`
}

// MarshalJSON returns the manifest as indented JSON bytes.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	type Alias Manifest
	return json.MarshalIndent((*Alias)(m), "", "  ")
}

// LayerStore abstracts reading and writing layer table artifacts.
// WriteTable must be atomic: a reader never observes a partial table.
type LayerStore interface {
	// WriteTable writes parquet bytes for a table artifact.
	WriteTable(ctx context.Context, ref TableRef, data []byte) error

	// WriteManifest writes the table's manifest.
	WriteManifest(ctx context.Context, ref TableRef, manifest *Manifest) error

	// ReadTable reads back a previously written parquet artifact.
	ReadTable(ctx context.Context, ref TableRef) ([]byte, error)

	// Exists checks whether a table artifact has been published.
	Exists(ctx context.Context, ref TableRef) (bool, error)

	// List returns all object keys under the given key prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// URI returns the canonical URI for the given key.
	URI(key string) string

	// Close releases any resources.
	Close() error
}

// Config configures the storage backend.
type Config struct {
	Backend   string `yaml:"backend"`    // "local" | "bucket"
	LocalDir  string `yaml:"local_dir"`  // base dir for the local backend
	BucketURL string `yaml:"bucket_url"` // gocloud URL: gs://…, s3://…, file://…
	Prefix    string `yaml:"prefix"`     // key prefix within the backend
}

// NewLayerStore creates a storage backend based on configuration.
func NewLayerStore(cfg Config) (LayerStore, error) {
	switch cfg.Backend {
	case "local", "":
		if cfg.LocalDir == "" {
			return nil, fmt.Errorf("local_dir required for local backend")
		}
		return NewLocalStore(cfg.LocalDir, cfg.Prefix)
	case "bucket":
		if cfg.BucketURL == "" {
			return nil, fmt.Errorf("bucket_url required for bucket backend")
		}
		return NewBlobStore(cfg.BucketURL, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
