// Package audit emits tamper-evident run events. Every published table
// set is described by an event whose hash chains to the previous event of
// the same layer, so any rewrite of history breaks the chain.
package audit

import (
	"time"
)

// Event describes one layer publication for the audit trail.
type Event struct {
	Version   string    `json:"version"`
	EventType string    `json:"event_type"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`

	Run      RunInfo              `json:"run"`
	Tables   map[string]TableInfo `json:"tables"`
	Producer ProducerInfo         `json:"producer"`
	Chain    ChainInfo            `json:"chain"`
}

// RunInfo identifies the pipeline invocation being audited.
type RunInfo struct {
	Namespace   string   `json:"namespace"`
	RunID       string   `json:"run_id"`
	Layer       string   `json:"layer"`
	IngestDates []string `json:"ingest_dates,omitempty"`
}

// TableInfo contains checksum and metadata for a single published table.
type TableInfo struct {
	Checksum    string `json:"checksum"`
	RowCount    int64  `json:"row_count"`
	ByteSize    int64  `json:"byte_size"`
	StoragePath string `json:"storage_path"`
}

// ProducerInfo identifies the software that produced the data.
type ProducerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ChainInfo provides hash chaining for the tamper-evident log.
type ChainInfo struct {
	PrevEventHash string `json:"prev_event_hash"`
	EventHash     string `json:"event_hash"`
}

// ChainKey returns the unique key for this run's chain. Each layer keeps
// its own chain within a namespace.
func (r RunInfo) ChainKey() string {
	return r.Namespace + "/" + r.Layer
}

// SetChainHashes links the event to its predecessor and seals it with its
// own hash.
func (e *Event) SetChainHashes(prevHash string) {
	e.Chain.PrevEventHash = prevHash
	e.Chain.EventHash = ComputeEventHash(e)
}
