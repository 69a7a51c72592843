package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/veralake/medallion-etl/internal/logging"
)

// Config controls the audit trail.
type Config struct {
	Enabled bool
	Dir     string
}

// Emitter is the interface for audit event emission.
type Emitter interface {
	Emit(evt *Event) error
	Close() error
}

// NewEmitter creates an emitter based on configuration. When disabled,
// every event is discarded.
func NewEmitter(cfg Config) (Emitter, error) {
	if !cfg.Enabled {
		return noopEmitter{}, nil
	}
	return NewFileEmitter(cfg.Dir)
}

type noopEmitter struct{}

func (noopEmitter) Emit(*Event) error { return nil }
func (noopEmitter) Close() error      { return nil }

// FileEmitter writes chained audit events to a local directory.
type FileEmitter struct {
	dir   string
	chain *ChainTracker
}

// NewFileEmitter creates a file emitter rooted at dir.
func NewFileEmitter(dir string) (*FileEmitter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	chain, err := NewChainTracker(dir)
	if err != nil {
		return nil, fmt.Errorf("create chain tracker: %w", err)
	}
	return &FileEmitter{dir: dir, chain: chain}, nil
}

// Emit seals the event into its layer chain and writes it to disk.
func (e *FileEmitter) Emit(evt *Event) error {
	chainKey := evt.Run.ChainKey()

	prevHash, err := e.chain.GetHead(chainKey)
	if err != nil && err != ErrNoChainHead {
		return err
	}

	evt.Version = "1.0"
	evt.EventType = "table_publish"
	evt.EventID = GenerateEventID()
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	evt.SetChainHashes(prevHash)

	if err := e.save(evt); err != nil {
		return err
	}
	if err := e.chain.SetHead(chainKey, evt.Chain.EventHash); err != nil {
		logging.Component("audit").Warn("failed to update chain head", "error", err)
	}
	return nil
}

func (e *FileEmitter) save(evt *Event) error {
	name := fmt.Sprintf("%s_%s_%s.json",
		strings.ReplaceAll(evt.Run.Namespace, "/", "-"),
		evt.Run.Layer,
		evt.Run.RunID)
	path := filepath.Join(e.dir, name)

	data, err := json.MarshalIndent(evt, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Close releases resources.
func (e *FileEmitter) Close() error {
	return nil
}
