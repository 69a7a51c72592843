package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleEvent() Event {
	return Event{
		Version:   "1.0",
		EventType: "table_publish",
		Timestamp: time.Date(2024, 3, 15, 2, 0, 0, 0, time.UTC),
		Run: RunInfo{
			Namespace: "default",
			RunID:     "run-20240315-abc",
			Layer:     "silver",
		},
		Tables: map[string]TableInfo{
			"customers": {
				Checksum:    "sha256:abc123",
				RowCount:    10,
				ByteSize:    1234,
				StoragePath: "silver/customers/ingest_date=2024-03-15/part-2024-03-15.parquet",
			},
		},
		Producer: ProducerInfo{Name: "medallion-etl", Version: "v0.1.0"},
	}
}

func TestComputeEventHash(t *testing.T) {
	event := sampleEvent()
	event.SetChainHashes("")

	if event.Chain.EventHash == "" {
		t.Error("EventHash should be computed")
	}
	if len(event.Chain.EventHash) < 7 || event.Chain.EventHash[:7] != "sha256:" {
		t.Errorf("EventHash should start with 'sha256:', got: %s", event.Chain.EventHash)
	}
	if event.Chain.PrevEventHash != "" {
		t.Errorf("PrevEventHash should be empty for first in chain, got: %s", event.Chain.PrevEventHash)
	}
}

func TestHashChainDeterminism(t *testing.T) {
	event1 := sampleEvent()
	event1.SetChainHashes("prev_hash_123")

	event2 := sampleEvent()
	event2.SetChainHashes("prev_hash_123")

	if event1.Chain.EventHash != event2.Chain.EventHash {
		t.Errorf("identical events should produce identical hashes:\n  %s\n  %s",
			event1.Chain.EventHash, event2.Chain.EventHash)
	}

	event3 := sampleEvent()
	event3.SetChainHashes("prev_hash_456")
	if event1.Chain.EventHash == event3.Chain.EventHash {
		t.Error("different prev_hash should produce different event_hash")
	}

	event4 := sampleEvent()
	event4.Tables["customers"] = TableInfo{Checksum: "sha256:tampered"}
	event4.SetChainHashes("prev_hash_123")
	if event1.Chain.EventHash == event4.Chain.EventHash {
		t.Error("different content should produce different event_hash")
	}
}

func TestTableOrderingDeterminism(t *testing.T) {
	makeEvent := func(order []string) Event {
		evt := sampleEvent()
		evt.Tables = make(map[string]TableInfo)
		for _, name := range order {
			evt.Tables[name] = TableInfo{Checksum: "sha256:" + name}
		}
		return evt
	}

	event1 := makeEvent([]string{"zebra", "alpha", "middle"})
	event1.SetChainHashes("")
	event2 := makeEvent([]string{"alpha", "zebra", "middle"})
	event2.SetChainHashes("")

	if event1.Chain.EventHash != event2.Chain.EventHash {
		t.Errorf("table insertion order should not affect hash:\n  %s\n  %s",
			event1.Chain.EventHash, event2.Chain.EventHash)
	}
}

func TestChainKey(t *testing.T) {
	r := RunInfo{Namespace: "prod", RunID: "r1", Layer: "gold"}
	if got := r.ChainKey(); got != "prod/gold" {
		t.Errorf("ChainKey() = %s, want prod/gold", got)
	}
}

func TestFileEmitterChainsEvents(t *testing.T) {
	dir := t.TempDir()
	em, err := NewFileEmitter(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer em.Close()

	first := sampleEvent()
	if err := em.Emit(&first); err != nil {
		t.Fatal(err)
	}
	if first.Chain.PrevEventHash != "" {
		t.Errorf("first event must start the chain, got prev %q", first.Chain.PrevEventHash)
	}

	second := sampleEvent()
	second.Run.RunID = "run-20240316-def"
	if err := em.Emit(&second); err != nil {
		t.Fatal(err)
	}
	if second.Chain.PrevEventHash != first.Chain.EventHash {
		t.Errorf("second event must chain to the first:\n  prev = %s\n  want = %s",
			second.Chain.PrevEventHash, first.Chain.EventHash)
	}

	data, err := os.ReadFile(filepath.Join(dir, "default_silver_run-20240316-def.json"))
	if err != nil {
		t.Fatal(err)
	}
	var stored Event
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatal(err)
	}
	if stored.Chain.EventHash != second.Chain.EventHash {
		t.Error("stored event must carry its sealed hash")
	}

	// A fresh emitter over the same directory resumes the chain.
	em2, err := NewFileEmitter(dir)
	if err != nil {
		t.Fatal(err)
	}
	third := sampleEvent()
	third.Run.RunID = "run-20240317-ghi"
	if err := em2.Emit(&third); err != nil {
		t.Fatal(err)
	}
	if third.Chain.PrevEventHash != second.Chain.EventHash {
		t.Error("chain head must persist across emitter restarts")
	}
}
