package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileRecorder_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "logs", "audit.jsonl")
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}

	ev1 := Event{Timestamp: time.Unix(1, 0).UTC(), Action: ActionAnalyze, RecordID: "a", Emotion: "sad", IsCrisis: true, AlertSent: true}
	ev2 := Event{Timestamp: time.Unix(2, 0).UTC(), Action: ActionDelete, RecordID: "a"}
	if err := rec.Append(ev1); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := rec.Append(ev2); err != nil {
		t.Fatalf("append2: %v", err)
	}

	events, err := rec.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("want 2, got %d", len(events))
	}
	if !events[0].Timestamp.Equal(ev1.Timestamp) || events[0].RecordID != "a" || !events[0].AlertSent {
		t.Fatalf("first event mismatch: %+v", events[0])
	}
	if events[1].Action != ActionDelete || !events[1].Timestamp.Equal(ev2.Timestamp) {
		t.Fatalf("order mismatch: %+v", events)
	}

	st, err := os.Stat(p)
	if err != nil || st.Size() == 0 {
		t.Fatalf("file not written")
	}
}

func TestFileRecorder_SkipsMalformedLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "audit.jsonl")
	content := "{\"action\":\"analyze\",\"record_id\":\"x\",\"timestamp\":\"2025-01-01T00:00:00Z\"}\nnot-json\n\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	events, err := rec.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 1 || events[0].RecordID != "x" {
		t.Fatalf("unexpected events: %+v", events)
	}
}
