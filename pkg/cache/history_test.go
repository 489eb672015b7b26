package cache

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
)

func TestHistoryAppendAndRecent(t *testing.T) {
	dir := t.TempDir()
	h := newHistory(filepath.Join(dir, "history.log"))
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := h.Append("first", 0.9, ActionHit, now); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := h.Append("second", 1.0, ActionStore, now.Add(time.Second)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	recent := h.Recent(1)
	if len(recent) != 1 || recent[0].Prompt != "second" {
		t.Fatalf("Recent(1) = %+v, want last event only", recent)
	}
	if recent[0].ID == "" {
		t.Error("expected a non-empty event ID")
	}

	all := h.Recent(10)
	if len(all) != 2 {
		t.Fatalf("Recent(10) = %d events, want 2", len(all))
	}
}

func TestHistoryPersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.log")
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	h := newHistory(path)
	if err := h.Append("hello world", 0.85, ActionHit, now); err != nil {
		t.Fatalf("Append: %v", err)
	}

	reloaded, err := loadHistoryFile(path)
	if err != nil {
		t.Fatalf("loadHistoryFile: %v", err)
	}
	recent := reloaded.Recent(10)
	if len(recent) != 1 || recent[0].Prompt != "hello world" {
		t.Fatalf("reloaded history = %+v", recent)
	}
}

func TestLoadHistoryFileMissingIsNotError(t *testing.T) {
	h, err := loadHistoryFile("/nonexistent/history.log")
	if err != nil {
		t.Fatalf("loadHistoryFile: %v", err)
	}
	if len(h.Recent(10)) != 0 {
		t.Error("expected empty history for missing file")
	}
}

func TestLoadHistoryFileSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.log")
	raw := "{\"id\":\"1\",\"prompt\":\"ok\",\"action\":\"HIT\"}\nnot json\n\n"
	if err := writeFileAtomic(path, []byte(raw)); err != nil {
		t.Fatalf("writeFileAtomic: %v", err)
	}

	h, err := loadHistoryFile(path)
	if err != nil {
		t.Fatalf("loadHistoryFile: %v", err)
	}
	if len(h.Recent(10)) != 1 {
		t.Errorf("expected one valid event to survive, got %d", len(h.Recent(10)))
	}
}

func TestHistoryExportJSONAndCSV(t *testing.T) {
	h := newHistory("")
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h.Append("p1", 0.91234, ActionHit, now)
	h.Append("p2", 1.0, ActionStore, now)

	var jsonBuf bytes.Buffer
	if err := h.ExportJSON(&jsonBuf, 10); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if jsonBuf.Len() == 0 {
		t.Error("expected non-empty JSON export")
	}

	var csvBuf bytes.Buffer
	if err := h.ExportCSV(&csvBuf, 10); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	csvOut := csvBuf.String()
	if !bytes.Contains(csvBuf.Bytes(), []byte("timestamp,prompt,similarity,action")) {
		t.Errorf("CSV missing header: %q", csvOut)
	}
}
