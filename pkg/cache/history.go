package cache

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Action categorizes a history event (spec: §4.6, §6 — history.log).
type Action string

const (
	ActionHit   Action = "HIT"
	ActionStore Action = "STORE"
	ActionClear Action = "CLEAR"
)

// HistoryEvent is one append-only record in history.log. ID is a random
// identifier independent of the fingerprint, so two events for the same
// prompt (e.g. a STORE followed later by a HIT) are distinguishable in an
// exported list without relying on position.
type HistoryEvent struct {
	ID         string  `json:"id"`
	Timestamp  string  `json:"timestamp"`
	Prompt     string  `json:"prompt"`
	Similarity float64 `json:"similarity"`
	Action     Action  `json:"action"`
}

// History is the append-only event log backing the "list of last N
// history entries" and JSON/CSV export adapter surfaces named in
// spec.md §6. It keeps the full history in memory (grounded in the
// original cache_adapter.py's get_recent_entries/export endpoints) and
// mirrors every append to the on-disk history.log.
type History struct {
	path   string
	events []HistoryEvent
}

func newHistory(path string) *History {
	return &History{path: path}
}

func loadHistoryFile(path string) (*History, error) {
	h := newHistory(path)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var ev HistoryEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue // malformed line — skip, don't fail the whole load
		}
		h.events = append(h.events, ev)
	}
	return h, scanner.Err()
}

// Append records an event, rounds similarity to 4 decimal places (matching
// Stats' HitRate rounding convention), and appends it to history.log.
func (h *History) Append(prompt string, similarity float64, action Action, now time.Time) error {
	ev := HistoryEvent{
		ID:         uuid.NewString(),
		Timestamp:  now.Format(timestampLayout),
		Prompt:     prompt,
		Similarity: roundTo(similarity, 4),
		Action:     action,
	}
	h.events = append(h.events, ev)

	if h.path == "" {
		return nil
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("cache: history: encode: %w", err)
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cache: history: open: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("cache: history: write: %w", err)
	}
	return nil
}

// Recent returns up to limit most-recent events, newest last (matching
// the source's "last N" log-tail semantics).
func (h *History) Recent(limit int) []HistoryEvent {
	if limit <= 0 || len(h.events) == 0 {
		return nil
	}
	start := len(h.events) - limit
	if start < 0 {
		start = 0
	}
	out := make([]HistoryEvent, len(h.events)-start)
	copy(out, h.events[start:])
	return out
}

// ExportJSON writes the most recent limit events as a JSON array.
func (h *History) ExportJSON(w io.Writer, limit int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(h.Recent(limit))
}

// ExportCSV writes the most recent limit events as CSV with a header row.
func (h *History) ExportCSV(w io.Writer, limit int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "prompt", "similarity", "action"}); err != nil {
		return err
	}
	for _, ev := range h.Recent(limit) {
		record := []string{
			ev.Timestamp,
			ev.Prompt,
			strconv.FormatFloat(ev.Similarity, 'f', -1, 64),
			string(ev.Action),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
