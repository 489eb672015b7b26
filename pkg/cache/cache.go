package cache

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Config configures a Cache. Nil Threshold, TTLSeconds, Clock and Logger
// fall back to the spec's documented defaults (spec: §4.4); Dir and
// Enabled are used as given, so their zero values mean no persistence and
// a disabled cache.
type Config struct {
	// Dir is the directory holding cache.json, index.vec, stats.json and
	// history.log. Empty Dir disables persistence entirely — the cache
	// still works, it just never survives a restart.
	Dir string

	// Embedder maps prompts to vectors. Required.
	Embedder Embedder

	// Threshold is the initial similarity gate (spec: §4.4, default 0.8).
	// A nil Threshold means "use the default"; a non-nil Threshold is
	// used verbatim, including an explicit 0.0 (spec: §8 boundary —
	// threshold 0.0 makes any non-empty index yield a hit, pending TTL).
	Threshold *float64
	// TTLSeconds is the initial liveness window in seconds (spec: §4.4,
	// default 3600). A nil TTLSeconds means "use the default"; a non-nil
	// TTLSeconds is used verbatim, including an explicit 0 (spec: §8
	// boundary — ttl 0 means every lookup is a miss, even immediately
	// after add).
	TTLSeconds *int64

	// Enabled controls whether Lookup/Add do anything; a disabled cache
	// always misses and never stores (spec: §4.4 enable/disable).
	Enabled bool

	// Clock supplies the current instant; defaults to the real wall clock.
	// Tests inject a fake to exercise TTL expiration deterministically.
	Clock Clock

	// Logger receives diagnostic lines for absorbed errors (PersistError,
	// CorruptSnapshot). Defaults to log.Default(). TimestampParse lines,
	// raised while cache.json is decoded, go to the standard log package.
	Logger *log.Logger
}

// Cache is the semantic response cache described in spec.md §4: an
// Embedder, a FlatIndex, a Store, a Policy and a History composed under a
// single lock, grounded on the teacher's semantic_cache.go (same
// Lookup/Add/Clear/Stats-shaped public surface), adapted from a
// Qdrant+Redis pair into locally-snapshotted components.
type Cache struct {
	mu sync.RWMutex

	dir      string
	embedder Embedder
	index    *FlatIndex
	store    *Store
	policy   *Policy
	stats    *Stats
	history  *History
	clock    Clock
	logger   *log.Logger
	enabled  bool

	// slots maps a fingerprint to its FlatIndex slot so re-admission can
	// overwrite in place instead of growing the index (spec: fingerprint
	// re-admission does not allocate a new slot).
	slots map[string]int
}

// New constructs a Cache, loading any existing snapshot from cfg.Dir. A
// missing snapshot is not an error — New starts empty. A snapshot that
// fails to parse is CorruptSnapshot: the affected component resets to
// empty and the raw files are left on disk for forensics (spec: §7).
func New(cfg Config) (*Cache, error) {
	if cfg.Embedder == nil {
		return nil, &InitError{Err: fmt.Errorf("embedder is required")}
	}

	threshold := float64(DefaultThreshold)
	if cfg.Threshold != nil {
		threshold = *cfg.Threshold
	}
	ttl := int64(DefaultTTLSeconds)
	if cfg.TTLSeconds != nil {
		ttl = *cfg.TTLSeconds
	}

	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	c := &Cache{
		dir:      cfg.Dir,
		embedder: cfg.Embedder,
		policy:   NewPolicy(threshold, ttl),
		stats:    newStats(),
		clock:    clock,
		logger:   logger,
		enabled:  cfg.Enabled,
		slots:    make(map[string]int),
	}

	if cfg.Dir == "" {
		c.store = NewStore()
		c.index = NewFlatIndex(cfg.Embedder.Dim())
		c.history = newHistory("")
		return c, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, &InitError{Err: fmt.Errorf("create cache dir: %w", err)}
	}

	store, err := loadStoreFile(filepath.Join(cfg.Dir, "cache.json"))
	if err != nil {
		logger.Printf("cache: resetting after %v", &CorruptSnapshot{Path: filepath.Join(cfg.Dir, "cache.json"), Err: err})
		store = NewStore()
	}
	c.store = store

	index, err := loadIndexFile(filepath.Join(cfg.Dir, "index.vec"), cfg.Embedder.Dim())
	if err != nil {
		logger.Printf("cache: resetting after %v", &CorruptSnapshot{Path: filepath.Join(cfg.Dir, "index.vec"), Err: err})
		index = NewFlatIndex(cfg.Embedder.Dim())
		// The vector index and the entry store disagree now; start both
		// empty rather than serve entries with no matching vector.
		c.store.Reset()
	}
	c.index = index

	hist, err := loadHistoryFile(filepath.Join(cfg.Dir, "history.log"))
	if err != nil {
		logger.Printf("cache: resetting after %v", &CorruptSnapshot{Path: filepath.Join(cfg.Dir, "history.log"), Err: err})
		hist = newHistory(filepath.Join(cfg.Dir, "history.log"))
	}
	c.history = hist

	if snap, err := loadStatsFile(filepath.Join(cfg.Dir, "stats.json")); err != nil {
		logger.Printf("cache: resetting after %v", &CorruptSnapshot{Path: filepath.Join(cfg.Dir, "stats.json"), Err: err})
	} else {
		c.stats.hits = snap.Hits
		c.stats.misses = snap.Misses
		c.stats.savedCost.store(snap.SavedCost)
	}

	// The fingerprint→slot join key is persisted per-entry (Entry.Slot,
	// written to cache.json), not inferred from file order: index.vec
	// stores vectors in pure append order and cache.json's JSON object
	// serializes in sorted-key order, so neither file's ordering says
	// anything about the other's. rebuildSlots trusts the persisted slot
	// ids when they check out against index.vec, and only falls back to
	// reconstructing the index from scratch when they don't.
	c.rebuildSlots()

	return c, nil
}

// rebuildSlots reconciles c.slots (fingerprint → FlatIndex slot) against
// the loaded store and index. The persisted Entry.Slot values are trusted
// only if every one is in range and no two entries claim the same slot and
// the total count matches the index; otherwise the pairing between the two
// snapshot files cannot be trusted (spec: §7 CorruptSnapshot), and the
// index is rebuilt from the store's own embeddings, reassigning slots from
// scratch.
func (c *Cache) rebuildSlots() {
	entries := make([]Entry, 0, c.store.Len())
	c.store.Iter(func(e Entry) { entries = append(entries, e) })

	c.slots = make(map[string]int, len(entries))

	valid := c.index.Size() == len(entries)
	if valid {
		seen := make(map[int]bool, len(entries))
		for _, e := range entries {
			if e.Slot < 0 || e.Slot >= c.index.Size() || seen[e.Slot] {
				valid = false
				break
			}
			seen[e.Slot] = true
		}
	}

	if valid {
		for _, e := range entries {
			c.slots[e.Fingerprint] = e.Slot
		}
		return
	}

	c.index.Reset()
	for _, e := range entries {
		slot := c.index.Add(e.Embedding)
		e.Slot = slot
		c.store.Put(e)
		c.slots[e.Fingerprint] = slot
	}
}

// LookupResult is the outcome of a Lookup.
type LookupResult struct {
	Hit        bool
	Entry      Entry
	Similarity float64
}

// Lookup embeds prompt, searches for its nearest stored neighbor, and
// reports a hit only if the neighbor clears the similarity threshold and
// is still live under the TTL (spec: §4.2). A disabled cache always
// misses without touching the embedder or the index.
func (c *Cache) Lookup(ctx context.Context, prompt string) (LookupResult, error) {
	c.mu.RLock()
	enabled := c.enabled
	c.mu.RUnlock()
	if !enabled {
		return LookupResult{}, nil
	}

	vec, err := c.embedder.Embed(ctx, prompt)
	if err != nil {
		return LookupResult{}, fmt.Errorf("cache: embed: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	neighbors := c.index.Search(vec, 1)
	if len(neighbors) == 0 {
		c.stats.recordMiss()
		return LookupResult{}, nil
	}

	nearest := neighbors[0]
	similarity := 1 / (1 + float64(nearest.Distance))

	if !c.policy.Accepts(similarity) {
		c.stats.recordMiss()
		return LookupResult{Similarity: similarity}, nil
	}

	fp := c.fingerprintForSlot(nearest.Slot)
	if fp == "" {
		c.stats.recordMiss()
		return LookupResult{Similarity: similarity}, nil
	}
	entry, ok := c.store.Get(fp)
	if !ok {
		c.stats.recordMiss()
		return LookupResult{Similarity: similarity}, nil
	}

	if !entry.live(c.clock.Now(), time.Duration(c.policy.TTL)*time.Second) {
		c.stats.recordMiss()
		return LookupResult{Similarity: similarity}, nil
	}

	c.stats.recordHit()
	c.stats.addSavedCost(entryCost(entry))
	c.appendHistory(prompt, similarity, ActionHit)
	c.persistStatsBestEffort()

	return LookupResult{Hit: true, Entry: entry, Similarity: similarity}, nil
}

// entryCost extracts the "cost" metadata value Wrap stamps onto stored
// entries (spec: §4.3 saved_cost — zero when the caller's response lacks a
// cost attribute, which a bare-string ModelResult or an Add call with nil
// metadata both produce).
func entryCost(e Entry) float64 {
	raw, ok := e.Metadata["cost"]
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func (c *Cache) fingerprintForSlot(slot int) string {
	for fp, s := range c.slots {
		if s == slot {
			return fp
		}
	}
	return ""
}

// Add admits a prompt/response pair if the prompt is admissible (spec:
// §4.4). It re-embeds the prompt even when the caller already has a
// similarity score from a prior Lookup, since that score was computed
// against a neighbor, not against prompt's own (possibly not-yet-indexed)
// vector. Returns false, nil when the prompt was rejected by policy —
// that is not an error.
func (c *Cache) Add(ctx context.Context, prompt, response string, metadata map[string]string) (bool, error) {
	c.mu.RLock()
	enabled := c.enabled
	c.mu.RUnlock()
	if !enabled {
		return false, nil
	}
	if !Admissible(prompt) {
		return false, nil
	}

	vec, err := c.embedder.Embed(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("cache: embed: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fp := Fingerprint(prompt)
	now := c.clock.Now()
	entry := Entry{
		Fingerprint: fp,
		Prompt:      prompt,
		Embedding:   vec,
		Response:    response,
		Metadata:    metadata,
		CreatedAt:   now,
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]string{}
	}

	if slot, ok := c.slots[fp]; ok {
		if err := c.index.Set(slot, vec); err != nil {
			return false, fmt.Errorf("cache: index: %w", err)
		}
		entry.Slot = slot
	} else {
		slot := c.index.Add(vec)
		c.slots[fp] = slot
		entry.Slot = slot
	}
	c.store.Put(entry)

	c.appendHistory(prompt, 1.0, ActionStore)
	c.persistBestEffort()

	return true, nil
}

// Clear drops every entry, resets the counters, and records a CLEAR event.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Reset()
	c.index.Reset()
	c.slots = make(map[string]int)
	c.stats.reset()
	c.appendHistory("", 0, ActionClear)

	// A failed snapshot write is absorbed like every other PersistError:
	// the in-memory state is already cleared (spec: §7).
	if err := c.persistAll(); err != nil {
		c.logger.Printf("%v", err)
	}
	return nil
}

// Stats returns a point-in-time snapshot of hit/miss/saved-cost counters.
func (c *Cache) Stats() Snapshot {
	return c.stats.snapshot()
}

// Size returns the number of entries currently held in the store.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Len()
}

// SetThreshold updates the similarity gate effective for subsequent
// lookups (spec: §4.4 — runtime-mutable).
func (c *Cache) SetThreshold(threshold float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy.Threshold = threshold
}

// Threshold returns the currently configured similarity gate.
func (c *Cache) Threshold() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.policy.Threshold
}

// SetTTL updates the liveness window (in seconds) effective for
// subsequent lookups.
func (c *Cache) SetTTL(seconds int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy.TTL = seconds
}

// TTL returns the currently configured liveness window in seconds.
func (c *Cache) TTL() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.policy.TTL
}

// SetEnabled toggles the cache on or off at runtime without losing its
// contents (spec: §4.4 enable/disable).
func (c *Cache) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// Enabled reports whether the cache currently serves lookups and accepts
// new entries.
func (c *Cache) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Recent returns up to limit most-recent history events.
func (c *Cache) Recent(limit int) []HistoryEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.Recent(limit)
}

// ExportJSON writes the most recent limit history events as JSON.
func (c *Cache) ExportJSON(w io.Writer, limit int) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.ExportJSON(w, limit)
}

// ExportCSV writes the most recent limit history events as CSV.
func (c *Cache) ExportCSV(w io.Writer, limit int) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.ExportCSV(w, limit)
}

// appendHistory is called with c.mu held.
func (c *Cache) appendHistory(prompt string, similarity float64, action Action) {
	if err := c.history.Append(prompt, similarity, action, c.clock.Now()); err != nil {
		// Absorbed, retried implicitly on the next append (spec: §7 — a
		// failed write never surfaces to the caller of Lookup/Add).
		c.logger.Printf("%v", &PersistError{Path: c.history.path, Err: err})
	}
}

// persistBestEffort snapshots cache.json, index.vec and stats.json after a
// successful Add. Failures are logged and retried on the next successful
// mutation; they never fail the Add itself (spec: §7 PersistError).
func (c *Cache) persistBestEffort() {
	if c.dir == "" {
		return
	}
	path := filepath.Join(c.dir, "cache.json")
	if err := c.store.saveTo(path); err != nil {
		c.logger.Printf("%v", &PersistError{Path: path, Err: err})
	}
	if err := c.saveIndex(); err != nil {
		c.logger.Printf("%v", &PersistError{Path: filepath.Join(c.dir, "index.vec"), Err: err})
	}
	c.persistStatsBestEffort()
}

func (c *Cache) persistStatsBestEffort() {
	if c.dir == "" {
		return
	}
	path := filepath.Join(c.dir, "stats.json")
	if err := saveStatsFile(path, c.stats.snapshot()); err != nil {
		c.logger.Printf("%v", &PersistError{Path: path, Err: err})
	}
}

func (c *Cache) persistAll() error {
	if c.dir == "" {
		return nil
	}
	cachePath := filepath.Join(c.dir, "cache.json")
	if err := c.store.saveTo(cachePath); err != nil {
		return &PersistError{Path: cachePath, Err: err}
	}
	if err := c.saveIndex(); err != nil {
		return &PersistError{Path: filepath.Join(c.dir, "index.vec"), Err: err}
	}
	statsPath := filepath.Join(c.dir, "stats.json")
	if err := saveStatsFile(statsPath, c.stats.snapshot()); err != nil {
		return &PersistError{Path: statsPath, Err: err}
	}
	return nil
}

func (c *Cache) saveIndex() error {
	path := filepath.Join(c.dir, "index.vec")
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "index.vec.tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := c.index.SaveTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
