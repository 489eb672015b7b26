package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
)

// Stats tallies hits, misses, and estimated cost saved. Counter updates
// use atomics for the uncontended fast path; the facade's lock still
// serializes them with respect to Clear and snapshot writes (spec: §5 —
// counters need not be linearizable across threads, only monotone and
// eventually consistent).
type Stats struct {
	hits      uint64
	misses    uint64
	savedCost atomicFloat64
}

func newStats() *Stats { return &Stats{} }

func (s *Stats) recordHit()    { atomic.AddUint64(&s.hits, 1) }
func (s *Stats) recordMiss()   { atomic.AddUint64(&s.misses, 1) }
func (s *Stats) addSavedCost(c float64) {
	if c != 0 {
		s.savedCost.add(c)
	}
}

func (s *Stats) reset() {
	atomic.StoreUint64(&s.hits, 0)
	atomic.StoreUint64(&s.misses, 0)
	s.savedCost.store(0)
}

// Snapshot is a point-in-time, read-only view of the counters.
type Snapshot struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	SavedCost float64 `json:"saved_cost"`
}

func (s *Stats) snapshot() Snapshot {
	return Snapshot{
		Hits:      atomic.LoadUint64(&s.hits),
		Misses:    atomic.LoadUint64(&s.misses),
		SavedCost: s.savedCost.load(),
	}
}

// HitRate returns hits/(hits+misses) rounded to 4 decimal places, or 0.0
// when both are zero (spec: §4.5 stats()).
func (snap Snapshot) HitRate() float64 {
	total := snap.Hits + snap.Misses
	if total == 0 {
		return 0.0
	}
	rate := float64(snap.Hits) / float64(total)
	return roundTo(rate, 4)
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int64(v*scale+0.5)) / scale
}

// loadStatsFile reads a previously persisted stats.json. A missing file is
// not an error; it yields a zero Snapshot, matching a fresh cache.
func loadStatsFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, nil
		}
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("cache: stats: decode %s: %w", path, err)
	}
	return snap, nil
}

// saveStatsFile writes snap to path via the same atomic temp-file+rename
// path used by the entry store and the vector index (spec: §5).
func saveStatsFile(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: stats: encode: %w", err)
	}
	return writeFileAtomic(path, data)
}
