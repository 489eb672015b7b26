package cache

import "errors"

// Error taxonomy. Of these, only InitError and UpstreamFailure are ever
// surfaced to a caller of the public API (Lookup, Add and Wrap also return
// a failed Embed call, wrapped) — UpstreamFailure has no dedicated Go type of
// its own; it is the caller's own ModelFunc error, propagated unchanged by
// Wrap. CorruptSnapshot, PersistError and TimestampParse are absorbed
// internally and logged, per the propagation policy in the cache's design
// notes: correctness-by-omission over an incorrect hit. All three are
// still typed, errors.Is/As-checkable values — logged rather than
// returned, not swallowed as bare strings.

// InitError wraps a failure to construct the Embedder. The cache that
// fails to initialize is not usable; New returns this error directly.
type InitError struct {
	Err error
}

func (e *InitError) Error() string { return "cache: init: " + e.Err.Error() }
func (e *InitError) Unwrap() error { return e.Err }

// CorruptSnapshot wraps a snapshot file (cache.json, index.vec,
// history.log, stats.json) that failed to parse on load. The affected
// component resets to empty and the raw file is left on disk for
// forensics; CorruptSnapshot is logged, never returned from New.
type CorruptSnapshot struct {
	Path string
	Err  error
}

func (e *CorruptSnapshot) Error() string {
	return "cache: corrupt snapshot " + e.Path + ": " + e.Err.Error()
}
func (e *CorruptSnapshot) Unwrap() error { return e.Err }

// PersistError wraps a failed snapshot write (cache.json, index.vec,
// stats.json, history.log). The mutation that triggered the write already
// succeeded in memory; persistence is retried on the next successful
// mutation, so PersistError is logged and absorbed, never returned to a
// Lookup/Add caller.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string { return "cache: persist " + e.Path + ": " + e.Err.Error() }
func (e *PersistError) Unwrap() error { return e.Err }

// TimestampParse wraps a malformed on-disk timestamp encountered while
// loading cache.json. The entry is retained with a conservative CreatedAt
// (epoch zero, already TTL-expired) rather than dropped.
type TimestampParse struct {
	Raw string
	Err error
}

func (e *TimestampParse) Error() string {
	return "cache: parse timestamp " + e.Raw + ": " + e.Err.Error()
}
func (e *TimestampParse) Unwrap() error { return e.Err }

// ErrCacheDisabled is the sentinel for a cache constructed (or later
// toggled) disabled. Lookup, Add and Wrap do not return it: a disabled
// cache reports a miss and stores nothing.
var ErrCacheDisabled = errors.New("cache: disabled")
