// Package cache implements a semantic response cache: prompts are embedded
// into dense vectors, matched against prior prompts by nearest-neighbor
// search, and served from a persisted store when similar enough and still
// live. On a miss the caller's model result is admitted into the cache for
// future lookups.
package cache

import "time"

// Entry is a single admitted prompt/response pair.
//
// Fingerprint is the stable external key (a content hash of Prompt).
// Embedding has exactly Dim() elements for the Embedder in use. On reload
// the dimension recorded in index.vec is checked against the Embedder (see
// LoadFrom); a mismatch is treated as snapshot corruption and New starts
// empty. The embeddings in cache.json are not checked one by one.
type Entry struct {
	Fingerprint string            `json:"-"`
	Prompt      string            `json:"prompt"`
	Embedding   []float32         `json:"embedding"`
	Response    string            `json:"response"`
	Metadata    map[string]string `json:"metadata"`
	CreatedAt   time.Time         `json:"timestamp"`

	// Slot is the FlatIndex slot this entry's embedding occupies. It is
	// the join key between cache.json and index.vec: both files are
	// written independently (one JSON-object-keyed, one in append
	// order), so the pairing cannot be recovered by sorting fingerprints
	// — it has to be persisted alongside the entry itself.
	Slot int `json:"-"`
}

// live reports whether the entry has not yet aged past ttl, evaluated
// against now. A ttl of 0 means nothing is ever live.
func (e Entry) live(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(e.CreatedAt) <= ttl
}
