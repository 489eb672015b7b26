package cache

import (
	"context"
	"fmt"
	"strconv"
)

// CacheStatus discriminates a ModelResult's origin (spec: §4.6).
type CacheStatus string

const (
	StatusHit  CacheStatus = "HIT"
	StatusMiss CacheStatus = "MISS"
	// StatusStore marks a synthesized record returned immediately after a
	// miss was admitted; it carries similarity = 1.0 by construction, not
	// because the stored response matched itself at lookup time (spec:
	// §9 — the literal value is preserved, STORE is the discriminator).
	StatusStore CacheStatus = "STORE"
)

// ModelResult is the uniform record a wrapped model call must return, and
// the shape the wrapper's synthesized HIT/STORE records take (spec: §4.6,
// §9 "Dynamic response type" — the source accepts a bare string or a
// record; here the signature always returns ModelResult and ResultFromText
// lifts a bare string).
type ModelResult struct {
	Response      string
	ModelUsed     string
	Latency       float64
	Cost          float64
	InputTokens   int
	OutputTokens  int
	SelectedModel string

	Similarity  float64
	CacheStatus CacheStatus
}

// ResultFromText lifts a bare string response into a ModelResult with
// zeroed numeric fields, for model calls that only return text.
func ResultFromText(text string) ModelResult {
	return ModelResult{Response: text}
}

// ModelFunc is the user-supplied call a Cache wraps: an I/O-bound,
// non-idempotent operation that produces a ModelResult for a prompt.
type ModelFunc func(ctx context.Context, prompt string) (ModelResult, error)

// Wrap returns a function with lookup-then-store behavior layered over
// call (spec: §4.6). The two suspension points in the hot path are the
// embedder call (inside Lookup/Add) and call itself; no other blocking
// operation sits between them and the return.
//
// On a hit the underlying call is never invoked. On a miss, call runs and
// its error — an UpstreamFailure — propagates unchanged without touching
// the cache (spec: §7). A cancelled call suspended inside call leaves the
// cache untouched; persistence after a successful Add always either
// completes or is discarded atomically via temp-file+rename, never
// corrupting the snapshot (spec: §4.6 cancellation & timeouts).
func (c *Cache) Wrap(call ModelFunc) ModelFunc {
	return func(ctx context.Context, prompt string) (ModelResult, error) {
		return c.lookupOrCall(ctx, prompt, call)
	}
}

func (c *Cache) lookupOrCall(ctx context.Context, prompt string, call ModelFunc) (ModelResult, error) {
	lookup, err := c.Lookup(ctx, prompt)
	if err != nil {
		return ModelResult{}, fmt.Errorf("cache: wrap: lookup: %w", err)
	}

	if lookup.Hit {
		return ModelResult{
			Response:      lookup.Entry.Response,
			ModelUsed:     "Cached",
			Latency:       0,
			Cost:          0,
			InputTokens:   0,
			OutputTokens:  0,
			SelectedModel: "Cached",
			Similarity:    lookup.Similarity,
			CacheStatus:   StatusHit,
		}, nil
	}

	result, err := call(ctx, prompt)
	if err != nil {
		// UpstreamFailure: propagated unchanged, the cache is untouched.
		return ModelResult{}, err
	}
	result.Similarity = lookup.Similarity
	result.CacheStatus = StatusMiss

	if !Admissible(prompt) || result.Response == "" {
		return result, nil
	}

	meta := map[string]string{"cost": strconv.FormatFloat(result.Cost, 'f', -1, 64)}
	stored, addErr := c.Add(ctx, prompt, result.Response, meta)
	if addErr != nil {
		// PersistError/embed failure on admission is absorbed; the caller
		// still gets the live model result, just uncached.
		c.logger.Printf("cache: wrap: add failed: %v", addErr)
		return result, nil
	}
	if !stored {
		return result, nil
	}

	synth := result
	synth.Similarity = 1.0
	synth.CacheStatus = StatusStore
	return synth, nil
}
