package cache

import "strings"

// DefaultThreshold and DefaultTTLSeconds are the defaults named in
// spec.md §4.4.
const (
	DefaultThreshold  = 0.8
	DefaultTTLSeconds = 3600
)

// junkPrompts is the closed set of tokens that make a prompt inadmissible
// for storage when it consists of nothing else (spec: §4.4, case-insensitive).
var junkPrompts = map[string]bool{
	"hi": true, "hello": true, "test": true, "ok": true,
	"okay": true, "hmm": true, "huh": true, "hiii": true, "hlo": true,
}

// Policy enforces admission, the similarity gate, and TTL. Threshold and
// TTL are runtime-mutable; mutation is effective immediately for
// subsequent lookups (spec: §4.4). The facade's lock, not Policy itself,
// provides the concurrency guarantee.
type Policy struct {
	Threshold float64
	TTL       int64 // seconds; 0 means every entry is immediately expired
}

// NewPolicy returns a Policy configured with the given threshold and TTL.
func NewPolicy(threshold float64, ttlSeconds int64) *Policy {
	return &Policy{Threshold: threshold, TTL: ttlSeconds}
}

// Admissible reports whether prompt may be stored on a cache miss (spec:
// §4.4 — non-empty after trimming, ≥3 whitespace tokens, not entirely junk
// tokens). It says nothing about whether prompt may be looked up; lookups
// are always attempted regardless of admissibility.
func Admissible(prompt string) bool {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return false
	}

	words := strings.Fields(trimmed)
	if len(words) < 3 {
		return false
	}

	for _, w := range words {
		if !junkPrompts[strings.ToLower(w)] {
			return true
		}
	}
	return false
}

// Accepts reports whether a candidate similarity clears the threshold.
func (p *Policy) Accepts(similarity float64) bool {
	return similarity >= p.Threshold
}
