package cache

import "sync"

// Default/SetDefault is the optional process-wide convenience wrapper the
// spec allows over explicit construction (spec: §9 "Global singleton
// adapter" — the source's module-level adapter/get_cache_manager pair is
// replaced by dependency injection everywhere except this opt-in shim,
// kept for callers that genuinely want one cache per process rather than
// threading a *Cache through every layer).
var (
	defaultMu    sync.RWMutex
	defaultCache *Cache
)

// SetDefault installs c as the process-wide default cache.
func SetDefault(c *Cache) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultCache = c
}

// Default returns the process-wide default cache, or nil if none has been
// installed via SetDefault.
func Default() *Cache {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultCache
}
