package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeClock lets tests advance time deterministically without sleeping.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }
func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(t *testing.T, threshold float64, ttlSeconds int64) (*Cache, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c, err := New(Config{
		Embedder:   NewHashEmbedder("test", 32),
		Threshold:  &threshold,
		TTLSeconds: &ttlSeconds,
		Enabled:    true,
		Clock:      clk,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, clk
}

func TestCacheWarmHit(t *testing.T) {
	c, _ := newTestCache(t, 0.8, 3600)
	ctx := context.Background()

	ok, err := c.Add(ctx, "How do I sort a list in Python?", "Use the sorted() function.", nil)
	if err != nil || !ok {
		t.Fatalf("Add: ok=%v err=%v", ok, err)
	}

	res, err := c.Lookup(ctx, "How do I sort a list in Python?")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !res.Hit {
		t.Fatal("expected a hit on the exact same prompt")
	}
	if res.Entry.Response != "Use the sorted() function." {
		t.Errorf("Response = %q", res.Entry.Response)
	}
	if res.Similarity != 1.0 {
		t.Errorf("Similarity = %v, want 1.0 for exact match", res.Similarity)
	}
}

func TestCacheMissUnrelatedPrompt(t *testing.T) {
	c, _ := newTestCache(t, 0.8, 3600)
	ctx := context.Background()

	c.Add(ctx, "How do I sort a list in Python?", "Use sorted().", nil)

	res, err := c.Lookup(ctx, "What is the weather like on Mars today in detail?")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Hit {
		t.Error("expected a miss for an unrelated prompt")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c, clk := newTestCache(t, 0.8, 10) // 10 second TTL
	ctx := context.Background()

	c.Add(ctx, "What time is it right now in Tokyo?", "I can't tell real-time.", nil)

	clk.advance(20 * time.Second)

	res, err := c.Lookup(ctx, "What time is it right now in Tokyo?")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Hit {
		t.Error("expected a miss once the entry has aged past its TTL")
	}
}

func TestCacheClearResetsEverything(t *testing.T) {
	c, _ := newTestCache(t, 0.8, 3600)
	ctx := context.Background()

	c.Add(ctx, "first admissible prompt here", "resp1", nil)
	c.Lookup(ctx, "first admissible prompt here")

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if c.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", c.Size())
	}
	snap := c.Stats()
	if snap.Hits != 0 || snap.Misses != 0 || snap.SavedCost != 0 {
		t.Errorf("Stats() after Clear = %+v, want all zero", snap)
	}
}

func TestCacheJunkPromptNeverAdmitted(t *testing.T) {
	c, _ := newTestCache(t, 0.8, 3600)
	ctx := context.Background()

	ok, err := c.Add(ctx, "hi", "hello", nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if ok {
		t.Error("expected junk prompt to be rejected by admission policy")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0 after rejected Add", c.Size())
	}
}

func TestCacheReAdmissionOverwritesInPlace(t *testing.T) {
	c, _ := newTestCache(t, 0.8, 3600)
	ctx := context.Background()

	prompt := "please summarize this document for me"
	c.Add(ctx, prompt, "first answer", nil)
	c.Add(ctx, prompt, "second answer", nil)

	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want 1 after re-admission", c.Size())
	}
	res, _ := c.Lookup(ctx, prompt)
	if res.Entry.Response != "second answer" {
		t.Errorf("Response = %q, want updated response", res.Entry.Response)
	}
}

func TestCacheDisabledAlwaysMisses(t *testing.T) {
	clk := &fakeClock{now: time.Now().UTC()}
	c, err := New(Config{
		Embedder: NewHashEmbedder("test", 32),
		Enabled:  false,
		Clock:    clk,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	ok, err := c.Add(ctx, "a fully admissible prompt here", "resp", nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if ok {
		t.Error("expected Add to no-op while disabled")
	}

	res, err := c.Lookup(ctx, "a fully admissible prompt here")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Hit {
		t.Error("expected Lookup to always miss while disabled")
	}
}

func TestCacheRejectsNilEmbedder(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected New to reject a Config with no Embedder")
	}
}

func TestCacheRuntimeMutableThresholdAndTTL(t *testing.T) {
	c, _ := newTestCache(t, 0.8, 3600)
	if c.Threshold() != 0.8 {
		t.Errorf("Threshold() = %v, want 0.8", c.Threshold())
	}
	c.SetThreshold(0.5)
	if c.Threshold() != 0.5 {
		t.Errorf("Threshold() after SetThreshold = %v, want 0.5", c.Threshold())
	}

	c.SetTTL(60)
	if c.TTL() != 60 {
		t.Errorf("TTL() after SetTTL = %v, want 60", c.TTL())
	}
}

func TestCachePersistsAndReloadsSnapshot(t *testing.T) {
	dir := t.TempDir()
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	ctx := context.Background()
	threshold := 0.8
	ttl := int64(3600)

	c, err := New(Config{
		Dir:        dir,
		Embedder:   NewHashEmbedder("test", 32),
		Threshold:  &threshold,
		TTLSeconds: &ttl,
		Enabled:    true,
		Clock:      clk,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Add(ctx, "persist this admissible prompt", "answer", nil); err != nil {
		t.Fatalf("Add: %v", err)
	}

	reloaded, err := New(Config{
		Dir:        dir,
		Embedder:   NewHashEmbedder("test", 32),
		Threshold:  &threshold,
		TTLSeconds: &ttl,
		Enabled:    true,
		Clock:      clk,
	})
	if err != nil {
		t.Fatalf("New (reload): %v", err)
	}
	if reloaded.Size() != 1 {
		t.Fatalf("reloaded Size() = %d, want 1", reloaded.Size())
	}

	res, err := reloaded.Lookup(ctx, "persist this admissible prompt")
	if err != nil {
		t.Fatalf("Lookup after reload: %v", err)
	}
	if !res.Hit || res.Entry.Response != "answer" {
		t.Fatalf("Lookup after reload = %+v", res)
	}

	for _, f := range []string{"cache.json", "index.vec", "stats.json"} {
		if _, statErr := os.Stat(filepath.Join(dir, f)); statErr != nil {
			t.Errorf("expected snapshot file %s to exist: %v", f, statErr)
		}
	}
}

// TestCacheSnapshotRoundTripTwoEntries reproduces spec scenario 6 exactly:
// after a warm-hit prompt (scenario 1) and an idempotently re-admitted
// prompt (scenario 5) are both stored, a Cache reopened over the same
// cache_path must recover both prompts with their latest responses. A
// single-entry reload can't expose a fingerprint↔slot mixup (slot 0
// trivially belongs to the only fingerprint there is); this needs ≥2
// entries whose fingerprints don't happen to sort in insertion order.
func TestCacheSnapshotRoundTripTwoEntries(t *testing.T) {
	dir := t.TempDir()
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	ctx := context.Background()
	threshold := 0.8
	ttl := int64(3600)

	c, err := New(Config{
		Dir:        dir,
		Embedder:   NewHashEmbedder("test", 32),
		Threshold:  &threshold,
		TTLSeconds: &ttl,
		Enabled:    true,
		Clock:      clk,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Scenario 1: warm hit prompt.
	if _, err := c.Add(ctx, "How do I sort a list in Python?", "Use the sorted() function.", nil); err != nil {
		t.Fatalf("Add (scenario 1): %v", err)
	}
	// Scenario 5: idempotent re-admission, latest response wins.
	if _, err := c.Add(ctx, "alpha beta gamma", "X", nil); err != nil {
		t.Fatalf("Add (scenario 5, first): %v", err)
	}
	if _, err := c.Add(ctx, "alpha beta gamma", "Y", nil); err != nil {
		t.Fatalf("Add (scenario 5, second): %v", err)
	}
	if c.Size() != 2 {
		t.Fatalf("Size() before reload = %d, want 2", c.Size())
	}

	reloaded, err := New(Config{
		Dir:        dir,
		Embedder:   NewHashEmbedder("test", 32),
		Threshold:  &threshold,
		TTLSeconds: &ttl,
		Enabled:    true,
		Clock:      clk,
	})
	if err != nil {
		t.Fatalf("New (reload): %v", err)
	}
	if reloaded.Size() != 2 {
		t.Fatalf("reloaded Size() = %d, want 2", reloaded.Size())
	}

	first, err := reloaded.Lookup(ctx, "How do I sort a list in Python?")
	if err != nil {
		t.Fatalf("Lookup (first): %v", err)
	}
	if !first.Hit || first.Entry.Response != "Use the sorted() function." {
		t.Fatalf("Lookup (first) after reload = %+v, want the sort-list response", first)
	}

	second, err := reloaded.Lookup(ctx, "alpha beta gamma")
	if err != nil {
		t.Fatalf("Lookup (second): %v", err)
	}
	if !second.Hit || second.Entry.Response != "Y" {
		t.Fatalf("Lookup (second) after reload = %+v, want response Y (latest re-admission)", second)
	}
}

// TestCacheConfigExplicitZeroThreshold pins spec.md §8's threshold=0.0
// boundary: any non-empty index yields a hit, pending TTL. Config.Threshold
// is a pointer specifically so this zero is distinguishable from "not set".
func TestCacheConfigExplicitZeroThreshold(t *testing.T) {
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	threshold := 0.0
	ttl := int64(3600)
	c, err := New(Config{
		Embedder:   NewHashEmbedder("test", 32),
		Threshold:  &threshold,
		TTLSeconds: &ttl,
		Enabled:    true,
		Clock:      clk,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if _, err := c.Add(ctx, "a completely unrelated admissible prompt", "resp", nil); err != nil {
		t.Fatalf("Add: %v", err)
	}

	res, err := c.Lookup(ctx, "an entirely different topic about oceans and whales")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !res.Hit {
		t.Error("expected a hit with threshold=0.0 against any non-empty index")
	}
}

// TestCacheConfigExplicitZeroTTL pins spec.md §8's ttl=0 boundary: every
// lookup is a miss even immediately after add. Config.TTLSeconds is a
// pointer specifically so this zero is distinguishable from "not set".
func TestCacheConfigExplicitZeroTTL(t *testing.T) {
	clk := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	threshold := 0.8
	ttl := int64(0)
	c, err := New(Config{
		Embedder:   NewHashEmbedder("test", 32),
		Threshold:  &threshold,
		TTLSeconds: &ttl,
		Enabled:    true,
		Clock:      clk,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if _, err := c.Add(ctx, "foo bar baz", "qux", nil); err != nil {
		t.Fatalf("Add: %v", err)
	}

	res, err := c.Lookup(ctx, "foo bar baz")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Hit {
		t.Error("expected a miss with ttl=0 even immediately after add")
	}
}
