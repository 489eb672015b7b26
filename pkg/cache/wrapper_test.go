package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWrapCacheMissThenHit(t *testing.T) {
	c, _ := newTestCache(t, 0.8, 3600)
	calls := 0
	call := func(ctx context.Context, prompt string) (ModelResult, error) {
		calls++
		return ModelResult{Response: "42", ModelUsed: "test-model", Cost: 0.02}, nil
	}
	wrapped := c.Wrap(call)
	ctx := context.Background()
	prompt := "what is the answer to everything"

	first, err := wrapped(ctx, prompt)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.CacheStatus != StatusStore {
		t.Errorf("first call CacheStatus = %v, want STORE", first.CacheStatus)
	}
	if first.Similarity != 1.0 {
		t.Errorf("first call Similarity = %v, want 1.0 on STORE", first.Similarity)
	}
	if calls != 1 {
		t.Fatalf("underlying call invoked %d times, want 1", calls)
	}

	second, err := wrapped(ctx, prompt)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.CacheStatus != StatusHit {
		t.Errorf("second call CacheStatus = %v, want HIT", second.CacheStatus)
	}
	if second.ModelUsed != "Cached" || second.SelectedModel != "Cached" {
		t.Errorf("second call ModelUsed/SelectedModel = %q/%q, want Cached/Cached", second.ModelUsed, second.SelectedModel)
	}
	if second.Cost != 0 || second.Latency != 0 || second.InputTokens != 0 || second.OutputTokens != 0 {
		t.Errorf("second call numeric fields not zeroed: %+v", second)
	}
	if second.Response != "42" {
		t.Errorf("second call Response = %q, want 42", second.Response)
	}
	if calls != 1 {
		t.Errorf("underlying call invoked %d times on a hit, want 1 (no re-invocation)", calls)
	}
}

func TestWrapJunkPromptNotCached(t *testing.T) {
	c, _ := newTestCache(t, 0.8, 3600)
	call := func(ctx context.Context, prompt string) (ModelResult, error) {
		return ModelResult{Response: "hello"}, nil
	}
	wrapped := c.Wrap(call)

	result, err := wrapped(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if result.CacheStatus != StatusMiss {
		t.Errorf("CacheStatus = %v, want MISS (junk prompt must not be admitted)", result.CacheStatus)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0 — junk prompt must not be stored", c.Size())
	}
}

func TestWrapUpstreamFailurePropagatesAndDoesNotPollute(t *testing.T) {
	c, _ := newTestCache(t, 0.8, 3600)
	wantErr := errors.New("upstream exploded")
	call := func(ctx context.Context, prompt string) (ModelResult, error) {
		return ModelResult{}, wantErr
	}
	wrapped := c.Wrap(call)

	_, err := wrapped(context.Background(), "a perfectly admissible prompt here")
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want wrapped %v", err, wantErr)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0 after upstream failure", c.Size())
	}
}

func TestWrapEmptyResponseNotCached(t *testing.T) {
	c, _ := newTestCache(t, 0.8, 3600)
	call := func(ctx context.Context, prompt string) (ModelResult, error) {
		return ModelResult{Response: ""}, nil
	}
	wrapped := c.Wrap(call)

	result, err := wrapped(context.Background(), "a perfectly admissible prompt here")
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if result.CacheStatus != StatusMiss {
		t.Errorf("CacheStatus = %v, want MISS", result.CacheStatus)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0 — empty response must not be stored", c.Size())
	}
}

func TestWrapSavedCostAccruesOnHit(t *testing.T) {
	c, _ := newTestCache(t, 0.8, 3600)
	call := func(ctx context.Context, prompt string) (ModelResult, error) {
		return ModelResult{Response: "costed answer", Cost: 0.03}, nil
	}
	wrapped := c.Wrap(call)
	ctx := context.Background()
	prompt := "what does this particular query cost to run"

	wrapped(ctx, prompt)
	wrapped(ctx, prompt)

	snap := c.Stats()
	if snap.SavedCost < 0.0299 || snap.SavedCost > 0.0301 {
		t.Errorf("SavedCost = %v, want ~0.03", snap.SavedCost)
	}
	if snap.Hits != 1 {
		t.Errorf("Hits = %d, want 1", snap.Hits)
	}
}

func TestResultFromText(t *testing.T) {
	r := ResultFromText("plain text answer")
	if r.Response != "plain text answer" {
		t.Errorf("Response = %q", r.Response)
	}
	if r.Cost != 0 || r.InputTokens != 0 {
		t.Errorf("expected zeroed numeric fields, got %+v", r)
	}
}

func TestWrapDoesNotCoalesceConcurrentMisses(t *testing.T) {
	// Two in-flight wrapped calls for the same prompt both invoke the
	// underlying model; this is an intentional simplicity trade-off, not
	// a bug — verify the wrapper makes no attempt to dedupe.
	// The identical prompt scores 1.0 against a stored entry whatever the
	// threshold, so both calls must do their Lookup before done is closed
	// and either Add runs.
	c, _ := newTestCache(t, 0.99, 3600)
	var calls int
	done := make(chan struct{})
	call := func(ctx context.Context, prompt string) (ModelResult, error) {
		calls++
		<-done
		return ModelResult{Response: "slow answer"}, nil
	}
	wrapped := c.Wrap(call)

	go wrapped(context.Background(), "a deliberately slow admissible prompt")
	go wrapped(context.Background(), "a deliberately slow admissible prompt")

	time.Sleep(10 * time.Millisecond)
	close(done)
	time.Sleep(10 * time.Millisecond)

	if calls != 2 {
		t.Errorf("underlying call invoked %d times, want 2 (no coalescing)", calls)
	}
}
