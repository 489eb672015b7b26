package cache

import (
	"context"
	"math"
	"testing"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder("test-model", 32)
	ctx := context.Background()

	v1, err := e.Embed(ctx, "How do I sort a list in Python?")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	v2, err := e.Embed(ctx, "How do I sort a list in Python?")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if len(v1) != 32 {
		t.Fatalf("len(v1) = %d, want 32", len(v1))
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("embeddings for identical input diverged at index %d: %v != %v", i, v1[i], v2[i])
		}
	}
}

func TestHashEmbedderNormalized(t *testing.T) {
	e := NewHashEmbedder("test-model", 16)
	vec, err := e.Embed(context.Background(), "a reasonably long example prompt")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if math.Abs(norm-1.0) > 1e-3 {
		t.Errorf("||vec|| = %v, want ~1.0", norm)
	}
}

func TestHashEmbedderDistinctInputsDiffer(t *testing.T) {
	e := NewHashEmbedder("test-model", 64)
	ctx := context.Background()

	v1, _ := e.Embed(ctx, "what is the capital of france")
	v2, _ := e.Embed(ctx, "completely unrelated sentence about oceans")

	var same = true
	for i := range v1 {
		if v1[i] != v2[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct prompts produced identical embeddings")
	}
}

func TestHashEmbedderDefaultDim(t *testing.T) {
	e := NewHashEmbedder("m", 0)
	if e.Dim() != DefaultDim {
		t.Errorf("Dim() = %d, want %d for dim<=0", e.Dim(), DefaultDim)
	}
}
