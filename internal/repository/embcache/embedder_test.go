package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/partsupport/internal/db"
	"github.com/kailas-cloud/partsupport/internal/domain"
)

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})

	var stored []byte
	ms.setFn = func(_ context.Context, _ string, v []byte) error {
		stored = v
		return nil
	}

	result, err := ce.Embed(context.Background(), "dishwasher leaking")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
	if result.TotalTokens != 10 {
		t.Fatalf("expected TotalTokens=10, got %d", result.TotalTokens)
	}
	if len(stored) != 12 {
		t.Fatalf("expected 12 cached bytes, got %d", len(stored))
	}
}

func TestEmbed_CacheHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return vectorToCacheBytes([]float32{0.4, 0.5, 0.6}), nil
	}

	result, err := ce.Embed(context.Background(), "dishwasher leaking")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Embedding[0] != 0.4 {
		t.Fatalf("expected cached vector, got: %v", result.Embedding)
	}
	if result.TotalTokens != 0 {
		t.Fatalf("expected TotalTokens=0 on cache hit, got %d", result.TotalTokens)
	}
	if inner.calls != 0 {
		t.Fatalf("inner embedder called on hit")
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})

	setCalled := false
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		setCalled = true
		return nil
	}

	if _, err := ce.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if setCalled {
		t.Fatal("failed embeddings must not be cached")
	}
}

func TestEmbed_StoreDownFallsThrough(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("connection refused")}
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		return &db.Error{Op: db.OpSet, Err: errors.New("connection refused")}
	}

	result, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("store errors must not fail the embed: %v", err)
	}
	if inner.calls != 1 || result.Embedding[0] != 1 {
		t.Errorf("expected direct call, got calls=%d result=%v", inner.calls, result)
	}
}

func TestEmbed_CorruptEntry(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte{1, 2, 3}, nil
	}

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Error("corrupt cache entry should trigger a fresh embed")
	}
}

func TestEmbed_TTL(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner, Options{TTL: time.Hour})

	var gotTTL time.Duration
	ms.setWithTTLFn = func(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
		gotTTL = ttl
		return nil
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		t.Error("Set without TTL must not be used when TTL is configured")
		return nil
	}

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %v", gotTTL)
	}
}

func TestCacheKey(t *testing.T) {
	a, _ := newTestCachedEmbedder(t, &mockEmbedder{}, Options{KeyPrefix: "ps:emb:", Model: "all-MiniLM-L6-v2"})
	b, _ := newTestCachedEmbedder(t, &mockEmbedder{}, Options{KeyPrefix: "ps:emb:", Model: "bge-small"})

	k1 := a.cacheKey("leaking")
	if !strings.HasPrefix(k1, "ps:emb:") || len(k1) != len("ps:emb:")+64 {
		t.Errorf("unexpected key %q", k1)
	}
	if k1 != a.cacheKey("leaking") {
		t.Error("key must be deterministic")
	}
	if k1 == a.cacheKey("leaking!") {
		t.Error("different text must produce a different key")
	}
	if k1 == b.cacheKey("leaking") {
		t.Error("different model must produce a different key")
	}
}

func TestEmbed_CacheMetrics(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ms := &mockKVStore{}
	ce := New(inner, ms, Options{KeyPrefix: "t:"}, counter, zap.NewNop())

	_, _ = ce.Embed(context.Background(), "x")
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return vectorToCacheBytes([]float32{1}), nil
	}
	_, _ = ce.Embed(context.Background(), "x")

	if v := testutil.ToFloat64(counter.WithLabelValues("miss")); v != 1 {
		t.Errorf("expected 1 miss, got %f", v)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("hit")); v != 1 {
		t.Errorf("expected 1 hit, got %f", v)
	}
}

func TestBytesToVector_RoundTrip(t *testing.T) {
	in := []float32{0, -1.5, 3.25}
	out, err := bytesToVector(vectorToCacheBytes(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("mismatch at %d: %v != %v", i, in[i], out[i])
		}
	}
}
