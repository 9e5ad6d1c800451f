package domain

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type stubEmbedder struct {
	calls []string
	err   error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.calls = append(s.calls, text)
	if s.err != nil {
		return EmbeddingResult{}, s.err
	}
	return EmbeddingResult{Embedding: []float32{float32(len(text))}, PromptTokens: 1, TotalTokens: 2}, nil
}

type stubBatchEmbedder struct {
	stubEmbedder
	batchCalls int
}

func (s *stubBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	s.batchCalls++
	out := BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i := range texts {
		out.Embeddings[i] = []float32{1}
	}
	return out, nil
}

func TestEmbedAll_Fallback(t *testing.T) {
	e := &stubEmbedder{}
	res, err := EmbedAll(context.Background(), e, []string{"a", "bb"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(e.calls) != 2 {
		t.Fatalf("expected 2 Embed calls, got %d", len(e.calls))
	}
	if res.Embeddings[1][0] != 2 {
		t.Errorf("expected order preserved, got %v", res.Embeddings)
	}
	if res.TotalTokens != 4 || res.PromptTokens != 2 {
		t.Errorf("unexpected usage: %+v", res)
	}
}

func TestEmbedAll_Native(t *testing.T) {
	e := &stubBatchEmbedder{}
	if _, err := EmbedAll(context.Background(), e, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.batchCalls != 1 || len(e.calls) != 0 {
		t.Errorf("expected one native batch call, got batch=%d single=%d", e.batchCalls, len(e.calls))
	}
}

func TestEmbedAll_Error(t *testing.T) {
	e := &stubEmbedder{err: errors.New("boom")}
	if _, err := EmbedAll(context.Background(), e, []string{"a"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpstreamError_Is(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstreamError(ServiceVectorStore, cause)

	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Error("expected ErrUpstreamUnavailable")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be preserved")
	}

	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Service != ServiceVectorStore {
		t.Errorf("expected UpstreamError for %q, got %v", ServiceVectorStore, err)
	}
	if err.Error() != "upstream retrieval unavailable: connection refused" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestMissingFieldError_Is(t *testing.T) {
	err := &MissingFieldError{Record: "part", Field: "brand"}
	if !errors.Is(err, ErrDataIntegrity) {
		t.Error("expected ErrDataIntegrity")
	}
}

func TestUsage_Concurrent(t *testing.T) {
	ctx, u := NewContextWithUsage(context.Background())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			UsageFromContext(ctx).AddEmbeddingTokens(3)
		}()
	}
	wg.Wait()
	UsageFromContext(ctx).AddCompletionTokens(7)
	UsageFromContext(ctx).MarkDegraded()

	emb, comp, degraded := u.Snapshot()
	if emb != 30 || comp != 7 || !degraded {
		t.Errorf("unexpected snapshot: emb=%d comp=%d degraded=%v", emb, comp, degraded)
	}
}

func TestUsage_NilSafe(t *testing.T) {
	u := UsageFromContext(context.Background())
	u.AddEmbeddingTokens(1)
	u.AddCompletionTokens(1)
	u.MarkDegraded()
	if emb, comp, degraded := u.Snapshot(); emb != 0 || comp != 0 || degraded {
		t.Error("nil usage should report zeros")
	}
}
