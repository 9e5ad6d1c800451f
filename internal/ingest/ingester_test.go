package ingest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/partsupport/internal/domain"
	retrievalrepo "github.com/kailas-cloud/partsupport/internal/repository/retrieval"
)

type mockWriter struct {
	mu      sync.Mutex
	entries []retrievalrepo.Entry[string]
	runIDs  map[string]bool
	putFn   func(entries []retrievalrepo.Entry[string]) error
}

func (m *mockWriter) Name() string { return "docs" }

func (m *mockWriter) Put(_ context.Context, entries []retrievalrepo.Entry[string], runID string) error {
	if m.putFn != nil {
		if err := m.putFn(entries); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	if m.runIDs == nil {
		m.runIDs = map[string]bool{}
	}
	m.runIDs[runID] = true
	return nil
}

type mockBatchEmbedder struct {
	batchEmbedFn func(texts []string) (domain.BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if m.batchEmbedFn != nil {
		return m.batchEmbedFn(texts)
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		out.Embeddings[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func makeItems(n int) []Item[string] {
	items := make([]Item[string], n)
	for i := range items {
		id := PartID(i)
		items[i] = Item[string]{ID: id, Record: id, Text: id}
	}
	return items
}

func TestIngester_WritesAllItems(t *testing.T) {
	w := &mockWriter{}
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ing := New[string](w, &mockBatchEmbedder{}, Options{Workers: 3, BatchSize: 4, Metrics: m}, nil)
	res, err := ing.Run(context.Background(), makeItems(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Processed != 10 || res.Failed != 0 {
		t.Errorf("expected 10/0, got %d/%d", res.Processed, res.Failed)
	}
	if res.RunID == "" || res.RunID != ing.RunID() {
		t.Errorf("unexpected run id %q", res.RunID)
	}
	if len(w.runIDs) != 1 || !w.runIDs[res.RunID] {
		t.Errorf("expected every batch stamped with %q, got %v", res.RunID, w.runIDs)
	}

	ids := make([]string, 0, len(w.entries))
	for _, e := range w.entries {
		if e.ID != e.Record {
			t.Errorf("entry %q carries record %q", e.ID, e.Record)
		}
		if len(e.Vector) != 1 || e.Vector[0] != float32(len(e.ID)) {
			t.Errorf("entry %q got vector %v", e.ID, e.Vector)
		}
		ids = append(ids, e.ID)
	}
	sort.Strings(ids)
	if len(ids) != 10 || ids[0] != "part_0" || ids[9] != "part_9" {
		t.Errorf("unexpected ids %v", ids)
	}

	if v := testutil.ToFloat64(m.batchesTotal.WithLabelValues("docs")); v != 3 {
		t.Errorf("expected 3 batches, got %v", v)
	}
	if v := testutil.ToFloat64(m.rowsProcessed.WithLabelValues("docs")); v != 10 {
		t.Errorf("expected 10 rows processed, got %v", v)
	}
}

func TestIngester_FailedBatchesAreCounted(t *testing.T) {
	w := &mockWriter{
		putFn: func(entries []retrievalrepo.Entry[string]) error {
			if entries[0].ID == "part_0" {
				return errors.New("connection reset")
			}
			return nil
		},
	}
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ing := New[string](w, &mockBatchEmbedder{}, Options{Workers: 2, BatchSize: 2, Metrics: m}, nil)
	res, err := ing.Run(context.Background(), makeItems(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Processed != 3 || res.Failed != 2 {
		t.Errorf("expected 3/2, got %d/%d", res.Processed, res.Failed)
	}
	if v := testutil.ToFloat64(m.rowsFailed.WithLabelValues("docs", ReasonWrite)); v != 2 {
		t.Errorf("expected 2 write failures, got %v", v)
	}
}

func TestIngester_EmbedFailure(t *testing.T) {
	w := &mockWriter{}
	emb := &mockBatchEmbedder{
		batchEmbedFn: func([]string) (domain.BatchEmbeddingResult, error) {
			return domain.BatchEmbeddingResult{}, errors.New("rate limited")
		},
	}
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	res, err := New[string](w, emb, Options{Workers: 1, BatchSize: 10, Metrics: m}, nil).
		Run(context.Background(), makeItems(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failed != 3 || len(w.entries) != 0 {
		t.Errorf("expected all 3 failed and nothing written, got failed=%d written=%d", res.Failed, len(w.entries))
	}
	if v := testutil.ToFloat64(m.rowsFailed.WithLabelValues("docs", ReasonEmbed)); v != 3 {
		t.Errorf("expected 3 embed failures, got %v", v)
	}
}

func TestIngester_EmbeddingCountMismatch(t *testing.T) {
	w := &mockWriter{}
	emb := &mockBatchEmbedder{
		batchEmbedFn: func([]string) (domain.BatchEmbeddingResult, error) {
			return domain.BatchEmbeddingResult{Embeddings: [][]float32{{1}}}, nil
		},
	}

	res, err := New[string](w, emb, Options{Workers: 1, BatchSize: 2}, nil).
		Run(context.Background(), makeItems(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failed != 2 {
		t.Errorf("expected 2 failed, got %d", res.Failed)
	}
}

func TestIngester_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &mockWriter{}
	res, err := New[string](w, &mockBatchEmbedder{}, Options{Workers: 1, BatchSize: 1}, nil).
		Run(ctx, makeItems(100))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Processed+res.Failed >= 100 {
		t.Errorf("expected the run to stop early, got %d processed", res.Processed)
	}
}

func TestIngester_Empty(t *testing.T) {
	w := &mockWriter{}
	res, err := New[string](w, &mockBatchEmbedder{}, Options{}, nil).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Processed != 0 || len(w.entries) != 0 {
		t.Errorf("expected nothing written, got %+v", res)
	}
}
