package retrieval

import (
	"context"
	"testing"

	"github.com/kailas-cloud/partsupport/internal/db"
	"github.com/kailas-cloud/partsupport/internal/domain/filter"
	"github.com/kailas-cloud/partsupport/internal/domain/part"
	"github.com/kailas-cloud/partsupport/internal/domain/repair"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

func testLayout() Layout {
	return Layout{
		KeyPrefix:    "ps:",
		PartsIndex:   "ps:parts:idx",
		RepairsIndex: "ps:repairs:idx",
		VectorDim:    4,
		HNSW:         HNSWConfig{M: 16, EFConstruct: 200},
	}
}

func newPartsRepo(t *testing.T) (*Repo[part.Record], *mockStore) {
	t.Helper()
	col, err := Parts(testLayout())
	if err != nil {
		t.Fatalf("Parts: %v", err)
	}
	ms := &mockStore{}
	return New(ms, col), ms
}

func newRepairsRepo(t *testing.T) (*Repo[repair.Record], *mockStore) {
	t.Helper()
	col, err := Repairs(testLayout())
	if err != nil {
		t.Fatalf("Repairs: %v", err)
	}
	ms := &mockStore{}
	return New(ms, col), ms
}

func testVector() []float32 {
	return []float32{0.1, 0.2, 0.3, 0.4}
}

func mustMatch(t *testing.T, key, value string) filter.Condition {
	t.Helper()
	c, err := filter.NewMatch(key, value)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return c
}
