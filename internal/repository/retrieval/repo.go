// Package retrieval stores and searches the parts and repairs collections.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/partsupport/internal/db"
	"github.com/kailas-cloud/partsupport/internal/domain/filter"
)

// VectorField is the hash field holding the FLOAT32 embedding blob.
const VectorField = "vector"

// RunField stamps each loaded record with the ingestion run that wrote it.
const RunField = "ingest_run_id"

// store is the consumer interface for one collection (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Collection binds a record type to its key layout, index and hash codec.
type Collection[T any] struct {
	Name         string
	KeyPrefix    string
	Index        *db.IndexDefinition
	ReturnFields []string
	Encode       func(T) map[string]string
	Decode       func(id string, fields map[string]string) T
}

// Entry is one record to write together with its embedding.
type Entry[T any] struct {
	ID     string
	Record T
	Vector []float32
}

// Repo implements usecase/retrieval.Repository for one collection.
type Repo[T any] struct {
	store store
	col   Collection[T]
}

// New creates a repository over col.
func New[T any](s store, col Collection[T]) *Repo[T] {
	return &Repo[T]{store: s, col: col}
}

// Name returns the collection name used in logs and metrics.
func (r *Repo[T]) Name() string {
	return r.col.Name
}

// Search returns up to topK records nearest to vector, in store relevance order.
func (r *Repo[T]) Search(ctx context.Context, vector []float32, filters filter.Expression, topK int) ([]T, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.col.Index.Name,
		Filters:      filters,
		Vector:       vector,
		K:            topK,
		ReturnFields: r.col.ReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.col.Name, err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	records := make([]T, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, r.col.KeyPrefix)
		records = append(records, r.col.Decode(id, entry.Fields))
	}
	return records, nil
}

// Put writes entries in one pipeline. runID, when set, is stamped on every record.
func (r *Repo[T]) Put(ctx context.Context, entries []Entry[T], runID string) error {
	if len(entries) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("put %s: entry %d has no id", r.col.Name, i)
		}
		if len(e.Vector) == 0 {
			return fmt.Errorf("put %s: entry %s has no vector", r.col.Name, e.ID)
		}
		fields := r.col.Encode(e.Record)
		fields[VectorField] = db.EncodeVector(e.Vector)
		if runID != "" {
			fields[RunField] = runID
		}
		items[i] = db.HashSetItem{Key: r.col.KeyPrefix + e.ID, Fields: fields}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("put %s: %w", r.col.Name, err)
	}
	return nil
}

// EnsureIndex creates the collection index. With recreate, an existing index is dropped first
// (documents are kept). Without it, an existing index is left alone.
func (r *Repo[T]) EnsureIndex(ctx context.Context, recreate bool) (created bool, err error) {
	name := r.col.Index.Name

	if recreate {
		if err := r.store.DropIndex(ctx, name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return false, fmt.Errorf("drop index %s: %w", name, err)
		}
	}

	if err := r.store.CreateIndex(ctx, r.col.Index); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", name, err)
	}
	return true, nil
}

// IndexExists reports whether the collection index is present.
func (r *Repo[T]) IndexExists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.col.Index.Name)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.col.Index.Name, err)
	}
	return ok, nil
}
