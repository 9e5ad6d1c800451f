package retrieval

import (
	"context"

	"github.com/kailas-cloud/partsupport/internal/domain/filter"
)

// Repository defines the storage contract for one collection.
type Repository[T any] interface {
	Name() string
	Search(ctx context.Context, vector []float32, filters filter.Expression, topK int) ([]T, error)
}

// FilterFunc derives an exact-match pre-filter from the query text.
// An empty expression means a plain semantic search.
type FilterFunc func(query string) (filter.Expression, error)
