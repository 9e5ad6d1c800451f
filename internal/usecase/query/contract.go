package query

import (
	"context"

	"github.com/kailas-cloud/partsupport/internal/domain"
)

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Retriever searches one collection with a precomputed query vector.
type Retriever[T any] interface {
	Name() string
	Search(ctx context.Context, query string, vector []float32) ([]T, error)
}

// RenderFunc turns retrieved records into a context block.
type RenderFunc[T any] func(ctx context.Context, query string, records []T) string

// Generator produces the answer text. It never fails.
type Generator interface {
	Generate(ctx context.Context, query, partsContext, repairContext string) string
}
