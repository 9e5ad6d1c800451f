// Package retrieval runs the filtered-then-widened nearest-neighbor search for one collection.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/partsupport/internal/domain"
	"github.com/kailas-cloud/partsupport/internal/domain/filter"
	"github.com/kailas-cloud/partsupport/internal/logger"
	"github.com/kailas-cloud/partsupport/internal/metrics"
)

// Service searches one collection. With a FilterFunc it tries the exact-match filter first
// and widens to an unfiltered search with the same vector when nothing matches.
type Service[T any] struct {
	repo     Repository[T]
	topK     int
	filterFn FilterFunc
	logger   *zap.Logger
}

// New creates a retrieval service. filterFn may be nil for always-unfiltered collections.
func New[T any](repo Repository[T], topK int, filterFn FilterFunc, log *zap.Logger) *Service[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service[T]{repo: repo, topK: topK, filterFn: filterFn, logger: log}
}

// Name returns the collection name.
func (s *Service[T]) Name() string {
	return s.repo.Name()
}

// Search returns up to topK records for query, in store relevance order.
// Store failures are returned as *domain.UpstreamError.
func (s *Service[T]) Search(ctx context.Context, query string, vector []float32) ([]T, error) {
	start := time.Now()
	defer func() {
		metrics.RetrievalDuration.WithLabelValues(s.repo.Name()).Observe(time.Since(start).Seconds())
	}()

	var filters filter.Expression
	if s.filterFn != nil {
		f, err := s.filterFn(query)
		if err != nil {
			return nil, fmt.Errorf("build %s filter: %w", s.repo.Name(), err)
		}
		filters = f
	}

	if !filters.IsEmpty() {
		records, err := s.repo.Search(ctx, vector, filters, s.topK)
		if err != nil {
			return nil, domain.NewUpstreamError(domain.ServiceVectorStore, err)
		}
		if len(records) > 0 {
			return records, nil
		}

		metrics.RetrievalWidenedTotal.WithLabelValues(s.repo.Name()).Inc()
		logger.FromContextOr(ctx, s.logger).Warn("filtered search found nothing, widening",
			zap.String("collection", s.repo.Name()),
			zap.Stringer("filter", filters),
		)
	}

	records, err := s.repo.Search(ctx, vector, filter.Expression{}, s.topK)
	if err != nil {
		return nil, domain.NewUpstreamError(domain.ServiceVectorStore, err)
	}
	return records, nil
}
