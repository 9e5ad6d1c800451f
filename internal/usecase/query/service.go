// Package query sequences one question through retrieval, context rendering and generation.
package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/partsupport/internal/domain"
	"github.com/kailas-cloud/partsupport/internal/domain/part"
	"github.com/kailas-cloud/partsupport/internal/domain/repair"
	"github.com/kailas-cloud/partsupport/internal/logger"
	"github.com/kailas-cloud/partsupport/internal/metrics"
)

// Query outcomes.
const (
	OutcomeAnswered = "answered"
	OutcomeDegraded = "degraded"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Pipeline pairs a collection's retriever with its renderer.
type Pipeline[T any] struct {
	Retriever Retriever[T]
	Render    RenderFunc[T]
}

// Envelope is the result returned to callers. Repair records are used as context only.
type Envelope struct {
	Response      string        `json:"response"`
	RelevantParts []part.Record `json:"relevant_parts"`
}

// Service is the query orchestrator.
type Service struct {
	embed   Embedder
	parts   Pipeline[part.Record]
	repairs Pipeline[repair.Record]
	gen     Generator
	logger  *zap.Logger
}

// New creates a query service.
func New(
	embed Embedder, parts Pipeline[part.Record], repairs Pipeline[repair.Record],
	gen Generator, log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{embed: embed, parts: parts, repairs: repairs, gen: gen, logger: log}
}

// Process answers one question. The query is embedded once and the vector is shared by
// both collections, which are searched concurrently. Retrieval errors propagate;
// generation failures degrade to the fallback answer.
func (s *Service) Process(ctx context.Context, query string) (Envelope, error) {
	if strings.TrimSpace(query) == "" {
		metrics.QueriesTotal.WithLabelValues(OutcomeRejected).Inc()
		return Envelope{}, domain.ErrEmptyQuery
	}

	usage := domain.UsageFromContext(ctx)
	if usage == nil {
		ctx, usage = domain.NewContextWithUsage(ctx)
	}

	env, err := s.process(ctx, query)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(OutcomeFailed).Inc()
		return Envelope{}, err
	}

	outcome := OutcomeAnswered
	if _, _, degraded := usage.Snapshot(); degraded {
		outcome = OutcomeDegraded
	}
	metrics.QueriesTotal.WithLabelValues(outcome).Inc()
	return env, nil
}

func (s *Service) process(ctx context.Context, query string) (Envelope, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return Envelope{}, domain.NewUpstreamError(domain.ServiceEmbedding, fmt.Errorf("vectorize query: %w", err))
	}

	var (
		parts   []part.Record
		repairs []repair.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		parts, err = s.parts.Retriever.Search(gctx, query, emb.Embedding)
		return err
	})
	g.Go(func() error {
		var err error
		repairs, err = s.repairs.Retriever.Search(gctx, query, emb.Embedding)
		return err
	})
	if err := g.Wait(); err != nil {
		return Envelope{}, err
	}

	partsContext := s.parts.Render(ctx, query, parts)
	repairContext := s.repairs.Render(ctx, query, repairs)

	logger.FromContextOr(ctx, s.logger).Debug("context assembled",
		zap.Int("parts", len(parts)),
		zap.Int("repairs", len(repairs)),
	)

	if parts == nil {
		parts = []part.Record{}
	}
	return Envelope{
		Response:      s.gen.Generate(ctx, query, partsContext, repairContext),
		RelevantParts: parts,
	}, nil
}
