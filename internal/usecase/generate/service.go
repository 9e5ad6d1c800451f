// Package generate asks the chat model for the final answer and falls back to a
// deterministic template when it cannot.
package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/partsupport/internal/domain"
	"github.com/kailas-cloud/partsupport/internal/logger"
	"github.com/kailas-cloud/partsupport/internal/metrics"
)

// Generation outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
)

// Config holds the call-site settings.
type Config struct {
	Sampling domain.SamplingParams
	Timeout  time.Duration
	Strip    StripFunc // nil = StripReasoning
}

// Service produces the answer text.
type Service struct {
	completer domain.Completer
	cfg       Config
	logger    *zap.Logger
}

// New creates a generation service.
func New(completer domain.Completer, cfg Config, log *zap.Logger) *Service {
	if cfg.Strip == nil {
		cfg.Strip = StripReasoning
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{completer: completer, cfg: cfg, logger: log}
}

// Generate returns the filtered model answer, or Compose output on any failure.
// It never returns an error; a fallback marks the request usage as degraded.
func (s *Service) Generate(ctx context.Context, query, partsContext, repairContext string) string {
	text, err := s.complete(ctx, query, partsContext, repairContext)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues(OutcomeFallback).Inc()
		domain.UsageFromContext(ctx).MarkDegraded()
		logger.FromContextOr(ctx, s.logger).Warn("generation failed, using fallback", zap.Error(err))
		return Compose(query, partsContext, repairContext)
	}

	metrics.GenerationTotal.WithLabelValues(OutcomeSuccess).Inc()
	return text
}

func (s *Service) complete(ctx context.Context, query, partsContext, repairContext string) (string, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	res, err := s.completer.Complete(ctx, domain.CompletionRequest{
		System:   SystemPrompt,
		User:     BuildPrompt(query, partsContext, repairContext),
		Sampling: s.cfg.Sampling,
	})
	if err != nil {
		return "", err
	}
	domain.UsageFromContext(ctx).AddCompletionTokens(res.CompletionTokens)

	text := strings.TrimSpace(s.cfg.Strip(res.Text))
	if text == "" {
		return "", fmt.Errorf("reply empty after filtering: %w", domain.ErrGenerationFailed)
	}
	return text, nil
}
