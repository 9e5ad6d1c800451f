package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/partsupport/internal/domain"
	"github.com/kailas-cloud/partsupport/internal/logger"
	healthuc "github.com/kailas-cloud/partsupport/internal/usecase/health"
	queryuc "github.com/kailas-cloud/partsupport/internal/usecase/query"
)

const maxRequestBytes = 64 << 10

// Response headers carrying per-request model usage.
const (
	HeaderEmbeddingTokens  = "X-Embedding-Tokens"
	HeaderCompletionTokens = "X-Completion-Tokens"
	HeaderDegraded         = "X-Answer-Degraded"
)

// QueryProcessor answers one question.
type QueryProcessor interface {
	Process(ctx context.Context, query string) (queryuc.Envelope, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers.
type Server struct {
	query         QueryProcessor
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(query QueryProcessor, health HealthChecker, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{query: query, health: health, logger: log}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, ErrorCodeValidationFailed),
		upstreamHandler,
		sentinelHandler(domain.ErrDataIntegrity, http.StatusInternalServerError, ErrorCodeDataIntegrity),
	}
	return s
}

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	env, err := s.query.Process(ctx, req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, env)
}

// HealthCheck handles GET /health. Only critical failures turn it into a 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.Usage) {
	emb, comp, degraded := usage.Snapshot()
	if emb > 0 {
		w.Header().Set(HeaderEmbeddingTokens, strconv.Itoa(emb))
	}
	if comp > 0 {
		w.Header().Set(HeaderCompletionTokens, strconv.Itoa(comp))
	}
	if degraded {
		w.Header().Set(HeaderDegraded, "true")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// upstreamHandler names the failed service without exposing the cause.
func upstreamHandler(w http.ResponseWriter, err error) bool {
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	writeError(w, http.StatusBadGateway, ErrorCodeUpstreamUnavailable,
		fmt.Sprintf("upstream %s unavailable", ue.Service))
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
