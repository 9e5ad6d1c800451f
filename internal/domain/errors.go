package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable signals that the embedding, vector store or LLM service failed.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrDataIntegrity signals a stored record missing an expected field.
	ErrDataIntegrity = errors.New("data integrity")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmptyQuery signals a blank query text.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrGenerationFailed signals a failed or unusable completion.
	ErrGenerationFailed = errors.New("generation failed")
)

// Upstream service names used in UpstreamError.
const (
	ServiceEmbedding   = "embedding"
	ServiceVectorStore = "retrieval"
	ServiceLLM         = "llm"
)

// UpstreamError marks a failure of an external dependency.
// It matches both ErrUpstreamUnavailable and the underlying cause.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstreamUnavailable, e.Err} }

// NewUpstreamError wraps err as a failure of the named service.
func NewUpstreamError(service string, err error) error {
	return &UpstreamError{Service: service, Err: err}
}

// MissingFieldError reports a required record field that is absent.
type MissingFieldError struct {
	Record string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s record is missing field %q", ErrDataIntegrity.Error(), e.Record, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrDataIntegrity }
