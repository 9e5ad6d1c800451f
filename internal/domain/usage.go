package domain

import (
	"context"
	"sync"
)

type usageKey struct{}

// Usage collects model token consumption for a single query.
// The handler puts it into the context; embedders and the generator record into it.
// Parts and repairs retrieval run concurrently, hence the mutex.
type Usage struct {
	mu               sync.Mutex
	embeddingTokens  int
	completionTokens int
	degraded         bool
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *Usage) {
	u := &Usage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext returns the collector or nil.
func UsageFromContext(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}

// AddEmbeddingTokens records embedding tokens. Safe on a nil receiver.
func (u *Usage) AddEmbeddingTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.embeddingTokens += n
	u.mu.Unlock()
}

// AddCompletionTokens records generated tokens. Safe on a nil receiver.
func (u *Usage) AddCompletionTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.completionTokens += n
	u.mu.Unlock()
}

// MarkDegraded records that the answer came from the fallback template.
func (u *Usage) MarkDegraded() {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.degraded = true
	u.mu.Unlock()
}

// Snapshot returns the recorded values.
func (u *Usage) Snapshot() (embeddingTokens, completionTokens int, degraded bool) {
	if u == nil {
		return 0, 0, false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.embeddingTokens, u.completionTokens, u.degraded
}
