package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an external model service (embedding or LLM).
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// IndexChecker reports whether a collection index exists.
type IndexChecker interface {
	Name() string
	IndexExists(ctx context.Context) (bool, error)
}
