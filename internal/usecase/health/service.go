package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "healthy"
	// Degraded indicates only the LLM is failing; answers fall back to the template.
	Degraded Status = "degraded"
	// Unhealthy indicates a component that queries cannot do without is failing.
	Unhealthy Status = "unhealthy"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	indexes   []IndexChecker
	embedding Checker
	llm       Checker
}

// New creates a Service. embedding and llm can be nil.
func New(db DBPinger, embedding, llm Checker, indexes ...IndexChecker) *Service {
	return &Service{db: db, indexes: indexes, embedding: embedding, llm: llm}
}

// Check runs health checks against all components. Store, index and embedding failures
// make the service unhealthy; an LLM failure only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	critical := true

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		critical = false
	} else {
		checks["database"] = CheckOK
	}

	for _, idx := range s.indexes {
		key := "index:" + idx.Name()
		if ok, err := idx.IndexExists(ctx); err != nil || !ok {
			checks[key] = CheckError
			critical = false
		} else {
			checks[key] = CheckOK
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
			critical = false
		} else {
			checks["embedding"] = CheckOK
		}
	}

	llmOK := true
	if s.llm != nil {
		if err := s.llm.HealthCheck(ctx); err != nil {
			checks["llm"] = CheckError
			llmOK = false
		} else {
			checks["llm"] = CheckOK
		}
	}

	status := Healthy
	switch {
	case !critical:
		status = Unhealthy
	case !llmOK:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
