package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/partsupport/internal/domain"
	"github.com/kailas-cloud/partsupport/internal/domain/filter"
	"github.com/kailas-cloud/partsupport/internal/domain/part"
	"github.com/kailas-cloud/partsupport/internal/metrics"
)

// --- Mocks ---

type searchCall struct {
	vector  []float32
	filters filter.Expression
	topK    int
}

type mockRepo struct {
	name    string
	results [][]string // per call
	err     error
	calls   []searchCall
}

func (m *mockRepo) Name() string { return m.name }

func (m *mockRepo) Search(_ context.Context, vector []float32, filters filter.Expression, topK int) ([]string, error) {
	m.calls = append(m.calls, searchCall{vector: vector, filters: filters, topK: topK})
	if m.err != nil {
		return nil, m.err
	}
	i := len(m.calls) - 1
	if i < len(m.results) {
		return m.results[i], nil
	}
	return nil, nil
}

func testVector() []float32 { return []float32{0.5, 0.25} }

// --- PartsFilter ---

func TestPartsFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
		must  int
		sh    int
	}{
		{
			name:  "distributor number",
			query: "How to install part PS11752778?",
			want:  "part_select_number=PS11752778",
			must:  1,
		},
		{
			name:  "manufacturer number",
			query: "Is W10321304 in stock?",
			want:  "manufacturer_part_number=W10321304",
			must:  1,
		},
		{
			name:  "both",
			query: "Does WPW10321304 replace PS11752778?",
			want:  "part_select_number=PS11752778 OR manufacturer_part_number=WPW10321304",
			sh:    2,
		},
		{
			name:  "none",
			query: "My Whirlpool dishwasher is leaking. What should I do?",
			want:  "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PartsFilter(tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("filter = %q, want %q", got.String(), tt.want)
			}
			if len(got.Must()) != tt.must || len(got.Should()) != tt.sh {
				t.Errorf("must=%d should=%d", len(got.Must()), len(got.Should()))
			}
		})
	}
}

func TestPartsFilter_ExactToken(t *testing.T) {
	got, err := PartsFilter("How to install part PS11752778?")
	if err != nil {
		t.Fatal(err)
	}
	c := got.Must()[0]
	if c.Key() != part.FieldPartSelectNumber || c.Value() != "PS11752778" {
		t.Errorf("unexpected condition %s", c)
	}
}

// --- Service.Search ---

func TestSearch_FilteredHit(t *testing.T) {
	repo := &mockRepo{name: "parts-hit", results: [][]string{{"a", "b"}}}
	svc := New[string](repo, 5, PartsFilter, nil)

	got, err := svc.Search(context.Background(), "part PS123", testVector())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "a" {
		t.Errorf("unexpected results %v", got)
	}
	if len(repo.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(repo.calls))
	}
	if repo.calls[0].filters.IsEmpty() || repo.calls[0].topK != 5 {
		t.Errorf("unexpected call %+v", repo.calls[0])
	}
}

func TestSearch_WidensWithSameVector(t *testing.T) {
	repo := &mockRepo{name: "parts-widen", results: [][]string{nil, {"x"}}}
	svc := New[string](repo, 5, PartsFilter, nil)
	vec := testVector()

	got, err := svc.Search(context.Background(), "part PS123", vec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "x" {
		t.Errorf("unexpected results %v", got)
	}
	if len(repo.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(repo.calls))
	}
	second := repo.calls[1]
	if !second.filters.IsEmpty() {
		t.Errorf("second call must be unfiltered, got %s", second.filters)
	}
	if &second.vector[0] != &vec[0] || second.topK != 5 {
		t.Error("second call must reuse the same vector and topK")
	}
	if n := testutil.ToFloat64(metrics.RetrievalWidenedTotal.WithLabelValues("parts-widen")); n != 1 {
		t.Errorf("expected widened counter 1, got %v", n)
	}
}

func TestSearch_NoReferenceGoesUnfiltered(t *testing.T) {
	repo := &mockRepo{name: "parts", results: [][]string{{"y"}}}
	svc := New[string](repo, 5, PartsFilter, nil)

	if _, err := svc.Search(context.Background(), "dishwasher is leaking", testVector()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.calls) != 1 || !repo.calls[0].filters.IsEmpty() {
		t.Errorf("expected one unfiltered call, got %+v", repo.calls)
	}
}

func TestSearch_NilFilterFunc(t *testing.T) {
	repo := &mockRepo{name: "repairs", results: [][]string{{"r"}}}
	svc := New[string](repo, 3, nil, nil)

	if _, err := svc.Search(context.Background(), "PS11752778", testVector()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.calls) != 1 || !repo.calls[0].filters.IsEmpty() || repo.calls[0].topK != 3 {
		t.Errorf("unexpected calls %+v", repo.calls)
	}
}

func TestSearch_StoreErrorIsUpstream(t *testing.T) {
	cause := errors.New("connection refused")
	repo := &mockRepo{name: "parts", err: cause}
	svc := New[string](repo, 5, PartsFilter, nil)

	_, err := svc.Search(context.Background(), "part PS1", testVector())
	if !errors.Is(err, domain.ErrUpstreamUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("expected upstream error wrapping cause, got %v", err)
	}
	var up *domain.UpstreamError
	if !errors.As(err, &up) || up.Service != domain.ServiceVectorStore {
		t.Errorf("unexpected service: %+v", up)
	}
	if len(repo.calls) != 1 {
		t.Errorf("no retry expected, got %d calls", len(repo.calls))
	}
}

func TestSearch_FilterFuncError(t *testing.T) {
	repo := &mockRepo{name: "parts"}
	boom := errors.New("bad filter")
	svc := New[string](repo, 5, func(string) (filter.Expression, error) {
		return filter.Expression{}, boom
	}, nil)

	if _, err := svc.Search(context.Background(), "q", testVector()); !errors.Is(err, boom) {
		t.Fatalf("expected filter error, got %v", err)
	}
	if len(repo.calls) != 0 {
		t.Error("store must not be called")
	}
}
