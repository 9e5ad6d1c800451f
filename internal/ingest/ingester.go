package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/partsupport/internal/domain"
	retrievalrepo "github.com/kailas-cloud/partsupport/internal/repository/retrieval"
)

// Failure reasons reported in rows_failed_total.
const (
	ReasonEmbed = "embed_error"
	ReasonWrite = "write_error"
)

// Writer persists embedded records into one collection.
type Writer[T any] interface {
	Name() string
	Put(ctx context.Context, entries []retrievalrepo.Entry[T], runID string) error
}

// Item is one record with the id it is stored under and the text that is embedded for it.
type Item[T any] struct {
	ID     string
	Record T
	Text   string
}

// Options tune the worker pool.
type Options struct {
	Workers   int
	BatchSize int
	Metrics   *Metrics // optional
}

// Result summarizes a run.
type Result struct {
	RunID     string
	Processed int64
	Failed    int64
	Duration  time.Duration
}

// Ingester embeds and writes items with a pool of workers.
// Items -> channel(batch) -> N workers -> BatchEmbed -> Put.
type Ingester[T any] struct {
	writer    Writer[T]
	embedder  domain.BatchEmbedder
	workers   int
	batchSize int
	metrics   *Metrics
	runID     string
	logger    *zap.Logger
}

// New creates an ingester. Every record it writes is stamped with a fresh run id.
func New[T any](w Writer[T], e domain.BatchEmbedder, opts Options, log *zap.Logger) *Ingester[T] {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.NewString()
	return &Ingester[T]{
		writer:    w,
		embedder:  e,
		workers:   opts.Workers,
		batchSize: opts.BatchSize,
		metrics:   opts.Metrics,
		runID:     runID,
		logger:    log.With(zap.String("collection", w.Name()), zap.String("run_id", runID)),
	}
}

// RunID identifies this ingester's writes.
func (ing *Ingester[T]) RunID() string {
	return ing.runID
}

// Run loads items. Failed batches are counted and logged; the run continues with the rest.
// It returns the context error if the run was cancelled.
func (ing *Ingester[T]) Run(ctx context.Context, items []Item[T]) (Result, error) {
	batches := make(chan []Item[T], ing.workers*2)
	var wg sync.WaitGroup
	var processed, failed atomic.Int64

	start := time.Now()

	for i := 0; i < ing.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for batch := range batches {
				ing.processBatch(ctx, workerID, batch, &processed, &failed)
			}
		}(i)
	}

	ing.produce(ctx, items, batches)
	wg.Wait()

	res := Result{
		RunID:     ing.runID,
		Processed: processed.Load(),
		Failed:    failed.Load(),
		Duration:  time.Since(start),
	}
	ing.logger.Info("Ingestion finished",
		zap.Int64("processed", res.Processed),
		zap.Int64("failed", res.Failed),
		zap.Duration("duration", res.Duration),
	)
	return res, ctx.Err()
}

func (ing *Ingester[T]) produce(ctx context.Context, items []Item[T], out chan<- []Item[T]) {
	defer close(out)
	for offset := 0; offset < len(items); offset += ing.batchSize {
		end := min(offset+ing.batchSize, len(items))
		select {
		case <-ctx.Done():
			return
		case out <- items[offset:end]:
		}
	}
}

func (ing *Ingester[T]) processBatch(
	ctx context.Context,
	workerID int,
	batch []Item[T],
	processed, failed *atomic.Int64,
) {
	start := time.Now()
	name := ing.writer.Name()

	reason, err := ing.write(ctx, batch)

	if ing.metrics != nil {
		ing.metrics.batchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		ing.metrics.batchesTotal.WithLabelValues(name).Inc()
	}

	if err != nil {
		failed.Add(int64(len(batch)))
		if ing.metrics != nil {
			ing.metrics.rowsFailed.WithLabelValues(name, reason).Add(float64(len(batch)))
		}
		ing.logger.Warn("Batch failed",
			zap.Int("worker", workerID),
			zap.String("first_id", batch[0].ID),
			zap.Int("size", len(batch)),
			zap.Error(err),
		)
		return
	}

	total := processed.Add(int64(len(batch)))
	if ing.metrics != nil {
		ing.metrics.rowsProcessed.WithLabelValues(name).Add(float64(len(batch)))
	}
	ing.logger.Debug("Batch written",
		zap.Int("worker", workerID),
		zap.Int("size", len(batch)),
		zap.Int64("processed", total),
	)
}

// write embeds and stores one batch, returning the failure reason on error.
func (ing *Ingester[T]) write(ctx context.Context, batch []Item[T]) (string, error) {
	texts := make([]string, len(batch))
	for i, it := range batch {
		texts[i] = it.Text
	}

	res, err := ing.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return ReasonEmbed, err
	}
	if len(res.Embeddings) != len(batch) {
		return ReasonEmbed, fmt.Errorf("got %d embeddings for %d texts", len(res.Embeddings), len(batch))
	}

	entries := make([]retrievalrepo.Entry[T], len(batch))
	for i, it := range batch {
		entries[i] = retrievalrepo.Entry[T]{ID: it.ID, Record: it.Record, Vector: res.Embeddings[i]}
	}

	if err := ing.writer.Put(ctx, entries, ing.runID); err != nil {
		return ReasonWrite, err
	}
	return "", nil
}
