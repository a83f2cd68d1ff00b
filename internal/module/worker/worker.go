package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/dedup"
	"github.com/project-tktt/warn-crawler/internal/common/indexer"
	"github.com/project-tktt/warn-crawler/internal/common/normalizer"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/metrics"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
)

// Source yields queued notices; *queue.Consumer satisfies it
type Source interface {
	ConsumeBatch(ctx context.Context, maxBatch int) ([]*domain.NormalizedNotice, error)
}

// Worker drains notices from the queue and indexes them into storage
type Worker struct {
	source  Source
	indexer indexer.Indexer
	metrics *metrics.Registry
	log     *logger.Logger

	batchSize   int
	concurrency int
}

// Config holds worker configuration
type Config struct {
	Concurrency int
	BatchSize   int
}

// NewWorker creates a new worker
func NewWorker(source Source, idx indexer.Indexer, cfg Config, log *logger.Logger) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Worker{
		source:      source,
		indexer:     idx,
		log:         log,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
	}
}

// WithMetrics counts indexed notices and sink errors
func (w *Worker) WithMetrics(m *metrics.Registry) *Worker {
	w.metrics = m
	return w
}

// Run starts the consumer loops and blocks until ctx is cancelled.
// A failed batch is logged and counted; it never stops the pool.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("starting worker pool", "workers", w.concurrency, "batch_size", w.batchSize)

	var wg sync.WaitGroup
	for id := range w.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx, w.log.With("worker", id))
		}()
	}
	wg.Wait()

	w.log.Info("worker pool stopped")
	return ctx.Err()
}

// backlogger is implemented by sources that can report how much is still queued
type backlogger interface {
	QueueLength(ctx context.Context) (int64, error)
}

// flushTimeout bounds indexing of a batch popped just before shutdown
const flushTimeout = 10 * time.Second

func (w *Worker) loop(ctx context.Context, log *logger.Logger) {
	for ctx.Err() == nil {
		// a partial batch may come back with an error; it is already off the
		// queue and must still be indexed
		queued, err := w.source.ConsumeBatch(ctx, w.batchSize)
		if err != nil && ctx.Err() == nil {
			log.Warn("consume error", "error", err, "partial", len(queued))
		}
		if len(queued) == 0 {
			continue
		}
		w.reportBacklog(ctx, log)

		if ctx.Err() != nil {
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
			w.index(flushCtx, log, queued)
			cancel()
			return
		}
		w.index(ctx, log, queued)
	}
}

func (w *Worker) index(ctx context.Context, log *logger.Logger, queued []*domain.NormalizedNotice) {
	n, err := w.handle(ctx, queued)
	if err != nil {
		log.Error("index error", "error", err, "count", n)
		w.count(func(m *metrics.Registry) { m.SinkErrors.WithLabelValues("index").Inc() })
		return
	}
	if n > 0 {
		log.Info("indexed notices", "count", n)
		w.count(func(m *metrics.Registry) { m.Indexed.Add(float64(n)) })
	}
}

func (w *Worker) reportBacklog(ctx context.Context, log *logger.Logger) {
	b, ok := w.source.(backlogger)
	if !ok || w.metrics == nil || ctx.Err() != nil {
		return
	}
	depth, err := b.QueueLength(ctx)
	if err != nil {
		log.Debug("queue length", "error", err)
		return
	}
	w.metrics.QueueBacklog.Set(float64(depth))
}

// handle indexes one consumed batch and returns how many notices it sent
func (w *Worker) handle(ctx context.Context, queued []*domain.NormalizedNotice) (int, error) {
	notices := w.prepare(queued)
	if len(notices) == 0 {
		return 0, nil
	}
	if err := w.indexer.BulkIndex(ctx, notices); err != nil {
		return len(notices), fmt.Errorf("bulk index: %w", err)
	}
	return len(notices), nil
}

func (w *Worker) count(fn func(*metrics.Registry)) {
	if w.metrics != nil {
		fn(w.metrics)
	}
}

// prepare drops notices without an employer and re-derives id and impact,
// which are never trusted from the wire
func (w *Worker) prepare(queued []*domain.NormalizedNotice) []*domain.NormalizedNotice {
	out := make([]*domain.NormalizedNotice, 0, len(queued))
	for _, n := range queued {
		if n == nil || normalizer.NormalizeName(n.EmployerName) == "" {
			w.log.Debug("dropping queued notice without employer")
			continue
		}
		dedup.Finalize(n)
		out = append(out, n)
	}
	return out
}
