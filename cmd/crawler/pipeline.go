package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/dedup"
	"github.com/project-tktt/warn-crawler/internal/common/indexer"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/metrics"
	"github.com/project-tktt/warn-crawler/internal/module"
	"github.com/project-tktt/warn-crawler/internal/module/orchestrator"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
)

// changeTracker is satisfied by *dedup.Tracker
type changeTracker interface {
	FilterChanged(ctx context.Context, notices []domain.NormalizedNotice) ([]domain.NormalizedNotice, map[dedup.CheckResult]int, error)
	MarkAllSeen(ctx context.Context, notices []domain.NormalizedNotice) error
}

// batchPublisher is satisfied by *queue.Publisher
type batchPublisher interface {
	PublishBatch(ctx context.Context, notices []domain.NormalizedNotice) error
}

// pipeline runs one ingestion cycle: fetch, merge, then hand off to sinks.
// Any of the sinks may be nil.
type pipeline struct {
	orch     *orchestrator.Orchestrator
	adapters []module.Adapter

	tracker   changeTracker
	publisher batchPublisher
	indexer   indexer.Indexer
	writers   []indexer.BatchWriter

	metrics *metrics.Registry
	log     *logger.Logger
}

func (p *pipeline) runOnce(ctx context.Context) (*domain.Batch, error) {
	start := time.Now()
	rc := p.orch.Run(ctx, p.adapters)
	batch := rc.Batch()
	log := p.log.With("batch_id", batch.BatchID)

	if p.metrics != nil {
		p.metrics.ObserveBatch(batch, time.Since(start))
	}
	log.Info("batch ready", "notices", len(batch.Notices), "adapters", len(batch.Manifest), "failed", len(rc.Failed()))

	var errs []error
	for _, w := range p.writers {
		if err := w.WriteBatch(ctx, batch); err != nil {
			errs = append(errs, fmt.Errorf("write batch: %w", err))
			p.sinkError("export")
		}
	}

	if p.indexer != nil {
		if err := p.indexer.BulkIndex(ctx, indexer.Pointers(batch.Notices)); err != nil {
			errs = append(errs, fmt.Errorf("index batch: %w", err))
			p.sinkError("index")
		} else if p.metrics != nil {
			p.metrics.Indexed.Add(float64(len(batch.Notices)))
		}
	}

	if p.publisher != nil {
		if err := p.publish(ctx, log, batch.Notices); err != nil {
			errs = append(errs, err)
			p.sinkError("queue")
		}
	}

	return batch, errors.Join(errs...)
}

// publish sends only new or changed notices, then marks them seen
func (p *pipeline) publish(ctx context.Context, log *logger.Logger, notices []domain.NormalizedNotice) error {
	changed := notices
	if p.tracker != nil {
		var (
			counts map[dedup.CheckResult]int
			err    error
		)
		changed, counts, err = p.tracker.FilterChanged(ctx, notices)
		if err != nil {
			return fmt.Errorf("filter changed: %w", err)
		}
		log.Info("change check",
			"new", counts[dedup.ResultNew],
			"updated", counts[dedup.ResultUpdated],
			"unchanged", counts[dedup.ResultUnchanged])
	}

	if len(changed) == 0 {
		return nil
	}
	if err := p.publisher.PublishBatch(ctx, changed); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if p.metrics != nil {
		p.metrics.Published.Add(float64(len(changed)))
	}

	if p.tracker != nil {
		if err := p.tracker.MarkAllSeen(ctx, changed); err != nil {
			return fmt.Errorf("mark seen: %w", err)
		}
	}
	log.Info("published notices", "count", len(changed))
	return nil
}

func (p *pipeline) sinkError(sink string) {
	if p.metrics != nil {
		p.metrics.SinkErrors.WithLabelValues(sink).Inc()
	}
}

// schedule runs a cycle immediately, then on every tick until ctx is done
func (p *pipeline) schedule(ctx context.Context, interval time.Duration) {
	p.cycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

func (p *pipeline) cycle(ctx context.Context) {
	if _, err := p.runOnce(ctx); err != nil {
		p.log.Error("cycle finished with sink errors", "error", err)
	}
}
