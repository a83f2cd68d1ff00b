package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/module"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
)

// Config holds orchestrator configuration
type Config struct {
	Concurrency    int
	AdapterTimeout time.Duration
}

// Orchestrator runs adapters on a bounded worker pool
type Orchestrator struct {
	config Config
	log    *logger.Logger
}

// New creates an orchestrator; defaults are 4 workers and a 45s adapter timeout
func New(cfg Config, log *logger.Logger) *Orchestrator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = 45 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Orchestrator{config: cfg, log: log}
}

// Run executes every adapter once and returns the populated run context.
// A failing adapter only shows up in the manifest; Run itself never fails.
func (o *Orchestrator) Run(ctx context.Context, adapters []module.Adapter) *RunContext {
	rc := NewRunContext()
	log := o.log.With("batch_id", rc.BatchID)
	log.Info("starting run", "adapters", len(adapters), "workers", o.config.Concurrency)

	queue := make(chan module.Adapter, len(adapters))
	for _, a := range adapters {
		queue <- a
	}
	close(queue)

	var wg sync.WaitGroup
	for i := 0; i < min(o.config.Concurrency, max(len(adapters), 1)); i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for a := range queue {
				entry := o.runOne(ctx, rc, a)
				log.Debug("adapter finished",
					"worker", workerID,
					"jurisdiction", entry.Jurisdiction,
					"status", entry.Status,
					"count", entry.Count,
					"duration", entry.Duration)
			}
		}(i)
	}
	wg.Wait()

	failed := rc.Failed()
	for _, f := range failed {
		log.Warn("adapter failed", "jurisdiction", f.Jurisdiction, "status", f.Status, "error", f.Error)
	}
	log.Info("run complete", "results", len(rc.Results()), "failed", len(failed), "took", time.Since(rc.StartedAt))
	return rc
}

type outcome struct {
	result   domain.AdapterResult
	panicked any
}

// runOne races one adapter against the timeout. The adapter runs in its own
// goroutine so a panic or a stuck call cannot take the worker down; on
// timeout its eventual result is discarded.
func (o *Orchestrator) runOne(ctx context.Context, rc *RunContext, a module.Adapter) domain.ManifestEntry {
	start := time.Now()
	actx, cancel := context.WithTimeout(ctx, o.config.AdapterTimeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{panicked: r}
			}
		}()
		done <- outcome{result: a.FetchLatest(actx)}
	}()

	entry := domain.ManifestEntry{Jurisdiction: a.Jurisdiction()}
	var res *domain.AdapterResult

	select {
	case out := <-done:
		if out.panicked != nil {
			entry.Status = domain.StatusPanic
			entry.Error = fmt.Sprintf("panic: %v", out.panicked)
			break
		}
		res = &out.result
		entry.Count = len(res.Notices)
		entry.Attempts = res.Attempts
		entry.Status = domain.StatusOK
		if entry.Count == 0 {
			entry.Status = domain.StatusEmpty
			if allFailed(res.Attempts) {
				entry.Error = "all providers failed"
			}
		}
	case <-actx.Done():
		entry.Status = domain.StatusTimeout
		entry.Error = fmt.Sprintf("adapter exceeded %s: %v", o.config.AdapterTimeout, actx.Err())
	}

	entry.Duration = time.Since(start)
	rc.record(entry, res)
	return entry
}

func allFailed(attempts []domain.ProviderAttempt) bool {
	if len(attempts) == 0 {
		return false
	}
	for _, a := range attempts {
		if a.Error == "" {
			return false
		}
	}
	return true
}
