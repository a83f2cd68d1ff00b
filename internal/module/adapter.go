package module

import (
	"context"
	"fmt"
	"time"

	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
	"github.com/project-tktt/warn-crawler/internal/provider"
)

// Adapter is the common interface for all jurisdiction adapters
type Adapter interface {
	// Jurisdiction returns the state the adapter reports for
	Jurisdiction() domain.StateCode
	// FetchLatest never fails; provider failures count as zero results
	FetchLatest(ctx context.Context) domain.AdapterResult
}

// AttemptObserver is told about every provider call an adapter makes
type AttemptObserver interface {
	ObserveAttempt(jurisdiction domain.StateCode, attempt domain.ProviderAttempt)
}

// Policy decides when a fallback chain has gathered enough.
// MinCount <= 1 stops at the first non-empty provider; a larger value keeps
// escalating while the best result so far is below it.
type Policy struct {
	MinCount int
}

func StopOnFirstNonEmpty() Policy {
	return Policy{MinCount: 1}
}

func StopOnMinimum(n int) Policy {
	return Policy{MinCount: n}
}

func (p Policy) satisfied(best int) bool {
	return best >= max(p.MinCount, 1)
}

func (p Policy) String() string {
	if p.MinCount <= 1 {
		return "first-non-empty"
	}
	return fmt.Sprintf("minimum(%d)", p.MinCount)
}

// FallbackAdapter calls its providers in priority order and keeps the
// largest result set seen until the policy is satisfied
type FallbackAdapter struct {
	jurisdiction domain.StateCode
	providers    []provider.Provider
	policy       Policy
	observer     AttemptObserver
	log          *logger.Logger
}

// NewFallbackAdapter creates an adapter over providers, highest priority first
func NewFallbackAdapter(jurisdiction domain.StateCode, policy Policy, providers []provider.Provider, log *logger.Logger) *FallbackAdapter {
	if log == nil {
		log = logger.NewNop()
	}
	return &FallbackAdapter{
		jurisdiction: jurisdiction,
		providers:    providers,
		policy:       policy,
		log:          log.With("jurisdiction", jurisdiction),
	}
}

// WithObserver attaches an observer (usually the metrics registry)
func (a *FallbackAdapter) WithObserver(o AttemptObserver) *FallbackAdapter {
	a.observer = o
	return a
}

func (a *FallbackAdapter) Jurisdiction() domain.StateCode {
	return a.jurisdiction
}

func (a *FallbackAdapter) Policy() Policy {
	return a.policy
}

// Providers returns provider names in call order
func (a *FallbackAdapter) Providers() []string {
	names := make([]string, len(a.providers))
	for i, p := range a.providers {
		names[i] = p.Name()
	}
	return names
}

func (a *FallbackAdapter) FetchLatest(ctx context.Context) domain.AdapterResult {
	result := domain.AdapterResult{
		Jurisdiction: a.jurisdiction,
		FetchedAt:    time.Now().UTC(),
	}

	best := 0
	for _, p := range a.providers {
		if ctx.Err() != nil {
			a.log.Warn("fallback chain cut short", "error", ctx.Err(), "best", best)
			break
		}

		notices, attempt := a.try(ctx, p)
		result.Attempts = append(result.Attempts, attempt)
		if a.observer != nil {
			a.observer.ObserveAttempt(a.jurisdiction, attempt)
		}

		if len(notices) > best {
			best = len(notices)
			result.Notices = notices
			result.Provider = attempt.Provider
		}
		if a.policy.satisfied(best) {
			break
		}
		a.log.Debug("escalating", "provider", attempt.Provider, "count", attempt.Count, "best", best, "policy", a.policy.String())
	}

	if best == 0 {
		a.log.Warn("all providers exhausted", "attempts", len(result.Attempts))
	}
	return result
}

// try runs one provider, turning errors and panics into an empty attempt
func (a *FallbackAdapter) try(ctx context.Context, p provider.Provider) (notices []domain.NormalizedNotice, attempt domain.ProviderAttempt) {
	attempt.Provider = p.Name()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			notices = nil
			attempt.Count = 0
			attempt.Error = fmt.Sprintf("panic: %v", r)
			a.log.Error("provider panicked", "provider", attempt.Provider, "panic", r)
		}
		attempt.Duration = time.Since(start)
	}()

	notices, err := p.Fetch(ctx)
	if err != nil {
		attempt.Error = err.Error()
		a.log.Warn("provider failed", "provider", attempt.Provider, "error", err)
		return nil, attempt
	}
	attempt.Count = len(notices)
	return notices, attempt
}
