package module

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name  string
	count int
	err   error
	panic bool
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(context.Context) ([]domain.NormalizedNotice, error) {
	f.calls++
	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.NormalizedNotice, f.count)
	for i := range out {
		out[i] = domain.NormalizedNotice{ID: fmt.Sprintf("%s-%d", f.name, i), EmployerName: "Employer"}
	}
	return out, nil
}

type recorder struct {
	mu       sync.Mutex
	attempts []domain.ProviderAttempt
}

func (r *recorder) ObserveAttempt(_ domain.StateCode, a domain.ProviderAttempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
}

func TestFallback_EscalatesBelowMinimum(t *testing.T) {
	first := &fakeProvider{name: "official", count: 2}
	second := &fakeProvider{name: "aggregator", count: 4}

	a := NewFallbackAdapter(domain.StateCA, StopOnMinimum(5), []provider.Provider{first, second}, nil)
	res := a.FetchLatest(context.Background())

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Len(t, res.Notices, 4)
	assert.Equal(t, "aggregator", res.Provider)
	assert.Len(t, res.Attempts, 2)
}

func TestFallback_StopsAtMinimum(t *testing.T) {
	first := &fakeProvider{name: "official", count: 6}
	second := &fakeProvider{name: "aggregator", count: 10}

	a := NewFallbackAdapter(domain.StateCA, StopOnMinimum(5), []provider.Provider{first, second}, nil)
	res := a.FetchLatest(context.Background())

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
	assert.Len(t, res.Notices, 6)
	assert.Equal(t, "official", res.Provider)
}

func TestFallback_KeepsBestNotLast(t *testing.T) {
	first := &fakeProvider{name: "official", count: 3}
	second := &fakeProvider{name: "aggregator", count: 1}
	third := &fakeProvider{name: "news", count: 0}

	a := NewFallbackAdapter(domain.StateNY, StopOnMinimum(10), []provider.Provider{first, second, third}, nil)
	res := a.FetchLatest(context.Background())

	assert.Equal(t, 1, third.calls)
	assert.Len(t, res.Notices, 3)
	assert.Equal(t, "official", res.Provider)
}

func TestFallback_FirstNonEmpty(t *testing.T) {
	first := &fakeProvider{name: "official", count: 0}
	second := &fakeProvider{name: "aggregator", count: 1}
	third := &fakeProvider{name: "news", count: 5}

	a := NewFallbackAdapter(domain.StateVT, StopOnFirstNonEmpty(), []provider.Provider{first, second, third}, nil)
	res := a.FetchLatest(context.Background())

	assert.Len(t, res.Notices, 1)
	assert.Equal(t, 0, third.calls)
}

func TestFallback_ErrorsAndPanicsCountAsZero(t *testing.T) {
	failing := &fakeProvider{name: "official", err: errors.New("status 503")}
	panicking := &fakeProvider{name: "aggregator", panic: true}
	last := &fakeProvider{name: "news", count: 2}
	rec := &recorder{}

	a := NewFallbackAdapter(domain.StateTX, StopOnMinimum(5), []provider.Provider{failing, panicking, last}, nil).WithObserver(rec)
	res := a.FetchLatest(context.Background())

	require.Len(t, res.Attempts, 3)
	assert.Equal(t, "status 503", res.Attempts[0].Error)
	assert.Contains(t, res.Attempts[1].Error, "panic: boom")
	assert.Equal(t, 0, res.Attempts[1].Count)
	assert.Equal(t, 2, res.Attempts[2].Count)
	assert.Len(t, res.Notices, 2)
	assert.Equal(t, domain.StateTX, res.Jurisdiction)
	assert.False(t, res.FetchedAt.IsZero())
	assert.Len(t, rec.attempts, 3)
}

func TestFallback_Exhausted(t *testing.T) {
	a := NewFallbackAdapter(domain.StateWY, StopOnFirstNonEmpty(), []provider.Provider{
		&fakeProvider{name: "official", err: errors.New("timeout")},
		&fakeProvider{name: "news"},
	}, nil)

	res := a.FetchLatest(context.Background())

	assert.Empty(t, res.Notices)
	assert.Empty(t, res.Provider)
	assert.Len(t, res.Attempts, 2)
}

func TestFallback_CancelledContext(t *testing.T) {
	first := &fakeProvider{name: "official", count: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewFallbackAdapter(domain.StateOH, StopOnFirstNonEmpty(), []provider.Provider{first}, nil).FetchLatest(ctx)

	assert.Equal(t, 0, first.calls)
	assert.Empty(t, res.Attempts)
}

func TestPolicy(t *testing.T) {
	assert.Equal(t, "first-non-empty", StopOnFirstNonEmpty().String())
	assert.Equal(t, "first-non-empty", Policy{}.String())
	assert.Equal(t, "minimum(10)", StopOnMinimum(10).String())
	assert.False(t, Policy{}.satisfied(0))
	assert.True(t, Policy{}.satisfied(1))
	assert.False(t, StopOnMinimum(5).satisfied(4))
}
