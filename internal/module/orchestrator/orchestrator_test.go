package orchestrator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/project-tktt/warn-crawler/internal/common/dedup"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/module"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	code    domain.StateCode
	notices []domain.NormalizedNotice
	panics  bool
	delay   time.Duration
	onStart func()
	onEnd   func()
}

func (f *fakeAdapter) Jurisdiction() domain.StateCode { return f.code }

func (f *fakeAdapter) FetchLatest(ctx context.Context) domain.AdapterResult {
	if f.onStart != nil {
		f.onStart()
	}
	if f.onEnd != nil {
		defer f.onEnd()
	}
	if f.panics {
		panic("parser exploded")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}
	return domain.AdapterResult{Jurisdiction: f.code, FetchedAt: time.Now().UTC(), Notices: f.notices}
}

func notice(code domain.StateCode, employer, city string) domain.NormalizedNotice {
	n := &domain.NormalizedNotice{
		Jurisdiction: code,
		EmployerName: employer,
		City:         city,
		NoticeDate:   domain.DatePtr(2025, time.March, 4),
	}
	dedup.Finalize(n)
	return *n
}

func TestRun_IsolatesPanickingAdapter(t *testing.T) {
	adapters := []module.Adapter{
		&fakeAdapter{code: domain.StateCA, notices: []domain.NormalizedNotice{notice(domain.StateCA, "Mercy Hospital", "Redding")}},
		&fakeAdapter{code: domain.StateTX, panics: true},
		&fakeAdapter{code: domain.StateNY, notices: []domain.NormalizedNotice{notice(domain.StateNY, "Bronx Care", "Bronx")}},
	}

	rc := New(Config{Concurrency: 2, AdapterTimeout: time.Second}, nil).Run(context.Background(), adapters)

	notices := rc.Notices()
	require.Len(t, notices, 2)
	assert.Equal(t, "Mercy Hospital", notices[0].EmployerName)
	assert.Equal(t, "Bronx Care", notices[1].EmployerName)

	manifest := rc.Manifest()
	require.Len(t, manifest, 3)
	failed := rc.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, domain.StateTX, failed[0].Jurisdiction)
	assert.Equal(t, domain.StatusPanic, failed[0].Status)
	assert.Contains(t, failed[0].Error, "parser exploded")
}

func TestRun_TimesOutSlowAdapter(t *testing.T) {
	adapters := []module.Adapter{
		&fakeAdapter{code: domain.StateFL, delay: time.Minute},
		&fakeAdapter{code: domain.StateGA, notices: []domain.NormalizedNotice{notice(domain.StateGA, "Atlanta Medical Center", "Atlanta")}},
	}

	start := time.Now()
	rc := New(Config{Concurrency: 2, AdapterTimeout: 50 * time.Millisecond}, nil).Run(context.Background(), adapters)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Len(t, rc.Notices(), 1)

	manifest := rc.Manifest()
	require.Len(t, manifest, 2)
	assert.Equal(t, domain.StateFL, manifest[0].Jurisdiction)
	assert.Equal(t, domain.StatusTimeout, manifest[0].Status)
	assert.Equal(t, domain.StatusOK, manifest[1].Status)
	assert.Equal(t, 1, manifest[1].Count)
}

func TestRun_BoundedConcurrency(t *testing.T) {
	var inFlight, peak int32
	var adapters []module.Adapter
	for _, code := range []domain.StateCode{domain.StateAL, domain.StateAK, domain.StateAZ, domain.StateAR, domain.StateCO, domain.StateCT, domain.StateDE, domain.StateDC} {
		adapters = append(adapters, &fakeAdapter{
			code:  code,
			delay: 20 * time.Millisecond,
			onStart: func() {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
			},
			onEnd: func() { atomic.AddInt32(&inFlight, -1) },
		})
	}

	rc := New(Config{Concurrency: 3, AdapterTimeout: time.Second}, nil).Run(context.Background(), adapters)

	assert.Len(t, rc.Manifest(), 8)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	for _, m := range rc.Manifest() {
		assert.Equal(t, domain.StatusEmpty, m.Status)
	}
}

func TestRun_EmptyAdapterList(t *testing.T) {
	rc := New(Config{}, nil).Run(context.Background(), nil)

	assert.Empty(t, rc.Manifest())
	assert.Empty(t, rc.Batch().Notices)
}

func TestBatch_MergesDuplicates(t *testing.T) {
	official := notice(domain.StateCA, "Mercy Hospital Inc.", "Redding")
	official.Provenance.ProviderName = "ca-edd"
	aggregated := notice(domain.StateCA, "MERCY HOSPITAL", "Redding")
	aggregated.Provenance.ProviderName = "aggregator-csv"
	aggregated.County = "Shasta"
	require.Equal(t, official.ID, aggregated.ID)

	adapters := []module.Adapter{
		&fakeAdapter{code: domain.StateCA, notices: []domain.NormalizedNotice{official, aggregated}},
	}
	rc := New(Config{Concurrency: 1, AdapterTimeout: time.Second}, nil).Run(context.Background(), adapters)
	batch := rc.Batch()

	_, err := uuid.Parse(batch.BatchID)
	require.NoError(t, err)
	assert.Equal(t, rc.StartedAt, batch.FetchedAt)
	require.Len(t, batch.Notices, 1)
	assert.Equal(t, "Mercy Hospital Inc.", batch.Notices[0].EmployerName)
	assert.Equal(t, "ca-edd", batch.Notices[0].Provenance.ProviderName)
	assert.Equal(t, "Shasta", batch.Notices[0].County)
	require.Len(t, batch.Manifest, 1)
}

func TestRunContexts_AreIndependent(t *testing.T) {
	a := NewRunContext()
	b := NewRunContext()

	a.record(domain.ManifestEntry{Jurisdiction: domain.StateCA, Status: domain.StatusOK}, nil)

	assert.NotEqual(t, a.BatchID, b.BatchID)
	assert.Len(t, a.Manifest(), 1)
	assert.Empty(t, b.Manifest())
}

func TestAllFailed(t *testing.T) {
	assert.False(t, allFailed(nil))
	assert.True(t, allFailed([]domain.ProviderAttempt{{Error: "x"}, {Error: "y"}}))
	assert.False(t, allFailed([]domain.ProviderAttempt{{Error: "x"}, {}}))
}
