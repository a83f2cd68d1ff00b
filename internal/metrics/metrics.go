package metrics

import (
	"net/http"
	"time"

	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg            *prometheus.Registry
	Runs           prometheus.Counter
	RunDurationSec prometheus.Histogram
	LastRunNotices prometheus.Gauge
	LastRunUnix    prometheus.Gauge

	// per adapter / per provider
	AdapterStatus    *prometheus.CounterVec
	AdapterNotices   *prometheus.GaugeVec
	ProviderAttempts *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec

	// sinks
	Published    prometheus.Counter
	Indexed      prometheus.Counter
	SinkErrors   *prometheus.CounterVec
	QueueBacklog prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounter(prometheus.CounterOpts{Name: "warn_runs_total"})
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "warn_run_duration_seconds",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
	})
	lastNotices := prometheus.NewGauge(prometheus.GaugeOpts{Name: "warn_last_run_notices"})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{Name: "warn_last_run_timestamp_seconds"})

	adapterStatus := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "warn_adapter_runs_total"}, []string{"jurisdiction", "status"})
	adapterNotices := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "warn_adapter_notices"}, []string{"jurisdiction"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "warn_provider_attempts_total"}, []string{"provider", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warn_provider_latency_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "warn_notices_published_total"})
	indexed := prometheus.NewCounter(prometheus.CounterOpts{Name: "warn_notices_indexed_total"})
	sinkErrors := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "warn_sink_errors_total"}, []string{"sink"})
	backlog := prometheus.NewGauge(prometheus.GaugeOpts{Name: "warn_queue_backlog"})

	r.MustRegister(runs, runDuration, lastNotices, lastRun, adapterStatus, adapterNotices, attempts, latency, published, indexed, sinkErrors, backlog)
	return &Registry{
		reg:              r,
		Runs:             runs,
		RunDurationSec:   runDuration,
		LastRunNotices:   lastNotices,
		LastRunUnix:      lastRun,
		AdapterStatus:    adapterStatus,
		AdapterNotices:   adapterNotices,
		ProviderAttempts: attempts,
		ProviderLatency:  latency,
		Published:        published,
		Indexed:          indexed,
		SinkErrors:       sinkErrors,
		QueueBacklog:     backlog,
	}
}

// ObserveAttempt records one provider call of a fallback chain.
// outcome is "error", "empty" or "ok".
func (r *Registry) ObserveAttempt(_ domain.StateCode, a domain.ProviderAttempt) {
	outcome := "ok"
	switch {
	case a.Error != "":
		outcome = "error"
	case a.Count == 0:
		outcome = "empty"
	}
	r.ProviderAttempts.WithLabelValues(a.Provider, outcome).Inc()
	r.ProviderLatency.WithLabelValues(a.Provider).Observe(a.Duration.Seconds())
}

// ObserveBatch records the outcome of a finished orchestrator run
func (r *Registry) ObserveBatch(b *domain.Batch, took time.Duration) {
	r.Runs.Inc()
	r.RunDurationSec.Observe(took.Seconds())
	r.LastRunNotices.Set(float64(len(b.Notices)))
	r.LastRunUnix.Set(float64(b.FetchedAt.Unix()))
	for _, m := range b.Manifest {
		j := string(m.Jurisdiction)
		r.AdapterStatus.WithLabelValues(j, string(m.Status)).Inc()
		r.AdapterNotices.WithLabelValues(j).Set(float64(m.Count))
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
