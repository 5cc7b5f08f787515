package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Report outcomes used as the status label of ReportsTotal.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the Prometheus collectors for the fetch/compute pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FetchDuration   *prometheus.HistogramVec // labels: provider
	FetchErrors     *prometheus.CounterVec   // labels: provider
	BarsFetched     *prometheus.CounterVec   // labels: provider
	ComputeDuration prometheus.Histogram
	ReportsTotal    *prometheus.CounterVec // labels: status

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockscope_fetch_duration_seconds",
			Help:    "Latency of daily bar fetches per provider",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockscope_fetch_errors_total",
			Help: "Failed daily bar fetches per provider",
		}, []string{"provider"}),
		BarsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockscope_bars_fetched_total",
			Help: "Daily bars received per provider",
		}, []string{"provider"}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockscope_compute_duration_seconds",
			Help:    "Time spent computing all indicators for one symbol",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		ReportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockscope_reports_total",
			Help: "Symbol reports produced, by outcome",
		}, []string{"status"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.FetchDuration,
		m.FetchErrors,
		m.BarsFetched,
		m.ComputeDuration,
		m.ReportsTotal,
	)
	return m
}

// ObserveFetch records one provider call.
func (m *Metrics) ObserveFetch(provider string, d time.Duration, bars int, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(provider).Observe(d.Seconds())
	if err != nil {
		m.FetchErrors.WithLabelValues(provider).Inc()
		return
	}
	m.BarsFetched.WithLabelValues(provider).Add(float64(bars))
}

// ObserveCompute records one ComputeAll run.
func (m *Metrics) ObserveCompute(d time.Duration) {
	if m == nil {
		return
	}
	m.ComputeDuration.Observe(d.Seconds())
}

// ReportDone counts a finished symbol with the given status.
func (m *Metrics) ReportDone(status string) {
	if m == nil {
		return
	}
	m.ReportsTotal.WithLabelValues(status).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
