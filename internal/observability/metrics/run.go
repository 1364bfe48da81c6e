package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunMetrics instruments organization runs. All methods are nil-safe so the
// pipeline can run without a metrics listener.
type RunMetrics struct {
	registry *prometheus.Registry

	documentsTotal *prometheus.CounterVec
	oracleTotal    *prometheus.CounterVec
	copyDuration   prometheus.Histogram
}

func NewRunMetrics(service string) *RunMetrics {
	registry := prometheus.NewRegistry()

	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "organizer",
			Name:      "documents_total",
			Help:      "Documents processed by terminal outcome.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"outcome"},
	)
	oracleTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "organizer",
			Name:      "oracle_requests_total",
			Help:      "Classification oracle batch calls by status.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"status"},
	)
	copyDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "organizer",
			Name:      "copy_duration_seconds",
			Help:      "File copy duration in seconds.",
			Buckets:   prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(documentsTotal, oracleTotal, copyDuration)

	return &RunMetrics{
		registry:       registry,
		documentsTotal: documentsTotal,
		oracleTotal:    oracleTotal,
		copyDuration:   copyDuration,
	}
}

func (m *RunMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *RunMetrics) ObserveOutcome(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.documentsTotal.WithLabelValues(outcome).Add(float64(n))
}

func (m *RunMetrics) ObserveOracleCall(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.oracleTotal.WithLabelValues(status).Inc()
}

func (m *RunMetrics) ObserveCopy(duration time.Duration) {
	if m == nil {
		return
	}
	m.copyDuration.Observe(duration.Seconds())
}
