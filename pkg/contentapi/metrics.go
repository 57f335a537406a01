package contentapi

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records timings and error counts per request scope. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	badPages *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg. A nil reg creates
// unregistered collectors, which is what tests want.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "request",
				Name:      "step_duration_seconds",
				Help:      "Duration of resolution steps in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"step", "status"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "request",
				Name:      "errors_total",
				Help:      "Error responses by request scope and status code",
			},
			[]string{"scope", "code"},
		),
		badPages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "request",
				Name:      "bad_page_total",
				Help:      "Requests for a page outside the result set",
			},
			[]string{"scope"},
		),
	}
}

// Time runs fn and records its duration under step.
func (m *Metrics) Time(step string, fn func() error) error {
	if m == nil {
		return fn()
	}
	start := time.Now()
	err := fn()
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.duration.WithLabelValues(step, status).Observe(time.Since(start).Seconds())
	return err
}

// RecordError counts an error response for scope.
func (m *Metrics) RecordError(scope string, code int) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(scope, strconv.Itoa(code)).Inc()
}

// RecordBadPage counts a request for a page that does not exist.
func (m *Metrics) RecordBadPage(scope string) {
	if m == nil {
		return
	}
	m.badPages.WithLabelValues(scope).Inc()
}
