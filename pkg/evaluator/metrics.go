package evaluator

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sandrolain/goremap/pkg/runtime"
	"github.com/sandrolain/goremap/pkg/types"
)

// Metrics holds the Prometheus metrics of an Evaluator.
type Metrics struct {
	Evaluations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Batches     *prometheus.CounterVec
}

// Values of the "result" label.
const (
	LabelSuccess  = "success"
	LabelAborted  = "aborted"
	LabelError    = "error"
	LabelCanceled = "canceled"
)

// NewMetrics creates the evaluator metrics. They are not registered.
func NewMetrics() *Metrics {
	const (
		namespace = "remap"
		subsystem = "evaluator"
	)

	return &Metrics{
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "evaluations_total",
			Help:      "Count of program evaluations",
		}, []string{"strategy", "result"}),

		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "evaluation_duration_seconds",
			Help:      "Histogram of times spent evaluating a program against one event",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 7),
		}, []string{"strategy", "result"}),

		Batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batches_total",
			Help:      "Count of batch evaluations",
		}, []string{"result"}),
	}
}

// PrometheusCollectors returns every collector for registration.
func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Evaluations,
		m.Duration,
		m.Batches,
	}
}

func (m *Metrics) observe(s runtime.Strategy, err error, elapsed time.Duration) {
	result := resultLabel(err)
	m.Evaluations.WithLabelValues(s.String(), result).Inc()
	m.Duration.WithLabelValues(s.String(), result).Observe(elapsed.Seconds())
}

func resultLabel(err error) string {
	if err == nil {
		return LabelSuccess
	}
	var ee *types.ExpressionError
	if errors.As(err, &ee) && ee.Code == types.ErrAborted {
		return LabelAborted
	}
	return LabelError
}
