package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "taguchi/internal/errors"
)

const namespace = "taguchi"

// Recorder counts engine operations and their latency on its own registry
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	arrayRuns  prometheus.Histogram
}

// NewRecorder creates a recorder with Go runtime collectors registered
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Engine operations by outcome code",
			},
			[]string{"operation", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Engine operation latency",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"operation"},
		),
		arrayRuns: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "array_runs",
			Help:      "Run count of arrays submitted for analysis",
			Buckets:   []float64{4, 8, 16, 32, 64, 128, 256, 1024},
		}),
	}

	r.registry.MustRegister(
		r.operations,
		r.duration,
		r.arrayRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records one finished operation. Failures are labelled with their
// application error code, successes with "OK".
func (r *Recorder) Observe(operation string, start time.Time, err error) {
	if r == nil {
		return
	}
	code := "OK"
	if err != nil {
		code = apperrors.FromDomain(err).Code
	}
	r.operations.WithLabelValues(operation, code).Inc()
	r.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveArray records the size of an analysed array
func (r *Recorder) ObserveArray(runs int) {
	if r == nil {
		return
	}
	r.arrayRuns.Observe(float64(runs))
}

// Handler serves the recorder's registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
