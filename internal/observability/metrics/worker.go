package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	watchTotal     *prometheus.CounterVec
	watchDuration  *prometheus.HistogramVec
	watchInFlight  prometheus.Gauge
	publishFailure *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	watchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "result_watch_total",
			Help:      "Total watched results by final classification.",
		},
		[]string{"service", "classification"},
	)
	watchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "result_watch_duration_seconds",
			Help:      "Time from pickup until a result left the pending state.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "classification"},
	)
	watchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "result_watch_in_flight",
			Help:      "Number of results currently being watched.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	publishFailure := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "publish_failures_total",
			Help:      "Classified events that could not be published.",
		},
		[]string{"service"},
	)

	registry.MustRegister(watchTotal, watchDuration, watchInFlight, publishFailure)

	return &WorkerMetrics{
		registry:       registry,
		watchTotal:     watchTotal,
		watchDuration:  watchDuration,
		watchInFlight:  watchInFlight,
		publishFailure: publishFailure,
	}
}

func (m *WorkerMetrics) Registerer() prometheus.Registerer {
	return m.registry
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartWatch() {
	m.watchInFlight.Inc()
}

// FinishWatch records the final classification label, or "gave_up" when
// the watch ended with an error.
func (m *WorkerMetrics) FinishWatch(service string, duration time.Duration, classification string, err error) {
	m.watchInFlight.Dec()

	if err != nil {
		classification = "gave_up"
	}
	if classification == "" {
		classification = "unknown"
	}

	m.watchTotal.WithLabelValues(service, classification).Inc()
	m.watchDuration.WithLabelValues(service, classification).Observe(duration.Seconds())
}

func (m *WorkerMetrics) RecordPublishFailure(service string) {
	m.publishFailure.WithLabelValues(service).Inc()
}
