package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/docresult-viewer/internal/core/ports"
)

const namespace = "docviewer"

// ClientMetrics observes calls made to the processing backend.
type ClientMetrics struct {
	service string

	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
}

var _ ports.TransportObserver = (*ClientMetrics)(nil)

func NewClientMetrics(service string, registerer prometheus.Registerer) *ClientMetrics {
	callsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Total calls to the processing backend by operation and outcome.",
		},
		[]string{"service", "operation", "outcome"},
	)
	callDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Processing backend call duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"service", "operation"},
	)
	if registerer != nil {
		registerer.MustRegister(callsTotal, callDuration)
	}

	return &ClientMetrics{
		service:      service,
		callsTotal:   callsTotal,
		callDuration: callDuration,
	}
}

func (m *ClientMetrics) ObserveBackendCall(operation, outcome string, duration time.Duration) {
	m.callsTotal.WithLabelValues(m.service, operation, outcome).Inc()
	m.callDuration.WithLabelValues(m.service, operation).Observe(duration.Seconds())
}
