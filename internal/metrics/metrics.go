package metrics

import (
	"time"

	"github.com/Domenick1991/skybooking/internal/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_requests_total",
		Help: "Outbound collaborator calls by service and outcome.",
	}, []string{"service", "outcome"})

	RPCLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rpc_request_duration_seconds",
		Help:    "Latency of outbound collaborator calls, retries included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})

	RPCReauthentications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_reauthentications_total",
		Help: "Re-authentications triggered by a 401 from a collaborator.",
	}, []string{"service"})

	BookingSagas = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_saga_total",
		Help: "Booking creation sagas by outcome.",
	}, []string{"outcome"})

	BookingSagaLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "booking_saga_duration_seconds",
		Help:    "Latency of booking creation sagas.",
		Buckets: prometheus.DefBuckets,
	})
)

// PrometheusMetrics feeds the collectors above.
type PrometheusMetrics struct{}

func (PrometheusMetrics) ObserveCall(service string, kind rpc.Kind, elapsed time.Duration) {
	RPCRequests.WithLabelValues(service, kind.String()).Inc()
	RPCLatency.WithLabelValues(service).Observe(elapsed.Seconds())
}

func (PrometheusMetrics) ObserveReauthentication(service string) {
	RPCReauthentications.WithLabelValues(service).Inc()
}

// ObserveSaga records one saga; outcome is "ok" or a booking error code.
func (PrometheusMetrics) ObserveSaga(outcome string, elapsed time.Duration) {
	BookingSagas.WithLabelValues(outcome).Inc()
	BookingSagaLatency.Observe(elapsed.Seconds())
}

var _ rpc.Observer = PrometheusMetrics{}
