package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	backendStarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ragkit",
			Subsystem: "backend",
			Name:      "starts_total",
			Help:      "Number of successful backend starts (readiness confirmed).",
		},
	)
	backendStops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ragkit",
			Subsystem: "backend",
			Name:      "stops_total",
			Help:      "Number of backend stops (graceful or forced).",
		},
	)
	backendFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragkit",
			Subsystem: "backend",
			Name:      "start_failures_total",
			Help:      "Number of failed backend starts by stage.",
		}, []string{"stage"},
	)
	readinessDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ragkit",
			Subsystem: "backend",
			Name:      "readiness_duration_seconds",
			Help:      "Time from spawn until the health probe succeeded.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	currentState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ragkit",
			Subsystem: "backend",
			Name:      "current_state",
			Help:      "Current supervisor state (1 = active state, 0 = inactive).",
		}, []string{"state"},
	)
	proxyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragkit",
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Number of proxied backend requests by method.",
		}, []string{"method"},
	)
	proxyErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragkit",
			Subsystem: "proxy",
			Name:      "errors_total",
			Help:      "Number of failed proxied requests by error kind.",
		}, []string{"kind"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{backendStarts, backendStops, backendFailures, readinessDuration, currentState, proxyRequests, proxyErrors}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler serving the DefaultGatherer. The
// caller wires the route; no server is started here.
func Handler() http.Handler { return promhttp.Handler() }

// Helpers below no-op until Register has been called.

func IncStart() {
	if regOK.Load() {
		backendStarts.Inc()
	}
}

func IncStop() {
	if regOK.Load() {
		backendStops.Inc()
	}
}

func IncStartFailure(stage string) {
	if regOK.Load() {
		backendFailures.WithLabelValues(stage).Inc()
	}
}

func ObserveReadiness(seconds float64) {
	if regOK.Load() {
		readinessDuration.Observe(seconds)
	}
}

func SetState(state string, active bool) {
	if regOK.Load() {
		var v float64
		if active {
			v = 1
		}
		currentState.WithLabelValues(state).Set(v)
	}
}

func IncProxyRequest(method string) {
	if regOK.Load() {
		proxyRequests.WithLabelValues(method).Inc()
	}
}

func IncProxyError(kind string) {
	if regOK.Load() {
		proxyErrors.WithLabelValues(kind).Inc()
	}
}
