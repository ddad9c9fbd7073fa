// Package metrics exposes prometheus instruments for the offline layer.
//
// Every method is safe on a nil *Metrics so components can be built
// without instrumentation in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MKhiriev/go-fit-offline/models"
)

const namespace = "fit_offline"

// Cache results recorded per strategy.
const (
	ResultHit      = "hit"
	ResultNetwork  = "network"
	ResultFallback = "fallback"
	ResultOffline  = "offline_page"
	ResultMiss     = "miss"
	ResultBypass   = "bypass"
	ResultError    = "error"
)

// Replay outcomes.
const (
	ReplaySuccess = "success"
	ReplayRetry   = "retry"
	ReplayDropped = "dropped"
)

// Push events.
const (
	PushReceived      = "received"
	PushShown         = "shown"
	PushUndecryptable = "undecryptable"
	PushClicked       = "clicked"
	PushSubscribed    = "subscribed"
	PushUnsubscribed  = "unsubscribed"
)

type Metrics struct {
	registry *prometheus.Registry

	proxyRequests *prometheus.CounterVec
	queueLength   prometheus.Gauge
	enqueued      prometheus.Counter
	evicted       prometheus.Counter
	replays       *prometheus.CounterVec
	syncPasses    prometheus.Counter
	pushEvents    *prometheus.CounterVec
	buildInfo     *prometheus.GaugeVec
}

// New registers every instrument on a fresh registry together with the
// process and Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		proxyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Requests handled by the caching proxy by strategy and result.",
		}, []string{"strategy", "result"}),
		queueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "length",
			Help:      "Mutations currently waiting for replay.",
		}),
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "enqueued_total",
			Help:      "Mutations accepted into the queue.",
		}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "evicted_total",
			Help:      "Oldest mutations dropped because the queue was full.",
		}),
		replays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "replays_total",
			Help:      "Replayed mutations by outcome.",
		}, []string{"outcome"}),
		syncPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "passes_total",
			Help:      "Completed reconciliation passes.",
		}),
		pushEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "events_total",
			Help:      "Push and notification events by kind.",
		}, []string{"event"}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Always 1; labels carry the running build.",
		}, []string{"version", "date", "commit"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.proxyRequests,
		m.queueLength,
		m.enqueued,
		m.evicted,
		m.replays,
		m.syncPasses,
		m.pushEvents,
		m.buildInfo,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ProxyRequest(strategy, result string) {
	if m == nil {
		return
	}
	m.proxyRequests.WithLabelValues(strategy, result).Inc()
}

func (m *Metrics) QueueLength(n int) {
	if m == nil {
		return
	}
	m.queueLength.Set(float64(n))
}

func (m *Metrics) Enqueued(evicted int) {
	if m == nil {
		return
	}
	m.enqueued.Inc()
	m.evicted.Add(float64(evicted))
}

func (m *Metrics) Replay(outcome string) {
	if m == nil {
		return
	}
	m.replays.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SyncPass() {
	if m == nil {
		return
	}
	m.syncPasses.Inc()
}

func (m *Metrics) PushEvent(event string) {
	if m == nil {
		return
	}
	m.pushEvents.WithLabelValues(event).Inc()
}

// BuildInfo publishes the running build as a constant gauge.
func (m *Metrics) BuildInfo(info models.AppBuildInfo) {
	if m == nil {
		return
	}
	m.buildInfo.Reset()
	m.buildInfo.WithLabelValues(info.BuildVersion(), info.BuildDate(), info.BuildCommit()).Set(1)
}
