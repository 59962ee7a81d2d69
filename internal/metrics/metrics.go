package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the client's Prometheus collectors on a private registry so
// tests and embedded uses stay isolated. All methods are nil-safe; a nil
// *Metrics disables collection.
type Metrics struct {
	Registry *prometheus.Registry

	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	cacheJoins    prometheus.Counter
	invalidations prometheus.Counter
	evictions     prometheus.Counter

	httpRequests   *prometheus.CounterVec
	tokenRefreshes *prometheus.CounterVec
}

// New builds a Metrics with its own registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smsbridge",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Query results served from the cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smsbridge",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Query invocations that issued a fetch.",
		}),
		cacheJoins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smsbridge",
			Subsystem: "cache",
			Name:      "inflight_joins_total",
			Help:      "Query invocations de-duplicated onto an in-flight fetch.",
		}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smsbridge",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Cache entries marked stale by tag invalidation.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smsbridge",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Idle cache entries removed by the sweeper.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smsbridge",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests issued by the transport.",
		}, []string{"method", "status"}),
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smsbridge",
			Subsystem: "auth",
			Name:      "token_refreshes_total",
			Help:      "Access-token refresh attempts by outcome.",
		}, []string{"outcome"}),
	}

	m.Registry.MustRegister(
		m.cacheHits, m.cacheMisses, m.cacheJoins,
		m.invalidations, m.evictions,
		m.httpRequests, m.tokenRefreshes,
	)
	return m
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *Metrics) CacheJoin() {
	if m != nil {
		m.cacheJoins.Inc()
	}
}

func (m *Metrics) Invalidated(n int) {
	if m != nil {
		m.invalidations.Add(float64(n))
	}
}

func (m *Metrics) Evicted(n int) {
	if m != nil {
		m.evictions.Add(float64(n))
	}
}

func (m *Metrics) HTTPRequest(method string, status int) {
	if m != nil {
		m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	}
}

func (m *Metrics) TokenRefresh(outcome string) {
	if m != nil {
		m.tokenRefreshes.WithLabelValues(outcome).Inc()
	}
}
