package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"tripgen/internal/structures"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits(kind string)
	IncCacheMisses(kind string)
	IncGenerations(version string, status string)
	AddTokens(provider string, input, output int)
	IncRateLimited(tier string)
	IncSaves(version string, status string)
	ObserveStoreDuration(op string, duration time.Duration)
	SetPlansTotal(version string, count int64)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	generations     *prometheus.CounterVec
	tokens          *prometheus.CounterVec
	rateLimited     *prometheus.CounterVec
	saves           *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	plansTotal      *prometheus.GaugeVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits(kind string) {
	m.cacheHits.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) IncCacheMisses(kind string) {
	m.cacheMisses.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) IncGenerations(version string, status string) {
	m.generations.WithLabelValues(version, status).Inc()
}

func (m *MetricsProvider) AddTokens(provider string, input, output int) {
	m.tokens.WithLabelValues(provider, "input").Add(float64(input))
	m.tokens.WithLabelValues(provider, "output").Add(float64(output))
}

func (m *MetricsProvider) IncRateLimited(tier string) {
	m.rateLimited.WithLabelValues(tier).Inc()
}

func (m *MetricsProvider) IncSaves(version string, status string) {
	m.saves.WithLabelValues(version, status).Inc()
}

func (m *MetricsProvider) ObserveStoreDuration(op string, duration time.Duration) {
	m.storeDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func (m *MetricsProvider) SetPlansTotal(version string, count int64) {
	m.plansTotal.WithLabelValues(version).Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tripgen_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tripgen_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tripgen_cache_hits_total",
			Help: "Total number of cache hits",
		}, []string{"kind"}),

		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tripgen_cache_misses_total",
			Help: "Total number of cache misses",
		}, []string{"kind"}),

		generations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tripgen_generations_total",
			Help: "Plan generations by schema version and outcome",
		}, []string{"version", "status"}),

		tokens: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tripgen_llm_tokens_total",
			Help: "LLM tokens consumed by provider and direction",
		}, []string{"provider", "direction"}),

		rateLimited: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tripgen_rate_limited_total",
			Help: "Requests rejected by the rate limiter, by tier",
		}, []string{"tier"}),

		saves: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tripgen_plan_saves_total",
			Help: "Plan saves by schema version and outcome",
		}, []string{"version", "status"}),

		storeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tripgen_store_duration_seconds",
			Help:    "Duration of plan store operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),

		plansTotal: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tripgen_plans_total",
			Help: "Number of indexed plans per namespace",
		}, []string{"version"}),
	}
}

// noopMetrics is used when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits(_ string)                            {}
func (n *noopMetrics) IncCacheMisses(_ string)                          {}
func (n *noopMetrics) IncGenerations(_ string, _ string)                {}
func (n *noopMetrics) AddTokens(_ string, _, _ int)                     {}
func (n *noopMetrics) IncRateLimited(_ string)                          {}
func (n *noopMetrics) IncSaves(_ string, _ string)                      {}
func (n *noopMetrics) ObserveStoreDuration(_ string, _ time.Duration)   {}
func (n *noopMetrics) SetPlansTotal(_ string, _ int64)                  {}
