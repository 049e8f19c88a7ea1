// internal/utils/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swap_builder_builds_total",
			Help: "Total number of swap build requests by venue and outcome",
		},
		[]string{"venue", "side", "status"},
	)
	buildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swap_builder_build_duration_seconds",
			Help:    "Duration of a swap build from validation to serialization",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"venue"},
	)
	routeSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swap_builder_route_selections_total",
			Help: "Venue selections made by the router",
		},
		[]string{"venue", "cache"},
	)
	egressAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swap_builder_egress_attempts_total",
			Help: "Outbound HTTP attempts by route and result",
		},
		[]string{"route", "result"},
	)
	blacklistedProxies = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swap_builder_blacklisted_proxies",
			Help: "Number of egress proxies currently marked unusable",
		},
	)
	rpcLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swap_builder_rpc_latency_seconds",
			Help:    "Latency of chain RPC calls",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"method"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swap_builder_http_requests_total",
			Help: "HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swap_builder_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(buildCounter, buildDuration, routeSelections, egressAttempts, blacklistedProxies, rpcLatency,
		httpRequests, httpDuration)
}

// RecordBuild записывает результат сборки транзакции.
func RecordBuild(venue, side string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	if venue == "" {
		venue = "none"
	}
	buildCounter.WithLabelValues(venue, side, status).Inc()
	buildDuration.WithLabelValues(venue).Observe(duration.Seconds())
}

// RecordSelection записывает выбор площадки роутером.
func RecordSelection(venue string, cacheHit bool) {
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	routeSelections.WithLabelValues(venue, label).Inc()
}

// RecordEgressAttempt записывает одну попытку исходящего HTTP-запроса.
func RecordEgressAttempt(route, result string) {
	egressAttempts.WithLabelValues(route, result).Inc()
}

// SetBlacklistedProxies обновляет число заблокированных прокси.
func SetBlacklistedProxies(n int) {
	blacklistedProxies.Set(float64(n))
}

// RecordRPCLatency записывает метрики RPC-запроса
func RecordRPCLatency(method string, duration time.Duration) {
	rpcLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordHTTPRequest записывает обработанный HTTP-запрос.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
