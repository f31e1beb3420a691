package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheRequestsTotal, cacheSweptTotal) }

var cacheRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "Tracks cache hits and misses for various caches.",
	},
	[]string{"cache", "result"}, // e.g., cache="ai_response", result="hit"
)

var cacheSweptTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "cache_swept_entries_total",
		Help: "Total expired AI response cache entries removed by the sweeper.",
	},
)

func IncCacheRequest(cacheName, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cacheName), norm(result)).Inc()
}

func AddSweptEntries(n int64) {
	cacheSweptTotal.Add(float64(n))
}
