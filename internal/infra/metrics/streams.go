package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(streamSessionsActive, streamEventsTotal) }

var streamSessionsActive = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "stream_sessions_active",
		Help: "Interactive streaming sessions currently open.",
	},
)

var streamEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "stream_events_total",
		Help: "Stream events emitted to callers, labeled by kind.",
	},
	[]string{"kind"}, // 'start', 'chunk', 'end', 'error'
)

func StreamSessionOpened() { streamSessionsActive.Inc() }
func StreamSessionClosed() { streamSessionsActive.Dec() }

func IncStreamEvent(kind string) {
	streamEventsTotal.WithLabelValues(norm(kind)).Inc()
}
