package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(planJobsProcessedTotal, planJobsQueueDepth) }

var planJobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "plan_jobs_processed_total",
		Help: "Total number of plan generation jobs processed, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var planJobsQueueDepth = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "plan_jobs_queue_depth",
		Help: "Number of generation jobs waiting in the queue.",
	},
)

func IncPlanJob(status string) {
	planJobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func SetQueueDepth(n int) {
	planJobsQueueDepth.Set(float64(n))
}
