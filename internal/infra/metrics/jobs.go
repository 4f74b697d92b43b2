package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(jobsTotal, jobsInFlight, jobStageLatencyMs, jobsAbandonedTotal)
}

var jobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_jobs_total",
		Help: "Jobs reaching a terminal state, labeled by outcome and failed stage.",
	},
	[]string{"outcome", "stage"}, // outcome: done|failed|abandoned; stage set for failures
)

var jobsInFlight = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "pipeline_jobs_in_flight",
		Help: "Jobs currently occupying a worker slot.",
	},
)

var jobStageLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "pipeline_stage_latency_ms",
		Help:    "Per-stage latency distribution in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
	},
	[]string{"stage"},
)

var jobsAbandonedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "pipeline_jobs_abandoned_total",
		Help: "Jobs dropped after exceeding their TTL without a reply.",
	},
)

func IncJob(outcome, stage string) {
	jobsTotal.WithLabelValues(norm(outcome), norm(stage)).Inc()
}

func JobStarted()  { jobsInFlight.Inc() }
func JobFinished() { jobsInFlight.Dec() }

func ObserveStage(stage string, latencyMs int) {
	jobStageLatencyMs.WithLabelValues(norm(stage)).Observe(float64(latencyMs))
}

func IncAbandoned() { jobsAbandonedTotal.Inc() }
