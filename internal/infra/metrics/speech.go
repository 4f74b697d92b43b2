package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(speechCallsTotal, speechCallLatencyMs, speechRetriesTotal, rateLimitWaitMs)
}

var speechCallsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "speech_calls_total",
		Help: "Calls to the speech/translation backend per provider/op/success.",
	},
	[]string{"provider", "op", "success"},
)

var speechCallLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "speech_call_latency_ms",
		Help:    "Speech backend call latency distribution in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
	},
	[]string{"provider", "op"},
)

var speechRetriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "speech_retries_total",
		Help: "Retried speech backend calls per provider/op.",
	},
	[]string{"provider", "op"},
)

var rateLimitWaitMs = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "speech_rate_limit_wait_ms",
		Help:    "Time spent waiting for a rate limiter token in milliseconds.",
		Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	},
)

func ObserveSpeechCall(provider, op string, latencyMs int, success bool) {
	speechCallsTotal.WithLabelValues(norm(provider), norm(op), strconv.FormatBool(success)).Inc()
	speechCallLatencyMs.WithLabelValues(norm(provider), norm(op)).Observe(float64(latencyMs))
}

func IncSpeechRetry(provider, op string) {
	speechRetriesTotal.WithLabelValues(norm(provider), norm(op)).Inc()
}

func ObserveRateLimitWait(waitMs int) {
	rateLimitWaitMs.Observe(float64(waitMs))
}
