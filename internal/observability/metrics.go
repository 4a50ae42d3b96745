package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loanrisk",
			Subsystem: "predict",
			Name:      "requests_total",
			Help:      "Predictions served, by risk tier and recommendation",
		},
		[]string{"risk", "recommendation"},
	)
	predictionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "loanrisk",
			Subsystem: "predict",
			Name:      "errors_total",
			Help:      "Prediction requests that ended in an error response",
		},
	)
	predictionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "loanrisk",
			Subsystem: "predict",
			Name:      "classify_seconds",
			Help:      "Latency of classifier evaluation",
			Buckets:   prometheus.DefBuckets,
		},
	)
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loanrisk",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Prediction cache lookups by result",
		},
		[]string{"result"},
	)
)

// ObservePrediction counts a served prediction
func ObservePrediction(risk, recommendation string) {
	predictions.WithLabelValues(risk, recommendation).Inc()
}

// ObservePredictionError counts a failed prediction
func ObservePredictionError() {
	predictionErrors.Inc()
}

// ObserveClassify records how long the classifier took
func ObserveClassify(d time.Duration) {
	predictionLatency.Observe(d.Seconds())
}

// ObserveCache records a cache hit, miss or error
func ObserveCache(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

// MetricsHandler exposes the default registry for scraping
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
