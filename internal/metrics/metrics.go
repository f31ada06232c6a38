// Package metrics provides Prometheus instrumentation for the fraud detection service.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frauddetect",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "frauddetect",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// TransactionsScoredTotal counts scored transactions by risk tier.
	TransactionsScoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frauddetect",
			Name:      "transactions_scored_total",
			Help:      "Total transactions scored by risk status.",
		},
		[]string{"status"},
	)

	// TransactionsSourceTotal counts scored transactions by origin (feed or analyze).
	TransactionsSourceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frauddetect",
			Name:      "transactions_source_total",
			Help:      "Total transactions scored by source.",
		},
		[]string{"source"},
	)

	// ScoreDuration observes end-to-end ensemble scoring latency.
	ScoreDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "frauddetect",
		Name:      "score_duration_seconds",
		Help:      "Ensemble scoring duration in seconds.",
		Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
	})

	// RetrainsTotal counts retrain attempts by result.
	RetrainsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frauddetect",
			Name:      "retrains_total",
			Help:      "Total model retrain attempts by result.",
		},
		[]string{"result"},
	)

	// BroadcastsTotal counts hub broadcasts by message type.
	BroadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frauddetect",
			Name:      "broadcasts_total",
			Help:      "Total websocket broadcasts by message type.",
		},
		[]string{"type"},
	)

	// ActiveSubscribers tracks connected WebSocket subscribers.
	ActiveSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "frauddetect",
			Name:      "active_subscribers",
			Help:      "Number of currently connected WebSocket subscribers.",
		},
	)

	// ModelAccuracy is the holdout accuracy of the serving model.
	ModelAccuracy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "frauddetect", Name: "model_accuracy",
		Help: "Holdout accuracy of the serving ensemble.",
	})
	// ModelPrecision is the holdout precision of the serving model.
	ModelPrecision = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "frauddetect", Name: "model_precision",
		Help: "Holdout precision of the serving ensemble.",
	})
	// ModelRecall is the holdout recall of the serving model.
	ModelRecall = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "frauddetect", Name: "model_recall",
		Help: "Holdout recall of the serving ensemble.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		TransactionsScoredTotal,
		TransactionsSourceTotal,
		ScoreDuration,
		RetrainsTotal,
		BroadcastsTotal,
		ActiveSubscribers,
		ModelAccuracy,
		ModelPrecision,
		ModelRecall,
	)
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for the /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
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
