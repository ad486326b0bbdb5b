package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesOffered = promauto.NewCounter(prometheus.CounterOpts{Namespace: "copool", Name: "rides_offered_total", Help: "Total rides offered"})
	SeatsJoined  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "copool", Name: "seats_joined_total", Help: "Total seats successfully reserved"})
	JoinRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "copool", Name: "joins_rejected_total", Help: "Join attempts rejected, by reason"},
		[]string{"reason"},
	)
	MessagesPosted = promauto.NewCounter(prometheus.CounterOpts{Namespace: "copool", Name: "messages_posted_total", Help: "Total chat messages posted"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "copool", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "copool",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// FullPath keeps the label cardinality bounded; unmatched routes
		// collapse into one bucket.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
