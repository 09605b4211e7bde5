// Package metrics provides Prometheus metrics for the Librarian server.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "librarian_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "librarian_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	pushItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "librarian_sync_push_items_total",
			Help: "Total number of processed push changes",
		},
		[]string{"table", "status"},
	)

	pullsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "librarian_sync_pulls_total",
			Help: "Total number of pull requests served",
		},
	)

	tokensIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "librarian_sessions_issued_total",
			Help: "Total number of session tokens issued",
		},
	)
)

// RecordPushItem counts one processed push change.
func RecordPushItem(table, status string) {
	pushItemsTotal.WithLabelValues(table, status).Inc()
}

// RecordPull counts one served pull request.
func RecordPull() {
	pullsTotal.Inc()
}

// RecordTokenIssued counts one issued session token.
func RecordTokenIssued() {
	tokensIssuedTotal.Inc()
}

// Middleware records request counts and latencies per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
