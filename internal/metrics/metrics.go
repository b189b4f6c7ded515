package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes recorded by RecordUpload.
const (
	OutcomeStored   = "stored"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filesender_http_requests_total",
		Help: "HTTP requests processed, partitioned by method, path and status.",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filesender_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filesender_uploads_total",
		Help: "Upload attempts, partitioned by outcome.",
	}, []string{"outcome"})

	uploadedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filesender_uploaded_bytes_total",
		Help: "Total bytes accepted into the object store.",
	})
)

// Middleware records request counts and latency for every route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		requestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// RecordUpload counts one upload attempt and, for stored uploads, the bytes written.
func RecordUpload(outcome string, size int64) {
	uploadsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeStored && size > 0 {
		uploadedBytes.Add(float64(size))
	}
}
