package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetricsMiddleware 记录请求数、耗时和在途请求数。
// route 标签取 c.FullPath()（路由模板），避免路径参数导致标签爆炸。reg 为 nil 时不做任何事。
func HTTPMetricsMiddleware(reg *prometheus.Registry) gin.HandlerFunc {
	if reg == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worklog_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worklog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	requestsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worklog_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed.",
		},
	)
	reg.MustRegister(requestsTotal, requestDuration, requestsInFlight)

	return func(c *gin.Context) {
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		requestsTotal.WithLabelValues(method, route, status).Inc()
		requestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
	}
}
