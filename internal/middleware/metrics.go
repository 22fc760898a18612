package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	authRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_rejections_total",
			Help: "Total number of rejected authentications",
		},
		[]string{"reason"},
	)
	registerOnce sync.Once
)

// InitPrometheus registers the HTTP metrics once per process.
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, authRejections)
	})
}

// Metrics records request counts and latency labelled by route template,
// not the raw path, so ids do not explode cardinality.
func Metrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		status := c.Response().Status
		httpRequestsTotal.WithLabelValues(path, c.Request().Method, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(path, c.Request().Method).Observe(time.Since(start).Seconds())
		return nil
	}
}

func recordAuthRejection(reason string) {
	authRejections.WithLabelValues(reason).Inc()
}
