package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics 请求计数与耗时；注册到调用方给定的 Registerer
type HTTPMetrics struct {
	reqTotal *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer, engine string) *HTTPMetrics {
	labels := prometheus.Labels{"engine": engine}
	m := &HTTPMetrics{
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "article_api",
			Name:        "http_requests_total",
			Help:        "Count of HTTP requests",
			ConstLabels: labels,
		}, []string{"path", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "article_api",
			Name:        "http_request_duration_seconds",
			Help:        "Latency of HTTP requests",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"path", "method"}),
	}
	reg.MustRegister(m.reqTotal, m.latency)
	return m
}

func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		// 未匹配路由统一记为 unmatched，避免路径标签无限增长
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.reqTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
