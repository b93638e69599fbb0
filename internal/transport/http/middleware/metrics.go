package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Count of HTTP requests"},
		[]string{"path", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
	httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Requests currently being served",
	})
	imageUploadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "listing_image_upload_bytes",
		Help:    "Size of product images accepted by the API",
		Buckets: prometheus.ExponentialBuckets(16<<10, 4, 6), // 16KB .. 16MB
	})
)

func init() {
	prometheus.MustRegister(httpReqTotal, httpLatency, httpInflight, imageUploadBytes)
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()
		c.Next()
		// label 用路由模板而不是实际路径
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpReqTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// ObserveImageUpload 记录一次已接收的商品图片大小
func ObserveImageUpload(size int) { imageUploadBytes.Observe(float64(size)) }
