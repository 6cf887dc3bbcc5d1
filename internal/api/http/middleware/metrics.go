package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Metrics 指标收集中间件
type Metrics struct {
	logger          *zap.Logger
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestSize     *prometheus.SummaryVec
}

// NewMetrics 创建指标中间件，指标注册到 reg（nil 时不注册）
func NewMetrics(logger *zap.Logger, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		logger: logger,
	}

	m.requestCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zkprivacy",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// 证明耗时在秒级，桶上限放宽到 60s
	m.requestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zkprivacy",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	m.requestSize = factory.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "zkprivacy",
			Subsystem:  "api",
			Name:       "request_size_bytes",
			Help:       "API request size in bytes",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"method", "path"},
	)

	return m
}

// Middleware 返回Gin中间件
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		// 使用路由模板作为标签，避免未知路径导致标签基数膨胀
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		if size := c.Request.ContentLength; size > 0 {
			m.requestSize.WithLabelValues(method, path).Observe(float64(size))
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		m.requestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

		m.logger.Debug("Request metrics collected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
	}
}
