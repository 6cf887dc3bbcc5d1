package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apitypes "github.com/weisyn/zkprivacy/internal/api/http/types"
)

// RateLimit 按客户端IP的令牌桶限流
//
// 证明是 CPU 密集型操作，单个客户端不能独占证明器。
type RateLimit struct {
	logger   *zap.Logger
	limiters map[string]*clientLimiter
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimit 创建限流中间件；rps <= 0 时不限流
func NewRateLimit(logger *zap.Logger, rps, burst int) *RateLimit {
	if burst < 1 {
		burst = 1
	}
	return &RateLimit{
		logger:   logger,
		limiters: make(map[string]*clientLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  10 * time.Minute,
	}
}

// Middleware 返回Gin中间件
func (m *RateLimit) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.rps <= 0 {
			c.Next()
			return
		}

		clientID := c.ClientIP()
		if !m.allow(clientID) {
			m.logger.Debug("rate limit exceeded", zap.String("client_ip", clientID))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apitypes.NewErrorResponse(
				apitypes.ErrRateLimitExceeded,
				"Request rate limit exceeded",
				"retry after 1s",
			).WithRequestID(GetRequestID(c)))
			return
		}

		c.Next()
	}
}

func (m *RateLimit) allow(clientID string) bool {
	now := time.Now()

	m.mu.Lock()
	cl, ok := m.limiters[clientID]
	if !ok {
		m.evictIdle(now)
		cl = &clientLimiter{limiter: rate.NewLimiter(m.rps, m.burst), lastSeen: now}
		m.limiters[clientID] = cl
	}
	cl.lastSeen = now
	m.mu.Unlock()

	return cl.limiter.AllowN(now, 1)
}

// evictIdle 清理长时间无请求的客户端（调用方持有锁）
func (m *RateLimit) evictIdle(now time.Time) {
	for id, cl := range m.limiters {
		if now.Sub(cl.lastSeen) > m.idleTTL {
			delete(m.limiters, id)
		}
	}
}
