// Package http 提供零知识证明 HTTP 服务
//
// 📋 **路由**：
//   - POST /zk/prove   {secret}                → {proof, publicSignals}
//   - POST /zk/verify  {proof, publicSignals}  → {verified}
//   - GET  /health                             → 电路加载状态、托管后端
//   - GET  /metrics                            → Prometheus 指标
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weisyn/zkprivacy/internal/api/http/handlers"
	"github.com/weisyn/zkprivacy/internal/api/http/middleware"
	apitypes "github.com/weisyn/zkprivacy/internal/api/http/types"
	apiconfig "github.com/weisyn/zkprivacy/internal/config/api"
	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
)

// RouterDeps 路由依赖
type RouterDeps struct {
	Logger    log.Logger
	Options   *apiconfig.APIOptions
	Registry  *prometheus.Registry // 为 nil 时不暴露 /metrics，HTTP 指标不注册
	Proofs    handlers.ProofService
	Circuits  handlers.CircuitStatus
	StoreKind string
}

// NewRouter 创建 Gin 路由引擎
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	zl := deps.Logger.GetZapLogger()

	var reg prometheus.Registerer
	if deps.Registry != nil {
		reg = deps.Registry
	}

	router.Use(
		recovery(deps.Logger),
		middleware.NewRequestID().Middleware(),
		middleware.NewLogger(deps.Logger).Middleware(),
		middleware.NewMetrics(zl, reg).Middleware(),
		middleware.NewRateLimit(zl, deps.Options.RateLimitRPS, deps.Options.RateLimitBurst).Middleware(),
		bodyLimit(deps.Options.MaxBodyBytes),
	)

	handlers.NewHealthHandler(deps.Circuits, deps.StoreKind).RegisterRoutes(router)
	handlers.NewZKHandlers(deps.Proofs, deps.Logger).RegisterRoutes(router)

	if deps.Options.EnableMetrics && deps.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	return router
}

// recovery 捕获处理器 panic，返回统一错误体
func recovery(logger log.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered interface{}) {
		logger.Errorf("❌ 请求处理 panic: path=%s, request_id=%s, err=%v",
			c.Request.URL.Path, middleware.GetRequestID(c), recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, apitypes.NewErrorResponse(
			apitypes.ErrInternal, "internal server error", "",
		).WithRequestID(middleware.GetRequestID(c)))
	})
}

// bodyLimit 限制请求体大小
func bodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}

// Server HTTP服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	options    *apiconfig.APIOptions
	logger     log.Logger
	addr       string
}

// NewServer 创建HTTP服务器
func NewServer(deps RouterDeps) *Server {
	return &Server{
		router:  NewRouter(deps),
		options: deps.Options,
		logger:  deps.Logger,
	}
}

// Handler 返回路由（测试使用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 实际监听地址（Start 之后有效）
func (s *Server) Addr() string {
	return s.addr
}

// Start 启动HTTP服务器
//
// 先同步监听端口，端口被占用时直接返回错误；之后在后台协程中处理请求。
// 写超时不设置：证明生成没有超时限制。
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.options.Address())
	if err != nil {
		return fmt.Errorf("HTTP服务器监听失败: %w", err)
	}
	s.addr = listener.Addr().String()

	s.httpServer = &http.Server{
		Handler:     s.router,
		ReadTimeout: s.options.ReadTimeout,
		IdleTimeout: s.options.IdleTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("❌ HTTP服务器运行失败: %v", err)
		}
	}()

	s.logger.Infof("✅ HTTP服务器启动成功，监听地址: %s", s.addr)
	s.logger.Infof("📡 证明端点: http://%s/zk/prove", s.addr)
	s.logger.Infof("🩺 健康检查: http://%s/health", s.addr)
	return nil
}

// Stop 优雅关闭HTTP服务器，等待进行中的证明完成（最长 ShutdownTimeout）
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("正在关闭HTTP服务器")

	stopCtx, cancel := context.WithTimeout(ctx, s.options.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP服务器关闭出错: %v", err)
		return err
	}

	s.logger.Info("HTTP服务器已关闭")
	return nil
}
