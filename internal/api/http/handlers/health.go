package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/artifacts"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/circuits"
)

// CircuitStatus 电路产物加载状态
type CircuitStatus interface {
	Loaded() []*artifacts.CircuitVersionInfo
}

// HealthHandler 健康检查
//
// 电路产物在后台预加载，全部加载完成前 status 为 loading，但仍返回 200：
// 首个证明请求会等待同一次加载。
type HealthHandler struct {
	startTime time.Time
	circuits  CircuitStatus
	storeKind string
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(status CircuitStatus, storeKind string) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		circuits:  status,
		storeKind: storeKind,
	}
}

// HealthResponse 健康报告
type HealthResponse struct {
	Status   string                          `json:"status"`
	Uptime   string                          `json:"uptime"`
	Custody  string                          `json:"custody,omitempty"`
	Circuits []*artifacts.CircuitVersionInfo `json:"circuits"`
}

// RegisterRoutes 注册健康检查路由
func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.GetHealth)
}

// GetHealth GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	loaded := []*artifacts.CircuitVersionInfo{}
	if h.circuits != nil {
		loaded = append(loaded, h.circuits.Loaded()...)
	}

	status := "ok"
	if len(loaded) < len(circuits.All()) {
		status = "loading"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:   status,
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
		Custody:  h.storeKind,
		Circuits: loaded,
	})
}
