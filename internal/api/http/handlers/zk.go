// Package handlers 证明服务 HTTP 处理器
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/zkprivacy/internal/api/http/middleware"
	apitypes "github.com/weisyn/zkprivacy/internal/api/http/types"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/commitment"
	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// ProofService 处理器依赖的证明能力（由客户端编排器实现）
type ProofService interface {
	ProveOwnershipOf(ctx context.Context, secret *big.Int) (*types.ProofResult, error)
	Verify(ctx context.Context, circuit types.CircuitID, signals types.PublicSignals, proof *types.Proof) (bool, error)
}

// ZKHandlers /zk 路由处理器
//
// 每次调用无状态：演示秘密直接打包为 field 元素，不查询托管存储。
type ZKHandlers struct {
	proofs ProofService
	logger log.Logger
}

// NewZKHandlers 创建处理器
func NewZKHandlers(proofs ProofService, logger log.Logger) *ZKHandlers {
	return &ZKHandlers{proofs: proofs, logger: logger}
}

// RegisterRoutes 注册 /zk 路由
func (h *ZKHandlers) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/zk")
	group.POST("/prove", h.Prove)
	group.POST("/verify", h.Verify)
}

// ProveRequest 证明请求，secret 可以是字符串或数字
type ProveRequest struct {
	Secret interface{} `json:"secret"`
}

// VerifyRequest 验证请求；circuit 缺省时取证明信封中的电路
type VerifyRequest struct {
	Proof         *types.Proof        `json:"proof"`
	PublicSignals types.PublicSignals `json:"publicSignals"`
	Circuit       types.CircuitID     `json:"circuit,omitempty"`
}

// VerifyResponse 验证结果
type VerifyResponse struct {
	Verified bool `json:"verified"`
}

// Prove POST /zk/prove
func (h *ZKHandlers) Prove(c *gin.Context) {
	var req ProveRequest
	if !h.decode(c, &req) {
		return
	}

	secret, err := commitment.PackSecretValue(req.Secret)
	if err != nil {
		h.fail(c, http.StatusBadRequest, apitypes.ErrInvalidArgument, "secret is required", err)
		return
	}

	result, err := h.proofs.ProveOwnershipOf(c.Request.Context(), secret)
	if err != nil {
		h.logger.Errorf("证明生成失败: request_id=%s, err=%v", middleware.GetRequestID(c), err)
		h.fail(c, http.StatusInternalServerError, apitypes.ErrProverFailure, "proof generation failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Verify POST /zk/verify
func (h *ZKHandlers) Verify(c *gin.Context) {
	var req VerifyRequest
	if !h.decode(c, &req) {
		return
	}
	if req.Proof == nil || req.PublicSignals == nil {
		h.fail(c, http.StatusBadRequest, apitypes.ErrInvalidArgument,
			"proof and publicSignals are required", nil)
		return
	}

	circuit := req.Circuit
	if circuit == "" {
		circuit = req.Proof.Circuit
	}
	if circuit == "" {
		circuit = types.CircuitOwnership
	}

	ok, err := h.proofs.Verify(c.Request.Context(), circuit, req.PublicSignals, req.Proof)
	switch {
	case err != nil && errors.Is(err, zk.ErrStructural):
		h.fail(c, http.StatusBadRequest, apitypes.ErrStructural, "malformed proof or public signals", err)
		return
	case err != nil:
		h.logger.Errorf("验证器异常: request_id=%s, err=%v", middleware.GetRequestID(c), err)
		h.fail(c, http.StatusInternalServerError, apitypes.ErrVerifier, "verification failed", err)
		return
	}

	c.JSON(http.StatusOK, VerifyResponse{Verified: ok})
}

// decode 解析 JSON 请求体（数字保留原始文本）
func (h *ZKHandlers) decode(c *gin.Context, out interface{}) bool {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, http.StatusRequestEntityTooLarge, apitypes.ErrBodyTooLarge, "request body too large", err)
			return false
		}
		h.fail(c, http.StatusBadRequest, apitypes.ErrInvalidArgument, "invalid JSON body", err)
		return false
	}
	return true
}

func (h *ZKHandlers) fail(c *gin.Context, status int, code, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, apitypes.NewErrorResponse(code, message, details).
		WithRequestID(middleware.GetRequestID(c)))
}
