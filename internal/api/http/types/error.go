// Package types provides HTTP error type definitions.
package types

// ErrorResponse 统一错误响应格式
//
// 📋 证明服务的错误体是扁平结构：{error, details}，附带机器可读的 code 与请求ID。
type ErrorResponse struct {
	Error     string `json:"error"`               // 错误消息
	Details   string `json:"details,omitempty"`   // 详细信息
	Code      string `json:"code,omitempty"`      // 错误码
	RequestID string `json:"requestId,omitempty"` // 请求ID
}

// 错误码常量
const (
	// 通用错误码（400-499）
	ErrInvalidArgument   = "INVALID_ARGUMENT"
	ErrStructural        = "STRUCTURAL_ERROR"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrBodyTooLarge      = "BODY_TOO_LARGE"

	// 证明错误码
	ErrProverFailure = "PROVER_FAILURE"
	ErrVerifier      = "VERIFIER_ERROR"

	// 服务器错误码（500-599）
	ErrInternal = "INTERNAL"
)

// NewErrorResponse 创建错误响应
func NewErrorResponse(code, message, details string) *ErrorResponse {
	return &ErrorResponse{
		Error:   message,
		Details: details,
		Code:    code,
	}
}

// WithRequestID 添加请求ID
func (e *ErrorResponse) WithRequestID(requestID string) *ErrorResponse {
	e.RequestID = requestID
	return e
}
