package zkprivacy

import (
	"errors"
	"fmt"
)

// ============================================================================
//                            零知识隐私子系统错误定义
// ============================================================================
//
// 📋 **错误分类**：
//   - UsageError：ErrMissingSecret、ErrInvalidRange，直接报告，不重试
//   - ErrProverFailure：约束系统拒绝见证、自验证不一致、电路产物缺失或损坏
//   - ErrStructural：证明/公开信号格式错误（区别于验证结果为 false）
//   - ErrInvalidInput：输入无法归约为 field 元素
//
// ============================================================================

var (
	// ErrUsage 使用错误（调用方问题，不属于密码学失败）
	ErrUsage = errors.New("usage error")

	// ErrMissingSecret 主体没有已保存的秘密
	ErrMissingSecret = fmt.Errorf("%w: missing secret", ErrUsage)

	// ErrInvalidRange 本地区间检查失败（未调用证明器）
	ErrInvalidRange = fmt.Errorf("%w: invalid range", ErrUsage)

	// ErrProverFailure 证明生成失败
	ErrProverFailure = errors.New("prover failure")

	// ErrStructural 证明或公开信号格式错误
	ErrStructural = errors.New("structural error")

	// ErrInvalidInput 输入超出 field 模数或为空
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownCircuit 未注册的电路
	ErrUnknownCircuit = errors.New("unknown circuit")
)

// ============================================================================
//                               错误包装函数
// ============================================================================

// WrapMissingSecretError 包装缺失秘密错误
func WrapMissingSecretError(subjectID string) error {
	return fmt.Errorf("%w: subject=%s", ErrMissingSecret, subjectID)
}

// WrapInvalidRangeError 包装区间错误
func WrapInvalidRangeError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRange, reason)
}

// WrapProverFailureError 包装证明失败错误，保留底层原因链
func WrapProverFailureError(circuitID string, err error) error {
	return fmt.Errorf("%w: circuitID=%s, cause=%w", ErrProverFailure, circuitID, err)
}

// WrapStructuralError 包装结构错误
func WrapStructuralError(circuitID, reason string) error {
	return fmt.Errorf("%w: circuitID=%s, reason=%s", ErrStructural, circuitID, reason)
}

// WrapInvalidInputError 包装无效输入错误
func WrapInvalidInputError(index int, reason string) error {
	return fmt.Errorf("%w: input[%d] %s", ErrInvalidInput, index, reason)
}

// WrapUnknownCircuitError 包装未知电路错误
func WrapUnknownCircuitError(circuitID string) error {
	return fmt.Errorf("%w: circuitID=%s", ErrUnknownCircuit, circuitID)
}

// IsUsageError 是否为使用错误
func IsUsageError(err error) bool {
	return errors.Is(err, ErrUsage)
}
