// Package types provides zero-knowledge proof data types.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// ============================================================================
//                              电路与证明类型
// ============================================================================

// CircuitID 电路标识符（全局唯一，不含版本）
type CircuitID string

const (
	// CircuitOwnership 所有权电路：证明知道 secret 使得 Hash(secret) == commitment
	CircuitOwnership CircuitID = "ownership"

	// CircuitRange 区间电路：证明 min <= value <= max，value 通过承诺绑定
	CircuitRange CircuitID = "range"
)

// 证明方案与曲线标识（写入证明信封，验证时逐项比对）
const (
	ProvingSchemeGroth16 = "groth16"
	CurveBLS12377        = "bls12-377"
)

// 见证字段名
const (
	WitnessSecret     = "secret"
	WitnessCommitment = "commitment"
	WitnessValue      = "value"
	WitnessMin        = "min"
	WitnessMax        = "max"
)

// Witness 电路见证：字段名 -> field 元素
//
// 同时包含私有输入与公开输入，由电路注册表按字段名映射到电路结构体。
type Witness map[string]*big.Int

// Proof 证明信封
//
// 🎯 **绑定关系**：一个 Proof 只对应一个 (circuit, version, witness)，
// 并且只与同时生成的 PublicSignals 匹配。
type Proof struct {
	Protocol string    `json:"protocol"` // "groth16"
	Curve    string    `json:"curve"`    // "bls12-377"
	Circuit  CircuitID `json:"circuit"`  // 电路ID
	Version  uint32    `json:"version"`  // 电路版本
	VKHash   string    `json:"vkHash"`   // 验证密钥 SHA-256（hex）
	Data     string    `json:"data"`     // gnark 序列化证明（hex）
}

// PublicSignals 公开信号：按电路声明顺序排列的十进制 field 元素
//
// Ownership: [commitment]；Range: [min, max, commitment]。调用方不得重排。
type PublicSignals []string

// NewPublicSignals 由 big.Int 列表构建公开信号
func NewPublicSignals(values ...*big.Int) PublicSignals {
	signals := make(PublicSignals, len(values))
	for i, v := range values {
		signals[i] = v.String()
	}
	return signals
}

// Values 解析为 big.Int 列表
//
// 非十进制或负数返回错误（结构错误由调用方包装）。
func (s PublicSignals) Values() ([]*big.Int, error) {
	values := make([]*big.Int, len(s))
	for i, raw := range s {
		v, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
		if !ok {
			return nil, fmt.Errorf("public signal[%d] is not a decimal integer: %q", i, raw)
		}
		if v.Sign() < 0 {
			return nil, fmt.Errorf("public signal[%d] is negative", i)
		}
		values[i] = v
	}
	return values, nil
}

// UnmarshalJSON 同时接受字符串与 JSON 数字形式的信号
func (s *PublicSignals) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("publicSignals must be an array: %w", err)
	}

	out := make(PublicSignals, len(raw))
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var str string
			if err := json.Unmarshal(item, &str); err != nil {
				return fmt.Errorf("publicSignals[%d]: %w", i, err)
			}
			out[i] = str
			continue
		}
		var num json.Number
		if err := json.Unmarshal(item, &num); err != nil {
			return fmt.Errorf("publicSignals[%d]: %w", i, err)
		}
		out[i] = num.String()
	}
	*s = out
	return nil
}

// ProofResult 协议输出：证明 + 公开信号
type ProofResult struct {
	Proof         *Proof        `json:"proof"`
	PublicSignals PublicSignals `json:"publicSignals"`
}
