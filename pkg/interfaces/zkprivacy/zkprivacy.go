// Package zkprivacy 定义零知识隐私子系统的公共接口
//
// 📋 **接口分层**：
//   - SecretStore：设备本地秘密托管（store/load/remove/list）
//   - ProofBackend：(circuit_id, witness) -> (proof, public_signals)
//   - Verifier：(circuit_id, public_signals, proof) -> bool
//
// 🎯 **设计原则**
// - 两个协议（Ownership、Range）只依赖这些接口，具体证明系统可替换
// - 托管后端可替换（内存、文件、BadgerDB）
package zkprivacy

import (
	"context"
	"math/big"

	"github.com/weisyn/zkprivacy/pkg/types"
)

// SecretStore 秘密托管存储
//
// 主体ID在存储前统一转为小写。实现必须只在本设备持久化，不同步、不外传。
type SecretStore interface {
	// Store 保存秘密（幂等覆盖；覆盖已有不同秘密时记录警告）
	Store(ctx context.Context, subjectID string, secret *big.Int) error

	// Load 读取秘密，不存在时返回 (nil, false, nil)
	Load(ctx context.Context, subjectID string) (*big.Int, bool, error)

	// Remove 删除秘密（不存在时为空操作）
	Remove(ctx context.Context, subjectID string) error

	// ListSubjects 列出所有主体ID（已排序）
	ListSubjects(ctx context.Context) ([]string, error)

	// Close 释放底层资源
	Close() error
}

// ProofBackend 证明后端
type ProofBackend interface {
	// Prove 为指定电路和见证生成证明及公开信号
	Prove(ctx context.Context, circuit types.CircuitID, witness types.Witness) (*types.Proof, types.PublicSignals, error)
}

// Verifier 证明验证器
type Verifier interface {
	// Verify 验证证明；密码学上无效返回 (false, nil)，格式错误返回 ErrStructural
	Verify(ctx context.Context, circuit types.CircuitID, signals types.PublicSignals, proof *types.Proof) (bool, error)
}
