package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/poseidon2"
)

// ============================================================================
// Poseidon2 电路内哈希
// ============================================================================
//
// 🎯 **设计目的**：
// 电路内的承诺计算必须与 commitment.Hash 逐位一致：
// 同样的 Merkle-Damgård 结构、同样的输入顺序、同样的零初始状态。
//
// ⚠️ **注意**：
// - Poseidon2 参数随曲线选择，本子系统固定使用 BLS12-377
// - hasher 有状态，每次哈希都新建
//
// ============================================================================

// PoseidonHasher Poseidon2哈希器
type PoseidonHasher struct {
	api frontend.API
}

// NewPoseidonHasher 创建Poseidon2哈希器
func NewPoseidonHasher(api frontend.API) *PoseidonHasher {
	return &PoseidonHasher{api: api}
}

// Hash 计算 Poseidon2(inputs...)
func (h *PoseidonHasher) Hash(inputs ...frontend.Variable) (frontend.Variable, error) {
	hasher, err := poseidon2.NewMerkleDamgardHasher(h.api)
	if err != nil {
		return nil, err
	}
	hasher.Write(inputs...)
	return hasher.Sum(), nil
}
