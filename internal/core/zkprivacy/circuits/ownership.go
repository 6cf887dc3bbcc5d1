package circuits

import (
	"github.com/consensys/gnark/frontend"
)

// OwnershipCircuit 所有权电路
//
// 证明 "我知道 Secret 使得 Poseidon2(Secret) == Commitment"，不泄露 Secret。
type OwnershipCircuit struct {
	// 公开输入
	Commitment frontend.Variable `gnark:",public"`

	// 私有输入
	Secret frontend.Variable
}

// Define 定义约束
func (c *OwnershipCircuit) Define(api frontend.API) error {
	h, err := NewPoseidonHasher(api).Hash(c.Secret)
	if err != nil {
		return err
	}
	api.AssertIsEqual(h, c.Commitment)
	return nil
}
