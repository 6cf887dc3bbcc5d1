package circuits

import (
	"github.com/consensys/gnark/frontend"
)

// RangeCircuit 区间电路
//
// 证明 Min <= Value <= Max，Value 通过 Commitment = Poseidon2(Value, Min, Max) 绑定。
// 公开输入声明顺序即公开信号顺序：[Min, Max, Commitment]。
type RangeCircuit struct {
	// 公开输入（顺序很重要！gnark 按声明顺序处理公开输入）
	Min        frontend.Variable `gnark:",public"`
	Max        frontend.Variable `gnark:",public"`
	Commitment frontend.Variable `gnark:",public"`

	// 私有输入
	Value frontend.Variable
}

// Define 定义约束
func (c *RangeCircuit) Define(api frontend.API) error {
	api.AssertIsLessOrEqual(c.Min, c.Value)
	api.AssertIsLessOrEqual(c.Value, c.Max)

	h, err := NewPoseidonHasher(api).Hash(c.Value, c.Min, c.Max)
	if err != nil {
		return err
	}
	api.AssertIsEqual(h, c.Commitment)
	return nil
}
