// Package circuits 定义所有权与区间两个固定电路及其注册表
//
// 🎯 **版本即信任边界**：
// 电路ID + 版本号唯一确定约束系统；用某一版本的验证密钥无法验证另一版本生成的证明。
package circuits

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/consensys/gnark/frontend"

	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// Definition 电路定义
type Definition struct {
	ID           types.CircuitID
	Version      uint32
	HashFunction string
	Notes        string

	// PublicInputs 公开输入的见证字段名，顺序即公开信号顺序
	PublicInputs []string
	// PrivateInputs 私有输入的见证字段名
	PrivateInputs []string

	newCircuit func() frontend.Circuit
	assign     func(values map[string]*big.Int) frontend.Circuit
}

// NbPublic 公开信号数量
func (d *Definition) NbPublic() int {
	return len(d.PublicInputs)
}

// Key 电路版本键，如 "ownership.v1"
func (d *Definition) Key() string {
	return fmt.Sprintf("%s.v%d", d.ID, d.Version)
}

// Blank 返回用于编译的空电路
func (d *Definition) Blank() frontend.Circuit {
	return d.newCircuit()
}

// Assign 由完整见证构造电路赋值
func (d *Definition) Assign(w types.Witness) (frontend.Circuit, error) {
	values := make(map[string]*big.Int, len(d.PublicInputs)+len(d.PrivateInputs))
	for _, name := range append(append([]string{}, d.PublicInputs...), d.PrivateInputs...) {
		v, ok := w[name]
		if !ok || v == nil {
			return nil, fmt.Errorf("%w: witness field %q missing for circuit %s", zk.ErrInvalidInput, name, d.ID)
		}
		values[name] = v
	}
	return d.assign(values), nil
}

// AssignPublic 由公开信号值构造仅含公开输入的电路赋值（私有输入置零）
func (d *Definition) AssignPublic(signals []*big.Int) (frontend.Circuit, error) {
	if len(signals) != len(d.PublicInputs) {
		return nil, fmt.Errorf("%w: circuit %s expects %d public signals, got %d",
			zk.ErrStructural, d.ID, len(d.PublicInputs), len(signals))
	}
	values := make(map[string]*big.Int, len(d.PublicInputs)+len(d.PrivateInputs))
	for i, name := range d.PublicInputs {
		values[name] = signals[i]
	}
	for _, name := range d.PrivateInputs {
		values[name] = big.NewInt(0)
	}
	return d.assign(values), nil
}

// PublicValues 按公开信号顺序取出见证中的公开值
func (d *Definition) PublicValues(w types.Witness) []*big.Int {
	out := make([]*big.Int, len(d.PublicInputs))
	for i, name := range d.PublicInputs {
		out[i] = w[name]
	}
	return out
}

// ============================================================================
//                                 注册表
// ============================================================================

var registry = map[types.CircuitID]*Definition{
	types.CircuitOwnership: {
		ID:            types.CircuitOwnership,
		Version:       1,
		HashFunction:  "poseidon2",
		Notes:         "Poseidon2(secret) == commitment",
		PublicInputs:  []string{types.WitnessCommitment},
		PrivateInputs: []string{types.WitnessSecret},
		newCircuit:    func() frontend.Circuit { return &OwnershipCircuit{} },
		assign: func(v map[string]*big.Int) frontend.Circuit {
			return &OwnershipCircuit{
				Commitment: v[types.WitnessCommitment],
				Secret:     v[types.WitnessSecret],
			}
		},
	},
	types.CircuitRange: {
		ID:            types.CircuitRange,
		Version:       1,
		HashFunction:  "poseidon2",
		Notes:         "min <= value <= max, commitment == Poseidon2(value, min, max)",
		PublicInputs:  []string{types.WitnessMin, types.WitnessMax, types.WitnessCommitment},
		PrivateInputs: []string{types.WitnessValue},
		newCircuit:    func() frontend.Circuit { return &RangeCircuit{} },
		assign: func(v map[string]*big.Int) frontend.Circuit {
			return &RangeCircuit{
				Min:        v[types.WitnessMin],
				Max:        v[types.WitnessMax],
				Commitment: v[types.WitnessCommitment],
				Value:      v[types.WitnessValue],
			}
		},
	},
}

// Lookup 查找电路定义
func Lookup(id types.CircuitID) (*Definition, error) {
	def, ok := registry[id]
	if !ok {
		return nil, zk.WrapUnknownCircuitError(string(id))
	}
	return def, nil
}

// All 返回全部电路定义（按ID排序）
func All() []*Definition {
	defs := make([]*Definition, 0, len(registry))
	for _, d := range registry {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}
