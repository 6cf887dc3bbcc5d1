// Package commitment 提供与电路一致的承诺计算（Poseidon2，BLS12-377 标量域）
//
// 🎯 **一致性要求**：
// 电路内使用 gnark std/hash/poseidon2 的 Merkle-Damgård 哈希器，
// 这里使用 gnark-crypto 的原生实现，二者对同一输入序列输出相同的 field 元素。
package commitment

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr/poseidon2"

	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
)

// Modulus 返回标量域模数（副本）
func Modulus() *big.Int {
	return fr.Modulus()
}

// IsCanonical 判断 v 是否为规范 field 元素（0 <= v < p）
func IsCanonical(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(fr.Modulus()) < 0
}

// Hash 计算 Poseidon2(inputs...)
//
// 每个输入按 32 字节大端写入；非规范输入返回 ErrInvalidInput。
func Hash(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no inputs", zk.ErrInvalidInput)
	}

	modulus := fr.Modulus()
	hasher := poseidon2.NewMerkleDamgardHasher()
	block := make([]byte, fr.Bytes)

	for i, in := range inputs {
		if in == nil {
			return nil, zk.WrapInvalidInputError(i, "is nil")
		}
		if in.Sign() < 0 {
			return nil, zk.WrapInvalidInputError(i, "is negative")
		}
		if in.Cmp(modulus) >= 0 {
			return nil, zk.WrapInvalidInputError(i, "exceeds field modulus")
		}

		in.FillBytes(block)
		if _, err := hasher.Write(block); err != nil {
			return nil, zk.WrapInvalidInputError(i, err.Error())
		}
	}

	return new(big.Int).SetBytes(hasher.Sum(nil)), nil
}

// RangeCommitment 区间证明的值承诺：Hash(value, min, max)
func RangeCommitment(value, min, max *big.Int) (*big.Int, error) {
	return Hash(value, min, max)
}
