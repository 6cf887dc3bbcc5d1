package commitment

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
)

// PackWidth 任意秘密材料打包时保留的前缀字节数
//
// 31 字节 = 248 位，恒小于 BLS12-377 标量域模数（253 位）。
const PackWidth = 31

// PackBytes 将任意字节打包为 field 元素：取前 PackWidth 字节，按大端解释
func PackBytes(b []byte) *big.Int {
	if len(b) > PackWidth {
		b = b[:PackWidth]
	}
	return new(big.Int).SetBytes(b)
}

// PackSecretValue 打包演示接口的 secret 字段（字符串或数字）
//
// ⚠️ 演示秘密空间与 RandomSecret 生成的托管秘密空间相互独立，
// 二者只共用承诺函数与电路。
func PackSecretValue(v interface{}) (*big.Int, error) {
	switch s := v.(type) {
	case string:
		if s == "" {
			return nil, fmt.Errorf("%w: secret is empty", zk.ErrInvalidInput)
		}
		return PackBytes([]byte(s)), nil
	case json.Number:
		return PackBytes([]byte(s.String())), nil
	case float64:
		return PackBytes([]byte(strconv.FormatFloat(s, 'f', -1, 64))), nil
	case int:
		return PackBytes([]byte(strconv.Itoa(s))), nil
	case int64:
		return PackBytes([]byte(strconv.FormatInt(s, 10))), nil
	case nil:
		return nil, fmt.Errorf("%w: secret is missing", zk.ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: secret must be a string or number, got %T", zk.ErrInvalidInput, v)
	}
}

// RandomSecret 生成均匀随机的 field 元素作为秘密
func RandomSecret() (*big.Int, error) {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		return nil, fmt.Errorf("生成随机秘密失败: %w", err)
	}
	out := new(big.Int)
	e.BigInt(out)
	return out, nil
}
