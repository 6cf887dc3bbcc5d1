package verifier

import (
	"fmt"
	"io"

	"github.com/consensys/gnark/backend/groth16"

	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/artifacts"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/circuits"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// VerifyingKey 验证某个电路版本所需的全部信息
type VerifyingKey struct {
	Definition *circuits.Definition
	Key        groth16.VerifyingKey
	Hash       string
}

// KeySource 验证密钥来源
type KeySource interface {
	VerifyingKey(circuit types.CircuitID) (*VerifyingKey, error)
}

// ManagerKeySource 从电路产物管理器获取验证密钥（与证明器共用同一份产物）
type ManagerKeySource struct {
	Manager *artifacts.Manager
}

// VerifyingKey 实现 KeySource
func (s ManagerKeySource) VerifyingKey(circuit types.CircuitID) (*VerifyingKey, error) {
	bundle, err := s.Manager.Load(circuit)
	if err != nil {
		return nil, err
	}
	return &VerifyingKey{
		Definition: bundle.Definition,
		Key:        bundle.VerifyingKey,
		Hash:       bundle.VKHash,
	}, nil
}

// StaticKeySource 只持有分发出来的验证密钥（verifying.key.json），不需要证明密钥
type StaticKeySource struct {
	keys map[types.CircuitID]*VerifyingKey
}

// NewStaticKeySource 从若干 verifying.key.json 读取验证密钥
func NewStaticKeySource(readers ...io.Reader) (*StaticKeySource, error) {
	s := &StaticKeySource{keys: make(map[types.CircuitID]*VerifyingKey)}
	for _, r := range readers {
		export, vk, err := artifacts.ReadVerifyingKeyExport(r)
		if err != nil {
			return nil, err
		}
		def, err := circuits.Lookup(export.Circuit)
		if err != nil {
			return nil, err
		}
		if def.Version != export.Version {
			return nil, fmt.Errorf("验证密钥版本 %s.v%d 与本地电路 %s 不符", export.Circuit, export.Version, def.Key())
		}
		s.keys[def.ID] = &VerifyingKey{Definition: def, Key: vk, Hash: export.VKHash}
	}
	return s, nil
}

// VerifyingKey 实现 KeySource
func (s *StaticKeySource) VerifyingKey(circuit types.CircuitID) (*VerifyingKey, error) {
	vk, ok := s.keys[circuit]
	if !ok {
		return nil, fmt.Errorf("未加载电路 %s 的验证密钥", circuit)
	}
	return vk, nil
}
