// Package verifier 证明验证
//
// 🎯 **结果与错误分离**：
//   - false 是合法结果：配对检查失败、电路/版本/验证密钥不匹配、公开信号超出模数
//   - ErrStructural：十六进制无法解析、证明字节截断、公开信号个数错误、
//     未知方案/曲线/电路、非十进制信号
//
// 验证是纯函数，结果按 (circuit, signals, proof) 的 SHA-256 缓存在 bigcache 中。
package verifier

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/artifacts"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/circuits"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/commitment"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/metrics"
	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// CacheConfig 验证结果缓存配置
type CacheConfig struct {
	TTL       time.Duration
	MaxSizeMB int
}

// Verifier Groth16 验证器
type Verifier struct {
	logger  log.Logger
	keys    KeySource
	cache   *bigcache.BigCache
	metrics *metrics.ProofMetrics
}

// 编译时校验
var _ zk.Verifier = (*Verifier)(nil)

// New 创建验证器；cacheConfig 为 nil 时不缓存
func New(logger log.Logger, keys KeySource, proofMetrics *metrics.ProofMetrics, cacheConfig *CacheConfig) (*Verifier, error) {
	v := &Verifier{
		logger:  logger,
		keys:    keys,
		metrics: proofMetrics,
	}

	if cacheConfig != nil && cacheConfig.TTL > 0 {
		cfg := bigcache.DefaultConfig(cacheConfig.TTL)
		cfg.Shards = 64
		cfg.MaxEntriesInWindow = 10000
		cfg.MaxEntrySize = 64 // 值只有 1 字节，键为 64 字符摘要
		cfg.HardMaxCacheSize = cacheConfig.MaxSizeMB
		cfg.CleanWindow = cacheConfig.TTL / 2
		cfg.Verbose = false

		cache, err := bigcache.New(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("创建验证结果缓存失败: %w", err)
		}
		v.cache = cache
	}
	return v, nil
}

// Close 释放缓存
func (v *Verifier) Close() error {
	if v.cache == nil {
		return nil
	}
	return v.cache.Close()
}

// Verify 验证证明
func (v *Verifier) Verify(ctx context.Context, circuit types.CircuitID, signals types.PublicSignals, proof *types.Proof) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	ok, err := v.verify(circuit, signals, proof)
	switch {
	case err != nil && errors.Is(err, zk.ErrStructural):
		v.metrics.ObserveVerify(string(circuit), metrics.ResultError)
	case err != nil:
		v.metrics.ObserveVerify(string(circuit), metrics.ResultError)
		v.logger.Errorf("验证器异常: circuit=%s, err=%v", circuit, err)
	case ok:
		v.metrics.ObserveVerify(string(circuit), metrics.ResultValid)
	default:
		v.metrics.ObserveVerify(string(circuit), metrics.ResultInvalid)
	}
	return ok, err
}

func (v *Verifier) verify(circuit types.CircuitID, signals types.PublicSignals, proof *types.Proof) (bool, error) {
	// 1. 结构检查
	if proof == nil {
		return false, zk.WrapStructuralError(string(circuit), "proof is missing")
	}
	if proof.Protocol != types.ProvingSchemeGroth16 || proof.Curve != types.CurveBLS12377 {
		return false, zk.WrapStructuralError(string(circuit),
			fmt.Sprintf("unsupported protocol/curve %q/%q", proof.Protocol, proof.Curve))
	}
	def, err := circuits.Lookup(circuit)
	if err != nil {
		return false, zk.WrapStructuralError(string(circuit), "unknown circuit")
	}
	if len(signals) != def.NbPublic() {
		return false, zk.WrapStructuralError(string(circuit),
			fmt.Sprintf("expected %d public signals, got %d", def.NbPublic(), len(signals)))
	}
	values, err := signals.Values()
	if err != nil {
		return false, zk.WrapStructuralError(string(circuit), err.Error())
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(proof.Data, "0x"))
	if err != nil || len(raw) == 0 {
		return false, zk.WrapStructuralError(string(circuit), "proof data is not hex")
	}

	// 2. 缓存
	key := cacheKey(circuit, signals, proof)
	if cached, hit := v.lookup(key); hit {
		return cached, nil
	}

	// 3. 绑定检查：电路、版本、验证密钥不匹配都是 false
	if proof.Circuit != circuit || proof.Version != def.Version {
		v.logger.Debugf("证明电路不匹配: expected=%s, got=%s.v%d", def.Key(), proof.Circuit, proof.Version)
		return v.remember(key, false), nil
	}
	vk, err := v.keys.VerifyingKey(circuit)
	if err != nil {
		return false, err
	}
	if !strings.EqualFold(proof.VKHash, vk.Hash) {
		v.logger.Debugf("验证密钥哈希不匹配: circuit=%s", def.Key())
		return v.remember(key, false), nil
	}
	for _, value := range values {
		if !commitment.IsCanonical(value) {
			return v.remember(key, false), nil
		}
	}

	// 4. 反序列化证明（必须恰好消费全部字节）
	gproof := groth16.NewProof(ecc.BLS12_377)
	n, err := gproof.ReadFrom(bytes.NewReader(raw))
	if err != nil {
		return false, zk.WrapStructuralError(string(circuit), "proof bytes: "+err.Error())
	}
	if int(n) != len(raw) {
		return false, zk.WrapStructuralError(string(circuit),
			fmt.Sprintf("proof has %d trailing bytes", len(raw)-int(n)))
	}

	// 5. 配对检查
	assignment, err := def.AssignPublic(values)
	if err != nil {
		return false, err
	}

	restore := artifacts.QuietGnark()
	defer restore()

	publicWitness, err := frontend.NewWitness(assignment, ecc.BLS12_377.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, zk.WrapStructuralError(string(circuit), "public witness: "+err.Error())
	}
	if err := groth16.Verify(gproof, vk.Key, publicWitness); err != nil {
		v.logger.Debugf("证明验证未通过: circuit=%s, err=%v", def.Key(), err)
		return v.remember(key, false), nil
	}
	return v.remember(key, true), nil
}

func cacheKey(circuit types.CircuitID, signals types.PublicSignals, proof *types.Proof) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%d|%s|", circuit, proof.Protocol, proof.Curve, proof.Version, strings.ToLower(proof.VKHash))
	fmt.Fprintf(h, "%s|%s|", proof.Circuit, strings.Join(signals, ","))
	h.Write([]byte(strings.ToLower(strings.TrimPrefix(proof.Data, "0x"))))
	return hex.EncodeToString(h.Sum(nil))
}

func (v *Verifier) lookup(key string) (bool, bool) {
	if v.cache == nil {
		return false, false
	}
	entry, err := v.cache.Get(key)
	if err != nil || len(entry) != 1 {
		return false, false
	}
	return entry[0] == 1, true
}

func (v *Verifier) remember(key string, result bool) bool {
	if v.cache == nil {
		return result
	}
	var b byte
	if result {
		b = 1
	}
	if err := v.cache.Set(key, []byte{b}); err != nil {
		v.logger.Warnf("写入验证结果缓存失败: %v", err)
	}
	return result
}
