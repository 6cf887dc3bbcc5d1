// Package orchestrator 客户端证明编排
//
// 🎯 **职责**：把秘密托管、证明后端与验证器组合成两个协议
//   - Ownership：读取主体秘密 → 计算承诺 → 证明 → 自验证
//   - Range：本地区间检查 → 计算值承诺 → 证明
//
// 编排器只依赖 SecretStore / ProofBackend / Verifier 三个接口，具体实现可替换。
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/commitment"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/custody"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/metrics"
	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// Orchestrator 证明编排器
type Orchestrator struct {
	logger   log.Logger
	store    zk.SecretStore
	backend  zk.ProofBackend
	verifier zk.Verifier
	metrics  *metrics.ProofMetrics

	// createMu 串行化 CreateSecret，保证同一主体只生成一次秘密
	createMu sync.Mutex
}

// New 创建证明编排器
func New(logger log.Logger, store zk.SecretStore, backend zk.ProofBackend, verifier zk.Verifier, proofMetrics *metrics.ProofMetrics) *Orchestrator {
	return &Orchestrator{
		logger:   logger,
		store:    store,
		backend:  backend,
		verifier: verifier,
		metrics:  proofMetrics,
	}
}

// ============================================================================
//                                秘密生命周期
// ============================================================================

// CreateSecret 为主体生成秘密并返回承诺
//
// 已存在秘密时直接复用，不会覆盖。
func (o *Orchestrator) CreateSecret(ctx context.Context, subjectID string) (*big.Int, error) {
	o.createMu.Lock()
	defer o.createMu.Unlock()

	secret, ok, err := o.store.Load(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		secret, err = commitment.RandomSecret()
		if err != nil {
			return nil, fmt.Errorf("生成秘密失败: %w", err)
		}
		if err := o.store.Store(ctx, subjectID, secret); err != nil {
			return nil, err
		}
		o.logger.Infof("🔐 已为主体生成秘密: subject=%s", subjectID)
	}
	return commitment.Hash(secret)
}

// Commitment 返回主体秘密的承诺
func (o *Orchestrator) Commitment(ctx context.Context, subjectID string) (*big.Int, error) {
	secret, err := o.loadSecret(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return commitment.Hash(secret)
}

// DestroySecret 删除主体秘密（不存在时为空操作）
func (o *Orchestrator) DestroySecret(ctx context.Context, subjectID string) error {
	if err := o.store.Remove(ctx, subjectID); err != nil {
		return err
	}
	o.logger.Infof("🗑️ 已删除主体秘密: subject=%s", subjectID)
	return nil
}

// ListSubjects 列出已托管秘密的主体
func (o *Orchestrator) ListSubjects(ctx context.Context) ([]string, error) {
	return o.store.ListSubjects(ctx)
}

func (o *Orchestrator) loadSecret(ctx context.Context, subjectID string) (*big.Int, error) {
	secret, ok, err := o.store.Load(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		id, _ := custody.NormalizeSubjectID(subjectID)
		return nil, zk.WrapMissingSecretError(id)
	}
	return secret, nil
}

// ============================================================================
//                                Ownership 协议
// ============================================================================

// ProveOwnership 证明持有主体秘密
func (o *Orchestrator) ProveOwnership(ctx context.Context, subjectID string) (*types.ProofResult, error) {
	secret, err := o.loadSecret(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return o.ProveOwnershipOf(ctx, secret)
}

// ProveOwnershipOf 对显式给出的秘密执行 Ownership 协议
//
// 证明生成后立即自验证；公开承诺与本地计算不一致或验证失败时
// 记录完整性告警并返回 ErrProverFailure，绝不返回未通过自验证的证明。
func (o *Orchestrator) ProveOwnershipOf(ctx context.Context, secret *big.Int) (*types.ProofResult, error) {
	c, err := commitment.Hash(secret)
	if err != nil {
		return nil, err
	}

	witness := types.Witness{
		types.WitnessSecret:     secret,
		types.WitnessCommitment: c,
	}
	proof, signals, err := o.backend.Prove(ctx, types.CircuitOwnership, witness)
	if err != nil {
		return nil, asProverFailure(types.CircuitOwnership, err)
	}

	// 自验证
	if len(signals) != 1 || signals[0] != c.String() {
		o.logger.Warnf("⚠️ 完整性告警: ownership 公开承诺与本地计算不一致, signals=%v", signals)
		return nil, zk.WrapProverFailureError(string(types.CircuitOwnership), errors.New("self-verification failed: commitment mismatch"))
	}
	ok, err := o.verifier.Verify(ctx, types.CircuitOwnership, signals, proof)
	if err != nil {
		o.logger.Warnf("⚠️ 完整性告警: ownership 自验证异常: %v", err)
		return nil, zk.WrapProverFailureError(string(types.CircuitOwnership), err)
	}
	if !ok {
		o.logger.Warnf("⚠️ 完整性告警: ownership 证明未通过自验证, commitment=%s", c.String())
		return nil, zk.WrapProverFailureError(string(types.CircuitOwnership), errors.New("self-verification failed"))
	}

	return &types.ProofResult{Proof: proof, PublicSignals: signals}, nil
}

// ============================================================================
//                                 Range 协议
// ============================================================================

// ProveRange 证明 min <= value <= max
//
// 区间不成立或任一值不是规范 field 元素时返回 ErrInvalidRange，不调用证明器。
func (o *Orchestrator) ProveRange(ctx context.Context, value, min, max *big.Int) (*types.ProofResult, error) {
	if err := checkRange(value, min, max); err != nil {
		o.metrics.ObserveProof(string(types.CircuitRange), metrics.ResultRejected, 0)
		o.logger.Debugf("区间证明本地拒绝: %v", err)
		return nil, err
	}

	c, err := commitment.RangeCommitment(value, min, max)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	proof, signals, err := o.backend.Prove(ctx, types.CircuitRange, types.Witness{
		types.WitnessValue:      value,
		types.WitnessMin:        min,
		types.WitnessMax:        max,
		types.WitnessCommitment: c,
	})
	if err != nil {
		return nil, asProverFailure(types.CircuitRange, err)
	}
	o.logger.Debugf("区间证明完成: 耗时=%v", time.Since(start))

	return &types.ProofResult{Proof: proof, PublicSignals: signals}, nil
}

func checkRange(value, min, max *big.Int) error {
	for name, v := range map[string]*big.Int{"value": value, "min": min, "max": max} {
		if !commitment.IsCanonical(v) {
			return zk.WrapInvalidRangeError(fmt.Sprintf("%s is not a canonical field element", name))
		}
	}
	if min.Cmp(max) > 0 {
		return zk.WrapInvalidRangeError(fmt.Sprintf("min %s > max %s", min, max))
	}
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return zk.WrapInvalidRangeError(fmt.Sprintf("value outside [%s, %s]", min, max))
	}
	return nil
}

// ============================================================================
//                                   验证
// ============================================================================

// Verify 验证证明
func (o *Orchestrator) Verify(ctx context.Context, circuit types.CircuitID, signals types.PublicSignals, proof *types.Proof) (bool, error) {
	return o.verifier.Verify(ctx, circuit, signals, proof)
}

// asProverFailure 保留使用错误与已分类错误，其余归为证明失败
func asProverFailure(circuit types.CircuitID, err error) error {
	switch {
	case errors.Is(err, zk.ErrProverFailure),
		errors.Is(err, zk.ErrInvalidInput),
		errors.Is(err, zk.ErrUnknownCircuit),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		zk.IsUsageError(err):
		return err
	default:
		return zk.WrapProverFailureError(string(circuit), err)
	}
}
