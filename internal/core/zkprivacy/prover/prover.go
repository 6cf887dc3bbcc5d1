// Package prover Groth16 证明后端
//
// 🎯 **专门职责**：(circuit_id, witness) -> (proof, public_signals)
//
// 证明是 CPU 密集型操作，单个证明内部不并行化；不同调用可并发执行，
// 只共享只读的电路产物。证明进行中不可取消，也没有内部超时。
package prover

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/artifacts"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/commitment"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/metrics"
	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// Prover Groth16 证明器
type Prover struct {
	logger    log.Logger
	artifacts *artifacts.Manager
	metrics   *metrics.ProofMetrics
}

// 编译时校验
var _ zk.ProofBackend = (*Prover)(nil)

// New 创建证明器
func New(logger log.Logger, manager *artifacts.Manager, proofMetrics *metrics.ProofMetrics) *Prover {
	return &Prover{
		logger:    logger,
		artifacts: manager,
		metrics:   proofMetrics,
	}
}

// Prove 生成证明
//
// 📋 **错误分类**：
//   - 见证缺字段或值不是规范 field 元素：ErrInvalidInput
//   - 约束不满足、产物加载失败：ErrProverFailure
func (p *Prover) Prove(ctx context.Context, circuit types.CircuitID, witness types.Witness) (*types.Proof, types.PublicSignals, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	proof, signals, err := p.prove(circuit, witness)
	if err != nil {
		p.metrics.ObserveProof(string(circuit), metrics.ResultError, 0)
		return nil, nil, err
	}

	elapsed := time.Since(start)
	p.metrics.ObserveProof(string(circuit), metrics.ResultOK, elapsed)
	p.logger.Debugf("ZK证明生成完成: circuit=%s v=%d, 耗时=%v, 大小=%d字节",
		proof.Circuit, proof.Version, elapsed, len(proof.Data)/2)
	return proof, signals, nil
}

func (p *Prover) prove(circuit types.CircuitID, witness types.Witness) (*types.Proof, types.PublicSignals, error) {
	bundle, err := p.artifacts.Load(circuit)
	if err != nil {
		return nil, nil, err
	}
	def := bundle.Definition

	for name, v := range witness {
		if !commitment.IsCanonical(v) {
			return nil, nil, fmt.Errorf("%w: witness field %q is not a canonical field element", zk.ErrInvalidInput, name)
		}
	}
	assignment, err := def.Assign(witness)
	if err != nil {
		return nil, nil, err
	}

	restore := artifacts.QuietGnark()
	defer restore()

	fullWitness, err := frontend.NewWitness(assignment, ecc.BLS12_377.ScalarField())
	if err != nil {
		return nil, nil, zk.WrapProverFailureError(string(circuit), fmt.Errorf("构建见证失败: %w", err))
	}

	gproof, err := groth16.Prove(bundle.CS, bundle.ProvingKey, fullWitness)
	if err != nil {
		return nil, nil, zk.WrapProverFailureError(string(circuit), err)
	}

	var buf bytes.Buffer
	if _, err := gproof.WriteTo(&buf); err != nil {
		return nil, nil, zk.WrapProverFailureError(string(circuit), fmt.Errorf("序列化证明失败: %w", err))
	}

	proof := &types.Proof{
		Protocol: types.ProvingSchemeGroth16,
		Curve:    types.CurveBLS12377,
		Circuit:  def.ID,
		Version:  def.Version,
		VKHash:   bundle.VKHash,
		Data:     hex.EncodeToString(buf.Bytes()),
	}
	return proof, types.NewPublicSignals(def.PublicValues(witness)...), nil
}
