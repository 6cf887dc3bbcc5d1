// Package zkprivacy 零知识隐私子系统模块装配
//
// 📦 **子模块组织**：
//   - commitment/   - Poseidon2 承诺引擎
//   - circuits/     - Ownership / Range 电路与注册表
//   - artifacts/    - 电路产物（约束系统、证明密钥、验证密钥）按电路一次性加载
//   - prover/       - Groth16 证明后端
//   - verifier/     - Groth16 验证器（bigcache 结果缓存）
//   - custody/      - 设备本地秘密托管（memory / file / badger）
//   - orchestrator/ - 客户端证明编排
//   - metrics/      - 证明与验证指标
//
// 🔧 **使用方式**：
//
//	app := fx.New(
//	    config.Module(),
//	    log.Module(),
//	    zkprivacy.Module(),
//	)
package zkprivacy

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	custodyconfig "github.com/weisyn/zkprivacy/internal/config/custody"
	zkproofconfig "github.com/weisyn/zkprivacy/internal/config/zkproof"
	infralog "github.com/weisyn/zkprivacy/internal/core/infrastructure/log"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/artifacts"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/custody"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/metrics"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/orchestrator"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/prover"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/verifier"
	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
)

// ==================== 模块输入依赖 ====================

// ModuleInput 零知识隐私模块的输入依赖
type ModuleInput struct {
	fx.In

	Logger         log.Logger                    `optional:"false"`
	ZKProofOptions *zkproofconfig.ZKProofOptions `optional:"false"`
	CustodyOptions *custodyconfig.CustodyOptions `optional:"false"`
	Lifecycle      fx.Lifecycle
}

// ==================== 模块输出服务 ====================

// ModuleOutput 零知识隐私模块导出的服务
type ModuleOutput struct {
	fx.Out

	Registry     *prometheus.Registry
	Metrics      *metrics.ProofMetrics
	Artifacts    *artifacts.Manager
	SecretStore  zk.SecretStore
	ProofBackend zk.ProofBackend
	Verifier     zk.Verifier
	Orchestrator *orchestrator.Orchestrator
	StoreKind    string `name:"custody_store_kind"`
}

// Module 构建零知识隐私模块
func Module() fx.Option {
	return fx.Module("zkprivacy",
		fx.Provide(ProvideServices),
		fx.Invoke(func(lc fx.Lifecycle, logger log.Logger, opts *zkproofconfig.ZKProofOptions, manager *artifacts.Manager) {
			if !opts.PreloadOnStart {
				return
			}
			lc.Append(preloadHook(logger, manager.Preload))
		}),
	)
}

// preloadHook 后台预加载电路产物
//
// 可信设置可能较慢，放到后台，首个请求会等待同一个 once。
// OnStop 等待预加载结束（受停止上下文约束）后才关闭验证器与托管存储。
func preloadHook(logger log.Logger, preload func() error) fx.Hook {
	done := make(chan struct{})
	started := false
	return fx.Hook{
		OnStart: func(ctx context.Context) error {
			started = true
			go func() {
				defer close(done)
				if err := preload(); err != nil {
					logger.Errorf("电路产物预加载失败: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if !started {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				logger.Warn("⚠️ 停止时电路产物预加载仍在进行")
				return ctx.Err()
			}
		},
	}
}

// ProvideServices 创建并装配所有子组件
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	zkLogger := infralog.NewModuleLogger(input.Logger, "zkprivacy")

	if _, err := zkproofconfig.NewFromOptions(input.ZKProofOptions).ResolveCurveID(); err != nil {
		return ModuleOutput{}, err
	}

	registry := metrics.NewRegistry()
	proofMetrics := metrics.NewProofMetrics(registry)

	manager := artifacts.NewManager(zkLogger, input.ZKProofOptions.ArtifactsDir)
	p := prover.New(zkLogger, manager, proofMetrics)

	v, err := verifier.New(zkLogger, verifier.ManagerKeySource{Manager: manager}, proofMetrics, &verifier.CacheConfig{
		TTL:       input.ZKProofOptions.VerifyCacheTTL,
		MaxSizeMB: input.ZKProofOptions.VerifyCacheMaxMB,
	})
	if err != nil {
		return ModuleOutput{}, err
	}

	custodyLogger := infralog.NewModuleLogger(input.Logger, "custody")
	store, err := custody.Open(custodyLogger, input.CustodyOptions)
	if err != nil {
		_ = v.Close()
		return ModuleOutput{}, fmt.Errorf("打开秘密托管存储失败: %w", err)
	}

	input.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = v.Close()
			return store.Close()
		},
	})

	zkLogger.Infof("📦 零知识隐私模块已装配: curve=%s, artifacts=%q, custody=%s",
		input.ZKProofOptions.Curve, manager.Dir(), store.Kind())

	return ModuleOutput{
		Registry:     registry,
		Metrics:      proofMetrics,
		Artifacts:    manager,
		SecretStore:  store,
		ProofBackend: p,
		Verifier:     v,
		Orchestrator: orchestrator.New(zkLogger, store, p, v, proofMetrics),
		StoreKind:    store.Kind(),
	}, nil
}
