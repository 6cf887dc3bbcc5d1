package http

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	apiconfig "github.com/weisyn/zkprivacy/internal/config/api"
	infralog "github.com/weisyn/zkprivacy/internal/core/infrastructure/log"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/artifacts"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/orchestrator"
	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
)

// ModuleInput HTTP 模块依赖
type ModuleInput struct {
	fx.In

	Lifecycle    fx.Lifecycle
	Logger       log.Logger
	Options      *apiconfig.APIOptions
	Registry     *prometheus.Registry `optional:"true"`
	Orchestrator *orchestrator.Orchestrator
	Artifacts    *artifacts.Manager
	StoreKind    string `name:"custody_store_kind" optional:"true"`
}

// Module 返回 HTTP 服务模块
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(ProvideServer),
		// 强制实例化，使生命周期钩子生效
		fx.Invoke(func(*Server) {}),
	)
}

// ProvideServer 创建服务器并注册生命周期钩子
func ProvideServer(input ModuleInput) *Server {
	logger := infralog.NewModuleLogger(input.Logger, "http")

	server := NewServer(RouterDeps{
		Logger:    logger,
		Options:   input.Options,
		Registry:  input.Registry,
		Proofs:    input.Orchestrator,
		Circuits:  input.Artifacts,
		StoreKind: input.StoreKind,
	})

	input.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})

	return server
}
