// Package app 应用装配与启动
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	httpapi "github.com/weisyn/zkprivacy/internal/api/http"
	appconfig "github.com/weisyn/zkprivacy/internal/config"
	"github.com/weisyn/zkprivacy/internal/core/infrastructure/log"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy"
	"github.com/weisyn/zkprivacy/pkg/interfaces/config"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// ConfigPathEnv 配置文件路径环境变量
const ConfigPathEnv = "ZKPRIVACY_CONFIG_PATH"

// defaultConfigPath 默认配置文件（不存在时使用内置默认值）
const defaultConfigPath = "configs/zkprivacy.json"

// App 运行中的应用
type App interface {
	// Stop 停止应用
	Stop() error

	// Wait 阻塞直到收到退出信号，然后停止应用
	Wait()
}

type internalApp struct {
	fxApp *fx.App
}

// Stop 停止应用
func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}

// Wait 等待退出信号
func (a *internalApp) Wait() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	sig := <-signals
	fmt.Printf("\n🛑 收到信号 %v，正在优雅退出...\n", sig)

	if err := a.Stop(); err != nil {
		fmt.Printf("⚠️ 停止应用时出错: %v\n", err)
	}
}

// Modules 返回应用的 fx 模块（按依赖顺序）
func Modules(appOptions config.AppOptions, enableAPI bool) []fx.Option {
	modules := []fx.Option{
		fx.Provide(func() config.AppOptions { return appOptions }),
		appconfig.Module(),
		log.Module(),
		zkprivacy.Module(),
	}
	if enableAPI {
		modules = append(modules, httpapi.Module())
	}
	return modules
}

// Start 装配并启动应用
//
// targets 为 fx.Populate 的目标指针，用于一次性命令取出已装配的组件。
func Start(targets []interface{}, appOptions ...Option) (App, error) {
	opts := newOptions(appOptions...)
	if err := opts.load(); err != nil {
		return nil, err
	}

	fxOptions := append(Modules(opts, opts.enableAPI), fx.NopLogger)
	if len(targets) > 0 {
		fxOptions = append(fxOptions, fx.Populate(targets...))
	}

	fxApp := fx.New(fxOptions...)
	if err := fxApp.Err(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := fxApp.Start(ctx); err != nil {
		return nil, fmt.Errorf("启动应用失败: %w", err)
	}

	return &internalApp{fxApp: fxApp}, nil
}

// ConfigFilePath 解析配置文件路径：显式参数 > 环境变量 > 默认路径（存在时）
func ConfigFilePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if envPath := os.Getenv(ConfigPathEnv); envPath != "" {
		return envPath
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

func loadConfig(path string) (*types.AppConfig, error) {
	return appconfig.LoadAppConfig(ConfigFilePath(path))
}
