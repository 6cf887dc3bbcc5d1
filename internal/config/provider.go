package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/weisyn/zkprivacy/internal/config/api"
	"github.com/weisyn/zkprivacy/internal/config/custody"
	"github.com/weisyn/zkprivacy/internal/config/log"
	"github.com/weisyn/zkprivacy/internal/config/zkproof"
	"github.com/weisyn/zkprivacy/pkg/interfaces/config"
	"github.com/weisyn/zkprivacy/pkg/types"
)

const defaultAppName = "zkprivacy"

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// 编译时校验
var _ config.Provider = (*Provider)(nil)

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{
		appConfig: appConfig,
	}
}

// LoadAppConfig 从 JSON 文件读取用户配置
//
// 路径为空时返回空配置（全部使用默认值）。
func LoadAppConfig(path string) (*types.AppConfig, error) {
	if path == "" {
		return &types.AppConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return &appConfig, nil
}

// GetAppName 获取应用名称
func (p *Provider) GetAppName() string {
	if p.appConfig.AppName != nil && *p.appConfig.AppName != "" {
		return *p.appConfig.AppName
	}
	return defaultAppName
}

// GetDataDir 获取数据根目录（可能为空）
func (p *Provider) GetDataDir() string {
	if p.appConfig.DataDir != nil {
		return *p.appConfig.DataDir
	}
	return ""
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	return log.New(p.appConfig.Log).GetOptions()
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	return api.New(p.appConfig.API).GetOptions()
}

// GetCustody 获取秘密托管配置
func (p *Provider) GetCustody() *custody.CustodyOptions {
	return custody.New(p.appConfig.Custody, p.GetDataDir()).GetOptions()
}

// GetZKProof 获取零知识证明配置
func (p *Provider) GetZKProof() *zkproof.ZKProofOptions {
	return zkproof.New(p.appConfig.ZKProof, p.GetDataDir()).GetOptions()
}

// GetAppConfig 获取原始用户配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}
