// Package config provides configuration provider interfaces.
package config

import (
	apiconfig "github.com/weisyn/zkprivacy/internal/config/api"
	custodyconfig "github.com/weisyn/zkprivacy/internal/config/custody"
	logconfig "github.com/weisyn/zkprivacy/internal/config/log"
	zkproofconfig "github.com/weisyn/zkprivacy/internal/config/zkproof"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// Provider 配置提供者接口
type Provider interface {
	// GetAppName 获取应用名称
	GetAppName() string

	// GetDataDir 获取数据根目录
	GetDataDir() string

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetAPI 获取证明服务 HTTP 配置
	GetAPI() *apiconfig.APIOptions

	// GetCustody 获取秘密托管配置
	GetCustody() *custodyconfig.CustodyOptions

	// GetZKProof 获取零知识证明配置
	GetZKProof() *zkproofconfig.ZKProofOptions

	// GetAppConfig 获取原始用户配置
	GetAppConfig() *types.AppConfig
}
