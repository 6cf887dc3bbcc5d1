package api

import (
	"fmt"
	"time"

	"github.com/weisyn/zkprivacy/pkg/types"
)

// APIOptions 证明服务 HTTP 配置选项
type APIOptions struct {
	Host string `json:"host"` // 监听地址
	Port int    `json:"port"` // 监听端口

	// 超时配置（证明本身不设超时，这里只约束传输层）
	ReadTimeout     time.Duration `json:"read_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// 限流和安全
	RateLimitRPS   int   `json:"rate_limit_rps"`
	RateLimitBurst int   `json:"rate_limit_burst"`
	MaxBodyBytes   int64 `json:"max_body_bytes"`

	EnableMetrics bool `json:"enable_metrics"`
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置实现
func New(userConfig *types.UserAPIConfig) *Config {
	options := createDefaultAPIOptions()

	if userConfig != nil {
		convertAndMergeUserConfig(options, userConfig)
	}

	return &Config{options: options}
}

func createDefaultAPIOptions() *APIOptions {
	return &APIOptions{
		Host:            defaultHTTPHost,
		Port:            defaultHTTPPort,
		ReadTimeout:     defaultReadTimeout,
		IdleTimeout:     defaultIdleTimeout,
		ShutdownTimeout: defaultShutdownTimeout,
		RateLimitRPS:    defaultRateLimitRPS,
		RateLimitBurst:  defaultRateLimitBurst,
		MaxBodyBytes:    defaultMaxBodyBytes,
		EnableMetrics:   defaultEnableMetrics,
	}
}

// convertAndMergeUserConfig 将用户配置合并到默认配置中
// 使用指针类型来准确区分"未设置"和"设置为零值"
func convertAndMergeUserConfig(opts *APIOptions, userConfig *types.UserAPIConfig) {
	if userConfig.Host != nil {
		opts.Host = *userConfig.Host
	}
	if userConfig.Port != nil {
		opts.Port = *userConfig.Port
	}
	if userConfig.RateLimitRPS != nil {
		opts.RateLimitRPS = *userConfig.RateLimitRPS
	}
	if userConfig.RateLimitBurst != nil {
		opts.RateLimitBurst = *userConfig.RateLimitBurst
	}
	if userConfig.MaxBodyBytes != nil {
		opts.MaxBodyBytes = *userConfig.MaxBodyBytes
	}
	if userConfig.EnableMetrics != nil {
		opts.EnableMetrics = *userConfig.EnableMetrics
	}
}

// GetOptions 获取完整的API配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}

// Address 监听地址 host:port
func (o *APIOptions) Address() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}
