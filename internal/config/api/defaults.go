package api

import "time"

// 证明服务 HTTP 默认配置值
const (
	// defaultHTTPHost 默认只监听本机
	// 演示接口会接收秘密材料，不应默认暴露到外部网络
	defaultHTTPHost = "127.0.0.1"

	// defaultHTTPPort 默认端口
	defaultHTTPPort = 8090

	// defaultReadTimeout 读取请求超时
	defaultReadTimeout = 15 * time.Second

	// defaultIdleTimeout 空闲连接超时
	defaultIdleTimeout = 60 * time.Second

	// defaultShutdownTimeout 优雅关闭等待时间
	defaultShutdownTimeout = 5 * time.Second

	// defaultRateLimitRPS 每客户端每秒请求数（证明为 CPU 密集型操作）
	defaultRateLimitRPS = 5

	// defaultRateLimitBurst 突发容量
	defaultRateLimitBurst = 10

	// defaultMaxBodyBytes 最大请求体 1MB
	defaultMaxBodyBytes = 1 << 20

	// defaultEnableMetrics 默认暴露 /metrics
	defaultEnableMetrics = true
)
