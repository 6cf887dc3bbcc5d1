// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据根目录（托管存储与电路产物的默认父目录）

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 证明服务 HTTP 配置
	API *UserAPIConfig `json:"api,omitempty"`

	// 秘密托管配置
	Custody *UserCustodyConfig `json:"custody,omitempty"`

	// 零知识证明配置
	ZKProof *UserZKProofConfig `json:"zkproof,omitempty"`
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level     *string `json:"level,omitempty"`      // 日志级别：debug, info, warn, error, fatal
	FilePath  *string `json:"file_path,omitempty"`  // 日志文件路径
	ToConsole *bool   `json:"to_console,omitempty"` // 是否输出到控制台

	// 日志轮转（lumberjack）
	MaxSize    *int  `json:"max_size,omitempty"`    // 单个日志文件最大大小(MB)
	MaxBackups *int  `json:"max_backups,omitempty"` // 最大备份文件数
	MaxAge     *int  `json:"max_age,omitempty"`     // 日志文件最大保留天数
	Compress   *bool `json:"compress,omitempty"`    // 是否压缩历史日志文件
}

// UserAPIConfig 用户API配置
type UserAPIConfig struct {
	Host           *string `json:"host,omitempty"`             // 监听地址
	Port           *int    `json:"port,omitempty"`             // 监听端口
	RateLimitRPS   *int    `json:"rate_limit_rps,omitempty"`   // 每客户端每秒请求数
	RateLimitBurst *int    `json:"rate_limit_burst,omitempty"` // 突发容量
	MaxBodyBytes   *int64  `json:"max_body_bytes,omitempty"`   // 最大请求体（字节）
	EnableMetrics  *bool   `json:"enable_metrics,omitempty"`   // 是否暴露 /metrics
}

// UserCustodyConfig 用户托管配置
type UserCustodyConfig struct {
	Backend    *string `json:"backend,omitempty"`    // memory | file | badger
	Path       *string `json:"path,omitempty"`       // 文件路径或 Badger 目录
	Passphrase *string `json:"passphrase,omitempty"` // 文件后端静态加密口令（可选）
}

// UserZKProofConfig 用户零知识证明配置
type UserZKProofConfig struct {
	Curve            *string `json:"curve,omitempty"`              // 椭圆曲线（仅支持 bls12-377）
	ArtifactsDir     *string `json:"artifacts_dir,omitempty"`      // 电路产物目录，空表示仅内存
	PreloadOnStart   *bool   `json:"preload_on_start,omitempty"`   // 服务启动时预加载电路产物
	VerifyCacheTTL   *string `json:"verify_cache_ttl,omitempty"`   // 验证结果缓存生命周期（如 "10m"）
	VerifyCacheMaxMB *int    `json:"verify_cache_max_mb,omitempty"` // 验证结果缓存上限（MB）
}

// 配置辅助函数
// 这些函数帮助创建指针类型的配置值，区分"未设置"和"设置为零值"

// BoolPtr 创建bool指针，用于明确表示用户设置了该值
func BoolPtr(v bool) *bool {
	return &v
}

// IntPtr 创建int指针，用于明确表示用户设置了该值
func IntPtr(v int) *int {
	return &v
}

// StringPtr 创建string指针，用于明确表示用户设置了该值
func StringPtr(v string) *string {
	return &v
}
