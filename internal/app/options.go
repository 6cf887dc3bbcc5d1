package app

import (
	"github.com/weisyn/zkprivacy/pkg/interfaces/config"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项
// 实现config.AppOptions接口
type options struct {
	// 配置文件路径
	configFilePath string

	// 用户配置（优先级高于configFilePath）
	appConfig *types.AppConfig

	// HTTP证明服务开关（serve 启用，其它子命令禁用）
	enableAPI bool

	// 启动时是否预加载电路产物（覆盖配置）
	preload *bool

	// 交互输入的托管口令（覆盖配置文件）
	custodyPassphrase string
}

// 编译时校验options是否实现了config.AppOptions接口
var _ config.AppOptions = (*options)(nil)

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithAppConfig 直接提供用户配置（测试或嵌入使用）
func WithAppConfig(appConfig *types.AppConfig) Option {
	return func(o *options) {
		o.appConfig = appConfig
	}
}

// WithAPI 启用HTTP证明服务
func WithAPI() Option {
	return func(o *options) {
		o.enableAPI = true
	}
}

// WithoutPreload 不在启动时预加载电路产物（一次性命令按需加载）
func WithoutPreload() Option {
	return func(o *options) {
		v := false
		o.preload = &v
	}
}

// WithCustodyPassphrase 使用终端输入的托管口令
func WithCustodyPassphrase(passphrase string) Option {
	return func(o *options) {
		o.custodyPassphrase = passphrase
	}
}

// newOptions 创建选项
func newOptions(opts ...Option) *options {
	options := &options{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// GetAppConfig 返回应用程序配置
func (o *options) GetAppConfig() *types.AppConfig {
	return o.appConfig
}

// load 读取配置文件并应用覆盖项
func (o *options) load() error {
	if o.appConfig == nil {
		cfg, err := loadConfig(o.configFilePath)
		if err != nil {
			return err
		}
		o.appConfig = cfg
	}
	if o.preload != nil {
		if o.appConfig.ZKProof == nil {
			o.appConfig.ZKProof = &types.UserZKProofConfig{}
		}
		o.appConfig.ZKProof.PreloadOnStart = o.preload
	}
	if o.custodyPassphrase != "" {
		if o.appConfig.Custody == nil {
			o.appConfig.Custody = &types.UserCustodyConfig{}
		}
		passphrase := o.custodyPassphrase
		o.appConfig.Custody.Passphrase = &passphrase
	}
	return nil
}
