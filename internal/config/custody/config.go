// Package custody 秘密托管配置
package custody

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/weisyn/zkprivacy/pkg/types"
)

// CustodyOptions 托管配置选项
type CustodyOptions struct {
	Backend    string `json:"backend"`     // memory | file | badger
	Path       string `json:"path"`        // 文件路径或 Badger 目录
	Passphrase string `json:"-"`           // 文件后端静态加密口令（不序列化）
	SyncWrites bool   `json:"sync_writes"` // Badger 同步写入
}

// Config 托管配置实现
type Config struct {
	options *CustodyOptions
}

// New 创建托管配置
//
// 路径规则：显式 path 优先；否则 {data_dir}/secrets.json 或 {data_dir}/custody/。
func New(userConfig *types.UserCustodyConfig, dataDir string) *Config {
	if dataDir == "" {
		dataDir = defaultDataDir
	}

	options := &CustodyOptions{
		Backend:    defaultBackend,
		SyncWrites: defaultSyncWrites,
	}

	if userConfig != nil {
		if userConfig.Backend != nil {
			options.Backend = strings.ToLower(strings.TrimSpace(*userConfig.Backend))
		}
		if userConfig.Path != nil {
			options.Path = *userConfig.Path
		}
		if userConfig.Passphrase != nil {
			options.Passphrase = *userConfig.Passphrase
		}
	}

	if env := os.Getenv(PassphraseEnv); env != "" {
		options.Passphrase = env
	}

	if options.Path == "" {
		switch options.Backend {
		case BackendFile:
			options.Path = filepath.Join(dataDir, defaultFileName)
		case BackendBadger:
			options.Path = filepath.Join(dataDir, defaultBadgerDir)
		}
	}

	return &Config{options: options}
}

// GetOptions 获取完整的托管配置选项
func (c *Config) GetOptions() *CustodyOptions {
	return c.options
}

// Validate 校验后端类型
func (o *CustodyOptions) Validate() error {
	switch o.Backend {
	case BackendMemory, BackendFile, BackendBadger:
		return nil
	default:
		return fmt.Errorf("不支持的托管后端: %s", o.Backend)
	}
}
