package custody

import (
	custodyconfig "github.com/weisyn/zkprivacy/internal/config/custody"
	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
)

// Open 按配置打开托管存储
func Open(logger log.Logger, options *custodyconfig.CustodyOptions) (*Store, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	switch options.Backend {
	case custodyconfig.BackendMemory:
		logger.Warn("⚠️ 秘密托管使用内存后端，进程退出后秘密将丢失")
		return NewMemoryStore(logger), nil
	case custodyconfig.BackendBadger:
		return NewBadgerStore(logger, options.Path, options.SyncWrites)
	default:
		return NewFileStore(logger, options.Path, options.Passphrase)
	}
}
