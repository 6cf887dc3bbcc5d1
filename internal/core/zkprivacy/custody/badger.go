package custody

import (
	"fmt"
	"os"

	badgerdb "github.com/dgraph-io/badger/v3"

	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
)

// badgerBackend 嵌入式 BadgerDB 后端
type badgerBackend struct {
	db *badgerdb.DB
}

// NewBadgerStore 创建 BadgerDB 托管存储
func NewBadgerStore(logger log.Logger, dir string, syncWrites bool) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("badger 托管目录未配置")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("无法创建 badger 托管目录: %w", err)
	}

	opts := badgerdb.DefaultOptions(dir)
	opts.SyncWrites = syncWrites
	// 只有一个键，保持最小内存占用
	opts.MemTableSize = 16 << 20
	opts.ValueLogFileSize = 16 << 20
	opts.BlockCacheSize = 1 << 20
	opts.IndexCacheSize = 1 << 20
	opts.NumMemtables = 1
	opts.NumLevelZeroTables = 1
	opts.NumLevelZeroTablesStall = 2
	opts.NumCompactors = 2
	opts.Logger = &badgerLogger{logger: logger}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开 badger 托管存储失败: %w", err)
	}
	logger.Infof("🔐 秘密托管使用 BadgerDB: %s", dir)
	return newStore("badger", logger, &badgerBackend{db: db}), nil
}

func (b *badgerBackend) read() ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(StorageKey))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badgerdb.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (b *badgerBackend) write(data []byte) error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(StorageKey), data)
	})
}

func (b *badgerBackend) close() error {
	return b.db.Close()
}

// badgerLogger 将 BadgerDB 日志转发到统一日志接口
type badgerLogger struct {
	logger log.Logger
}

// Errorf 输出错误日志
func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf("[BadgerDB] "+format, args...)
}

// Warningf 输出警告日志
func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf("[BadgerDB] "+format, args...)
}

// Infof BadgerDB 的信息日志较多，降为调试级别
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}

// Debugf 输出调试日志
func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}
