package custody

import (
	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
)

// memoryBackend 进程内存后端（进程退出即丢失）
type memoryBackend struct {
	values map[string][]byte
}

// NewMemoryStore 创建内存托管存储
func NewMemoryStore(logger log.Logger) *Store {
	return newStore("memory", logger, &memoryBackend{values: make(map[string][]byte)})
}

func (b *memoryBackend) read() ([]byte, bool, error) {
	data, ok := b.values[StorageKey]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (b *memoryBackend) write(data []byte) error {
	b.values[StorageKey] = append([]byte(nil), data...)
	return nil
}

func (b *memoryBackend) close() error {
	b.values = nil
	return nil
}
