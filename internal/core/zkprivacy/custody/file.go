package custody

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
)

// fileBackend 单个 JSON 文件后端
//
// 明文格式：{"zkprivacy:secrets": {subject: hex}}
// 加密格式：sealedEnvelope，明文为上面的 JSON 映射
type fileBackend struct {
	path   string
	sealer *sealer
	logger log.Logger

	plainWarned bool
}

// NewFileStore 创建文件托管存储；passphrase 非空时静态加密
func NewFileStore(logger log.Logger, path, passphrase string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("托管文件路径未配置")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("无法创建托管目录: %w", err)
	}

	b := &fileBackend{path: path, logger: logger}
	if passphrase != "" {
		b.sealer = newSealer(passphrase)
	} else {
		logger.Warnf("⚠️ 托管文件未加密: %s（可设置口令启用静态加密）", path)
	}

	// 打开时校验一次，口令错误立即失败
	if _, _, err := b.read(); err != nil {
		return nil, err
	}
	return newStore("file", logger, b), nil
}

func (b *fileBackend) read() ([]byte, bool, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("托管文件格式错误: %w", err)
	}

	if isSealedDoc(doc) {
		if b.sealer == nil {
			return nil, false, fmt.Errorf("托管文件已加密，但未提供口令")
		}
		var env sealedEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, false, fmt.Errorf("托管文件格式错误: %w", err)
		}
		plaintext, err := b.sealer.open(&env)
		if err != nil {
			return nil, false, err
		}
		return plaintext, true, nil
	}

	if b.sealer != nil && !b.plainWarned {
		b.plainWarned = true
		b.logger.Warnf("⚠️ 托管文件为明文，下次写入时将加密: %s", b.path)
	}
	raw, ok := doc[StorageKey]
	if !ok {
		return nil, false, nil
	}
	return raw, true, nil
}

// isSealedDoc 加密信封带有 ciphertext 字段
func isSealedDoc(doc map[string]json.RawMessage) bool {
	_, sealed := doc["ciphertext"]
	return sealed
}

// IsSealedFile 托管文件是否已静态加密；文件不存在时返回 false
func IsSealedFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("托管文件格式错误: %w", err)
	}
	return isSealedDoc(doc), nil
}

func (b *fileBackend) write(data []byte) error {
	var out []byte
	var err error
	if b.sealer != nil {
		env, sealErr := b.sealer.seal(data)
		if sealErr != nil {
			return sealErr
		}
		out, err = json.MarshalIndent(env, "", "  ")
	} else {
		out, err = json.MarshalIndent(map[string]json.RawMessage{StorageKey: data}, "", "  ")
	}
	if err != nil {
		return err
	}

	// 先写临时文件再重命名
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, b.path)
}

func (b *fileBackend) close() error {
	return nil
}
