// Package custody 设备本地秘密托管
//
// 🎯 **持久化布局**：所有后端都只保存一个众所周知的键 StorageKey，
// 值为 JSON 对象 {subject_id(小写): secret(hex)}。每次修改都整体读出、修改、整体写回，
// 不做部分更新；读-改-写由存储内的互斥锁串行化，后写者胜出。
//
// ⚠️ 秘密只在本设备保存，任何后端都不得同步或外传。
package custody

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/commitment"
	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
)

// StorageKey 秘密映射的唯一存储键
const StorageKey = "zkprivacy:secrets"

// secretHexLen 秘密编码为 32 字节定长 hex
const secretHexLen = 64

// ErrStoreClosed 存储已关闭
var ErrStoreClosed = errors.New("secret store closed")

// backend 持久化单个键的原始字节
type backend interface {
	// read 读取映射的 JSON 编码；不存在时返回 (nil, false, nil)
	read() ([]byte, bool, error)
	// write 整体写回映射的 JSON 编码
	write(data []byte) error
	close() error
}

// Store 秘密托管存储（各后端共用的映射逻辑）
type Store struct {
	kind    string
	logger  log.Logger
	backend backend

	mu     sync.Mutex
	closed bool
}

// 编译时校验
var _ zk.SecretStore = (*Store)(nil)

func newStore(kind string, logger log.Logger, b backend) *Store {
	return &Store{kind: kind, logger: logger, backend: b}
}

// Kind 后端类型（memory | file | badger）
func (s *Store) Kind() string {
	return s.kind
}

// NormalizeSubjectID 主体ID统一小写（去除首尾空白）
func NormalizeSubjectID(subjectID string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(subjectID))
	if id == "" {
		return "", fmt.Errorf("%w: empty subject id", zk.ErrInvalidInput)
	}
	return id, nil
}

// EncodeSecret 秘密编码为 64 位 hex
func EncodeSecret(secret *big.Int) (string, error) {
	if !commitment.IsCanonical(secret) {
		return "", fmt.Errorf("%w: secret is not a canonical field element", zk.ErrInvalidInput)
	}
	buf := make([]byte, secretHexLen/2)
	secret.FillBytes(buf)
	return hex.EncodeToString(buf), nil
}

// DecodeSecret 解析 hex 秘密（可带 0x 前缀）
func DecodeSecret(s string) (*big.Int, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("托管记录不是合法 hex: %w", err)
	}
	v := new(big.Int).SetBytes(raw)
	if !commitment.IsCanonical(v) {
		return nil, fmt.Errorf("托管记录超出 field 模数")
	}
	return v, nil
}

// loadMap 读取完整映射（调用方持有锁）
func (s *Store) loadMap() (map[string]string, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}
	data, ok, err := s.backend.read()
	if err != nil {
		return nil, fmt.Errorf("读取托管存储失败: %w", err)
	}
	secrets := make(map[string]string)
	if !ok || len(data) == 0 {
		return secrets, nil
	}
	if err := json.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("托管存储内容损坏: %w", err)
	}
	return secrets, nil
}

// saveMap 整体写回映射（调用方持有锁）
func (s *Store) saveMap(secrets map[string]string) error {
	data, err := json.Marshal(secrets)
	if err != nil {
		return err
	}
	if err := s.backend.write(data); err != nil {
		return fmt.Errorf("写入托管存储失败: %w", err)
	}
	return nil
}

// Store 保存秘密（幂等覆盖，替换不同秘密时记录警告）
func (s *Store) Store(ctx context.Context, subjectID string, secret *big.Int) error {
	id, err := NormalizeSubjectID(subjectID)
	if err != nil {
		return err
	}
	encoded, err := EncodeSecret(secret)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.loadMap()
	if err != nil {
		return err
	}
	if existing, ok := secrets[id]; ok {
		if existing == encoded {
			return nil
		}
		s.logger.Warnf("⚠️ 覆盖已有秘密: subject=%s, backend=%s", id, s.kind)
	}
	secrets[id] = encoded
	return s.saveMap(secrets)
}

// Load 读取秘密
func (s *Store) Load(ctx context.Context, subjectID string) (*big.Int, bool, error) {
	id, err := NormalizeSubjectID(subjectID)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.loadMap()
	if err != nil {
		return nil, false, err
	}
	encoded, ok := secrets[id]
	if !ok {
		return nil, false, nil
	}
	secret, err := DecodeSecret(encoded)
	if err != nil {
		return nil, false, fmt.Errorf("subject=%s: %w", id, err)
	}
	return secret, true, nil
}

// Remove 删除秘密（不存在时为空操作）
func (s *Store) Remove(ctx context.Context, subjectID string) error {
	id, err := NormalizeSubjectID(subjectID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.loadMap()
	if err != nil {
		return err
	}
	if _, ok := secrets[id]; !ok {
		return nil
	}
	delete(secrets, id)
	return s.saveMap(secrets)
}

// ListSubjects 列出所有主体ID（已排序）
func (s *Store) ListSubjects(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.loadMap()
	if err != nil {
		return nil, err
	}
	subjects := make([]string, 0, len(secrets))
	for id := range secrets {
		subjects = append(subjects, id)
	}
	sort.Strings(subjects)
	return subjects, nil
}

// Close 关闭存储（重复关闭为空操作）
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.backend.close()
}
