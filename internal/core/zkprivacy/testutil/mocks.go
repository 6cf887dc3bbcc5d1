// Package testutil 提供零知识隐私模块测试的辅助工具
//
// 🧪 **测试辅助工具包**
//
// 本包提供测试所需的 Mock 对象与辅助函数。
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// ==================== Mock 对象 ====================

// MockLogger 统一的日志Mock实现
//
// ✅ 最小实现，不记录日志
type MockLogger struct{}

func (m *MockLogger) Debug(msg string)                          {}
func (m *MockLogger) Debugf(format string, args ...interface{}) {}
func (m *MockLogger) Info(msg string)                           {}
func (m *MockLogger) Infof(format string, args ...interface{})  {}
func (m *MockLogger) Warn(msg string)                           {}
func (m *MockLogger) Warnf(format string, args ...interface{})  {}
func (m *MockLogger) Error(msg string)                          {}
func (m *MockLogger) Errorf(format string, args ...interface{}) {}
func (m *MockLogger) Fatal(msg string)                          {}
func (m *MockLogger) Fatalf(format string, args ...interface{}) {}
func (m *MockLogger) With(args ...interface{}) log.Logger       { return m }
func (m *MockLogger) Sync() error                               { return nil }
func (m *MockLogger) GetZapLogger() *zap.Logger                 { return zap.NewNop() }

// BehavioralMockLogger 行为Mock日志（记录调用）
//
// 📋 用于验证完整性告警、覆盖告警等必须出现的日志
type BehavioralMockLogger struct {
	logs  []string
	mutex sync.Mutex
}

func (m *BehavioralMockLogger) record(level, msg string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.logs = append(m.logs, level+": "+msg)
}

func (m *BehavioralMockLogger) Debug(msg string) { m.record("DEBUG", msg) }
func (m *BehavioralMockLogger) Debugf(format string, args ...interface{}) {
	m.record("DEBUG", fmt.Sprintf(format, args...))
}
func (m *BehavioralMockLogger) Info(msg string) { m.record("INFO", msg) }
func (m *BehavioralMockLogger) Infof(format string, args ...interface{}) {
	m.record("INFO", fmt.Sprintf(format, args...))
}
func (m *BehavioralMockLogger) Warn(msg string) { m.record("WARN", msg) }
func (m *BehavioralMockLogger) Warnf(format string, args ...interface{}) {
	m.record("WARN", fmt.Sprintf(format, args...))
}
func (m *BehavioralMockLogger) Error(msg string) { m.record("ERROR", msg) }
func (m *BehavioralMockLogger) Errorf(format string, args ...interface{}) {
	m.record("ERROR", fmt.Sprintf(format, args...))
}
func (m *BehavioralMockLogger) Fatal(msg string) { m.record("FATAL", msg) }
func (m *BehavioralMockLogger) Fatalf(format string, args ...interface{}) {
	m.record("FATAL", fmt.Sprintf(format, args...))
}
func (m *BehavioralMockLogger) With(args ...interface{}) log.Logger { return m }
func (m *BehavioralMockLogger) Sync() error                         { return nil }
func (m *BehavioralMockLogger) GetZapLogger() *zap.Logger           { return zap.NewNop() }

// GetLogs 获取所有日志记录
func (m *BehavioralMockLogger) GetLogs() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]string{}, m.logs...)
}

// ClearLogs 清空日志记录
func (m *BehavioralMockLogger) ClearLogs() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.logs = m.logs[:0]
}

// CountContaining 统计指定级别且包含子串的日志条数
func (m *BehavioralMockLogger) CountContaining(level, substr string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	count := 0
	for _, entry := range m.logs {
		if strings.HasPrefix(entry, level+": ") && strings.Contains(entry, substr) {
			count++
		}
	}
	return count
}

// CountingProofBackend 记录调用次数的证明后端
//
// Delegate 为空时返回 ProveErr（默认 nil 且无证明），用于验证“未调用后端”的路径。
type CountingProofBackend struct {
	Delegate zkprivacy.ProofBackend
	ProveErr error

	mu    sync.Mutex
	calls int
}

// 编译时校验
var _ zkprivacy.ProofBackend = (*CountingProofBackend)(nil)

// Prove 实现 ProofBackend
func (b *CountingProofBackend) Prove(ctx context.Context, circuit types.CircuitID, witness types.Witness) (*types.Proof, types.PublicSignals, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()

	if b.Delegate != nil {
		return b.Delegate.Prove(ctx, circuit, witness)
	}
	if b.ProveErr != nil {
		return nil, nil, b.ProveErr
	}
	return nil, nil, fmt.Errorf("counting backend: no delegate for %s", circuit)
}

// Calls 返回调用次数
func (b *CountingProofBackend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// TamperingProofBackend 在委托证明后改写公开信号（模拟被篡改或异常的证明器）
type TamperingProofBackend struct {
	Delegate zkprivacy.ProofBackend
	Tamper   func(types.PublicSignals) types.PublicSignals
}

// Prove 实现 ProofBackend
func (b *TamperingProofBackend) Prove(ctx context.Context, circuit types.CircuitID, witness types.Witness) (*types.Proof, types.PublicSignals, error) {
	proof, signals, err := b.Delegate.Prove(ctx, circuit, witness)
	if err != nil {
		return nil, nil, err
	}
	return proof, b.Tamper(signals), nil
}
