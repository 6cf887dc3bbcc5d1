package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	logconfig "github.com/weisyn/zkprivacy/internal/config/log"
)

// TestFileLogJSON 文件输出为 JSON，并受级别过滤
func TestFileLogJSON(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "zkprivacy.log")

	logger, err := New(logconfig.NewFromOptions(&logconfig.LogOptions{
		Level:     WarnLevel,
		FilePath:  logPath,
		ToConsole: false,
		MaxSize:   1,
	}))
	require.NoError(t, err)

	logger.Info("被过滤的信息日志")
	logger.With("circuit", "ownership").Warnf("完整性告警: %s", "mismatch")
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "完整性告警: mismatch", entry["message"])
	assert.Equal(t, "ownership", entry["circuit"])
}

// TestWithStructuredFields With 同时写入 zap 字段
func TestWithStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewFromZap(zap.New(core))

	child := logger.With("key1", "value1", "key2", 42, "dangling")
	child.Info("结构化日志测试")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "value1", fields["key1"])
	assert.EqualValues(t, 42, fields["key2"])
	assert.NotContains(t, fields, "dangling")
}

// TestModuleLogger module 字段
func TestModuleLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := NewFromZap(zap.New(core))

	custody := NewModuleLogger(base, "custody")
	custody.Info("hello")
	// gin 中间件经 GetZapLogger 取得的实例也带 module 字段
	custody.GetZapLogger().Info("world")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "custody", entries[0].ContextMap()["module"])
	assert.Equal(t, "custody", entries[1].ContextMap()["module"])

	assert.Nil(t, NewModuleLogger(nil, "x"))
}

// TestSetLogger 测试设置和切换全局日志记录器
func TestSetLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	core, logs := observer.New(zapcore.InfoLevel)
	custom := NewFromZap(zap.New(core))

	SetLogger(custom)
	assert.Same(t, custom, GetLogger())

	GetLogger().With("k", "v").Info("scoped")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "v", logs.All()[0].ContextMap()["k"])

	// nil 不覆盖
	SetLogger(nil)
	assert.Same(t, custom, GetLogger())

	ResetDefault()
	assert.NotSame(t, custom, GetLogger())
}
