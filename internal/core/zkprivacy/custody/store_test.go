package custody

import (
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custodyconfig "github.com/weisyn/zkprivacy/internal/config/custody"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/commitment"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/testutil"
	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
)

// openers 三种后端的构造函数（每次返回一个新存储和一个按同一位置重新打开的函数）
func openers(t *testing.T) map[string]func(t *testing.T) *Store {
	return map[string]func(t *testing.T) *Store{
		"memory": func(t *testing.T) *Store {
			return NewMemoryStore(testutil.NewTestLogger())
		},
		"file": func(t *testing.T) *Store {
			s, err := NewFileStore(testutil.NewTestLogger(), filepath.Join(t.TempDir(), "secrets.json"), "")
			require.NoError(t, err)
			return s
		},
		"sealed-file": func(t *testing.T) *Store {
			s, err := NewFileStore(testutil.NewTestLogger(), filepath.Join(t.TempDir(), "secrets.json"), "correct horse")
			require.NoError(t, err)
			return s
		},
		"badger": func(t *testing.T) *Store {
			s, err := NewBadgerStore(testutil.NewTestLogger(), t.TempDir(), false)
			require.NoError(t, err)
			return s
		},
	}
}

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	for name, open := range openers(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			secret, err := commitment.RandomSecret()
			require.NoError(t, err)

			require.NoError(t, s.Store(ctx, "0xAbC", secret))

			loaded, ok, err := s.Load(ctx, "0xabc")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, 0, secret.Cmp(loaded))

			subjects, err := s.ListSubjects(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"0xabc"}, subjects)

			require.NoError(t, s.Remove(ctx, "0xABC"))
			_, ok, err = s.Load(ctx, "0xabc")
			require.NoError(t, err)
			assert.False(t, ok)

			// 删除不存在的主体为空操作
			require.NoError(t, s.Remove(ctx, "0xabc"))
		})
	}
}

func TestStore_ListSorted(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(testutil.NewTestLogger())
	for _, id := range []string{"charlie", "Alice", "bob"} {
		require.NoError(t, s.Store(ctx, id, big.NewInt(7)))
	}
	subjects, err := s.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "charlie"}, subjects)
}

func TestStore_ReplaceWarns(t *testing.T) {
	ctx := context.Background()
	logger := testutil.NewTestBehavioralLogger()
	s := NewMemoryStore(logger)

	require.NoError(t, s.Store(ctx, "alice", big.NewInt(1)))
	require.NoError(t, s.Store(ctx, "alice", big.NewInt(1)))
	assert.Equal(t, 0, logger.CountContaining("WARN", "覆盖已有秘密"))

	require.NoError(t, s.Store(ctx, "ALICE", big.NewInt(2)))
	assert.Equal(t, 1, logger.CountContaining("WARN", "覆盖已有秘密"))

	loaded, ok, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), loaded.Int64())
}

func TestStore_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(testutil.NewTestLogger())

	assert.ErrorIs(t, s.Store(ctx, "  ", big.NewInt(1)), zk.ErrInvalidInput)
	assert.ErrorIs(t, s.Store(ctx, "alice", commitment.Modulus()), zk.ErrInvalidInput)
	assert.ErrorIs(t, s.Store(ctx, "alice", big.NewInt(-1)), zk.ErrInvalidInput)
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(testutil.NewTestLogger())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, _, err := s.Load(ctx, "alice")
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestFileStore_PlainLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "secrets.json")
	s, err := NewFileStore(testutil.NewTestLogger(), path, "")
	require.NoError(t, err)
	require.NoError(t, s.Store(ctx, "Alice", big.NewInt(255)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Contains(t, doc, StorageKey)
	assert.Equal(t, "00000000000000000000000000000000000000000000000000000000000000ff", doc[StorageKey]["alice"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_SealedPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "secrets.json")

	s, err := NewFileStore(testutil.NewTestLogger(), path, "pass-1")
	require.NoError(t, err)
	require.NoError(t, s.Store(ctx, "alice", big.NewInt(42)))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "alice")
	assert.Contains(t, string(data), "ciphertext")

	// 同一口令重新打开
	reopened, err := NewFileStore(testutil.NewTestLogger(), path, "pass-1")
	require.NoError(t, err)
	loaded, ok, err := reopened.Load(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), loaded.Int64())

	// 口令错误
	_, err = NewFileStore(testutil.NewTestLogger(), path, "pass-2")
	assert.ErrorIs(t, err, ErrUnsealFailed)

	// 缺少口令
	_, err = NewFileStore(testutil.NewTestLogger(), path, "")
	assert.Error(t, err)
}

func TestFileStore_MigratesPlainToSealed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "secrets.json")

	plain, err := NewFileStore(testutil.NewTestLogger(), path, "")
	require.NoError(t, err)
	require.NoError(t, plain.Store(ctx, "alice", big.NewInt(9)))

	logger := testutil.NewTestBehavioralLogger()
	sealed, err := NewFileStore(logger, path, "secret")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, logger.CountContaining("WARN", "明文"), 1)

	require.NoError(t, sealed.Store(ctx, "bob", big.NewInt(10)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ciphertext")

	subjects, err := sealed.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, subjects)
}

func TestBadgerStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewBadgerStore(testutil.NewTestLogger(), dir, true)
	require.NoError(t, err)
	require.NoError(t, s.Store(ctx, "alice", big.NewInt(5)))
	require.NoError(t, s.Close())

	reopened, err := NewBadgerStore(testutil.NewTestLogger(), dir, true)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, ok, err := reopened.Load(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(5), loaded.Int64())
}

func TestOpen_ByBackend(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		backend string
		kind    string
	}{
		{custodyconfig.BackendMemory, "memory"},
		{custodyconfig.BackendFile, "file"},
		{custodyconfig.BackendBadger, "badger"},
	}
	for _, tc := range cases {
		t.Run(tc.backend, func(t *testing.T) {
			opts := &custodyconfig.CustodyOptions{
				Backend: tc.backend,
				Path:    filepath.Join(dir, tc.backend),
			}
			s, err := Open(testutil.NewTestLogger(), opts)
			require.NoError(t, err)
			defer s.Close()
			assert.Equal(t, tc.kind, s.Kind())
		})
	}

	_, err := Open(testutil.NewTestLogger(), &custodyconfig.CustodyOptions{Backend: "etcd"})
	assert.Error(t, err)
}

func TestFileStore_RejectsTamperedKDFParams(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "secrets.json")

	s, err := NewFileStore(testutil.NewTestLogger(), path, "pass")
	require.NoError(t, err)
	require.NoError(t, s.Store(ctx, "alice", big.NewInt(1)))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var env sealedEnvelope
	require.NoError(t, json.Unmarshal(data, &env))

	// 代价参数被放大：不能执行 scrypt，直接拒绝
	env.N = 1 << 30
	tampered, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, tampered, 0600))

	_, err = NewFileStore(testutil.NewTestLogger(), path, "pass")
	assert.ErrorIs(t, err, ErrUnsupportedKDF)
}

func TestSealer_KeyCacheBoundToParams(t *testing.T) {
	sl := newSealer("pass")
	env, err := sl.seal([]byte(`{"alice":"01"}`))
	require.NoError(t, err)

	plaintext, err := sl.open(env)
	require.NoError(t, err)
	assert.Equal(t, `{"alice":"01"}`, string(plaintext))

	// 同一盐、不同参数不能命中缓存的密钥
	env.R = scryptR + 1
	_, err = sl.open(env)
	assert.ErrorIs(t, err, ErrUnsupportedKDF)

	env.R = scryptR
	env.Salt = env.Salt[:saltLen-1]
	_, err = sl.open(env)
	assert.ErrorIs(t, err, ErrUnsupportedKDF)
}

func TestIsSealedFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	missing, err := IsSealedFile(filepath.Join(dir, "none.json"))
	require.NoError(t, err)
	assert.False(t, missing)

	plainPath := filepath.Join(dir, "plain.json")
	plain, err := NewFileStore(testutil.NewTestLogger(), plainPath, "")
	require.NoError(t, err)
	require.NoError(t, plain.Store(ctx, "alice", big.NewInt(1)))
	sealed, err := IsSealedFile(plainPath)
	require.NoError(t, err)
	assert.False(t, sealed)

	sealedPath := filepath.Join(dir, "sealed.json")
	s, err := NewFileStore(testutil.NewTestLogger(), sealedPath, "pass")
	require.NoError(t, err)
	require.NoError(t, s.Store(ctx, "alice", big.NewInt(1)))
	sealed, err = IsSealedFile(sealedPath)
	require.NoError(t, err)
	assert.True(t, sealed)
}

func TestFileStore_PlainWarningLoggedOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "secrets.json")

	plain, err := NewFileStore(testutil.NewTestLogger(), path, "")
	require.NoError(t, err)
	require.NoError(t, plain.Store(ctx, "alice", big.NewInt(9)))

	logger := testutil.NewTestBehavioralLogger()
	s, err := NewFileStore(logger, path, "secret")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, _, err := s.Load(ctx, "alice")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, logger.CountContaining("WARN", "明文"))
}
