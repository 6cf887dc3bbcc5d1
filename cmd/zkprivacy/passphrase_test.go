package main

import (
	"bytes"
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custodyconfig "github.com/weisyn/zkprivacy/internal/config/custody"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/custody"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/testutil"
)

// fakeTerminal 替换终端交互，按顺序返回输入
func fakeTerminal(t *testing.T, tty bool, inputs ...string) *int {
	t.Helper()
	oldFd, oldTTY, oldRead, oldOut := stdinFd, isTerminal, readPassword, promptOut
	t.Cleanup(func() {
		stdinFd, isTerminal, readPassword, promptOut = oldFd, oldTTY, oldRead, oldOut
	})

	calls := 0
	stdinFd = func() int { return 0 }
	isTerminal = func(int) bool { return tty }
	readPassword = func(int) ([]byte, error) {
		if calls >= len(inputs) {
			return nil, errors.New("no more input")
		}
		calls++
		return []byte(inputs[calls-1]), nil
	}
	promptOut = &bytes.Buffer{}
	return &calls
}

func sealedFile(t *testing.T, passphrase string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.json")
	store, err := custody.NewFileStore(testutil.NewTestLogger(), path, passphrase)
	require.NoError(t, err)
	require.NoError(t, store.Store(t.Context(), "alice", big.NewInt(7)))
	require.NoError(t, store.Close())
	return path
}

func TestResolvePassphrase_PromptsForSealedFile(t *testing.T) {
	path := sealedFile(t, "correct horse")
	calls := fakeTerminal(t, true, "correct horse")

	got, err := resolvePassphrase(&custodyconfig.CustodyOptions{Backend: custodyconfig.BackendFile, Path: path}, false)
	require.NoError(t, err)
	assert.Equal(t, "correct horse", got)
	assert.Equal(t, 1, *calls)
}

func TestResolvePassphrase_SkipsWhenNotNeeded(t *testing.T) {
	calls := fakeTerminal(t, true, "unused")
	plain := filepath.Join(t.TempDir(), "secrets.json")

	cases := []*custodyconfig.CustodyOptions{
		{Backend: custodyconfig.BackendFile, Path: plain},
		{Backend: custodyconfig.BackendFile, Path: sealedFile(t, "p"), Passphrase: "p"},
		{Backend: custodyconfig.BackendMemory},
	}
	for _, opts := range cases {
		got, err := resolvePassphrase(opts, false)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Equal(t, 0, *calls)
}

func TestResolvePassphrase_AskConfirmsNewPassphrase(t *testing.T) {
	plain := filepath.Join(t.TempDir(), "secrets.json")
	opts := &custodyconfig.CustodyOptions{Backend: custodyconfig.BackendFile, Path: plain}

	fakeTerminal(t, true, "s3cret", "s3cret")
	got, err := resolvePassphrase(opts, true)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	fakeTerminal(t, true, "s3cret", "typo")
	_, err = resolvePassphrase(opts, true)
	assert.Error(t, err)
}

func TestResolvePassphrase_RequiresTerminal(t *testing.T) {
	path := sealedFile(t, "p")
	fakeTerminal(t, false)

	_, err := resolvePassphrase(&custodyconfig.CustodyOptions{Backend: custodyconfig.BackendFile, Path: path}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), custodyconfig.PassphraseEnv)
}
