package verifier

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/artifacts"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/commitment"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/prover"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/testutil"
	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
	"github.com/weisyn/zkprivacy/pkg/types"
)

var (
	managerOnce sync.Once
	manager     *artifacts.Manager
)

func sharedManager() *artifacts.Manager {
	managerOnce.Do(func() {
		manager = artifacts.NewManager(testutil.NewTestLogger(), "")
	})
	return manager
}

// countingKeySource 记录验证密钥查询次数
type countingKeySource struct {
	inner KeySource
	calls atomic.Int32
}

func (c *countingKeySource) VerifyingKey(circuit types.CircuitID) (*VerifyingKey, error) {
	c.calls.Add(1)
	return c.inner.VerifyingKey(circuit)
}

func newTestVerifier(t *testing.T, cache *CacheConfig) *Verifier {
	t.Helper()
	v, err := New(testutil.NewTestLogger(), ManagerKeySource{Manager: sharedManager()}, nil, cache)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func proveOwnership(t *testing.T, secret *big.Int) (*types.Proof, types.PublicSignals) {
	t.Helper()
	c, err := commitment.Hash(secret)
	require.NoError(t, err)
	p := prover.New(testutil.NewTestLogger(), sharedManager(), nil)
	proof, signals, err := p.Prove(context.Background(), types.CircuitOwnership,
		types.Witness{types.WitnessSecret: secret, types.WitnessCommitment: c})
	require.NoError(t, err)
	return proof, signals
}

func proveRange(t *testing.T, value, lo, hi int64) (*types.Proof, types.PublicSignals) {
	t.Helper()
	v, mn, mx := big.NewInt(value), big.NewInt(lo), big.NewInt(hi)
	c, err := commitment.RangeCommitment(v, mn, mx)
	require.NoError(t, err)
	p := prover.New(testutil.NewTestLogger(), sharedManager(), nil)
	proof, signals, err := p.Prove(context.Background(), types.CircuitRange, types.Witness{
		types.WitnessValue: v, types.WitnessMin: mn, types.WitnessMax: mx, types.WitnessCommitment: c,
	})
	require.NoError(t, err)
	return proof, signals
}

func TestVerifyOwnership(t *testing.T) {
	v := newTestVerifier(t, nil)
	proof, signals := proveOwnership(t, big.NewInt(123456789))

	ok, err := v.Verify(context.Background(), types.CircuitOwnership, signals, proof)
	require.NoError(t, err)
	require.True(t, ok)

	// 换一个承诺
	other, err := commitment.Hash(big.NewInt(987654321))
	require.NoError(t, err)
	ok, err = v.Verify(context.Background(), types.CircuitOwnership, types.NewPublicSignals(other), proof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyFlippedDigit(t *testing.T) {
	v := newTestVerifier(t, nil)
	proof, signals := proveOwnership(t, big.NewInt(31337))

	s := []byte(signals[0])
	last := len(s) - 1
	if s[last] == '9' {
		s[last] = '8'
	} else {
		s[last]++
	}
	ok, err := v.Verify(context.Background(), types.CircuitOwnership, types.PublicSignals{string(s)}, proof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRangeTamperedBounds(t *testing.T) {
	v := newTestVerifier(t, nil)
	proof, signals := proveRange(t, 50000, 10000, 10000000)

	ok, err := v.Verify(context.Background(), types.CircuitRange, signals, proof)
	require.NoError(t, err)
	require.True(t, ok)

	tampered := types.PublicSignals{"0", "1", signals[2]}
	ok, err = v.Verify(context.Background(), types.CircuitRange, tampered, proof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyBindingMismatchIsFalse(t *testing.T) {
	v := newTestVerifier(t, nil)
	proof, signals := proveOwnership(t, big.NewInt(77))

	wrongVersion := *proof
	wrongVersion.Version = 2
	ok, err := v.Verify(context.Background(), types.CircuitOwnership, signals, &wrongVersion)
	require.NoError(t, err)
	require.False(t, ok)

	wrongVK := *proof
	wrongVK.VKHash = commitment.Modulus().Text(16)
	ok, err = v.Verify(context.Background(), types.CircuitOwnership, signals, &wrongVK)
	require.NoError(t, err)
	require.False(t, ok)

	wrongCircuit := *proof
	wrongCircuit.Circuit = types.CircuitRange
	ok, err = v.Verify(context.Background(), types.CircuitOwnership, signals, &wrongCircuit)
	require.NoError(t, err)
	require.False(t, ok)

	// 超出模数的信号
	ok, err = v.Verify(context.Background(), types.CircuitOwnership,
		types.NewPublicSignals(commitment.Modulus()), proof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyStructuralErrors(t *testing.T) {
	v := newTestVerifier(t, nil)
	proof, signals := proveOwnership(t, big.NewInt(99))
	ctx := context.Background()

	cases := []struct {
		name     string
		circuit  types.CircuitID
		signals  types.PublicSignals
		mutate   func(p *types.Proof)
		nilProof bool
	}{
		{name: "缺少证明", circuit: types.CircuitOwnership, signals: signals, nilProof: true},
		{name: "未知方案", circuit: types.CircuitOwnership, signals: signals, mutate: func(p *types.Proof) { p.Protocol = "plonk" }},
		{name: "未知曲线", circuit: types.CircuitOwnership, signals: signals, mutate: func(p *types.Proof) { p.Curve = "bn254" }},
		{name: "未知电路", circuit: types.CircuitID("membership"), signals: signals},
		{name: "信号个数错误", circuit: types.CircuitOwnership, signals: append(types.PublicSignals{"1"}, signals...)},
		{name: "非十进制信号", circuit: types.CircuitOwnership, signals: types.PublicSignals{"0xabc"}},
		{name: "负数信号", circuit: types.CircuitOwnership, signals: types.PublicSignals{"-1"}},
		{name: "非十六进制证明", circuit: types.CircuitOwnership, signals: signals, mutate: func(p *types.Proof) { p.Data = "zz" + p.Data }},
		{name: "空证明", circuit: types.CircuitOwnership, signals: signals, mutate: func(p *types.Proof) { p.Data = "" }},
		{name: "截断证明", circuit: types.CircuitOwnership, signals: signals, mutate: func(p *types.Proof) { p.Data = p.Data[:len(p.Data)/2] }},
		{name: "多余字节", circuit: types.CircuitOwnership, signals: signals, mutate: func(p *types.Proof) { p.Data += "00ff" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var candidate *types.Proof
			if !tc.nilProof {
				cp := *proof
				if tc.mutate != nil {
					tc.mutate(&cp)
				}
				candidate = &cp
			}
			ok, err := v.Verify(ctx, tc.circuit, tc.signals, candidate)
			require.ErrorIs(t, err, zk.ErrStructural)
			require.False(t, ok)
		})
	}
}

func TestVerifyCache(t *testing.T) {
	keys := &countingKeySource{inner: ManagerKeySource{Manager: sharedManager()}}
	v, err := New(testutil.NewTestLogger(), keys, nil, &CacheConfig{TTL: time.Minute, MaxSizeMB: 1})
	require.NoError(t, err)
	defer v.Close()

	proof, signals := proveOwnership(t, big.NewInt(2024))
	for i := 0; i < 3; i++ {
		ok, err := v.Verify(context.Background(), types.CircuitOwnership, signals, proof)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Equal(t, int32(1), keys.calls.Load())

	// 不同信号是不同的缓存键，且 false 同样被缓存
	bad := types.PublicSignals{"1"}
	for i := 0; i < 2; i++ {
		ok, err := v.Verify(context.Background(), types.CircuitOwnership, bad, proof)
		require.NoError(t, err)
		require.False(t, ok)
	}
	require.Equal(t, int32(2), keys.calls.Load())
}

func TestStaticKeySource(t *testing.T) {
	dir := t.TempDir()
	m := artifacts.NewManager(testutil.NewTestLogger(), dir)
	_, err := m.Load(types.CircuitOwnership)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "ownership", "v1", artifacts.FileVerifyingKeyJSON))
	require.NoError(t, err)
	defer f.Close()

	static, err := NewStaticKeySource(f)
	require.NoError(t, err)

	secret := big.NewInt(555)
	c, err := commitment.Hash(secret)
	require.NoError(t, err)
	proof, signals, err := prover.New(testutil.NewTestLogger(), m, nil).Prove(context.Background(),
		types.CircuitOwnership, types.Witness{types.WitnessSecret: secret, types.WitnessCommitment: c})
	require.NoError(t, err)

	v, err := New(testutil.NewTestLogger(), static, nil, nil)
	require.NoError(t, err)
	ok, err := v.Verify(context.Background(), types.CircuitOwnership, signals, proof)
	require.NoError(t, err)
	require.True(t, ok)

	// 只加载了所有权电路的密钥：区间电路验证是验证器异常而非结构错误
	_, err = static.VerifyingKey(types.CircuitRange)
	require.Error(t, err)
}
