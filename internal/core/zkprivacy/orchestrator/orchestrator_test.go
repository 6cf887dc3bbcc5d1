package orchestrator

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/artifacts"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/commitment"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/custody"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/prover"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/testutil"
	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/verifier"
	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// 所有测试共用一套内存电路产物（可信设置只做一次）
var (
	fixtureOnce sync.Once
	fixtureMgr  *artifacts.Manager
)

type fixture struct {
	prover   *prover.Prover
	verifier *verifier.Verifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fixtureOnce.Do(func() {
		fixtureMgr = artifacts.NewManager(testutil.NewTestLogger(), "")
	})
	v, err := verifier.New(testutil.NewTestLogger(), verifier.ManagerKeySource{Manager: fixtureMgr}, nil, nil)
	require.NoError(t, err)
	return &fixture{
		prover:   prover.New(testutil.NewTestLogger(), fixtureMgr, nil),
		verifier: v,
	}
}

func newOrchestrator(t *testing.T, logger log.Logger, backend zk.ProofBackend) *Orchestrator {
	t.Helper()
	f := newFixture(t)
	if backend == nil {
		backend = f.prover
	}
	return New(logger, custody.NewMemoryStore(logger), backend, f.verifier, nil)
}

func TestCreateSecret_ReusesExisting(t *testing.T) {
	ctx := context.Background()
	o := newOrchestrator(t, testutil.NewTestLogger(), &testutil.CountingProofBackend{})

	c1, err := o.CreateSecret(ctx, "0xAlice")
	require.NoError(t, err)
	c2, err := o.CreateSecret(ctx, "0xalice")
	require.NoError(t, err)
	assert.Equal(t, 0, c1.Cmp(c2))

	c3, err := o.Commitment(ctx, "0xALICE")
	require.NoError(t, err)
	assert.Equal(t, 0, c1.Cmp(c3))

	subjects, err := o.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0xalice"}, subjects)
}

func TestCreateSecret_Concurrent(t *testing.T) {
	ctx := context.Background()
	o := newOrchestrator(t, testutil.NewTestLogger(), &testutil.CountingProofBackend{})

	const n = 8
	results := make([]*big.Int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := o.CreateSecret(ctx, "bob")
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		require.NotNil(t, results[i])
		assert.Equal(t, 0, results[0].Cmp(results[i]))
	}
}

func TestMissingSecret(t *testing.T) {
	ctx := context.Background()
	backend := &testutil.CountingProofBackend{}
	o := newOrchestrator(t, testutil.NewTestLogger(), backend)

	_, err := o.ProveOwnership(ctx, "nobody")
	require.ErrorIs(t, err, zk.ErrMissingSecret)
	assert.True(t, zk.IsUsageError(err))

	_, err = o.Commitment(ctx, "nobody")
	require.ErrorIs(t, err, zk.ErrMissingSecret)
	assert.Equal(t, 0, backend.Calls())
}

func TestDestroySecret(t *testing.T) {
	ctx := context.Background()
	o := newOrchestrator(t, testutil.NewTestLogger(), &testutil.CountingProofBackend{})

	_, err := o.CreateSecret(ctx, "carol")
	require.NoError(t, err)
	require.NoError(t, o.DestroySecret(ctx, "CAROL"))

	_, err = o.Commitment(ctx, "carol")
	require.ErrorIs(t, err, zk.ErrMissingSecret)
}

func TestOwnership_CompletenessAndSoundness(t *testing.T) {
	ctx := context.Background()
	o := newOrchestrator(t, testutil.NewTestLogger(), nil)

	c, err := o.CreateSecret(ctx, "alice")
	require.NoError(t, err)

	result, err := o.ProveOwnership(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, types.PublicSignals{c.String()}, result.PublicSignals)

	ok, err := o.Verify(ctx, types.CircuitOwnership, result.PublicSignals, result.Proof)
	require.NoError(t, err)
	assert.True(t, ok)

	// 同一证明不能证明另一个承诺
	other, err := o.CreateSecret(ctx, "bob")
	require.NoError(t, err)
	ok, err = o.Verify(ctx, types.CircuitOwnership, types.PublicSignals{other.String()}, result.Proof)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOwnership_TamperedSignalsFailSelfVerification(t *testing.T) {
	ctx := context.Background()
	logger := testutil.NewTestBehavioralLogger()
	f := newFixture(t)
	backend := &testutil.TamperingProofBackend{
		Delegate: f.prover,
		Tamper: func(s types.PublicSignals) types.PublicSignals {
			return types.PublicSignals{"1"}
		},
	}
	o := New(logger, custody.NewMemoryStore(logger), backend, f.verifier, nil)

	_, err := o.CreateSecret(ctx, "mallory")
	require.NoError(t, err)

	_, err = o.ProveOwnership(ctx, "mallory")
	require.ErrorIs(t, err, zk.ErrProverFailure)
	assert.Equal(t, 1, logger.CountContaining("WARN", "完整性告警"))
}

func TestOwnership_ProverFailureWrapped(t *testing.T) {
	ctx := context.Background()
	backend := &testutil.CountingProofBackend{ProveErr: assert.AnError}
	o := newOrchestrator(t, testutil.NewTestLogger(), backend)

	secret, err := commitment.RandomSecret()
	require.NoError(t, err)
	_, err = o.ProveOwnershipOf(ctx, secret)
	require.ErrorIs(t, err, zk.ErrProverFailure)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, backend.Calls())
}

func TestRange_Completeness(t *testing.T) {
	ctx := context.Background()
	o := newOrchestrator(t, testutil.NewTestLogger(), nil)

	value, lo, hi := big.NewInt(15), big.NewInt(10), big.NewInt(20)
	result, err := o.ProveRange(ctx, value, lo, hi)
	require.NoError(t, err)
	require.Len(t, result.PublicSignals, 3)
	assert.Equal(t, "10", result.PublicSignals[0])
	assert.Equal(t, "20", result.PublicSignals[1])

	ok, err := o.Verify(ctx, types.CircuitRange, result.PublicSignals, result.Proof)
	require.NoError(t, err)
	assert.True(t, ok)

	// 边界值
	_, err = o.ProveRange(ctx, big.NewInt(10), lo, hi)
	require.NoError(t, err)
	_, err = o.ProveRange(ctx, big.NewInt(20), lo, hi)
	require.NoError(t, err)
}

func TestRange_LocalRejection(t *testing.T) {
	ctx := context.Background()
	backend := &testutil.CountingProofBackend{}
	o := newOrchestrator(t, testutil.NewTestLogger(), backend)

	cases := []struct {
		name            string
		value, min, max *big.Int
	}{
		{"below min", big.NewInt(5), big.NewInt(10), big.NewInt(20)},
		{"above max", big.NewInt(21), big.NewInt(10), big.NewInt(20)},
		{"inverted bounds", big.NewInt(15), big.NewInt(20), big.NewInt(10)},
		{"negative value", big.NewInt(-1), big.NewInt(-5), big.NewInt(20)},
		{"nil value", nil, big.NewInt(0), big.NewInt(20)},
		{"modulus", commitment.Modulus(), big.NewInt(0), commitment.Modulus()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := o.ProveRange(ctx, tc.value, tc.min, tc.max)
			require.ErrorIs(t, err, zk.ErrInvalidRange)
			assert.True(t, zk.IsUsageError(err))
		})
	}
	assert.Equal(t, 0, backend.Calls())
}

func TestRange_TamperedBoundsRejected(t *testing.T) {
	ctx := context.Background()
	o := newOrchestrator(t, testutil.NewTestLogger(), nil)

	result, err := o.ProveRange(ctx, big.NewInt(50000), big.NewInt(10000), big.NewInt(10000000))
	require.NoError(t, err)

	tampered := append(types.PublicSignals{"0", "1"}, result.PublicSignals[2])
	ok, err := o.Verify(ctx, types.CircuitRange, tampered, result.Proof)
	require.NoError(t, err)
	assert.False(t, ok)
}
