package commitment

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr/poseidon2"
	"github.com/stretchr/testify/require"

	zk "github.com/weisyn/zkprivacy/pkg/interfaces/zkprivacy"
)

// referenceHash 直接使用原生 Poseidon2 计算，作为对照
func referenceHash(inputs ...*big.Int) *big.Int {
	hasher := poseidon2.NewMerkleDamgardHasher()
	for _, in := range inputs {
		buf := make([]byte, 32)
		in.FillBytes(buf)
		hasher.Write(buf)
	}
	return new(big.Int).SetBytes(hasher.Sum(nil))
}

func TestHash_Deterministic(t *testing.T) {
	secret, err := RandomSecret()
	require.NoError(t, err)

	h1, err := Hash(secret)
	require.NoError(t, err)
	h2, err := Hash(secret)
	require.NoError(t, err)

	require.Equal(t, 0, h1.Cmp(h2))
	require.True(t, IsCanonical(h1))
}

func TestHash_MatchesNativePoseidon2(t *testing.T) {
	a := big.NewInt(42)
	b := big.NewInt(7)

	got, err := Hash(a, b)
	require.NoError(t, err)
	require.Equal(t, 0, got.Cmp(referenceHash(a, b)))
}

func TestHash_OrderMatters(t *testing.T) {
	h1, err := RangeCommitment(big.NewInt(15), big.NewInt(10), big.NewInt(20))
	require.NoError(t, err)
	h2, err := Hash(big.NewInt(10), big.NewInt(15), big.NewInt(20))
	require.NoError(t, err)
	require.NotEqual(t, 0, h1.Cmp(h2))
}

func TestHash_DistinctSecretsDistinctCommitments(t *testing.T) {
	h1, err := Hash(big.NewInt(1))
	require.NoError(t, err)
	h2, err := Hash(big.NewInt(2))
	require.NoError(t, err)
	require.NotEqual(t, 0, h1.Cmp(h2))
}

func TestHash_InvalidInput(t *testing.T) {
	_, err := Hash()
	require.ErrorIs(t, err, zk.ErrInvalidInput)

	_, err = Hash(nil)
	require.ErrorIs(t, err, zk.ErrInvalidInput)

	_, err = Hash(big.NewInt(-1))
	require.ErrorIs(t, err, zk.ErrInvalidInput)

	// 恰好等于模数
	_, err = Hash(Modulus())
	require.ErrorIs(t, err, zk.ErrInvalidInput)

	// 模数 - 1 是合法输入
	max := new(big.Int).Sub(Modulus(), big.NewInt(1))
	_, err = Hash(max)
	require.NoError(t, err)
}

func TestPackBytes(t *testing.T) {
	require.Equal(t, 0, PackBytes([]byte("test")).Cmp(new(big.Int).SetBytes([]byte("test"))))

	long := make([]byte, 64)
	for i := range long {
		long[i] = 0xff
	}
	packed := PackBytes(long)
	require.Equal(t, PackWidth*8, packed.BitLen())
	require.True(t, IsCanonical(packed))

	// 超过前缀宽度的部分不影响结果
	long2 := append([]byte{}, long...)
	long2[63] = 0x00
	require.Equal(t, 0, packed.Cmp(PackBytes(long2)))
}

func TestPackSecretValue(t *testing.T) {
	fromString, err := PackSecretValue("1234")
	require.NoError(t, err)

	fromNumber, err := PackSecretValue(json.Number("1234"))
	require.NoError(t, err)
	require.Equal(t, 0, fromString.Cmp(fromNumber))

	fromFloat, err := PackSecretValue(float64(1234))
	require.NoError(t, err)
	require.Equal(t, 0, fromString.Cmp(fromFloat))

	_, err = PackSecretValue("")
	require.ErrorIs(t, err, zk.ErrInvalidInput)

	_, err = PackSecretValue(nil)
	require.ErrorIs(t, err, zk.ErrInvalidInput)

	_, err = PackSecretValue([]string{"x"})
	require.ErrorIs(t, err, zk.ErrInvalidInput)
}

func TestRandomSecret(t *testing.T) {
	s1, err := RandomSecret()
	require.NoError(t, err)
	s2, err := RandomSecret()
	require.NoError(t, err)

	require.True(t, IsCanonical(s1))
	require.True(t, IsCanonical(s2))
	require.NotEqual(t, 0, s1.Cmp(s2))
}
