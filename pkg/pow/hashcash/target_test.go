package hashcash

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashWithPrefix(prefix ...byte) [32]byte {
	var h [32]byte
	for i := range h {
		h[i] = 0xff
	}
	copy(h[:], prefix)
	return h
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(" HEX ")
	require.NoError(t, err)
	assert.Equal(t, PolicyHexNibbles, p)

	p, err = ParsePolicy("bytes")
	require.NoError(t, err)
	assert.Equal(t, PolicyZeroBytes, p)

	_, err = ParsePolicy("bits")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestNewTarget(t *testing.T) {
	target, err := NewTarget(PolicyHexNibbles, 4)
	require.NoError(t, err)
	assert.Equal(t, "hex:4", target.String())

	_, err = NewTarget(PolicyZeroBytes, 32)
	require.NoError(t, err)

	_, err = NewTarget(PolicyZeroBytes, 33)
	assert.ErrorIs(t, err, ErrDifficultyRange)
}

func TestHexNibblesMatchesHexPrefix(t *testing.T) {
	hashes := [][32]byte{
		hashWithPrefix(),
		hashWithPrefix(0x0f),
		hashWithPrefix(0x00),
		hashWithPrefix(0x00, 0x0f),
		hashWithPrefix(0x00, 0x00, 0xf0),
		{},
	}

	for _, h := range hashes {
		digest := hex.EncodeToString(h[:])
		for n := 0; n <= 8; n++ {
			want := strings.HasPrefix(digest, strings.Repeat("0", n))
			assert.Equal(t, want, HexNibbles(n).IsSatisfiedBy(h), "digest %s nibbles %d", digest, n)
		}
	}
}

func TestZeroBytes(t *testing.T) {
	assert.True(t, ZeroBytes(0).IsSatisfiedBy(hashWithPrefix()))
	assert.True(t, ZeroBytes(2).IsSatisfiedBy(hashWithPrefix(0x00, 0x00, 0x01)))
	assert.False(t, ZeroBytes(3).IsSatisfiedBy(hashWithPrefix(0x00, 0x00, 0x01)))
	assert.True(t, ZeroBytes(32).IsSatisfiedBy([32]byte{}))
}

// A first byte of 0x0f has a zero high nibble and a nonzero low nibble: one
// leading zero nibble, no leading zero byte.
func TestPoliciesDisagreeOnOddNibbleRuns(t *testing.T) {
	h := hashWithPrefix(0x0f)
	assert.True(t, HexNibbles(1).IsSatisfiedBy(h))
	assert.False(t, ZeroBytes(1).IsSatisfiedBy(h))

	h = hashWithPrefix(0x00, 0xf0)
	assert.True(t, ZeroBytes(1).IsSatisfiedBy(h))
	assert.False(t, HexNibbles(3).IsSatisfiedBy(h))
	assert.True(t, HexNibbles(2).IsSatisfiedBy(h))
}

func TestPoliciesAgreeOnEvenNibbleRuns(t *testing.T) {
	hashes := [][32]byte{
		hashWithPrefix(0x0f),
		hashWithPrefix(0x00, 0x01),
		hashWithPrefix(0x00, 0x00, 0x00),
		hashWithPrefix(0x10),
	}
	for _, h := range hashes {
		for k := 0; k <= 3; k++ {
			assert.Equal(t, ZeroBytes(k).IsSatisfiedBy(h), HexNibbles(2*k).IsSatisfiedBy(h))
		}
	}
}

func TestUnknownPolicyNeverSatisfied(t *testing.T) {
	assert.False(t, Target{Policy: "bits"}.IsSatisfiedBy([32]byte{}))
}

func TestTargetZeroBits(t *testing.T) {
	assert.Equal(t, 0, HexNibbles(0).ZeroBits())
	assert.Equal(t, 12, HexNibbles(3).ZeroBits())
	assert.Equal(t, 16, ZeroBytes(2).ZeroBits())
	assert.Equal(t, HexNibbles(4).ZeroBits(), ZeroBytes(2).ZeroBits())
	assert.Zero(t, Target{Policy: "bits", Count: 5}.ZeroBits())
}
