package qc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoeffs_PrefixStable(t *testing.T) {
	small, err := Coeffs(16)
	require.NoError(t, err)
	large, err := Coeffs(64)
	require.NoError(t, err)

	assert.Equal(t, small, large[:16])
}

func TestCoeffs_Ranges(t *testing.T) {
	coeffs, err := Coeffs(256)
	require.NoError(t, err)
	require.Len(t, coeffs, 256)

	for i, c := range coeffs {
		assert.GreaterOrEqual(t, c.A, uint64(1), "a[%d]", i)
		assert.Less(t, c.A, MinhashPrime-1, "a[%d]", i)
		assert.Less(t, c.B, MinhashPrime-1, "b[%d]", i)
	}
}

func TestCoeffs_Errors(t *testing.T) {
	_, err := Coeffs(-1)
	assert.Error(t, err)

	_, err = Coeffs(MaxPerms + 1)
	assert.ErrorIs(t, err, ErrTooManyPerms)

	coeffs, err := Coeffs(0)
	require.NoError(t, err)
	assert.Empty(t, coeffs)
}

func TestCoeffs_ConcurrentAccess(t *testing.T) {
	// Concurrent growth must never interleave RNG draws; every caller sees
	// the same prefix.
	want, err := Coeffs(128)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Coeffs(128)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestSignatureForText(t *testing.T) {
	sig, err := SignatureForText("deterministic convenience signatures", 4, 32)
	require.NoError(t, err)
	require.Len(t, sig, 32)

	again, err := SignatureForText("deterministic convenience signatures", 4, 32)
	require.NoError(t, err)
	assert.Equal(t, sig, again)

	// Must agree with the explicit-coefficient path.
	coeffs, err := Coeffs(32)
	require.NoError(t, err)
	assert.Equal(t, MinhashSignature("deterministic convenience signatures", 4, coeffs), sig)
}

func TestSignatureForText_SentinelForShortText(t *testing.T) {
	sig, err := SignatureForText("ab", 3, 4)
	require.NoError(t, err)
	require.Len(t, sig, 4)
	for _, v := range sig {
		assert.Equal(t, MinhashSentinel, v)
	}
}

func TestSignatureForText_TooManyPerms(t *testing.T) {
	_, err := SignatureForText("text", 3, MaxPerms+1)
	assert.ErrorIs(t, err, ErrTooManyPerms)
}
