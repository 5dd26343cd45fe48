package qc

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

// MaxPerms is the largest deterministic coefficient family size Coeffs will
// hand out.
const MaxPerms = 8192

// coeffSeed makes the shared coefficient family reproducible across runs.
const coeffSeed = 0x5EED5EED

// ErrTooManyPerms is returned when more coefficient pairs are requested than
// the deterministic family supports.
var ErrTooManyPerms = errors.New("qc: permutation count exceeds maximum")

var (
	coeffMu    sync.Mutex
	coeffCache []Coeff
	coeffRNG   = rand.New(rand.NewSource(coeffSeed))
)

// Coeffs returns the first n pairs of the process-wide deterministic
// coefficient family. The family is generated lazily from a fixed seed and
// cached, so prefixes are stable: Coeffs(128) equals Coeffs(256)[:128].
// n must be in [0, MaxPerms].
func Coeffs(n int) ([]Coeff, error) {
	if n < 0 {
		return nil, fmt.Errorf("qc: permutation count must be non-negative, got %d", n)
	}
	if n > MaxPerms {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyPerms, n, MaxPerms)
	}
	if n == 0 {
		return []Coeff{}, nil
	}

	coeffMu.Lock()
	defer coeffMu.Unlock()
	// The lock covers both RNG draws and cache growth so concurrent callers
	// cannot interleave coefficients and break prefix stability.
	for len(coeffCache) < n {
		a := 1 + uint64(coeffRNG.Int63n(int64(MinhashPrime-2)))
		b := uint64(coeffRNG.Int63n(int64(MinhashPrime - 1)))
		coeffCache = append(coeffCache, Coeff{A: a, B: b})
	}

	out := make([]Coeff, n)
	copy(out, coeffCache[:n])
	return out, nil
}

// SignatureForText computes a MinHash signature for text using the first
// nPerm pairs of the deterministic coefficient family and the default
// shingle cap.
func SignatureForText(text string, k, nPerm int) ([]uint64, error) {
	return SignatureForTextLimit(text, k, nPerm, DefaultMaxShingles)
}

// SignatureForTextLimit is SignatureForText with an explicit shingle cap
// (0 = unlimited).
func SignatureForTextLimit(text string, k, nPerm, maxShingles int) ([]uint64, error) {
	coeffs, err := Coeffs(nPerm)
	if err != nil {
		return nil, err
	}
	return MinhashSignatureLimit(text, k, coeffs, maxShingles), nil
}
