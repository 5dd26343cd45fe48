package qc

import (
	"math/bits"
)

const (
	// MinhashPrime is the modulus of the affine hash family, the smallest
	// prime larger than 2^32 so every 32-bit shingle checksum maps without
	// bias.
	MinhashPrime uint64 = 4294967311

	// MinhashSentinel fills every signature slot when no shingle qualifies
	// (k = 0, text shorter than k, or all windows filtered as blank).
	MinhashSentinel uint64 = 0xFFFFFFFF
)

// Coeff is one member (a, b) of the pairwise-independent affine hash family
// h(x) = (a*x + b) mod MinhashPrime. Signature slot i is produced by
// coefficient pair i, so order is significant.
type Coeff struct {
	A uint64
	B uint64
}

// MinhashSignature computes the MinHash signature of text over k-byte
// shingles using the default shingle cap. See MinhashSignatureLimit.
func MinhashSignature(text string, k int, coeffs []Coeff) []uint64 {
	return MinhashSignatureLimit(text, k, coeffs, DefaultMaxShingles)
}

// MinhashSignatureLimit computes the MinHash signature of text over k-byte
// shingles, visiting at most maxShingles windows (0 = unlimited). The result
// always has len(coeffs) slots; slot i holds the minimum of coeffs[i]
// applied to every shingle checksum, or MinhashSentinel when the shingle set
// is empty. The expected fraction of agreeing slots between two signatures
// estimates the Jaccard similarity of the underlying shingle sets.
func MinhashSignatureLimit(text string, k int, coeffs []Coeff, maxShingles int) []uint64 {
	sig := make([]uint64, len(coeffs))
	for i := range sig {
		sig[i] = MinhashSentinel
	}
	if k <= 0 {
		return sig
	}

	shingles := Shingles(text, k, maxShingles)
	if len(shingles) == 0 {
		return sig
	}

	// Iteration order over the set is irrelevant: min is commutative.
	for x := range shingles {
		x64 := uint64(x)
		for i, c := range coeffs {
			if v := affineMod(c.A, x64, c.B); v < sig[i] {
				sig[i] = v
			}
		}
	}
	return sig
}

// affineMod computes (a*x + b) mod MinhashPrime in 128-bit intermediate
// width so the product never truncates before the modulus is applied.
func affineMod(a, x, b uint64) uint64 {
	hi, lo := bits.Mul64(a, x)
	lo, carry := bits.Add64(lo, b, 0)
	hi += carry
	return bits.Rem64(hi, lo, MinhashPrime)
}

// EstimateJaccard estimates the Jaccard similarity of two documents from
// their MinHash signatures as the fraction of agreeing slots. Signatures of
// unequal length are compared over their common prefix; empty input yields 0.
func EstimateJaccard(sig1, sig2 []uint64) float64 {
	n := len(sig1)
	if len(sig2) < n {
		n = len(sig2)
	}
	if n == 0 {
		return 0.0
	}
	match := 0
	for i := 0; i < n; i++ {
		if sig1[i] == sig2[i] {
			match++
		}
	}
	return float64(match) / float64(n)
}
