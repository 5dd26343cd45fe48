// Package qc computes locality-sensitive text fingerprints for near-duplicate
// detection: a 64-bit SimHash over word tokens and a MinHash signature over
// k-byte shingles. Both entry points are pure functions; identical input
// always yields identical output, across platforms and runs.
package qc

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"golang.org/x/crypto/blake2b"
)

// tokenHash64 maps token bytes to a uniform 64-bit value using an 8-byte
// BLAKE2b digest read in little-endian order. The digest size is fixed and
// valid, so construction can only fail on programmer error.
func tokenHash64(token []byte) uint64 {
	h, err := blake2b.New(8, nil)
	if err != nil {
		panic(fmt.Sprintf("qc: blake2b init: %v", err))
	}
	h.Write(token)
	var sum [8]byte
	return binary.LittleEndian.Uint64(h.Sum(sum[:0]))
}

// Simhash64 computes the 64-bit SimHash fingerprint of text using the
// default token limit.
func Simhash64(text string) uint64 {
	return Simhash64Limit(text, DefaultMaxTokens)
}

// Simhash64Limit computes the 64-bit SimHash fingerprint of text, folding at
// most maxTokens qualifying tokens in scan order. A limit <= 0 yields 0
// without scanning.
//
// Each token hash votes on all 64 bit positions: +1 where the hash bit is
// set, -1 where it is clear. Output bit i is set iff the vote count at i is
// strictly positive, so a zero (tied) counter leaves the bit clear and zero
// qualifying tokens yield fingerprint 0. Hamming distance between two
// fingerprints approximates how much the underlying token sets disagree.
func Simhash64Limit(text string, maxTokens int) uint64 {
	if maxTokens <= 0 {
		return 0
	}

	var votes [64]int32
	eachToken(text, maxTokens, func(token []byte) {
		h := tokenHash64(token)
		for bit := 0; bit < 64; bit++ {
			if (h>>bit)&1 == 1 {
				votes[bit]++
			} else {
				votes[bit]--
			}
		}
	})

	var out uint64
	for bit, v := range votes {
		if v > 0 {
			out |= 1 << bit
		}
	}
	return out
}

// HammingDistance returns the number of differing bits between two SimHash
// fingerprints.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether two fingerprints are within maxDistance differing
// bits of each other.
func Similar(a, b uint64, maxDistance int) bool {
	return HammingDistance(a, b) <= maxDistance
}
