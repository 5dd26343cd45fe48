package qc

import (
	"hash/adler32"
	"unicode/utf8"
)

// DefaultMaxShingles bounds how many byte windows the shingle extractor
// visits. An explicit limit of 0 means unlimited.
const DefaultMaxShingles = 20000

// Shingles extracts every k-byte window from text and returns the set of
// their Adler-32 checksums. maxShingles caps the number of windows visited
// (0 = unlimited). Returns an empty set when k <= 0 or the text is too short.
//
// Truncation happens in two stages so the cap is honored for multi-byte
// input without splitting the count heuristic across encodings: first the
// text is cut to maxShingles+k-1 runes when its rune count exceeds that,
// then the UTF-8 bytes are cut to maxShingles+k-1 bytes when the window
// count still exceeds the cap. Windows containing only bytes <= 32
// (whitespace and control characters) carry no signal and are skipped.
// Distinct windows with colliding checksums collapse into one set member;
// that approximation is part of the signature format.
func Shingles(text string, k int, maxShingles int) map[uint32]struct{} {
	set := make(map[uint32]struct{})
	if k <= 0 {
		return set
	}
	if utf8.RuneCountInString(text) < k {
		return set
	}

	if maxShingles > 0 {
		text = truncateRunes(text, maxShingles+k-1)
	}

	data := []byte(text)
	if len(data) < k {
		return set
	}
	if maxShingles > 0 && len(data)-k+1 > maxShingles {
		if limit := maxShingles + k - 1; len(data) > limit {
			data = data[:limit]
		}
	}

	for i := 0; i+k <= len(data); i++ {
		window := data[i : i+k]
		if allBlank(window) {
			continue
		}
		set[adler32.Checksum(window)] = struct{}{}
	}
	return set
}

// truncateRunes cuts s to at most n runes. Counting is rune-based only for
// the cutoff; callers shingle over the resulting UTF-8 bytes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func allBlank(window []byte) bool {
	for _, b := range window {
		if b > 32 {
			return false
		}
	}
	return true
}
