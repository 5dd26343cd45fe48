package qc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimhash64_EmptyAndUnqualified(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace only", "   \t\n  "},
		{"short words only", "the cat sat on a mat"},
		{"stopwords only", "between these those using based"},
		{"non-ascii only", "日本語のテキスト"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, uint64(0), Simhash64(tt.text))
		})
	}
}

func TestSimhash64_Deterministic(t *testing.T) {
	text := "deterministic fingerprints must match bit for bit across calls"
	assert.Equal(t, Simhash64(text), Simhash64(text))
}

func TestSimhash64_SingleTokenEqualsTokenHash(t *testing.T) {
	// With one qualifying token every bit vote follows the token hash
	// exactly, so the fingerprint is the hash itself.
	assert.Equal(t, tokenHash64([]byte("quickly")), Simhash64("quickly"))
	assert.Equal(t, tokenHash64([]byte("quickly")), Simhash64("QUICKLY"))
}

func TestSimhash64_ZeroLimit(t *testing.T) {
	assert.Equal(t, uint64(0), Simhash64Limit("plenty of qualifying tokens", 0))
}

func TestSimhash64_LimitMonotonic(t *testing.T) {
	text := "alpha1 beta2 gamma3 delta4 epsilon5 zeta6 eta7 theta8"

	// Raising the limit past the token count matches the uncapped result.
	assert.Equal(t, Simhash64(text), Simhash64Limit(text, 100))
	assert.Equal(t, Simhash64(text), Simhash64Limit(text, 8))

	// A limit of N depends only on the first N tokens in scan order.
	assert.Equal(t, Simhash64Limit("alpha1 beta2 trailing garbage everywhere", 2),
		Simhash64Limit("alpha1 beta2 unrelated suffix material", 2))
}

func TestSimhash64_StopwordInsertionIsNearDuplicate(t *testing.T) {
	base := "distributed systems require careful consensus protocols under partial failure"
	nearDup := "distributed systems require careful the consensus protocols under partial failure"
	unrelated := "marmalade recipes favor bitter oranges simmered slowly overnight"

	a := Simhash64(base)
	b := Simhash64(nearDup)
	c := Simhash64(unrelated)

	// Stopwords never vote, so the near-duplicate hashes identically.
	assert.LessOrEqual(t, HammingDistance(a, b), 3)
	assert.Greater(t, HammingDistance(a, c), 10,
		fmt.Sprintf("unrelated texts should differ widely: %064b vs %064b", a, c))
}

func TestHammingDistance(t *testing.T) {
	assert.Equal(t, 0, HammingDistance(0xDEADBEEF, 0xDEADBEEF))
	assert.Equal(t, 1, HammingDistance(0, 1))
	assert.Equal(t, 64, HammingDistance(0, ^uint64(0)))
}

func TestSimilar(t *testing.T) {
	assert.True(t, Similar(0b1011, 0b1001, 1))
	assert.True(t, Similar(0b1011, 0b1001, 3))
	assert.False(t, Similar(0b1011, 0b0001, 1))
}

func TestTokenHash64_Deterministic(t *testing.T) {
	h1 := tokenHash64([]byte("token"))
	h2 := tokenHash64([]byte("token"))
	h3 := tokenHash64([]byte("other"))

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}
