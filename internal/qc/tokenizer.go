package qc

// DefaultMaxTokens bounds how many qualifying tokens the simhash fold
// consumes before it stops scanning.
const DefaultMaxTokens = 20000

// minTokenLen is the shortest token that carries enough signal to vote.
const minTokenLen = 4

// stopwords holds common English words excluded from fingerprinting.
// Tokens are lowercased before lookup, so the set only needs lowercase keys.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "that": {}, "with": {},
	"this": {}, "from": {}, "have": {}, "your": {}, "into": {},
	"such": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"there": {}, "their": {}, "been": {}, "than": {}, "also": {},
	"more": {}, "would": {}, "could": {}, "should": {}, "will": {},
	"can": {}, "about": {}, "each": {}, "other": {}, "some": {},
	"most": {}, "many": {}, "very": {}, "over": {}, "under": {},
	"between": {}, "these": {}, "those": {}, "them": {}, "then": {},
	"here": {}, "onto": {}, "upon": {}, "using": {}, "used": {},
	"use": {}, "based": {}, "within": {}, "across": {},
}

func isASCIIAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isTokenByte(b byte) bool {
	return isASCIIAlpha(b) || (b >= '0' && b <= '9') || b == '_'
}

func toLowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// eachToken scans text for qualifying word tokens and invokes fn for each,
// stopping after limit tokens have been produced.
//
// A token starts at an ASCII letter and greedily extends over ASCII letters,
// digits and underscores, lowercased byte by byte. Every other byte advances
// the cursor by one, so multi-byte UTF-8 sequences are skipped bytewise and
// never form tokens. A token qualifies when it is at least minTokenLen bytes
// long and not a stopword.
//
// The token slice passed to fn is reused between calls; fn must not retain it.
func eachToken(text string, limit int, fn func(token []byte)) {
	if limit <= 0 {
		return
	}

	var buf []byte
	seen := 0
	for i := 0; i < len(text); {
		b := text[i]
		if !isASCIIAlpha(b) {
			i++
			continue
		}
		buf = append(buf[:0], toLowerASCII(b))
		i++
		for i < len(text) && isTokenByte(text[i]) {
			buf = append(buf, toLowerASCII(text[i]))
			i++
		}
		if len(buf) < minTokenLen {
			continue
		}
		if _, stop := stopwords[string(buf)]; stop {
			continue
		}
		fn(buf)
		seen++
		if seen >= limit {
			return
		}
	}
}
