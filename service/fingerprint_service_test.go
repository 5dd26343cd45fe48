package service

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JochiRaider/RepoCapsule/internal/qc"
)

func defaultFingerprintOptions() FingerprintOptions {
	return FingerprintOptions{
		K:           5,
		NumHashes:   32,
		MaxTokens:   qc.DefaultMaxTokens,
		MaxShingles: qc.DefaultMaxShingles,
	}
}

func newQuietFingerprintService() *FingerprintService {
	s := NewFingerprintService()
	s.Progress().SetWriter(io.Discard)
	return s
}

func TestFingerprintService_Run(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.txt", []byte("fingerprinted document number one with plenty of words"))
	b := writeTestFile(t, dir, "b.txt", []byte("completely different second document body"))

	svc := newQuietFingerprintService()
	results, err := svc.Run(context.Background(), []string{a, b}, defaultFingerprintOptions())
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Input order is preserved.
	assert.Equal(t, a, results[0].Path)
	assert.Equal(t, b, results[1].Path)

	for _, r := range results {
		assert.Empty(t, r.Err)
		assert.NotZero(t, r.Simhash)
		assert.Len(t, r.Signature, 32)
	}
	assert.NotEqual(t, results[0].Simhash, results[1].Simhash)
}

func TestFingerprintService_MatchesCoreFunctions(t *testing.T) {
	dir := t.TempDir()
	content := "service results must be byte identical to the core primitives"
	path := writeTestFile(t, dir, "doc.txt", []byte(content))

	opts := defaultFingerprintOptions()
	svc := newQuietFingerprintService()
	results, err := svc.Run(context.Background(), []string{path}, opts)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, qc.Simhash64(content), results[0].Simhash)

	wantSig, err := qc.SignatureForText(content, opts.K, opts.NumHashes)
	require.NoError(t, err)
	assert.Equal(t, wantSig, results[0].Signature)
}

func TestFingerprintService_UnreadableFileIsPerFileError(t *testing.T) {
	dir := t.TempDir()
	ok := writeTestFile(t, dir, "ok.txt", []byte("readable content here"))
	missing := filepath.Join(dir, "missing.txt")

	svc := newQuietFingerprintService()
	results, err := svc.Run(context.Background(), []string{ok, missing}, defaultFingerprintOptions())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Empty(t, results[0].Err)
	assert.NotEmpty(t, results[1].Err)
	assert.Zero(t, results[1].Simhash)
}

func TestFingerprintService_InvalidNumHashes(t *testing.T) {
	opts := defaultFingerprintOptions()
	opts.NumHashes = qc.MaxPerms + 1

	svc := newQuietFingerprintService()
	_, err := svc.Run(context.Background(), []string{"whatever.txt"}, opts)
	assert.ErrorIs(t, err, qc.ErrTooManyPerms)
}

func TestFingerprintService_ContextCancellation(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := 0; i < 50; i++ {
		files = append(files, writeTestFile(t, dir, filepath.Base(t.Name())+string(rune('a'+i%26))+".txt", []byte("content")))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newQuietFingerprintService()
	_, err := svc.Run(ctx, files, FingerprintOptions{K: 5, NumHashes: 16, Workers: 1, MaxTokens: 100, MaxShingles: 100})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFingerprintService_EmptyInput(t *testing.T) {
	svc := newQuietFingerprintService()
	results, err := svc.Run(context.Background(), nil, defaultFingerprintOptions())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFileFingerprint_SimhashHex(t *testing.T) {
	fp := FileFingerprint{Simhash: 0xDEADBEEF}
	assert.Equal(t, "00000000deadbeef", fp.SimhashHex())
}
