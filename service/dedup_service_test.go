package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultDedupOptions() DedupOptions {
	opts := DedupOptions{
		Fingerprint:       defaultFingerprintOptions(),
		SimhashHammingMax: 3,
		LSHBands:          8,
		LSHRows:           4,
		LSHThreshold:      0.6,
		MinFamilySize:     2,
		TopFamilies:       5,
	}
	opts.Fingerprint.NumHashes = 32
	return opts
}

func newQuietDedupService() *DedupService {
	s := NewDedupService()
	s.Progress().SetWriter(io.Discard)
	return s
}

func TestDedupService_FindsNearDuplicates(t *testing.T) {
	dir := t.TempDir()
	base := strings.Repeat("shared paragraph about fingerprint based deduplication across corpora ", 30)

	a := writeTestFile(t, dir, "a.txt", []byte(base))
	b := writeTestFile(t, dir, "b.txt", []byte(base+"plus one small trailing addition"))
	c := writeTestFile(t, dir, "c.txt", []byte(strings.Repeat("wholly unrelated text on gardening and soil acidity levels ", 30)))

	svc := newQuietDedupService()
	report, err := svc.Run(context.Background(), []string{a, b, c}, defaultDedupOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scored)
	assert.Equal(t, 2, report.NearDups)
	require.Len(t, report.Pairs, 1)
	assert.Equal(t, a, report.Pairs[0].ID1)
	assert.Equal(t, b, report.Pairs[0].ID2)

	require.Len(t, report.TopFamilies, 1)
	assert.Equal(t, 2, report.TopFamilies[0].Count)
	assert.Equal(t, a, report.TopFamilies[0].FamilyID)
}

func TestDedupService_NoDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.txt", []byte(strings.Repeat("first entirely distinct document body of text ", 20)))
	b := writeTestFile(t, dir, "b.txt", []byte(strings.Repeat("second wholly different topic covered here today ", 20)))

	svc := newQuietDedupService()
	report, err := svc.Run(context.Background(), []string{a, b}, defaultDedupOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Scored)
	assert.Zero(t, report.NearDups)
	assert.Empty(t, report.Pairs)
	assert.Empty(t, report.TopFamilies)
}

func TestDedupService_IdenticalFilesFormOneFamily(t *testing.T) {
	dir := t.TempDir()
	content := []byte(strings.Repeat("exactly identical content replicated across several files ", 25))

	var files []string
	for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
		files = append(files, writeTestFile(t, dir, name, content))
	}

	svc := newQuietDedupService()
	report, err := svc.Run(context.Background(), files, defaultDedupOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, report.NearDups)
	assert.Len(t, report.Pairs, 3) // every unordered pair
	require.Len(t, report.TopFamilies, 1)
	assert.Equal(t, 3, report.TopFamilies[0].Count)
}

func TestDedupService_SignatureTooShortForBanding(t *testing.T) {
	opts := defaultDedupOptions()
	opts.Fingerprint.NumHashes = 16 // 8 bands * 4 rows needs 32

	svc := newQuietDedupService()
	_, err := svc.Run(context.Background(), []string{"any.txt"}, opts)
	assert.Error(t, err)
}

func TestDedupService_UnreadableFilesReported(t *testing.T) {
	dir := t.TempDir()
	ok := writeTestFile(t, dir, "ok.txt", []byte(strings.Repeat("fine readable content ", 10)))

	svc := newQuietDedupService()
	report, err := svc.Run(context.Background(), []string{ok, dir + "/missing.txt"}, defaultDedupOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Scored)
	assert.Equal(t, []string{dir + "/missing.txt"}, report.FailedFiles)
}
