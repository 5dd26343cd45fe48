package service

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/JochiRaider/RepoCapsule/internal/qc"
)

// FingerprintOptions configures a fingerprint run.
type FingerprintOptions struct {
	K           int // shingle width in bytes
	NumHashes   int // MinHash signature length
	MaxTokens   int // SimHash token cap; 0 disables SimHash
	MaxShingles int // shingle cap; 0 means unlimited
	Workers     int // concurrent files; <= 0 picks a default
}

// FileFingerprint is the result of fingerprinting one file. Err is set when
// the file could not be read; the fingerprints are then zero values.
type FileFingerprint struct {
	Path      string   `json:"path" yaml:"path"`
	Simhash   uint64   `json:"simhash" yaml:"simhash"`
	Signature []uint64 `json:"signature" yaml:"signature"`
	Err       string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// SimhashHex renders the SimHash as a fixed-width hex string.
func (f FileFingerprint) SimhashHex() string {
	return fmt.Sprintf("%016x", f.Simhash)
}

// FingerprintService computes fingerprints for batches of files.
type FingerprintService struct {
	progress *ProgressReporter
}

// NewFingerprintService creates a service reporting progress to stderr.
func NewFingerprintService() *FingerprintService {
	return &FingerprintService{progress: NewProgressReporter("Fingerprinting")}
}

// Progress exposes the reporter so callers can redirect or silence it.
func (s *FingerprintService) Progress() *ProgressReporter {
	return s.progress
}

// Run fingerprints every file concurrently, preserving input order in the
// result. Unreadable files produce a per-file Err instead of failing the
// batch; the only batch-level failures are invalid options and context
// cancellation.
func (s *FingerprintService) Run(ctx context.Context, files []string, opts FingerprintOptions) ([]FileFingerprint, error) {
	coeffs, err := qc.Coeffs(opts.NumHashes)
	if err != nil {
		return nil, fmt.Errorf("invalid signature length: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]FileFingerprint, len(files))
	jobs := make(chan int)

	s.progress.Start(len(files))
	defer s.progress.Finish()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.fingerprintFile(files[i], coeffs, opts)
				s.progress.Increment()
			}
		}()
	}

	var ctxErr error
dispatch:
	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if ctxErr != nil {
		return nil, ctxErr
	}
	return results, nil
}

func (s *FingerprintService) fingerprintFile(path string, coeffs []qc.Coeff, opts FingerprintOptions) FileFingerprint {
	result := FileFingerprint{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Err = err.Error()
		return result
	}
	text := string(data)

	result.Simhash = qc.Simhash64Limit(text, opts.MaxTokens)
	result.Signature = qc.MinhashSignatureLimit(text, opts.K, coeffs, opts.MaxShingles)
	return result
}
