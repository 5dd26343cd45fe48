package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/JochiRaider/RepoCapsule/internal/dedup"
	"github.com/JochiRaider/RepoCapsule/internal/qc"
)

// DedupOptions configures a near-duplicate scan.
type DedupOptions struct {
	Fingerprint FingerprintOptions

	// SimhashHammingMax is the largest SimHash Hamming distance that still
	// confirms an LSH candidate pair on its own.
	SimhashHammingMax int

	LSHBands     int
	LSHRows      int
	LSHThreshold float64

	MinFamilySize int
	TopFamilies   int
}

// DedupReport is the outcome of a near-duplicate scan.
type DedupReport struct {
	Scored      int                   `json:"scored" yaml:"scored"`
	NearDups    int                   `json:"near_dups" yaml:"near_dups"`
	FailedFiles []string              `json:"failed_files,omitempty" yaml:"failed_files,omitempty"`
	Pairs       []dedup.Pair          `json:"pairs" yaml:"pairs"`
	TopFamilies []dedup.FamilySummary `json:"top_families" yaml:"top_families"`
}

// DedupService runs near-duplicate scans over file sets.
type DedupService struct {
	fingerprints *FingerprintService
}

// NewDedupService creates a scan service.
func NewDedupService() *DedupService {
	return &DedupService{fingerprints: NewFingerprintService()}
}

// Progress exposes the underlying fingerprint progress reporter.
func (s *DedupService) Progress() *ProgressReporter {
	return s.fingerprints.Progress()
}

// Run fingerprints the files, indexes their MinHash signatures in a banded
// LSH index, and confirms candidate pairs with either the estimated Jaccard
// threshold or the SimHash Hamming gate. Confirmed pairs are grouped into
// duplicate families by connectivity.
func (s *DedupService) Run(ctx context.Context, files []string, opts DedupOptions) (*DedupReport, error) {
	if opts.LSHBands*opts.LSHRows > opts.Fingerprint.NumHashes {
		return nil, fmt.Errorf("signature length %d cannot cover %d bands of %d rows",
			opts.Fingerprint.NumHashes, opts.LSHBands, opts.LSHRows)
	}

	prints, err := s.fingerprints.Run(ctx, files, opts.Fingerprint)
	if err != nil {
		return nil, err
	}

	report := &DedupReport{}
	index := dedup.NewIndex(dedup.IndexConfig{
		Bands:     opts.LSHBands,
		Rows:      opts.LSHRows,
		Threshold: opts.LSHThreshold,
	})
	simhashes := make(map[string]uint64, len(prints))

	for _, fp := range prints {
		if fp.Err != "" {
			report.FailedFiles = append(report.FailedFiles, fp.Path)
			continue
		}
		if err := index.Add(fp.Path, fp.Signature); err != nil {
			return nil, fmt.Errorf("failed to index %s: %w", fp.Path, err)
		}
		simhashes[fp.Path] = fp.Simhash
	}

	pairs := s.confirmPairs(index, simhashes, opts)
	report.Pairs = pairs

	families := dedup.AssignFamilies(pairs)
	tracker := dedup.NewScanTracker(false)
	for _, fp := range prints {
		if fp.Err != "" {
			continue
		}
		familyID, isNearDup := families[fp.Path]
		tracker.Observe(dedup.Observation{
			FamilyID: familyID,
			Path:     fp.Path,
			NearDup:  isNearDup,
		})
	}

	report.Scored = tracker.Scored
	report.NearDups = tracker.CandidatesNearDup
	report.TopFamilies = tracker.TopFamilies(opts.TopFamilies, opts.MinFamilySize)
	return report, nil
}

// confirmPairs re-checks every LSH candidate pair: the MinHash estimate must
// reach the Jaccard threshold, or the SimHash fingerprints must be within
// the Hamming gate. Either fingerprint flags the pair, mirroring the
// combined near-dup signal.
func (s *DedupService) confirmPairs(index *dedup.Index, simhashes map[string]uint64, opts DedupOptions) []dedup.Pair {
	confirmed := index.FindSimilarPairs()
	haveJaccard := make(map[string]struct{}, len(confirmed))
	for _, p := range confirmed {
		haveJaccard[p.ID1+"\x00"+p.ID2] = struct{}{}
	}

	// Candidates that missed the Jaccard bar can still pass the SimHash gate.
	for id, sh := range simhashes {
		for _, candidate := range index.FindCandidates(index.Signature(id)) {
			if candidate <= id {
				continue
			}
			if _, done := haveJaccard[id+"\x00"+candidate]; done {
				continue
			}
			if qc.Similar(sh, simhashes[candidate], opts.SimhashHammingMax) {
				similarity := qc.EstimateJaccard(index.Signature(id), index.Signature(candidate))
				confirmed = append(confirmed, dedup.Pair{ID1: id, ID2: candidate, Similarity: similarity})
				haveJaccard[id+"\x00"+candidate] = struct{}{}
			}
		}
	}

	sort.Slice(confirmed, func(i, j int) bool {
		if confirmed[i].Similarity != confirmed[j].Similarity {
			return confirmed[i].Similarity > confirmed[j].Similarity
		}
		if confirmed[i].ID1 != confirmed[j].ID1 {
			return confirmed[i].ID1 < confirmed[j].ID1
		}
		return confirmed[i].ID2 < confirmed[j].ID2
	})
	return confirmed
}
