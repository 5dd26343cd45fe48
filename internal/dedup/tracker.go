package dedup

// Observation is one scored document as seen by the scan tracker.
type Observation struct {
	FamilyID string
	Path     string
	NearDup  bool // SimHash distance gate OR MinHash LSH candidate
}

// ScanTracker accumulates per-document outcomes of a near-duplicate scan.
// near-dup is a combined flag: a document counts as a near-duplicate when
// either fingerprint mechanism flags it. With DropNearDups set, flagged
// documents are reported as dropped. Not safe for concurrent use.
type ScanTracker struct {
	DropNearDups bool

	Scored            int
	Kept              int
	DroppedNearDup    int
	CandidatesNearDup int

	families *FamilyTracker
}

// NewScanTracker creates a tracker; dropNearDups controls whether flagged
// documents are gated out or merely counted.
func NewScanTracker(dropNearDups bool) *ScanTracker {
	return &ScanTracker{
		DropNearDups: dropNearDups,
		families:     NewFamilyTracker(),
	}
}

// Observe records one document and reports whether it should be kept.
func (st *ScanTracker) Observe(obs Observation) bool {
	st.Scored++
	st.families.Observe(obs.FamilyID, obs.Path)

	if obs.NearDup {
		st.CandidatesNearDup++
	}

	keep := true
	if st.DropNearDups && obs.NearDup {
		st.DroppedNearDup++
		keep = false
	}
	if keep {
		st.Kept++
	}
	return keep
}

// TopFamilies returns the largest duplicate families seen so far.
func (st *ScanTracker) TopFamilies(k, minCount int) []FamilySummary {
	return st.families.Top(k, minCount)
}
