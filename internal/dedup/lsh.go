// Package dedup finds near-duplicate documents from their fingerprints: a
// banded LSH index over MinHash signatures proposes candidate pairs, and
// duplicate families group the confirmed matches for reporting.
package dedup

import (
	"crypto/md5"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/JochiRaider/RepoCapsule/internal/qc"
)

// IndexConfig holds the banding parameters of an LSH index. Two documents
// become candidates when all rows of at least one band agree, which makes
// the candidate probability an S-curve around (1/b)^(1/r).
type IndexConfig struct {
	Bands     int     // Number of bands
	Rows      int     // Signature slots per band
	Threshold float64 // Minimum estimated Jaccard to confirm a pair
}

// Index is a Locality Sensitive Hashing index over MinHash signatures,
// safe for concurrent use.
type Index struct {
	bands      int
	rows       int
	threshold  float64
	buckets    map[string][]string
	signatures map[string][]uint64
	mu         sync.RWMutex
}

// NewIndex creates an LSH index, filling invalid config fields with
// defaults (32 bands of 4 rows; threshold derived from the band curve).
func NewIndex(config IndexConfig) *Index {
	if config.Bands <= 0 {
		config.Bands = 32
	}
	if config.Rows <= 0 {
		config.Rows = 4
	}
	if config.Threshold <= 0 || config.Threshold > 1 {
		config.Threshold = math.Pow(1.0/float64(config.Bands), 1.0/float64(config.Rows))
	}

	return &Index{
		bands:      config.Bands,
		rows:       config.Rows,
		threshold:  config.Threshold,
		buckets:    make(map[string][]string),
		signatures: make(map[string][]uint64),
	}
}

// NewDefaultIndex creates an LSH index with default banding parameters.
func NewDefaultIndex() *Index {
	return NewIndex(IndexConfig{Bands: 32, Rows: 4})
}

// Add indexes a document signature under id. The signature must cover every
// band, i.e. have at least Bands*Rows slots.
func (idx *Index) Add(id string, signature []uint64) error {
	if len(signature) < idx.bands*idx.rows {
		return fmt.Errorf("signature has %d slots, need at least %d (bands=%d, rows=%d)",
			len(signature), idx.bands*idx.rows, idx.bands, idx.rows)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.signatures[id] = signature
	idx.addToBuckets(id, signature)
	return nil
}

func (idx *Index) addToBuckets(id string, signature []uint64) {
	for band := 0; band < idx.bands; band++ {
		key := idx.bucketKey(signature, band)
		idx.buckets[key] = append(idx.buckets[key], id)
	}
}

// bucketKey hashes one band of the signature into a bucket identifier.
func (idx *Index) bucketKey(signature []uint64, band int) string {
	start := band * idx.rows
	end := start + idx.rows

	data := make([]byte, 0, idx.rows*8)
	for i := start; i < end && i < len(signature); i++ {
		v := signature[i]
		for j := 0; j < 8; j++ {
			data = append(data, byte(v>>(j*8)))
		}
	}
	sum := md5.Sum(data)
	return fmt.Sprintf("band_%d_%x", band, sum)
}

// Remove deletes a document from the index. Unknown ids are a no-op.
func (idx *Index) Remove(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	signature, ok := idx.signatures[id]
	if !ok {
		return
	}
	delete(idx.signatures, id)

	for band := 0; band < idx.bands; band++ {
		key := idx.bucketKey(signature, band)
		members, ok := idx.buckets[key]
		if !ok {
			continue
		}
		for i, member := range members {
			if member == id {
				members[i] = members[len(members)-1]
				idx.buckets[key] = members[:len(members)-1]
				break
			}
		}
		if len(idx.buckets[key]) == 0 {
			delete(idx.buckets, key)
		}
	}
}

// FindCandidates returns the ids of indexed documents sharing at least one
// band bucket with the query signature, sorted for stable output. The query
// itself is included when indexed.
func (idx *Index) FindCandidates(signature []uint64) []string {
	if len(signature) < idx.bands*idx.rows {
		return []string{}
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.findCandidatesLocked(signature)
}

func (idx *Index) findCandidatesLocked(signature []uint64) []string {
	seen := make(map[string]bool)
	for band := 0; band < idx.bands; band++ {
		key := idx.bucketKey(signature, band)
		for _, id := range idx.buckets[key] {
			seen[id] = true
		}
	}

	candidates := make([]string, 0, len(seen))
	for id := range seen {
		candidates = append(candidates, id)
	}
	sort.Strings(candidates)
	return candidates
}

// Pair is a confirmed near-duplicate document pair.
type Pair struct {
	ID1        string  `json:"id1" yaml:"id1"`
	ID2        string  `json:"id2" yaml:"id2"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// FindSimilarPairs returns every indexed pair whose estimated Jaccard
// similarity meets the index threshold, ordered by descending similarity.
func (idx *Index) FindSimilarPairs() []Pair {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var pairs []Pair
	for id, signature := range idx.signatures {
		for _, candidate := range idx.findCandidatesLocked(signature) {
			if candidate <= id {
				continue // each unordered pair once, no self-pairs
			}
			other := idx.signatures[candidate]
			similarity := qc.EstimateJaccard(signature, other)
			if similarity >= idx.threshold {
				pairs = append(pairs, Pair{ID1: id, ID2: candidate, Similarity: similarity})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Similarity != pairs[j].Similarity {
			return pairs[i].Similarity > pairs[j].Similarity
		}
		if pairs[i].ID1 != pairs[j].ID1 {
			return pairs[i].ID1 < pairs[j].ID1
		}
		return pairs[i].ID2 < pairs[j].ID2
	})
	return pairs
}

// Signature returns the stored signature for id, or nil.
func (idx *Index) Signature(id string) []uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.signatures[id]
}

// Size returns the number of indexed documents.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.signatures)
}

// Config returns the effective banding parameters.
func (idx *Index) Config() IndexConfig {
	return IndexConfig{Bands: idx.bands, Rows: idx.rows, Threshold: idx.threshold}
}

// Stats summarizes index occupancy.
type Stats struct {
	Documents     int
	Buckets       int
	MinBucketSize int
	MaxBucketSize int
	AvgBucketSize float64
}

// IndexStats returns occupancy statistics for monitoring and tests.
func (idx *Index) IndexStats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	stats := Stats{
		Documents: len(idx.signatures),
		Buckets:   len(idx.buckets),
	}
	if len(idx.buckets) == 0 {
		return stats
	}

	total := 0
	stats.MinBucketSize = math.MaxInt
	for _, members := range idx.buckets {
		n := len(members)
		total += n
		if n < stats.MinBucketSize {
			stats.MinBucketSize = n
		}
		if n > stats.MaxBucketSize {
			stats.MaxBucketSize = n
		}
	}
	stats.AvgBucketSize = float64(total) / float64(len(idx.buckets))
	return stats
}

// OptimalBandConfig searches band/row combinations whose S-curve threshold
// (1/b)^(1/r) lands closest to the target similarity threshold.
func OptimalBandConfig(targetThreshold float64, maxBands int) IndexConfig {
	if targetThreshold <= 0 || targetThreshold >= 1 {
		return IndexConfig{Bands: 32, Rows: 4, Threshold: 0.78}
	}

	best := IndexConfig{Bands: 32, Rows: 4}
	bestErr := math.Inf(1)
	for bands := 1; bands <= maxBands; bands++ {
		for rows := 1; rows <= 8; rows++ {
			threshold := math.Pow(1.0/float64(bands), 1.0/float64(rows))
			diff := math.Abs(threshold - targetThreshold)
			if diff < bestErr {
				bestErr = diff
				best = IndexConfig{Bands: bands, Rows: rows, Threshold: threshold}
			}
		}
	}
	return best
}

// FalsePositiveRate is the probability that a pair with the given true
// similarity shares at least one band bucket: 1 - (1 - s^r)^b.
func (idx *Index) FalsePositiveRate(trueSimilarity float64) float64 {
	if trueSimilarity <= 0 || trueSimilarity >= 1 {
		return 0.0
	}
	bandMatch := math.Pow(trueSimilarity, float64(idx.rows))
	return 1.0 - math.Pow(1.0-bandMatch, float64(idx.bands))
}

// FalseNegativeRate is the probability that a pair with the given true
// similarity shares no band bucket: (1 - s^r)^b.
func (idx *Index) FalseNegativeRate(trueSimilarity float64) float64 {
	if trueSimilarity <= 0 || trueSimilarity >= 1 {
		return 1.0
	}
	bandMatch := math.Pow(trueSimilarity, float64(idx.rows))
	return math.Pow(1.0-bandMatch, float64(idx.bands))
}
