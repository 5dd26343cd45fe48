package dedup

import "sort"

// maxFamilyExamples is how many member paths a family keeps for reports.
const maxFamilyExamples = 3

type familyEntry struct {
	count    int
	examples []string
}

// FamilyTracker counts members of duplicate families and keeps a few sample
// paths per family for reporting. Not safe for concurrent use.
type FamilyTracker struct {
	families map[string]*familyEntry
}

// NewFamilyTracker creates an empty tracker.
func NewFamilyTracker() *FamilyTracker {
	return &FamilyTracker{families: make(map[string]*familyEntry)}
}

// Observe increments the member count of familyID and records path as an
// example while there is room. An empty familyID is ignored.
func (ft *FamilyTracker) Observe(familyID, path string) {
	if familyID == "" {
		return
	}
	entry, ok := ft.families[familyID]
	if !ok {
		entry = &familyEntry{}
		ft.families[familyID] = entry
	}
	entry.count++
	if path == "" || len(entry.examples) >= maxFamilyExamples {
		return
	}
	for _, existing := range entry.examples {
		if existing == path {
			return
		}
	}
	entry.examples = append(entry.examples, path)
}

// FamilySummary is one duplicate family in a report.
type FamilySummary struct {
	FamilyID string   `json:"dup_family_id" yaml:"dup_family_id"`
	Count    int      `json:"count" yaml:"count"`
	Examples []string `json:"examples" yaml:"examples"`
}

// Top returns the k largest families with at least minCount members,
// ordered by descending count (family id breaks ties for stable output).
func (ft *FamilyTracker) Top(k, minCount int) []FamilySummary {
	results := make([]FamilySummary, 0, len(ft.families))
	for id, entry := range ft.families {
		if entry.count < minCount {
			continue
		}
		examples := make([]string, len(entry.examples))
		copy(examples, entry.examples)
		results = append(results, FamilySummary{FamilyID: id, Count: entry.count, Examples: examples})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].FamilyID < results[j].FamilyID
	})
	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// AssignFamilies groups documents connected through near-duplicate pairs
// into families via union-find and returns each document's family id, which
// is the lexicographically smallest member of its component.
func AssignFamilies(pairs []Pair) map[string]string {
	parent := make(map[string]string)

	var find func(string) string
	find = func(x string) string {
		root, ok := parent[x]
		if !ok {
			parent[x] = x
			return x
		}
		if root != x {
			parent[x] = find(root)
		}
		return parent[x]
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		// Smaller root wins so the family id is deterministic.
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	for _, p := range pairs {
		union(p.ID1, p.ID2)
	}

	families := make(map[string]string, len(parent))
	for id := range parent {
		families[id] = find(id)
	}
	return families
}
