// Package interactions resolves drug-drug interactions between catalog
// medications. It parses the interaction corpus, normalizes drug names to
// catalog identifiers, classifies severity and builds a symmetric lookup
// index that is queried by the resolver.
package interactions

import (
	"sort"
)

const (
	unspecifiedMechanism   = "Not specified"
	defaultRecommendations = "Consult a healthcare professional."
)

// Detail describes a known interaction between two medications. The same
// value is stored for both lookup orders.
type Detail struct {
	Severity Severity `json:"severity"`
	Summary  string   `json:"summary"`
	Details  string   `json:"details"`
}

// BuildStats counts how corpus rows were consumed.
type BuildStats struct {
	Rows        int `json:"rows"`
	Indexed     int `json:"indexed"`
	Unresolved  int `json:"unresolved"`
	SelfPairs   int `json:"self_pairs"`
	Overwritten int `json:"overwritten"`
}

// Index maps an unordered pair of identifiers to its interaction detail.
// It is immutable once BuildIndex returns and safe for concurrent reads.
type Index struct {
	pairs map[string]map[string]Detail
	count int
}

// BuildIndex resolves both sides of every row and stores the classified
// detail under both orders. Rows whose sides do not resolve, or resolve to
// the same medication, are dropped. When an unordered pair appears more
// than once the last row wins.
func BuildIndex(rows []CorpusRow, names *NameResolver) (*Index, BuildStats) {
	idx := &Index{pairs: make(map[string]map[string]Detail)}
	stats := BuildStats{Rows: len(rows)}

	for _, row := range rows {
		id1, ok1 := names.ResolveField(row.Drug1)
		id2, ok2 := names.ResolveField(row.Drug2)
		if !ok1 || !ok2 {
			stats.Unresolved++
			continue
		}
		if id1 == id2 {
			stats.SelfPairs++
			continue
		}

		detail := newDetail(row)
		if idx.insert(id1, id2, detail) {
			stats.Overwritten++
		}
		stats.Indexed++
	}

	return idx, stats
}

func newDetail(row CorpusRow) Detail {
	mechanism := row.Mechanism
	if mechanism == "" {
		mechanism = unspecifiedMechanism
	}
	recommendations := row.Recommendations
	if recommendations == "" {
		recommendations = defaultRecommendations
	}

	return Detail{
		Severity: InferSeverity(row.Effect + ". " + row.Recommendations),
		Summary:  row.Effect,
		Details:  "Mechanism: " + mechanism + ". Recommendations: " + recommendations,
	}
}

// insert stores d under (a,b) and (b,a) and reports whether it replaced an
// existing entry.
func (idx *Index) insert(a, b string, d Detail) bool {
	_, replaced := idx.pairs[a][b]
	if !replaced {
		idx.count++
	}

	if idx.pairs[a] == nil {
		idx.pairs[a] = make(map[string]Detail)
	}
	if idx.pairs[b] == nil {
		idx.pairs[b] = make(map[string]Detail)
	}
	idx.pairs[a][b] = d
	idx.pairs[b][a] = d

	return replaced
}

// Lookup returns the interaction between a and b in either order.
func (idx *Index) Lookup(a, b string) (Detail, bool) {
	if idx == nil {
		return Detail{}, false
	}
	d, ok := idx.pairs[a][b]
	return d, ok
}

// Len returns the number of unordered pairs.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.count
}

// Partners returns the sorted identifiers known to interact with id.
func (idx *Index) Partners(id string) []string {
	if idx == nil {
		return nil
	}
	partners := make([]string, 0, len(idx.pairs[id]))
	for other := range idx.pairs[id] {
		partners = append(partners, other)
	}
	sort.Strings(partners)
	return partners
}

// Equal reports whether two indexes hold the same pairs and details.
func (idx *Index) Equal(other *Index) bool {
	if idx == nil || other == nil {
		return idx.Len() == other.Len()
	}
	if idx.Len() != other.Len() || len(idx.pairs) != len(other.pairs) {
		return false
	}
	for a, row := range idx.pairs {
		otherRow, ok := other.pairs[a]
		if !ok || len(row) != len(otherRow) {
			return false
		}
		for b, d := range row {
			if otherRow[b] != d {
				return false
			}
		}
	}
	return true
}
