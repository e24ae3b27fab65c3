// Package cluster groups near-duplicate and related signals by text
// similarity before narrative detection.
//
// The grouping is advisory input to the narrative-labeling step, not an
// authoritative boundary: consumers should treat each group as a hint that
// its members probably describe the same theme, and remain free to split
// or merge across groups.
package cluster

import (
	"sort"
	"strings"

	"narrative-radar/internal/domain"
)

// DefaultThreshold is the cosine similarity above which two signals are
// linked. A tuning knob, not a derived constant.
const DefaultThreshold = 0.25

// smallBatchLimit is the batch size at or below which clustering degrades
// to a single pass-through group.
const smallBatchLimit = 3

// PreCluster groups signals into connected components of pairwise TF-IDF
// cosine similarity >= threshold. Groups are ordered by their maximum
// member score, descending. Batches of size <= 3 come back as one group;
// an empty batch yields no groups.
func PreCluster(signals []domain.Signal, threshold float64) [][]domain.Signal {
	if len(signals) == 0 {
		return nil
	}
	if len(signals) <= smallBatchLimit {
		return [][]domain.Signal{signals}
	}

	docs := make([][]string, len(signals))
	for i := range signals {
		docs[i] = tokenize(searchableText(&signals[i]))
	}

	vectors := buildVectors(docs)

	uf := newUnionFind(len(signals))
	for i := 0; i < len(signals); i++ {
		for j := i + 1; j < len(signals); j++ {
			if cosine(vectors[i], vectors[j]) >= threshold {
				uf.union(i, j)
			}
		}
	}

	// Group by component root, preserving input order within each group.
	groupIndex := make(map[int]int)
	var groups [][]domain.Signal
	for i := range signals {
		root := uf.find(i)
		gi, ok := groupIndex[root]
		if !ok {
			gi = len(groups)
			groupIndex[root] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], signals[i])
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return maxScore(groups[a]) > maxScore(groups[b])
	})

	return groups
}

// searchableText concatenates the fields that carry topical signal.
func searchableText(s *domain.Signal) string {
	return strings.Join([]string{
		s.Name,
		s.Content,
		s.Description,
		strings.Join(s.Topics, " "),
	}, " ")
}

func maxScore(group []domain.Signal) float64 {
	best := 0.0
	for i := range group {
		if group[i].Score > best {
			best = group[i].Score
		}
	}
	return best
}
