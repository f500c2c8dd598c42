// Package fuzzy ranks candidate strings against a query using a normalized
// similarity score in [0,1].
package fuzzy

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Scored is a candidate that met the similarity threshold.
type Scored struct {
	Value string
	Index int
	Score float64
}

// Similarity returns the normalized similarity between two strings,
// case-insensitively.
func Similarity(a, b string) float64 {
	return strutil.Similarity(strings.ToLower(a), strings.ToLower(b), metrics.NewJaroWinkler())
}

// Match ranks candidates against query and returns at most limit results with
// similarity >= threshold, ordered by score descending. Ties keep first-seen
// candidate order so repeated calls rank deterministically.
func Match(query string, candidates []string, threshold float64, limit int) []Scored {
	query = strings.TrimSpace(query)
	if query == "" || len(candidates) == 0 || limit <= 0 {
		return nil
	}

	scored := make([]Scored, 0, len(candidates))
	for i, candidate := range candidates {
		score := Similarity(query, candidate)
		if score < threshold {
			continue
		}
		scored = append(scored, Scored{Value: candidate, Index: i, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// Best returns the single highest-scoring candidate at or above threshold.
func Best(query string, candidates []string, threshold float64) (Scored, bool) {
	matches := Match(query, candidates, threshold, 1)
	if len(matches) == 0 {
		return Scored{}, false
	}
	return matches[0], true
}
