package catalog

import (
	"strings"

	"github.com/agext/levenshtein"
)

// normalize folds case, collapses interior whitespace and strips trailing
// dots so that "Оз. Пшеница " and "оз пшеница" compare equal.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, ".")
	return strings.Join(strings.Fields(s), " ")
}

// similarity is Levenshtein similarity in [0,1].
func similarity(a, b string) float64 {
	return levenshtein.Match(a, b, nil)
}

type fuzzyCandidate struct {
	term      string // normalized spelling to compare against
	canonical string // canonical value this spelling resolves to
}

// bestFuzzy returns the candidate most similar to text, provided it clears
// the threshold. Tie-break: higher similarity, then shorter canonical name,
// then table order.
func bestFuzzy(text string, candidates []fuzzyCandidate, threshold float64) (string, float64, bool) {
	best := -1
	bestScore := 0.0
	for i, c := range candidates {
		score := similarity(text, c.term)
		if score < threshold {
			continue
		}
		if best < 0 || score > bestScore ||
			(score == bestScore && len(c.canonical) < len(candidates[best].canonical)) {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return "", 0, false
	}
	return candidates[best].canonical, bestScore, true
}
