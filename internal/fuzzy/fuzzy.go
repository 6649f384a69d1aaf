// Package fuzzy finds the closest candidate for a misspelled name.
//
// Closest uses trigram overlap and is what lookups use for "did you mean"
// suggestions. Rank orders autocomplete candidates by subsequence match.
package fuzzy

import (
	sfuzzy "github.com/sahilm/fuzzy"
)

// DefaultThreshold is the score a candidate must exceed to be suggested.
const DefaultThreshold = 0.5

// Match is a scored candidate.
type Match struct {
	Candidate string
	Index     int
	Score     float64
}

type trigram [3]rune

// trigrams returns the trigrams of "  "+s+" ", one per rune of s plus one.
func trigrams(s string) []trigram {
	r := []rune(s)
	padded := make([]rune, 0, len(r)+3)
	padded = append(padded, ' ', ' ')
	padded = append(padded, r...)
	padded = append(padded, ' ')

	out := make([]trigram, 0, len(r)+1)
	for i := 0; i+2 < len(padded); i++ {
		out = append(out, trigram{padded[i], padded[i+1], padded[i+2]})
	}
	return out
}

// Compare scores candidate against query in [0, 1]. Matching is case
// sensitive.
func Compare(query, candidate string) float64 {
	q := trigrams(query)
	c := make(map[trigram]struct{}, len(query)+1)
	for _, t := range trigrams(candidate) {
		c[t] = struct{}{}
	}

	hits := 0
	for _, t := range q {
		if _, ok := c[t]; ok {
			hits++
		}
	}
	score := float64(hits) / float64(len(q))
	if score < 0 || score > 1 {
		return 0
	}
	return score
}

// Closest returns the best-scoring candidate when it beats DefaultThreshold.
func Closest(query string, candidates []string) (Match, bool) {
	return ClosestWithThreshold(query, candidates, DefaultThreshold)
}

// ClosestWithThreshold is Closest with an explicit threshold. Ties go to the
// earliest candidate.
func ClosestWithThreshold(query string, candidates []string, threshold float64) (Match, bool) {
	best := Match{Index: -1}
	for i, c := range candidates {
		s := Compare(query, c)
		if best.Index < 0 || s > best.Score {
			best = Match{Candidate: c, Index: i, Score: s}
		}
	}
	if best.Index < 0 || best.Score <= threshold {
		return Match{}, false
	}
	return best, true
}

// Rank returns up to limit candidates containing the characters of query in
// order, best first. limit <= 0 returns every match.
func Rank(query string, candidates []string, limit int) []string {
	if query == "" {
		return nil
	}
	matches := sfuzzy.Find(query, candidates)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}
