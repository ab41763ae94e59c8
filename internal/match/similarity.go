// Package match ranks stored patient records against free-text search input
// typed by an operator.
package match

import (
	"strings"
	"unicode"
)

// Similarity returns the Sørensen–Dice coefficient of the character bigram
// sets of a and b, scaled to [0, 100]. Comparison ignores case and all
// whitespace; punctuation is significant.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	s1 := normalize(a)
	s2 := normalize(b)

	if s1 == s2 {
		return 100
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) < 2 || len(r2) < 2 {
		return 0
	}

	pairs1 := bigrams(r1)
	pairs2 := bigrams(r2)

	intersection := 0
	for pair := range pairs1 {
		if _, ok := pairs2[pair]; ok {
			intersection++
		}
	}

	return 2.0 * float64(intersection) / float64(len(pairs1)+len(pairs2)) * 100
}

// normalize lowercases s and drops every whitespace rune.
func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(s))
}

// bigrams returns the set of adjacent rune pairs in r.
func bigrams(r []rune) map[[2]rune]struct{} {
	pairs := make(map[[2]rune]struct{}, len(r)-1)
	for i := 0; i < len(r)-1; i++ {
		pairs[[2]rune{r[i], r[i+1]}] = struct{}{}
	}
	return pairs
}
