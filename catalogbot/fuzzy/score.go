// Package fuzzy implements the approximate name matching used to resolve free-form queries
// against catalog display names.
package fuzzy

import "strings"

// Sentinel is returned by Score when the target cannot beat the caller's threshold.
const Sentinel = 9999.0

const (
	insertionWeight    = 0.001
	deletionWeight     = 1.0
	substitutionWeight = 1.0
	wordMatchWeight    = 0.1
)

// Score is an asymmetric edit distance from source to target. Characters appended to the
// target are almost free, so a query scores well against any name it is a prefix of.
// A bonus for positional matches against the target's words, their consonant skeletons and
// its acronym is subtracted from the distance. Lower is better.
func Score(source, target string, targetWords []string, threshold float64) float64 {
	prev := make([]float64, len(target)+1)
	curr := make([]float64, len(target)+1)
	for j := range prev {
		prev[j] = float64(j) * insertionWeight
	}

	for i := 1; i <= len(source); i++ {
		curr[0] = float64(i) * deletionWeight
		best := curr[0]
		for j := 1; j <= len(target); j++ {
			substitution := prev[j-1]
			if source[i-1] != target[j-1] {
				substitution += substitutionWeight
			}
			curr[j] = min(substitution, prev[j]+deletionWeight, curr[j-1]+insertionWeight)
			best = min(best, curr[j])
		}
		if best > threshold {
			return Sentinel
		}
		prev, curr = curr, prev
	}

	return prev[len(target)] - wordMatchWeight*float64(wordMatchBonus(source, targetWords))
}

func wordMatchBonus(source string, targetWords []string) int {
	best := 0
	skeleton := stripTailVowels(source)
	var acronym strings.Builder
	for _, word := range targetWords {
		best = max(best, positionalMatches(source, word))
		best = max(best, positionalMatches(skeleton, stripTailVowels(word)))
		if word != "" {
			acronym.WriteByte(word[0])
		}
	}
	return max(best, positionalMatches(source, acronym.String()))
}

func positionalMatches(a, b string) int {
	n := 0
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			n++
		}
	}
	return n
}

// stripTailVowels keeps the first character and drops vowels from the rest.
func stripTailVowels(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.WriteByte(s[0])
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case 'a', 'e', 'i', 'o', 'u':
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
