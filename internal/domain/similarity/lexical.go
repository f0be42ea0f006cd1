// Package similarity implements the trademark similarity engine: lexical,
// phonetic and semantic scoring passes, the runtime-tunable threshold store,
// and the fusion engine that combines pass scores into an overall ranking.
package similarity

import (
	"strings"
	"unicode"
)

// Lexical fusion weights.  Levenshtein and Jaro-Winkler carry equal weight;
// the common-substring component is a weaker signal.
const (
	lexWeightLevenshtein = 0.4
	lexWeightJaroWinkler = 0.4
	lexWeightSubstring   = 0.2
)

// NormalizeText lowercases s, strips everything but letters, digits and
// spaces, and collapses whitespace runs.  Both sides of every lexical and
// phonetic comparison go through this first.
func NormalizeText(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				sb.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// LevenshteinDistance computes the edit distance between a and b over runes,
// with unit costs for insertion, deletion and substitution.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// LevenshteinSimilarity maps edit distance into [0,1] as
// 1 - distance/maxLen.  Two empty strings score 1.
func LevenshteinSimilarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(LevenshteinDistance(a, b))/float64(maxLen)
}

// JaroSimilarity computes the Jaro similarity over runes with the standard
// match window of floor(max(len)/2) - 1.
func JaroSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	window := max(len(ra), len(rb))/2 - 1
	if window < 0 {
		window = 0
	}

	matchedA := make([]bool, len(ra))
	matchedB := make([]bool, len(rb))
	matches := 0
	for i, r := range ra {
		lo := max(0, i-window)
		hi := min(len(rb)-1, i+window)
		for j := lo; j <= hi; j++ {
			if matchedB[j] || rb[j] != r {
				continue
			}
			matchedA[i] = true
			matchedB[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	// Count transpositions between the matched subsequences.
	transpositions := 0
	j := 0
	for i := range ra {
		if !matchedA[i] {
			continue
		}
		for !matchedB[j] {
			j++
		}
		if ra[i] != rb[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	return (m/float64(len(ra)) + m/float64(len(rb)) + (m-float64(transpositions)/2)/m) / 3
}

// JaroWinklerSimilarity boosts JaroSimilarity by the common-prefix bonus
// 0.1 * l * (1 - jaro), where l is the shared prefix length capped at 4.
// The bonus only applies when the base Jaro score is at least 0.7.
func JaroWinklerSimilarity(a, b string) float64 {
	jaro := JaroSimilarity(a, b)
	if jaro < 0.7 {
		return jaro
	}
	ra, rb := []rune(a), []rune(b)
	l := 0
	for l < len(ra) && l < len(rb) && l < 4 && ra[l] == rb[l] {
		l++
	}
	return jaro + 0.1*float64(l)*(1-jaro)
}

// LongestCommonSubstring returns the length in runes of the longest
// contiguous substring shared by a and b.
func LongestCommonSubstring(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	longest := 0
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > longest {
					longest = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return longest
}

// SubstringSimilarity maps the longest common substring into [0,1] by
// dividing by the longer input's length.  Two empty strings score 1.
func SubstringSimilarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}
	return float64(LongestCommonSubstring(a, b)) / float64(maxLen)
}

// LexicalScore fuses the three lexical signals over normalized inputs:
// 0.4*Levenshtein + 0.4*JaroWinkler + 0.2*Substring.
func LexicalScore(a, b string) float64 {
	na, nb := NormalizeText(a), NormalizeText(b)
	return lexWeightLevenshtein*LevenshteinSimilarity(na, nb) +
		lexWeightJaroWinkler*JaroWinklerSimilarity(na, nb) +
		lexWeightSubstring*SubstringSimilarity(na, nb)
}

func min3(a, b, c int) int {
	return min(a, min(b, c))
}
