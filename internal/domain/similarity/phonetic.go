package similarity

import "strings"

// consonantMap folds letters that sound alike in Indonesian and English mark
// names onto a single representative before comparison.
var consonantMap = map[rune]string{
	'c': "k",
	'q': "k",
	'x': "ks",
	'f': "p",
	'v': "p",
	'j': "y",
	'z': "s",
}

// PhoneticCode reduces a mark name to its phonetic skeleton: normalize,
// fold sound-alike consonants, then collapse runs of repeated characters
// ("supercola" and "suppercolla" share one code).
func PhoneticCode(s string) string {
	normalized := NormalizeText(s)

	var folded strings.Builder
	folded.Grow(len(normalized))
	for _, r := range normalized {
		if repl, ok := consonantMap[r]; ok {
			folded.WriteString(repl)
			continue
		}
		folded.WriteRune(r)
	}

	var out strings.Builder
	out.Grow(folded.Len())
	var last rune = -1
	for _, r := range folded.String() {
		if r == last {
			continue
		}
		out.WriteRune(r)
		last = r
	}
	return out.String()
}

// PhoneticSimilarity scores two names by the Levenshtein similarity of their
// phonetic codes.  Identical codes score 1 regardless of spelling.
func PhoneticSimilarity(a, b string) float64 {
	return LevenshteinSimilarity(PhoneticCode(a), PhoneticCode(b))
}
