// Package textnorm turns raw survey text into cleaned token sequences and
// holds the fixed stopword set and sentiment lexicon used by lexical analysis.
package textnorm

import (
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`[a-zA-Z]{2,}`)

// Normalize extracts maximal runs of two or more ASCII letters, lowercases them
// and drops stopwords. Token order follows the input. Empty input yields an
// empty, non-nil slice.
func Normalize(text string) []string {
	return NormalizeWith(text, Stopwords)
}

// NormalizeWith is Normalize with an explicit stopword set.
func NormalizeWith(text string, stop WordSet) []string {
	runs := tokenRe.FindAllString(text, -1)
	out := make([]string, 0, len(runs))
	for _, r := range runs {
		t := strings.ToLower(r)
		if stop.Has(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Bigrams joins each adjacent token pair with a space. N tokens give N-1 bigrams.
func Bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return []string{}
	}
	out := make([]string, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		out[i] = tokens[i] + " " + tokens[i+1]
	}
	return out
}
