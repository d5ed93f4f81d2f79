package topics

import (
	"regexp"
	"sort"
	"strings"

	"github.com/james-bowman/sparse"

	"github.com/KaramelBytes/loomstat/internal/dataset"
)

var wordRe = regexp.MustCompile(`\w\w+`)

// vectorizer builds a bounded unigram+bigram vocabulary and the term-document
// count matrix over it.
type vectorizer struct {
	maxFeatures int
	vocab       []string
	index       map[string]int
}

// analyze lowercases, keeps runs of two or more word characters, drops English
// stopwords and emits unigrams followed by adjacent bigrams.
func analyze(text string) []string {
	var toks []string
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := englishStopwords[w]; !stop {
			toks = append(toks, w)
		}
	}
	grams := make([]string, 0, 2*len(toks))
	grams = append(grams, toks...)
	for i := 0; i+1 < len(toks); i++ {
		grams = append(grams, toks[i]+" "+toks[i+1])
	}
	return grams
}

// fit selects the maxFeatures most frequent terms (ties lexicographic) and
// stores them sorted.
func (v *vectorizer) fit(corpus []dataset.Document) [][]string {
	analyzed := make([][]string, len(corpus))
	freq := map[string]int{}
	for i, d := range corpus {
		analyzed[i] = analyze(d.Text)
		for _, g := range analyzed[i] {
			freq[g]++
		}
	}
	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	if len(terms) > v.maxFeatures {
		sort.SliceStable(terms, func(i, j int) bool { return freq[terms[i]] > freq[terms[j]] })
		terms = terms[:v.maxFeatures]
		sort.Strings(terms)
	}
	v.vocab = terms
	v.index = make(map[string]int, len(terms))
	for i, t := range terms {
		v.index[t] = i
	}
	return analyzed
}

// matrix returns the terms x documents count matrix.
func (v *vectorizer) matrix(analyzed [][]string) *sparse.CSC {
	m := sparse.NewDOK(len(v.vocab), len(analyzed))
	for j, grams := range analyzed {
		for _, g := range grams {
			if i, ok := v.index[g]; ok {
				m.Set(i, j, m.At(i, j)+1)
			}
		}
	}
	return m.ToCSC()
}
