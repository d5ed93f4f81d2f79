// Package lexical computes corpus-wide unigram/bigram frequencies and
// lexicon-based per-document sentiment.
package lexical

import (
	"sort"

	"github.com/KaramelBytes/loomstat/internal/dataset"
	"github.com/KaramelBytes/loomstat/internal/textnorm"
)

// TermCount is one entry of a frequency table.
type TermCount struct {
	Term string `json:"term"`
	Freq int    `json:"freq"`
}

// DocSentiment is the lexicon score of one document.
type DocSentiment struct {
	DocID     string `json:"doc_id"`
	Sentiment int    `json:"sentiment"`
}

// Result holds the top-N tables and per-document sentiment, in corpus order.
type Result struct {
	Unigrams  []TermCount    `json:"unigrams"`
	Bigrams   []TermCount    `json:"bigrams"`
	Sentiment []DocSentiment `json:"sentiment"`
	// Distinct counts before truncation to top N.
	DistinctUnigrams int `json:"distinct_unigrams"`
	DistinctBigrams  int `json:"distinct_bigrams"`
}

// Terms flattens unigrams followed by bigrams.
func (r *Result) Terms() []TermCount {
	out := make([]TermCount, 0, len(r.Unigrams)+len(r.Bigrams))
	out = append(out, r.Unigrams...)
	return append(out, r.Bigrams...)
}

type options struct {
	lexicon   textnorm.Weights
	stopwords textnorm.WordSet
}

// Option customizes Analyze.
type Option func(*options)

// WithLexicon scores documents with lex instead of the default lexicon.
func WithLexicon(lex textnorm.Weights) Option {
	return func(o *options) { o.lexicon = lex }
}

// WithStopwords tokenizes with stop instead of the default stopword set.
func WithStopwords(stop textnorm.WordSet) Option {
	return func(o *options) { o.stopwords = stop }
}

// Analyze counts every unigram and bigram occurrence across the corpus and scores
// each document against the lexicon. Documents with empty text contribute nothing
// and score 0. topN must be >= 1.
func Analyze(corpus []dataset.Document, topN int, opts ...Option) (*Result, error) {
	if err := dataset.RequirePositive("top_n", topN); err != nil {
		return nil, err
	}
	o := options{lexicon: textnorm.Lexicon, stopwords: textnorm.Stopwords}
	for _, fn := range opts {
		fn(&o)
	}
	uni, bi := newCounter(), newCounter()
	sentiments := make([]DocSentiment, 0, len(corpus))
	for _, d := range corpus {
		toks := textnorm.NormalizeWith(d.Text, o.stopwords)
		uni.add(toks)
		bi.add(textnorm.Bigrams(toks))
		sentiments = append(sentiments, DocSentiment{DocID: d.ID, Sentiment: o.lexicon.Score(toks)})
	}
	return &Result{
		Unigrams:         uni.top(topN),
		Bigrams:          bi.top(topN),
		Sentiment:        sentiments,
		DistinctUnigrams: len(uni.counts),
		DistinctBigrams:  len(bi.counts),
	}, nil
}

// counter tracks counts and the order in which terms were first seen.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter { return &counter{counts: map[string]int{}} }

func (c *counter) add(terms []string) {
	for _, t := range terms {
		if _, ok := c.counts[t]; !ok {
			c.order = append(c.order, t)
		}
		c.counts[t]++
	}
}

// top returns the n most frequent terms. Ties keep first-seen order.
func (c *counter) top(n int) []TermCount {
	out := make([]TermCount, len(c.order))
	for i, t := range c.order {
		out[i] = TermCount{Term: t, Freq: c.counts[t]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Freq > out[j].Freq })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
