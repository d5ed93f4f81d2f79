// Package topics fits an LDA topic model over a short-text corpus and reports
// per-topic top terms and per-document topic assignments.
package topics

import (
	"fmt"
	"sort"

	"github.com/james-bowman/nlp"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/KaramelBytes/loomstat/internal/dataset"
)

const (
	DefaultSeed       = 42
	DefaultIterations = 100
	TopTerms          = 10
	MaxSamples        = 5
)

// Params configures Fit.
type Params struct {
	NTopics     int
	MaxFeatures int
	Seed        int64
	// Iterations of the LDA optimizer; 0 uses DefaultIterations.
	Iterations int
}

// Topic is one latent topic with its highest-weighted terms and the first
// documents assigned to it.
type Topic struct {
	Index    int      `json:"topic"`
	TopTerms []string `json:"top_terms"`
	Samples  []string `json:"doc_ids"`
}

// Assignment maps a document to its most probable topic.
type Assignment struct {
	DocID string `json:"doc_id"`
	Topic int    `json:"topic"`
}

// Model is the fitted output.
type Model struct {
	Topics      []Topic      `json:"topics"`
	Assignments []Assignment `json:"assignments"`
	Vocabulary  []string     `json:"-"`
}

// Fit vectorizes corpus and fits an LDA model with p.NTopics topics. Output is
// identical across runs for the same corpus and seed.
func Fit(corpus []dataset.Document, p Params) (*Model, error) {
	if err := dataset.RequirePositive("n_topics", p.NTopics); err != nil {
		return nil, err
	}
	if err := dataset.RequirePositive("max_features", p.MaxFeatures); err != nil {
		return nil, err
	}
	if len(corpus) == 0 {
		return nil, &dataset.InsufficientDataError{Op: "topics", Reason: "empty corpus"}
	}
	vec := &vectorizer{maxFeatures: p.MaxFeatures}
	analyzed := vec.fit(corpus)
	if len(vec.vocab) == 0 {
		return nil, &dataset.InsufficientDataError{Op: "topics", Reason: "empty vocabulary after stopword removal"}
	}
	if len(vec.vocab) < p.NTopics {
		return nil, &dataset.InsufficientDataError{
			Op:     "topics",
			Reason: fmt.Sprintf("vocabulary has %d terms, fewer than n_topics=%d", len(vec.vocab), p.NTopics),
		}
	}

	iters := p.Iterations
	if iters <= 0 {
		iters = DefaultIterations
	}
	lda := nlp.NewLatentDirichletAllocation(p.NTopics)
	lda.Iterations = iters
	lda.TransformationPasses = iters / 2
	lda.Processes = 1
	lda.Rnd = rand.New(rand.NewSource(uint64(p.Seed)))

	docsOverTopics, err := lda.FitTransform(vec.matrix(analyzed))
	if err != nil {
		return nil, fmt.Errorf("fit lda: %w", err)
	}

	m := &Model{Vocabulary: vec.vocab}
	m.Topics = topTerms(lda.Components(), vec.vocab)
	m.Assignments = make([]Assignment, len(corpus))
	for j, d := range corpus {
		k := argmaxColumn(docsOverTopics, j)
		m.Assignments[j] = Assignment{DocID: d.ID, Topic: k}
		if len(m.Topics[k].Samples) < MaxSamples {
			m.Topics[k].Samples = append(m.Topics[k].Samples, d.ID)
		}
	}
	return m, nil
}

// topTerms ranks each row of topicsOverWords; equal weights keep vocabulary order.
func topTerms(topicsOverWords mat.Matrix, vocab []string) []Topic {
	rows, cols := topicsOverWords.Dims()
	out := make([]Topic, rows)
	for k := 0; k < rows; k++ {
		idx := make([]int, cols)
		for w := range idx {
			idx[w] = w
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return topicsOverWords.At(k, idx[a]) > topicsOverWords.At(k, idx[b])
		})
		n := TopTerms
		if n > cols {
			n = cols
		}
		terms := make([]string, n)
		for i := 0; i < n; i++ {
			terms[i] = vocab[idx[i]]
		}
		out[k] = Topic{Index: k, TopTerms: terms, Samples: []string{}}
	}
	return out
}

// argmaxColumn returns the topic with the highest weight for document j; the
// lowest index wins ties.
func argmaxColumn(docsOverTopics mat.Matrix, j int) int {
	rows, _ := docsOverTopics.Dims()
	best := 0
	for k := 1; k < rows; k++ {
		if docsOverTopics.At(k, j) > docsOverTopics.At(best, j) {
			best = k
		}
	}
	return best
}
