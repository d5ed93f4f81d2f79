package textnorm

// WordSet is an immutable set of terms.
type WordSet struct{ m map[string]struct{} }

// NewWordSet builds a set from words.
func NewWordSet(words ...string) WordSet {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return WordSet{m: m}
}

// Has reports membership. The zero WordSet is empty.
func (s WordSet) Has(w string) bool {
	_, ok := s.m[w]
	return ok
}

// Len returns the number of terms.
func (s WordSet) Len() int { return len(s.m) }

// Weights is an immutable term to signed weight mapping.
type Weights struct{ m map[string]int }

// NewWeights copies m into a Weights table.
func NewWeights(m map[string]int) Weights {
	cp := make(map[string]int, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Weights{m: cp}
}

// Weight returns the weight of term, 0 if absent.
func (w Weights) Weight(term string) int { return w.m[term] }

// Score sums the weights of tokens, counting every occurrence.
func (w Weights) Score(tokens []string) int {
	total := 0
	for _, t := range tokens {
		total += w.m[t]
	}
	return total
}

// Stopwords are the function words dropped by Normalize.
var Stopwords = NewWordSet(
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "of", "to", "in", "on", "for", "with",
	"is", "are", "was", "were", "be", "been", "being", "at", "by", "from", "as", "it", "this", "that",
	"these", "those", "there", "here", "we", "you", "they", "he", "she", "them", "his", "her", "their",
	"i", "me", "my", "our", "ours", "your", "yours", "us",
)

// Lexicon is the default sentiment lexicon.
var Lexicon = NewWeights(map[string]int{
	"good": 2, "great": 3, "excellent": 4, "positive": 2, "benefit": 2, "improve": 2,
	"bad": -2, "poor": -2, "negative": -2, "harm": -3, "worse": -2, "risk": -1,
})
