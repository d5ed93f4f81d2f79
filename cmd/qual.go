package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/loomstat/internal/lexical"
	"github.com/KaramelBytes/loomstat/internal/logger"
	"github.com/KaramelBytes/loomstat/internal/topics"
	"github.com/spf13/cobra"
)

var (
	qualInput   inputFlags
	qualIDCol   string
	qualTextCol string
	freqTopN    int
	topicsN     int
	topicsMaxF  int
	topicsIters int
	topicsSeed  int64
)

var qualCmd = &cobra.Command{
	Use:   "qual",
	Short: "Analyze short free-text answers",
}

var qualFreqCmd = &cobra.Command{
	Use:   "freq <corpus.csv|dir>",
	Short: "Top words, top bigrams and per-document lexicon sentiment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idCol, textCol := corpusColumns(cmd)
		topN := cfg.TopN
		if cmd.Flags().Changed("top-n") {
			topN = freqTopN
		}
		corpus, err := qualInput.loadCorpus(args[0], idCol, textCol)
		if err != nil {
			return err
		}
		res, err := lexical.Analyze(corpus, topN)
		if err != nil {
			return err
		}
		logger.Info("%d distinct words, %d distinct bigrams", res.DistinctUnigrams, res.DistinctBigrams)

		fmt.Printf("\n[TOP WORDS]\n")
		for _, tc := range res.Unigrams {
			fmt.Printf("- %s: %d\n", tc.Term, tc.Freq)
		}
		fmt.Printf("\n[TOP BIGRAMS]\n")
		for _, tc := range res.Bigrams {
			fmt.Printf("- %s: %d\n", tc.Term, tc.Freq)
		}

		run, err := startRun("qual freq", args[0], map[string]any{"top_n": topN})
		if err != nil {
			return err
		}
		if _, err := run.WriteJSON("qual_B_words.json", res.Terms()); err != nil {
			return err
		}
		rows := make([][]string, len(res.Sentiment))
		for i, s := range res.Sentiment {
			rows[i] = []string{s.DocID, strconv.Itoa(s.Sentiment)}
		}
		if _, err := run.WriteCSV("qual_B_doc_sentiment.csv", []string{"doc_id", "sentiment"}, rows); err != nil {
			return err
		}
		return finishRun(cmd.Context(), run)
	},
}

var qualTopicsCmd = &cobra.Command{
	Use:   "topics <corpus.csv|dir>",
	Short: "Fit an LDA topic model and list top terms per topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idCol, textCol := corpusColumns(cmd)
		p := topics.Params{
			NTopics:     cfg.NTopics,
			MaxFeatures: cfg.MaxFeatures,
			Seed:        cfg.Seed,
			Iterations:  cfg.LDAIterations,
		}
		f := cmd.Flags()
		if f.Changed("n-topics") {
			p.NTopics = topicsN
		}
		if f.Changed("max-features") {
			p.MaxFeatures = topicsMaxF
		}
		if f.Changed("iterations") {
			p.Iterations = topicsIters
		}
		if f.Changed("seed") {
			p.Seed = topicsSeed
		}
		corpus, err := qualInput.loadCorpus(args[0], idCol, textCol)
		if err != nil {
			return err
		}
		logger.Section("LDA")
		logger.Info("fitting %d topics over %d documents", p.NTopics, len(corpus))
		m, err := topics.Fit(corpus, p)
		if err != nil {
			return err
		}
		logger.Debug("vocabulary size %d", len(m.Vocabulary))

		fmt.Printf("\n[TOPICS]\n")
		for _, tp := range m.Topics {
			fmt.Printf("- Topic %d: %s\n", tp.Index, strings.Join(tp.TopTerms, ", "))
		}

		run, err := startRun("qual topics", args[0], map[string]any{
			"n_topics": p.NTopics, "max_features": p.MaxFeatures, "seed": p.Seed, "iterations": p.Iterations,
		})
		if err != nil {
			return err
		}
		if _, err := run.WriteJSON("qual_C_topics.json", topicsDocument(m)); err != nil {
			return err
		}
		return finishRun(cmd.Context(), run)
	},
}

type topicTerms struct {
	Topic    int      `json:"topic"`
	TopTerms []string `json:"top_terms"`
}

type topicSamples struct {
	Topic  int   `json:"topic"`
	DocIDs []any `json:"doc_ids"`
}

// topicsDocument shapes the model for dashboards. Sample IDs that look like
// integers are emitted as JSON numbers.
func topicsDocument(m *topics.Model) map[string]any {
	ts := make([]topicTerms, len(m.Topics))
	ss := make([]topicSamples, len(m.Topics))
	for i, tp := range m.Topics {
		ts[i] = topicTerms{Topic: tp.Index, TopTerms: tp.TopTerms}
		ids := make([]any, len(tp.Samples))
		for j, id := range tp.Samples {
			if n, err := strconv.ParseInt(id, 10, 64); err == nil {
				ids[j] = n
			} else {
				ids[j] = id
			}
		}
		ss[i] = topicSamples{Topic: tp.Index, DocIDs: ids}
	}
	return map[string]any{"topics": ts, "samples": ss}
}

func corpusColumns(cmd *cobra.Command) (string, string) {
	idCol, textCol := cfg.DocIDCol, cfg.TextCol
	if cmd.Flags().Changed("id-col") {
		idCol = qualIDCol
	}
	if cmd.Flags().Changed("text-col") {
		textCol = qualTextCol
	}
	return idCol, textCol
}

func init() {
	for _, c := range []*cobra.Command{qualFreqCmd, qualTopicsCmd} {
		qualInput.register(c.Flags())
		c.Flags().StringVar(&qualIDCol, "id-col", "doc_id", "document id column")
		c.Flags().StringVar(&qualTextCol, "text-col", "text", "document text column")
	}
	qualFreqCmd.Flags().IntVar(&freqTopN, "top-n", 30, "entries per frequency table")
	qualTopicsCmd.Flags().IntVar(&topicsN, "n-topics", 6, "number of topics")
	qualTopicsCmd.Flags().IntVar(&topicsMaxF, "max-features", 5000, "vocabulary size cap")
	qualTopicsCmd.Flags().IntVar(&topicsIters, "iterations", 100, "LDA iterations")
	qualTopicsCmd.Flags().Int64Var(&topicsSeed, "seed", 42, "random seed")

	qualCmd.AddCommand(qualFreqCmd, qualTopicsCmd)
	rootCmd.AddCommand(qualCmd)
}
