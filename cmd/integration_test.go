package cmd

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/loomstat/internal/dataset"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags clears values and Changed state left by a previous invocation.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args in an isolated HOME and working dir.
func execCmd(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	if err := execCmd(t, args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func corpusFile(t *testing.T, dir string) string {
	path := filepath.Join(dir, "corpus.csv")
	writeCSV(t, path, [][]string{
		{"doc_id", "text"},
		{"1", "Great benefit for the community, great results"},
		{"2", "Poor planning and a real risk of harm"},
		{"3", "Solar energy prices improve every year"},
		{"4", ""},
		{"5", "Energy prices and solar energy adoption"},
	})
	return path
}

func TestCLI_QualFreqWritesWordsAndSentiment(t *testing.T) {
	dir := isolate(t)
	in := corpusFile(t, dir)
	out := filepath.Join(dir, "out")
	runCmd(t, "qual", "freq", in, "--top-n", "5", "--outdir", out)

	var words []map[string]any
	readJSON(t, filepath.Join(out, "qual_B_words.json"), &words)
	if len(words) == 0 || words[0]["term"] != "energy" || words[0]["freq"] != float64(3) {
		t.Fatalf("unexpected words: %v", words)
	}

	raw, err := os.ReadFile(filepath.Join(out, "qual_B_doc_sentiment.csv"))
	if err != nil {
		t.Fatalf("read sentiment: %v", err)
	}
	want := "doc_id,sentiment\n1,8\n2,-6\n3,2\n4,0\n5,0\n"
	if string(raw) != want {
		t.Fatalf("sentiment csv = %q, want %q", raw, want)
	}
	if _, err := os.Stat(filepath.Join(out, "manifest.json")); err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
}

func TestCLI_QualTopicsEmitsNumericSampleIDs(t *testing.T) {
	dir := isolate(t)
	in := corpusFile(t, dir)
	out := filepath.Join(dir, "out")
	runCmd(t, "qual", "topics", in, "--n-topics", "2", "--iterations", "20", "--outdir", out)

	var doc struct {
		Topics []struct {
			Topic    int      `json:"topic"`
			TopTerms []string `json:"top_terms"`
		} `json:"topics"`
		Samples []struct {
			Topic  int   `json:"topic"`
			DocIDs []any `json:"doc_ids"`
		} `json:"samples"`
	}
	readJSON(t, filepath.Join(out, "qual_C_topics.json"), &doc)
	if len(doc.Topics) != 2 || len(doc.Samples) != 2 {
		t.Fatalf("unexpected topics doc: %+v", doc)
	}
	total := 0
	for _, s := range doc.Samples {
		for _, id := range s.DocIDs {
			if _, ok := id.(float64); !ok {
				t.Fatalf("doc id %v should be a JSON number", id)
			}
			total++
		}
	}
	if total != 5 {
		t.Fatalf("expected all 5 documents sampled, got %d", total)
	}
}

func TestCLI_QualTopicsRejectsZeroTopics(t *testing.T) {
	dir := isolate(t)
	in := corpusFile(t, dir)
	err := execCmd(t, "qual", "topics", in, "--n-topics", "0", "--outdir", filepath.Join(dir, "out"))
	var ve *dataset.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func tableFile(t *testing.T, dir string) string {
	path := filepath.Join(dir, "countries.csv")
	writeCSV(t, path, [][]string{
		{"Country", "GDP", "Life", "Trust"},
		{"Aland", "1", "60", "0.2"},
		{"Borduria", "2", "65", "0.4"},
		{"Carpania", "3", "70", ""},
		{"Drovnia", "10", "80", "0.9"},
		{"Elbonia", "11", "82", "0.8"},
		{"", "12", "85", "0.7"},
	})
	return path
}

func TestCLI_QuantDescribe(t *testing.T) {
	dir := isolate(t)
	in := tableFile(t, dir)
	out := filepath.Join(dir, "out")
	runCmd(t, "quant", "describe", in, "--outdir", out)

	var pts []map[string]any
	readJSON(t, filepath.Join(out, "quant_B_scatter.json"), &pts)
	if len(pts) != 5 || pts[0]["key"] != "Aland" {
		t.Fatalf("unexpected scatter: %v", pts)
	}
	var sum map[string]any
	readJSON(t, filepath.Join(out, "quant_B_summary.json"), &sum)
	stats := sum["stats"].([]any)
	if len(stats) != 3 {
		t.Fatalf("expected 3 auto-picked measures, got %d", len(stats))
	}
	if sum["rank_by"] != "GDP" {
		t.Fatalf("rank_by = %v", sum["rank_by"])
	}
}

func TestCLI_QuantModelClusteringRecordsRun(t *testing.T) {
	dir := isolate(t)
	in := tableFile(t, dir)
	out := filepath.Join(dir, "out")
	store := filepath.Join(dir, "runs.db")
	runCmd(t, "quant", "model", in, "--method", "clustering", "--features", "GDP,Life", "--k", "2",
		"--outdir", out, "--store", store)

	var hist []float64
	readJSON(t, filepath.Join(out, "quant_C_hist.json"), &hist)
	if len(hist) != 5 {
		t.Fatalf("hist = %v (row without key must be dropped)", hist)
	}
	var pts []map[string]any
	readJSON(t, filepath.Join(out, "quant_C_scatter.json"), &pts)
	if pts[0]["group"] != float64(0) || pts[4]["group"] != float64(1) {
		t.Fatalf("unexpected groups: %v", pts)
	}
	runCmd(t, "runs", "--store", store)
}

func TestCLI_QuantModelPCALoadings(t *testing.T) {
	dir := isolate(t)
	in := tableFile(t, dir)
	out := filepath.Join(dir, "out")
	runCmd(t, "quant", "model", in, "--method", "pca", "--features", "GDP,Life", "--outdir", out)

	var loadings []map[string]any
	readJSON(t, filepath.Join(out, "quant_C_pca_loadings.json"), &loadings)
	if len(loadings) != 2 || loadings[0]["component"] != float64(1) {
		t.Fatalf("unexpected loadings: %v", loadings)
	}
}

func TestCLI_QuantModelRegressionNeedsTarget(t *testing.T) {
	dir := isolate(t)
	in := tableFile(t, dir)
	err := execCmd(t, "quant", "model", in, "--method", "regression", "--features", "GDP", "--outdir", filepath.Join(dir, "out"))
	var mt *dataset.MissingTargetError
	if !errors.As(err, &mt) {
		t.Fatalf("expected MissingTargetError, got %v", err)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	isolate(t)
	runCmd(t, "config", "set", "top_n", "12")
	runCmd(t, "config", "show")
	if cfg == nil || cfg.TopN != 12 {
		t.Fatalf("top_n not persisted: %+v", cfg)
	}
	if err := execCmd(t, "config", "set", "k", "0"); err == nil || !strings.Contains(err.Error(), ">= 1") {
		t.Fatalf("expected validation error for k=0, got %v", err)
	}
}

func TestCLI_InputFlagsDescribeNumberParsing(t *testing.T) {
	for _, c := range []*cobra.Command{qualFreqCmd, quantDescribeCmd, quantModelCmd} {
		dec := c.Flags().Lookup("decimal")
		if dec == nil || !strings.Contains(dec.Usage, "12% reads as 12") {
			t.Fatalf("%s --decimal help should name the percent convention: %v", c.Name(), dec)
		}
		th := c.Flags().Lookup("thousands")
		if th == nil || !strings.Contains(th.Usage, "3-digit groups") {
			t.Fatalf("%s --thousands help should name the grouping rule: %v", c.Name(), th)
		}
	}
}

func TestCLI_QuantModelRejectsInfiniteCell(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "inf.csv")
	writeCSV(t, in, [][]string{
		{"Country", "GDP", "Life"},
		{"Aland", "1", "60"},
		{"Borduria", "inf", "65"},
		{"Carpania", "3", "70"},
	})
	err := execCmd(t, "quant", "model", in, "--method", "clustering", "--features", "GDP,Life", "--k", "2",
		"--outdir", filepath.Join(dir, "out"))
	var nn *dataset.NonNumericFeatureError
	if !errors.As(err, &nn) || nn.Column != "GDP" || nn.Row != 2 {
		t.Fatalf("expected NonNumericFeatureError for GDP row 2, got %v", err)
	}
}
