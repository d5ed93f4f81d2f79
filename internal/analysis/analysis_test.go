package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/loomstat/internal/dataset"
)

func sampleTable() *dataset.Table {
	header := []string{"Country", "GDP", "Life", "Pop", "Const"}
	rows := [][]string{
		{"A", "1", "2", "10", "5"},
		{"B", "2", "4", "", "5"},
		{"C", "3", "6", "30", "5"},
		{"D", "NA", "8", "40", "5"},
		{"E", "3", "10", "50", "5"},
	}
	return dataset.NewTable("sample.csv", header, rows, dataset.DefaultOptions())
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestDescribeColumnWiseDeletion(t *testing.T) {
	s, err := Describe(sampleTable(), []string{"GDP", "Life"})
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	g := s.Stats[0]
	if g.Count != 4 {
		t.Fatalf("GDP count = %d, want 4", g.Count)
	}
	if !approx(g.Mean, 2.25) || !approx(g.Min, 1) || !approx(g.Max, 3) {
		t.Fatalf("GDP mean/min/max = %v/%v/%v", g.Mean, g.Min, g.Max)
	}
	if !approx(g.Q25, 1.75) || !approx(g.Median, 2.5) || !approx(g.Q75, 3) {
		t.Fatalf("GDP quartiles = %v/%v/%v", g.Q25, g.Median, g.Q75)
	}
	if !approx(g.Std, math.Sqrt(2.75/3)) {
		t.Fatalf("GDP std = %v", g.Std)
	}
	if s.Stats[1].Count != 5 {
		t.Fatalf("Life count = %d, want 5 (deletion must be per column)", s.Stats[1].Count)
	}
}

func TestDescribeEmptyMeasure(t *testing.T) {
	tbl := dataset.NewTable("t", []string{"k", "v"}, [][]string{{"a", ""}, {"b", "NA"}}, dataset.DefaultOptions())
	s, err := Describe(tbl, []string{"v"})
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !s.Stats[0].Empty || s.Stats[0].Count != 0 {
		t.Fatalf("expected empty stats, got %+v", s.Stats[0])
	}
}

func TestRankTiesKeepRowOrder(t *testing.T) {
	top, bottom, err := Rank(sampleTable(), "Country", "GDP", 2)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(top) != 2 || top[0].Key != "C" || top[1].Key != "E" {
		t.Fatalf("top = %+v", top)
	}
	if len(bottom) != 2 || bottom[0].Key != "A" || bottom[1].Key != "B" {
		t.Fatalf("bottom = %+v", bottom)
	}

	_, _, err = Rank(sampleTable(), "Country", "GDP", 0)
	var ve *dataset.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCorrelateListwiseDeletion(t *testing.T) {
	cm, err := Correlate(sampleTable(), []string{"GDP", "Life", "Pop"})
	if err != nil {
		t.Fatalf("correlate: %v", err)
	}
	if cm.Rows != 3 {
		t.Fatalf("rows = %d, want 3 complete rows", cm.Rows)
	}
	r, ok := cm.At("GDP", "Life")
	if !ok || math.Abs(r-0.8660254) > 1e-6 {
		t.Fatalf("r(GDP, Life) = %v", r)
	}
	if cm.Values[0][0] != 1 {
		t.Fatalf("diagonal = %v", cm.Values[0][0])
	}

	pair, err := Correlate(sampleTable(), []string{"GDP", "Life"})
	if err != nil {
		t.Fatalf("correlate pair: %v", err)
	}
	if pair.Rows != 4 {
		t.Fatalf("rows = %d, want 4", pair.Rows)
	}
}

func TestCorrelateZeroVarianceWarns(t *testing.T) {
	cm, err := Correlate(sampleTable(), []string{"Life", "Const"})
	if err != nil {
		t.Fatalf("correlate: %v", err)
	}
	if cm.Values[0][1] != 0 || len(cm.Warnings) != 1 {
		t.Fatalf("values=%v warnings=%v", cm.Values, cm.Warnings)
	}
}

func TestCorrelateInsufficientRows(t *testing.T) {
	tbl := dataset.NewTable("t", []string{"a", "b"}, [][]string{{"1", "2"}, {"", "3"}}, dataset.DefaultOptions())
	_, err := Correlate(tbl, []string{"a", "b"})
	var ie *dataset.InsufficientDataError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestResolveMeasures(t *testing.T) {
	got, err := ResolveMeasures(sampleTable(), nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if strings.Join(got, ",") != "GDP,Life,Pop" {
		t.Fatalf("auto measures = %v", got)
	}
	got, _ = ResolveMeasures(sampleTable(), []string{"Const"})
	if len(got) != 1 || got[0] != "Const" {
		t.Fatalf("explicit measures = %v", got)
	}
	_, err = ResolveMeasures(sampleTable(), []string{"Nope"})
	var me *dataset.MissingColumnError
	if !errors.As(err, &me) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	text := dataset.NewTable("t", []string{"k"}, [][]string{{"a"}}, dataset.DefaultOptions())
	_, err = ResolveMeasures(text, nil)
	var ie *dataset.InsufficientDataError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestScatterSkipsIncompleteRows(t *testing.T) {
	pts, err := Scatter(sampleTable(), "Country", "GDP", "Pop")
	if err != nil {
		t.Fatalf("scatter: %v", err)
	}
	if len(pts) != 3 || pts[0].Key != "A" || pts[2].Key != "E" {
		t.Fatalf("points = %+v", pts)
	}
}

func TestNonNumericMeasure(t *testing.T) {
	_, err := Describe(sampleTable(), []string{"Country"})
	var ne *dataset.NonNumericFeatureError
	if !errors.As(err, &ne) || ne.Row != 1 {
		t.Fatalf("expected NonNumericFeatureError at row 1, got %v", err)
	}
}

func TestSummaryMarkdown(t *testing.T) {
	tbl := sampleTable()
	s, _ := Describe(tbl, []string{"GDP", "Life"})
	s.RankBy = "GDP"
	s.Top, s.Bottom, _ = Rank(tbl, "Country", "GDP", 2)
	s.Corr, _ = Correlate(tbl, []string{"GDP", "Life"})
	md := s.Markdown()
	for _, want := range []string{"[SUMMARY]", "[TOP 2 by GDP]", "[BOTTOM 2 by GDP]", "[CORRELATION]", "GDP ~ Life"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}
