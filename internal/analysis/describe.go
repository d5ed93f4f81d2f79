// Package analysis computes descriptive statistics, rankings and correlations
// over numeric columns of a survey table.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/loomstat/internal/dataset"
)

// DefaultMeasures is how many numeric columns are auto-selected.
const DefaultMeasures = 3

// Stats summarizes one measure column.
type Stats struct {
	Measure string  `json:"measure"`
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Min     float64 `json:"min"`
	Q25     float64 `json:"p25"`
	Median  float64 `json:"p50"`
	Q75     float64 `json:"p75"`
	Max     float64 `json:"max"`
	// Empty marks a measure with no valid values; the numeric fields are zero.
	Empty bool `json:"empty,omitempty"`
}

// Summary is the describe result plus optional ranking and correlation
// sections filled by the caller for rendering.
type Summary struct {
	Table  string      `json:"table"`
	Rows   int         `json:"rows"`
	Stats  []Stats     `json:"stats"`
	RankBy string      `json:"rank_by,omitempty"`
	Top    []RankEntry `json:"top,omitempty"`
	Bottom []RankEntry `json:"bottom,omitempty"`
	Corr   *CorrMatrix `json:"correlation,omitempty"`
	Notes  []string    `json:"notes,omitempty"`
}

// ResolveMeasures returns measures when given, after checking they exist.
// Otherwise it picks the first DefaultMeasures numeric columns.
func ResolveMeasures(t *dataset.Table, measures []string) ([]string, error) {
	if len(measures) > 0 {
		if err := t.Require(measures...); err != nil {
			return nil, err
		}
		return measures, nil
	}
	num := t.NumericColumns()
	if len(num) == 0 {
		return nil, &dataset.InsufficientDataError{Op: "measures", Reason: "no numeric columns to auto-select"}
	}
	if len(num) > DefaultMeasures {
		num = num[:DefaultMeasures]
	}
	return num, nil
}

// Describe computes count, mean, sample standard deviation, min, quartiles and
// max for each measure. Missing cells are dropped per column.
func Describe(t *dataset.Table, measures []string) (*Summary, error) {
	s := &Summary{Table: t.Name, Rows: t.Len()}
	for _, m := range measures {
		vals, err := t.Floats(m)
		if err != nil {
			return nil, err
		}
		s.Stats = append(s.Stats, describeColumn(m, dropNaN(vals)))
	}
	return s, nil
}

func describeColumn(name string, vals []float64) Stats {
	st := Stats{Measure: name, Count: len(vals)}
	if len(vals) == 0 {
		st.Empty = true
		return st
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	st.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		st.Std = stat.StdDev(sorted, nil)
	}
	st.Min = floats.Min(sorted)
	st.Max = floats.Max(sorted)
	st.Q25 = quantile(sorted, 0.25)
	st.Median = quantile(sorted, 0.5)
	st.Q75 = quantile(sorted, 0.75)
	return st
}

func dropNaN(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// quantile interpolates linearly between the two closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
