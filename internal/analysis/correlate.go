package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/loomstat/internal/dataset"
)

// CorrMatrix is a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
	// Rows is the number of complete rows used.
	Rows     int      `json:"rows"`
	Warnings []string `json:"warnings,omitempty"`
}

// At returns the correlation between two named columns.
func (c *CorrMatrix) At(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, col := range c.Columns {
		if col == a && ia < 0 {
			ia = i
		}
		if col == b && ib < 0 {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return c.Values[ia][ib], true
}

// Correlate computes Pearson correlations using only rows that have a value for
// every measure. A pair involving a constant column reports 0 and a warning.
func Correlate(t *dataset.Table, measures []string) (*CorrMatrix, error) {
	cols, err := completeColumns(t, measures)
	if err != nil {
		return nil, err
	}
	n := 0
	if len(cols) > 0 {
		n = len(cols[0])
	}
	if n < 2 {
		return nil, &dataset.InsufficientDataError{
			Op:     "correlate",
			Reason: fmt.Sprintf("%d complete rows, need at least 2", n),
		}
	}
	cm := &CorrMatrix{Columns: measures, Rows: n, Values: make([][]float64, len(measures))}
	for i := range measures {
		cm.Values[i] = make([]float64, len(measures))
	}
	for i := range measures {
		for j := i; j < len(measures); j++ {
			r := stat.Correlation(cols[i], cols[j], nil)
			switch {
			case math.IsNaN(r) || math.IsInf(r, 0):
				if i != j {
					cm.Warnings = append(cm.Warnings, fmt.Sprintf("%s ~ %s: zero variance, reported as 0", measures[i], measures[j]))
				}
				r = 0
			case i == j:
				r = 1
			}
			cm.Values[i][j] = r
			cm.Values[j][i] = r
		}
	}
	return cm, nil
}

// completeColumns extracts the named columns restricted to rows with no
// missing value in any of them.
func completeColumns(t *dataset.Table, names []string) ([][]float64, error) {
	raw := make([][]float64, len(names))
	for i, c := range names {
		v, err := t.Floats(c)
		if err != nil {
			return nil, err
		}
		raw[i] = v
	}
	out := make([][]float64, len(names))
	for r := 0; r < t.Len(); r++ {
		ok := true
		for i := range raw {
			if math.IsNaN(raw[i][r]) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for i := range raw {
			out[i] = append(out[i], raw[i][r])
		}
	}
	return out, nil
}

// Point is one keyed (x, y) pair.
type Point struct {
	Key string  `json:"key"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// Scatter pairs x and y per row for rows that have a key and both values.
func Scatter(t *dataset.Table, keyCol, x, y string) ([]Point, error) {
	keys, err := t.Strings(keyCol)
	if err != nil {
		return nil, err
	}
	xs, err := t.Floats(x)
	if err != nil {
		return nil, err
	}
	ys, err := t.Floats(y)
	if err != nil {
		return nil, err
	}
	pts := []Point{}
	for i := range keys {
		if keys[i] == "" || math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		pts = append(pts, Point{Key: keys[i], X: xs[i], Y: ys[i]})
	}
	return pts, nil
}
