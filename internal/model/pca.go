package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/loomstat/internal/dataset"
)

// Component is one principal axis.
type Component struct {
	Component              int                `json:"component"` // 1-based
	ExplainedVarianceRatio float64            `json:"explained_variance_ratio"`
	Loadings               map[string]float64 `json:"loadings"`
}

// PCAResult holds the retained components in decreasing variance order.
type PCAResult struct {
	Features   []string    `json:"features"`
	Components []Component `json:"components"`
	Rows       int         `json:"rows"`
}

// ExplainedVariance returns the per-component ratios.
func (r *PCAResult) ExplainedVariance() []float64 {
	out := make([]float64, len(r.Components))
	for i, c := range r.Components {
		out[i] = c.ExplainedVarianceRatio
	}
	return out
}

func fitPCA(t *dataset.Table, p Params) (*Result, error) {
	f, err := extract(t, p.KeyCol, p.Features)
	if err != nil {
		return nil, err
	}
	n, d := f.len(), len(p.Features)
	if n == 0 {
		return nil, noRows("pca")
	}
	if n < 2 {
		return nil, &dataset.InsufficientDataError{Op: "pca", Reason: "need at least 2 complete rows"}
	}
	x := mat.NewDense(n, d, nil)
	for c := 0; c < d; c++ {
		x.SetCol(c, f.cols[c])
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, &dataset.InsufficientDataError{Op: "pca", Reason: "decomposition failed"}
	}
	vars := pc.VarsTo(nil)
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	nc := p.NComponents
	if nc > len(vars) {
		nc = len(vars)
	}
	total := floats.Sum(vars)

	res := &PCAResult{Features: p.Features, Rows: n}
	axes := make([][]float64, nc)
	for k := 0; k < nc; k++ {
		axis := mat.Col(nil, k, &vecs)
		// Largest absolute loading is made positive so signs are reproducible.
		if axis[floats.MaxIdx(absAll(axis))] < 0 {
			floats.Scale(-1, axis)
		}
		axes[k] = axis
		ratio := 0.0
		if total > 0 {
			ratio = vars[k] / total
		}
		comp := Component{Component: k + 1, ExplainedVarianceRatio: ratio, Loadings: map[string]float64{}}
		for c, name := range p.Features {
			comp.Loadings[name] = axis[c]
		}
		res.Components = append(res.Components, comp)
	}

	means := make([]float64, d)
	for c := range means {
		means[c] = stat.Mean(f.cols[c], nil)
	}
	scatter := make([]Point, n)
	centered := make([]float64, d)
	for r := 0; r < n; r++ {
		for c := 0; c < d; c++ {
			centered[c] = f.cols[c][r] - means[c]
		}
		pt := Point{Key: f.keys[r], X: floats.Dot(centered, axes[0])}
		if nc > 1 {
			pt.Y = floats.Dot(centered, axes[1])
		}
		scatter[r] = pt
	}
	return &Result{Method: PCA, PCA: res, Scatter: scatter}, nil
}

func absAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Abs(x)
	}
	return out
}
