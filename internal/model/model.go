// Package model fits one of three exploratory models over numeric table
// columns: least-squares regression, k-means clustering or PCA.
package model

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/loomstat/internal/dataset"
)

// Method selects the model fitted by Fit.
type Method string

const (
	Regression Method = "regression"
	Clustering Method = "clustering"
	PCA        Method = "pca"
)

// Methods lists the supported methods in display order.
var Methods = []Method{Regression, Clustering, PCA}

const (
	DefaultK           = 4
	DefaultNComponents = 2
	DefaultSeed        = 42
	DefaultRestarts    = 10
)

// Params configures a single Fit call. Start from DefaultParams; a zero K or
// NComponents is rejected rather than defaulted.
type Params struct {
	Method      Method
	Features    []string
	Target      string
	KeyCol      string
	K           int
	NComponents int
	Seed        int64
	Restarts    int
}

// DefaultParams returns params for method with the default k, component
// count, seed and restart count.
func DefaultParams(method Method, features ...string) Params {
	return Params{
		Method:      method,
		Features:    features,
		K:           DefaultK,
		NComponents: DefaultNComponents,
		Seed:        DefaultSeed,
		Restarts:    DefaultRestarts,
	}
}

// Point is one row of the 2-D scatter. Group is the cluster label, 0 otherwise.
type Point struct {
	Key   string  `json:"key"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Group int     `json:"group"`
}

// Result carries exactly one of Regression, Clustering or PCA, matching Method.
type Result struct {
	Method     Method            `json:"method"`
	Regression *RegressionResult `json:"regression,omitempty"`
	Clustering *ClusterResult    `json:"clustering,omitempty"`
	PCA        *PCAResult        `json:"pca,omitempty"`
	Scatter    []Point           `json:"scatter"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// Fit validates p and dispatches to the selected method.
func Fit(t *dataset.Table, p Params) (*Result, error) {
	if len(p.Features) == 0 {
		return nil, &dataset.ValidationError{Param: "features", Value: "[]", Rule: "at least one feature is required"}
	}
	if p.Restarts < DefaultRestarts {
		p.Restarts = DefaultRestarts
	}
	switch p.Method {
	case Regression:
		return fitRegression(t, p)
	case Clustering:
		if err := dataset.RequirePositive("k", p.K); err != nil {
			return nil, err
		}
		return fitClustering(t, p)
	case PCA:
		if err := dataset.RequirePositive("n_components", p.NComponents); err != nil {
			return nil, err
		}
		return fitPCA(t, p)
	}
	return nil, &dataset.ValidationError{Param: "method", Value: p.Method, Rule: fmt.Sprintf("must be one of %v", Methods)}
}

// frame holds numeric columns restricted to complete rows.
type frame struct {
	keys []string
	cols [][]float64
	rows []int // 1-based source rows
}

func (f *frame) len() int { return len(f.rows) }

// extract reads cols (and keyCol when set) and keeps rows that have every
// value present.
func extract(t *dataset.Table, keyCol string, cols []string) (*frame, error) {
	raw := make([][]float64, len(cols))
	for i, c := range cols {
		v, err := t.Floats(c)
		if err != nil {
			return nil, err
		}
		raw[i] = v
	}
	var keys []string
	if keyCol != "" {
		k, err := t.Strings(keyCol)
		if err != nil {
			return nil, err
		}
		keys = k
	}
	f := &frame{cols: make([][]float64, len(cols))}
	for r := 0; r < t.Len(); r++ {
		if keys != nil && keys[r] == "" {
			continue
		}
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
			f.cols[i] = append(f.cols[i], raw[i][r])
		}
		if keys != nil {
			f.keys = append(f.keys, keys[r])
		} else {
			f.keys = append(f.keys, fmt.Sprint(r+1))
		}
		f.rows = append(f.rows, r+1)
	}
	return f, nil
}

func noRows(op string) error {
	return &dataset.InsufficientDataError{Op: op, Reason: "no complete rows after dropping missing values"}
}
