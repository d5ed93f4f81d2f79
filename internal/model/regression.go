package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/loomstat/internal/dataset"
)

// Coefficient is the fitted weight of one feature.
type Coefficient struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// RegressionResult is an ordinary least squares fit with intercept.
type RegressionResult struct {
	Target       string        `json:"target"`
	Intercept    float64       `json:"intercept"`
	Coefficients []Coefficient `json:"coefficients"`
	R2           float64       `json:"r2"`
	Rows         int           `json:"rows"`
	// StrongestPredictor is the feature with the largest absolute coefficient.
	StrongestPredictor string `json:"strongest_predictor"`
}

// rankTol is the singular value cutoff, relative to the largest one, below
// which a direction of the centered design counts as degenerate.
const rankTol = 1e-10

func fitRegression(t *dataset.Table, p Params) (*Result, error) {
	if p.Target == "" {
		return nil, &dataset.MissingTargetError{}
	}
	cols := append(append([]string(nil), p.Features...), p.Target)
	f, err := extract(t, "", cols)
	if err != nil {
		return nil, err
	}
	n, d := f.len(), len(p.Features)
	if n == 0 {
		return nil, noRows("regression")
	}
	if n < d+1 {
		return nil, &dataset.InsufficientDataError{
			Op:     "regression",
			Reason: fmt.Sprintf("%d complete rows for %d parameters", n, d+1),
		}
	}

	// Center the columns so the intercept stays out of the minimum-norm
	// objective; it is recovered from the means afterwards.
	means := make([]float64, d)
	xc := mat.NewDense(n, d, nil)
	for c := 0; c < d; c++ {
		means[c] = stat.Mean(f.cols[c], nil)
		for r := 0; r < n; r++ {
			xc.Set(r, c, f.cols[c][r]-means[c])
		}
	}
	ymean := stat.Mean(f.cols[d], nil)
	yc := mat.NewVecDense(n, nil)
	for r := 0; r < n; r++ {
		yc.SetVec(r, f.cols[d][r]-ymean)
	}

	res := &Result{Method: Regression}
	beta := mat.NewVecDense(d, nil)
	var svd mat.SVD
	if !svd.Factorize(xc, mat.SVDThin) {
		return nil, fmt.Errorf("least squares: SVD did not converge")
	}
	rank := svd.Rank(rankTol)
	if rank > 0 {
		svd.SolveVecTo(beta, yc, rank)
	}
	if rank < d {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("features are collinear or constant (rank %d of %d); minimum-norm coefficients reported", rank, d))
	}

	rr := &RegressionResult{Target: p.Target, Intercept: ymean - mat.Dot(mat.NewVecDense(d, means), beta), Rows: n}
	best := -1.0
	for c, name := range p.Features {
		v := beta.AtVec(c)
		rr.Coefficients = append(rr.Coefficients, Coefficient{Feature: name, Value: v})
		if math.Abs(v) > best {
			best = math.Abs(v)
			rr.StrongestPredictor = name
		}
	}
	fitted := make([]float64, n)
	for r := range fitted {
		fitted[r] = rr.Intercept
		for c := 0; c < d; c++ {
			fitted[r] += beta.AtVec(c) * f.cols[c][r]
		}
	}
	rr.R2 = rSquared(fitted, f.cols[d])
	res.Regression = rr

	scatter, err := regressionScatter(t, p)
	if err != nil {
		return nil, err
	}
	res.Scatter = scatter
	return res, nil
}

// rSquared is 1 - SSres/SStot. A constant target that is fitted exactly scores 1.
func rSquared(fitted, observed []float64) float64 {
	r2 := stat.RSquaredFrom(fitted, observed, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		var ssRes float64
		for i := range observed {
			d := observed[i] - fitted[i]
			ssRes += d * d
		}
		if ssRes < 1e-12 {
			return 1
		}
		return 0
	}
	return r2
}

// regressionScatter plots the first feature against the second, or against the
// target when only one feature was given.
func regressionScatter(t *dataset.Table, p Params) ([]Point, error) {
	if p.KeyCol == "" || !t.Has(p.KeyCol) {
		return []Point{}, nil
	}
	second := p.Target
	if len(p.Features) > 1 {
		second = p.Features[1]
	}
	f, err := extract(t, p.KeyCol, []string{p.Features[0], second})
	if err != nil {
		return nil, err
	}
	pts := make([]Point, f.len())
	for i := range pts {
		pts[i] = Point{Key: f.keys[i], X: f.cols[0][i], Y: f.cols[1][i]}
	}
	return pts, nil
}
