package model

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/KaramelBytes/loomstat/internal/dataset"
)

const maxLloydIterations = 300

// ClusterResult is the best of several k-means runs.
type ClusterResult struct {
	K         int         `json:"k"`
	Labels    []int       `json:"labels"`
	Centers   [][]float64 `json:"centers"`
	Sizes     []int       `json:"sizes"`
	Inertia   float64     `json:"inertia"`
	Restarts  int         `json:"restarts"`
	Histogram []float64   `json:"histogram"`
}

func fitClustering(t *dataset.Table, p Params) (*Result, error) {
	f, err := extract(t, p.KeyCol, p.Features)
	if err != nil {
		return nil, err
	}
	n := f.len()
	if n == 0 {
		return nil, noRows("clustering")
	}
	if p.K > n {
		return nil, &dataset.InsufficientDataError{
			Op:     "clustering",
			Reason: fmt.Sprintf("k=%d exceeds %d complete rows", p.K, n),
		}
	}
	points := make([][]float64, n)
	for r := range points {
		points[r] = make([]float64, len(p.Features))
		for c := range p.Features {
			points[r][c] = f.cols[c][r]
		}
	}

	rng := rand.New(rand.NewSource(uint64(p.Seed)))
	var best *kmeansRun
	for i := 0; i < p.Restarts; i++ {
		run := lloyd(points, seedCenters(points, p.K, rng))
		if best == nil || run.inertia < best.inertia {
			best = run
		}
	}
	best.canonicalize(p.K)

	cr := &ClusterResult{
		K:         p.K,
		Labels:    best.labels,
		Centers:   best.centers,
		Sizes:     make([]int, p.K),
		Inertia:   best.inertia,
		Restarts:  p.Restarts,
		Histogram: append([]float64(nil), f.cols[0]...),
	}
	for _, l := range best.labels {
		cr.Sizes[l]++
	}

	yCol := 0
	if len(p.Features) > 1 {
		yCol = 1
	}
	scatter := make([]Point, n)
	for i := range scatter {
		scatter[i] = Point{Key: f.keys[i], X: f.cols[0][i], Y: f.cols[yCol][i], Group: best.labels[i]}
	}
	return &Result{Method: Clustering, Clustering: cr, Scatter: scatter}, nil
}

type kmeansRun struct {
	labels  []int
	centers [][]float64
	inertia float64
}

// seedCenters picks k initial centers with k-means++: each next center is drawn
// with probability proportional to its squared distance from the nearest chosen one.
func seedCenters(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	centers = append(centers, clone(points[rng.Intn(len(points))]))
	dist := make([]float64, len(points))
	for len(centers) < k {
		var total float64
		for i, pt := range points {
			dist[i] = nearest(pt, centers).dist
			total += dist[i]
		}
		next := rng.Intn(len(points))
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range dist {
				target -= d
				if target < 0 {
					next = i
					break
				}
			}
		}
		centers = append(centers, clone(points[next]))
	}
	return centers
}

// lloyd alternates assignment and update until labels stop changing.
func lloyd(points [][]float64, centers [][]float64) *kmeansRun {
	k, dim := len(centers), len(points[0])
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}
	for iter := 0; iter < maxLloydIterations; iter++ {
		changed := false
		for i, pt := range points {
			if c := nearest(pt, centers).index; c != labels[i] {
				labels[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, pt := range points {
			floats.Add(sums[labels[i]], pt)
			counts[labels[i]]++
		}
		for c := range centers {
			// An empty cluster keeps its previous center.
			if counts[c] > 0 {
				floats.Scale(1/float64(counts[c]), sums[c])
				centers[c] = sums[c]
			}
		}
	}
	run := &kmeansRun{labels: labels, centers: centers}
	for i, pt := range points {
		run.inertia += sqDist(pt, centers[labels[i]])
	}
	return run
}

// canonicalize renumbers clusters by first appearance in row order. Clusters
// that own no rows take the remaining labels in center order.
func (r *kmeansRun) canonicalize(k int) {
	remap := make([]int, k)
	for i := range remap {
		remap[i] = -1
	}
	next := 0
	for _, l := range r.labels {
		if remap[l] < 0 {
			remap[l] = next
			next++
		}
	}
	for c := range remap {
		if remap[c] < 0 {
			remap[c] = next
			next++
		}
	}
	centers := make([][]float64, k)
	for c, to := range remap {
		centers[to] = r.centers[c]
	}
	for i, l := range r.labels {
		r.labels[i] = remap[l]
	}
	r.centers = centers
}

type hit struct {
	index int
	dist  float64
}

// nearest returns the closest center; the lowest index wins ties.
func nearest(pt []float64, centers [][]float64) hit {
	best := hit{index: 0, dist: math.Inf(1)}
	for c, ctr := range centers {
		if d := sqDist(pt, ctr); d < best.dist {
			best = hit{index: c, dist: d}
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 { return append([]float64(nil), v...) }
