package models

import (
	"cmp"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"
)

// importance accumulates per-feature split statistics across all trees of a fit.
type importance struct {
	gain  []float64
	count []int
}

func newImportance(nFeatures int) *importance {
	return &importance{gain: make([]float64, nFeatures), count: make([]int, nFeatures)}
}

func (imp *importance) add(feature int, gain float64) {
	imp.gain[feature] += math.Max(0, gain)
	imp.count[feature]++
}

type candidate struct {
	feature   int
	threshold float64
	gain      float64
}

var noSplit = candidate{feature: -1}

// treeBuilder grows one tree with exact greedy search over the sorted values of every
// feature in features. grad and hess are indexed by row.
type treeBuilder struct {
	X              [][]float64
	grad           []float64
	hess           []float64
	features       []int
	maxDepth       int
	minChildWeight float64
	lambda         float64
	gamma          float64
	workers        int
	imp            *importance
}

func newTreeBuilder(X [][]float64, grad, hess []float64, features []int, p Params, imp *importance) *treeBuilder {
	return &treeBuilder{
		X:              X,
		grad:           grad,
		hess:           hess,
		features:       features,
		maxDepth:       p.MaxDepth,
		minChildWeight: p.MinChildWeight,
		lambda:         p.Lambda,
		gamma:          p.Gamma,
		workers:        p.Workers,
		imp:            imp,
	}
}

func (b *treeBuilder) build(rows []int, depth int) Node {
	var G, H float64
	for _, r := range rows {
		G += b.grad[r]
		H += b.hess[r]
	}
	if depth >= b.maxDepth || H < b.minChildWeight || len(rows) <= 1 {
		return b.leaf(G, H)
	}
	best := b.bestSplit(rows, G, H)
	if best.feature < 0 || !(best.gain > 0) {
		return b.leaf(G, H)
	}
	b.imp.add(best.feature, best.gain)

	left := make([]int, 0, len(rows))
	right := make([]int, 0, len(rows))
	for _, r := range rows {
		if b.X[r][best.feature] <= best.threshold { left = append(left, r) } else { right = append(right, r) }
	}
	return &Split{
		Feature:   best.feature,
		Threshold: best.threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

func (b *treeBuilder) leaf(G, H float64) *Leaf {
	den := H + b.lambda
	if den == 0 {
		return &Leaf{}
	}
	return &Leaf{Weight: -G / den}
}

// bestSplit scans every feature and keeps the first candidate with the highest gain,
// features in the order of b.features.
func (b *treeBuilder) bestSplit(rows []int, G, H float64) candidate {
	found := make([]candidate, len(b.features))
	if b.workers > 1 && len(b.features) > 1 {
		var g errgroup.Group
		g.SetLimit(b.workers)
		for i, f := range b.features {
			g.Go(func() error {
				found[i] = b.scanFeature(f, rows, G, H)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, f := range b.features {
			found[i] = b.scanFeature(f, rows, G, H)
		}
	}

	best := noSplit
	for _, c := range found {
		if c.feature >= 0 && (best.feature < 0 || c.gain > best.gain) {
			best = c
		}
	}
	return best
}

// scanFeature returns the best positive-gain split on feature f, or noSplit.
func (b *treeBuilder) scanFeature(f int, rows []int, G, H float64) candidate {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(i, j int) int { return cmp.Compare(b.X[i][f], b.X[j][f]) })

	parent := G * G / (H + b.lambda)
	best := noSplit
	var GL, HL float64
	for k := 0; k < len(sorted)-1; k++ {
		r := sorted[k]
		GL += b.grad[r]
		HL += b.hess[r]
		v, next := b.X[r][f], b.X[sorted[k+1]][f]
		if v == next {
			continue
		}
		GR, HR := G-GL, H-HL
		if HL < b.minChildWeight || HR < b.minChildWeight {
			continue
		}
		gain := 0.5*GL*GL/(HL+b.lambda) + 0.5*GR*GR/(HR+b.lambda) - 0.5*parent - b.gamma
		if gain > 0 && (best.feature < 0 || gain > best.gain) {
			best = candidate{feature: f, threshold: (v + next) / 2, gain: gain}
		}
	}
	return best
}
