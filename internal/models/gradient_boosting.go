package models

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"tsboost/internal/data"
	"tsboost/internal/features"
)

// GradientBoosting is an additive ensemble of regression trees fitted by Newton boosting.
// After Fit returns it is never mutated and can serve predictions from many goroutines.
type GradientBoosting struct {
	Params Params

	trees           []*Tree
	baseScore       float64
	nFeatures       int
	featureNames    []string
	importanceGain  []float64
	importanceCount []int
	logger          *zap.Logger
}

func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{Params: DefaultParams(), logger: zap.NewNop()}
}

func (gb *GradientBoosting) Name() string { return "GradientBoosting" }

// SetLogger routes fit progress and prediction warnings to l.
func (gb *GradientBoosting) SetLogger(l *zap.Logger) {
	if l == nil { l = zap.NewNop() }
	gb.logger = l
}

func (gb *GradientBoosting) log() *zap.Logger {
	if gb.logger == nil { return zap.NewNop() }
	return gb.logger
}

func checkInput(X [][]float64, y []float64) error {
	if len(X) == 0 { return fmt.Errorf("%w: empty feature matrix", ErrInput) }
	if len(X) != len(y) { return fmt.Errorf("%w: %d rows but %d targets", ErrInput, len(X), len(y)) }
	width := len(X[0])
	if width == 0 { return fmt.Errorf("%w: rows have no features", ErrInput) }
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d features, expected %d", ErrInput, i, len(row), width)
		}
	}
	return nil
}

// Fit grows Params.NumRounds trees on X and y. On error the receiver is left unchanged.
func (gb *GradientBoosting) Fit(X [][]float64, y []float64) error {
	if err := gb.Params.Validate(); err != nil { return err }
	if err := checkInput(X, y); err != nil { return err }

	p := gb.Params
	logger := gb.log()
	start := time.Now()
	n, nFeats := len(X), len(X[0])

	base := baseScore(p.Task, y)
	raw := make([]float64, n)
	for i := range raw { raw[i] = base }
	grad := make([]float64, n)
	hess := make([]float64, n)
	imp := newImportance(nFeats)
	sampler := NewSampler(p.Seed)
	trees := make([]*Tree, 0, p.NumRounds)

	logger.Info("fit started", zap.Int("rows", n), zap.Int("features", nFeats), zap.Stringer("params", p))
	for round := 0; round < p.NumRounds; round++ {
		computeGradients(p.Task, raw, y, grad, hess)
		rows := sampler.Rows(n, p.Subsample)
		cols := sampler.Columns(nFeats, p.ColsampleByTree)

		t := &Tree{Root: newTreeBuilder(X, grad, hess, cols, p, imp).build(rows, 0), Weight: 1}
		trees = append(trees, t)

		for i := range X {
			v, _, _ := t.leaf(X[i])
			raw[i] += p.LearningRate * t.Weight * v
		}
		if ce := logger.Check(zap.DebugLevel, "round"); ce != nil {
			ce.Write(zap.Int("round", round), zap.Int("rows", len(rows)), zap.Int("leaves", t.Leaves()),
				zap.Float64("loss", trainingLoss(p.Task, raw, y)))
		}
	}

	gb.trees = trees
	gb.baseScore = base
	gb.nFeatures = nFeats
	gb.featureNames = nil
	gb.importanceGain = imp.gain
	gb.importanceCount = imp.count
	logger.Info("fit finished", zap.Int("trees", len(trees)), zap.Float64("base_score", base),
		zap.Float64("loss", trainingLoss(p.Task, raw, y)), zap.Duration("took", time.Since(start)))
	return nil
}

// FitWithTimestamps builds rows from the timestamp features of s followed by its custom
// features, then calls Fit.
func (gb *GradientBoosting) FitWithTimestamps(s data.Series) error {
	if len(s.Timestamps) != len(s.Targets) {
		return fmt.Errorf("%w: %d timestamps but %d targets", ErrInput, len(s.Timestamps), len(s.Targets))
	}
	if s.Custom != nil && len(s.Custom) != len(s.Timestamps) {
		return fmt.Errorf("%w: %d timestamps but %d custom feature rows", ErrInput, len(s.Timestamps), len(s.Custom))
	}
	if err := gb.Fit(s.Matrix(), s.Targets); err != nil { return err }

	names := features.Names()
	for k := features.Count; k < gb.nFeatures; k++ {
		j := k - features.Count
		if j < len(s.CustomNames) {
			names = append(names, s.CustomNames[j])
		} else {
			names = append(names, fmt.Sprintf("custom_%d", j))
		}
	}
	gb.featureNames = names
	return nil
}

// Prediction is a single scored row. SkippedTrees counts trees whose splits referenced a
// feature index beyond the row; each of those contributed zero.
type Prediction struct {
	Value        float64 `json:"value"`
	Raw          float64 `json:"raw"`
	SkippedTrees int     `json:"skipped_trees"`
}

func (gb *GradientBoosting) predict(x []float64) Prediction {
	raw := gb.baseScore
	skipped := 0
	missing := -1
	for _, t := range gb.trees {
		v, f, ok := t.leaf(x)
		if !ok {
			skipped++
			missing = f
			continue
		}
		raw += gb.Params.LearningRate * t.Weight * v
	}
	if skipped > 0 {
		gb.log().Warn("trees skipped during prediction",
			zap.Error(ErrFeatureMismatch), zap.Int("skipped_trees", skipped),
			zap.Int("feature", missing), zap.Int("row_features", len(x)))
	}
	return Prediction{Value: gb.link(raw), Raw: raw, SkippedTrees: skipped}
}

func (gb *GradientBoosting) link(raw float64) float64 {
	if gb.Params.Task == Regression { return raw }
	return sigmoid(raw)
}

func (gb *GradientBoosting) ready() error {
	if len(gb.trees) == 0 { return ErrUntrained }
	return nil
}

// PredictWithDiagnostics scores x and reports how many trees were skipped.
func (gb *GradientBoosting) PredictWithDiagnostics(x []float64) (Prediction, error) {
	if err := gb.ready(); err != nil { return Prediction{}, err }
	return gb.predict(x), nil
}

// PredictRaw returns the additive score before the output link.
func (gb *GradientBoosting) PredictRaw(x []float64) (float64, error) {
	if err := gb.ready(); err != nil { return 0, err }
	return gb.predict(x).Raw, nil
}

// PredictSingle returns a probability for classification and the raw score for regression.
func (gb *GradientBoosting) PredictSingle(x []float64) (float64, error) {
	if err := gb.ready(); err != nil { return 0, err }
	return gb.predict(x).Value, nil
}

func (gb *GradientBoosting) PredictBatch(X [][]float64) ([]float64, error) {
	if err := gb.ready(); err != nil { return nil, err }
	out := make([]float64, len(X))
	for i := range X { out[i] = gb.predict(X[i]).Value }
	return out, nil
}

// PredictWithTimestamp scores the row built from t and custom. custom must match the
// order and width used in training.
func (gb *GradientBoosting) PredictWithTimestamp(t time.Time, custom []float64) (float64, error) {
	return gb.PredictSingle(features.Vectorize(t, custom))
}

// PredictBatchWithTimestamps scores one row per timestamp. custom may be nil.
func (gb *GradientBoosting) PredictBatchWithTimestamps(ts []time.Time, custom [][]float64) ([]float64, error) {
	if custom != nil && len(custom) != len(ts) {
		return nil, fmt.Errorf("%w: %d timestamps but %d custom feature rows", ErrInput, len(ts), len(custom))
	}
	X := make([][]float64, len(ts))
	for i, t := range ts {
		var c []float64
		if custom != nil { c = custom[i] }
		X[i] = features.Vectorize(t, c)
	}
	return gb.PredictBatch(X)
}

// Truncate returns a read-only view over the first n trees, sharing them with gb.
func (gb *GradientBoosting) Truncate(n int) *GradientBoosting {
	if n < 0 { n = 0 }
	if n > len(gb.trees) { n = len(gb.trees) }
	view := *gb
	view.trees = gb.trees[:n:n]
	return &view
}

func (gb *GradientBoosting) Trees() []*Tree { return gb.trees }
func (gb *GradientBoosting) BaseScore() float64 { return gb.baseScore }
func (gb *GradientBoosting) NumFeatures() int { return gb.nFeatures }

// FeatureNames returns the training column names, or f0..fN when none were recorded.
func (gb *GradientBoosting) FeatureNames() []string {
	if len(gb.featureNames) == gb.nFeatures {
		return append([]string(nil), gb.featureNames...)
	}
	out := make([]string, gb.nFeatures)
	for i := range out { out[i] = fmt.Sprintf("f%d", i) }
	return out
}

// Importance returns copies of the total split gain and the split count per feature.
func (gb *GradientBoosting) Importance() (gain []float64, count []int) {
	return append([]float64(nil), gb.importanceGain...), append([]int(nil), gb.importanceCount...)
}

type FeatureImportance struct {
	Index int     `json:"index"`
	Name  string  `json:"name"`
	Gain  float64 `json:"gain"`
	Count int     `json:"count"`
}

// RankedImportance lists every feature by descending total gain; ties keep column order.
func (gb *GradientBoosting) RankedImportance() []FeatureImportance {
	names := gb.FeatureNames()
	out := make([]FeatureImportance, len(gb.importanceGain))
	for i := range out {
		out[i] = FeatureImportance{Index: i, Name: names[i], Gain: gb.importanceGain[i], Count: gb.importanceCount[i]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Gain > out[j].Gain })
	return out
}
