package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccuracyAndBinarize(t *testing.T) {
	y := []float64{1, 0, 1, 0}
	ps := []float64{0.9, 0.2, 0.4, 0.6}
	assert.Equal(t, []float64{1, 0, 0, 1}, Binarize(ps, 0.5))
	assert.Equal(t, 0.5, Accuracy(y, Binarize(ps, 0.5)))
	assert.Equal(t, 0.0, Accuracy(nil, nil))
}

func TestConfusionAndPRF1(t *testing.T) {
	y := []float64{1, 1, 1, 0, 0}
	ps := []float64{0.9, 0.8, 0.1, 0.7, 0.2}
	tp, fp, tn, fn := Confusion(y, ps, 0.5)
	assert.Equal(t, [4]int{2, 1, 1, 1}, [4]int{tp, fp, tn, fn})

	prec, rec, f1 := PRF1(y, ps, 0.5)
	assert.InDelta(t, 2.0/3, prec, 1e-12)
	assert.InDelta(t, 2.0/3, rec, 1e-12)
	assert.InDelta(t, 2.0/3, f1, 1e-12)

	prec, rec, f1 = PRF1(y, ps, 0.95)
	assert.Zero(t, prec)
	assert.Zero(t, rec)
	assert.Zero(t, f1)
}

func TestROCAUC(t *testing.T) {
	y := []float64{0, 0, 1, 1}
	assert.InDelta(t, 1, ROCAUC(y, []float64{0.1, 0.2, 0.8, 0.9}), 1e-12)
	assert.InDelta(t, 0, ROCAUC(y, []float64{0.9, 0.8, 0.2, 0.1}), 1e-12)
	assert.InDelta(t, 0.5, ROCAUC(y, []float64{0.5, 0.5, 0.5, 0.5}), 1e-12)
	assert.InDelta(t, 0.75, ROCAUC(y, []float64{0.1, 0.6, 0.5, 0.9}), 1e-12)
	assert.Equal(t, 0.0, ROCAUC([]float64{1, 1}, []float64{0.3, 0.4}))
}

func TestPRAUC(t *testing.T) {
	y := []float64{0, 0, 1, 1}
	assert.InDelta(t, 1, PRAUC(y, []float64{0.1, 0.2, 0.8, 0.9}), 1e-12)
	assert.Less(t, PRAUC(y, []float64{0.9, 0.8, 0.2, 0.1}), 0.6)
}

func TestBestThresholdF1(t *testing.T) {
	y := []float64{0, 0, 1, 1}
	thr, f1 := BestThresholdF1(y, []float64{0.1, 0.3, 0.7, 0.9})
	assert.Equal(t, 1.0, f1)
	assert.Greater(t, thr, 0.3)
	assert.LessOrEqual(t, thr, 0.7)

	thr, f1 = BestThresholdF1(nil, nil)
	assert.Equal(t, 0.5, thr)
	assert.Zero(t, f1)
}

func TestLogLoss(t *testing.T) {
	assert.InDelta(t, math.Log(2), LogLoss([]float64{1, 0}, []float64{0.5, 0.5}), 1e-12)
	assert.False(t, math.IsInf(LogLoss([]float64{1}, []float64{0}), 0))
}

func TestRegressionErrors(t *testing.T) {
	y := []float64{1, 2, 3, 4}
	pred := []float64{2, 2, 3, 2}
	assert.InDelta(t, math.Sqrt(5.0/4), RMSE(y, pred), 1e-12)
	assert.InDelta(t, 0.75, MAE(y, pred), 1e-12)

	r := Regression(y, pred)
	assert.Equal(t, 4, r.Rows)
	assert.Equal(t, RMSE(y, pred), r.RMSE)
}

func TestClassificationReport(t *testing.T) {
	y := []float64{0, 0, 1, 1}
	r := Classification(y, []float64{0.1, 0.2, 0.8, 0.9}, 0.5)
	assert.Equal(t, 4, r.Rows)
	assert.Equal(t, 1.0, r.Accuracy)
	assert.Equal(t, 1.0, r.F1)
	assert.InDelta(t, 1, r.ROCAUC, 1e-12)
	assert.Less(t, r.LogLoss, 0.25)
}
