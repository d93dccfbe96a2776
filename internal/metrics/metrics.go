// Package metrics scores holdout predictions. Labels are 0/1 floats for classification.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

const clip = 1e-15

// Binarize turns probabilities into 0/1 labels: 1 when p >= thr.
func Binarize(ps []float64, thr float64) []float64 {
    out := make([]float64, len(ps))
    for i := range ps { if ps[i] >= thr { out[i] = 1 } }
    return out
}

func Accuracy(y, pred []float64) float64 {
    if len(y) == 0 { return 0 }
    c := 0
    for i := range y { if y[i] == pred[i] { c++ } }
    return float64(c) / float64(len(y))
}

func Confusion(y, ps []float64, thr float64) (tp, fp, tn, fn int) {
    for i := range y {
        pos := ps[i] >= thr
        switch {
        case pos && y[i] == 1: tp++
        case pos: fp++
        case y[i] == 1: fn++
        default: tn++
        }
    }
    return
}

func PRF1(y, ps []float64, thr float64) (precision, recall, f1 float64) {
    tp, fp, _, fn := Confusion(y, ps, thr)
    if tp+fp > 0 { precision = float64(tp) / float64(tp+fp) }
    if tp+fn > 0 { recall = float64(tp) / float64(tp+fn) }
    if precision+recall > 0 { f1 = 2 * precision * recall / (precision + recall) }
    return
}

type scored struct {
    s float64
    y float64
}

func sortedByScore(y, ps []float64, desc bool) []scored {
    pairs := make([]scored, len(y))
    for i := range y { pairs[i] = scored{ps[i], y[i]} }
    sort.SliceStable(pairs, func(i, j int) bool {
        if desc { return pairs[i].s > pairs[j].s }
        return pairs[i].s < pairs[j].s
    })
    return pairs
}

// ROCAUC is the area under the ROC curve, 0 when y holds a single class.
func ROCAUC(y, ps []float64) float64 {
    pairs := sortedByScore(y, ps, false)
    scores := make([]float64, len(pairs))
    classes := make([]bool, len(pairs))
    var pos int
    for i, p := range pairs {
        scores[i] = p.s
        classes[i] = p.y == 1
        if classes[i] { pos++ }
    }
    if pos == 0 || pos == len(pairs) { return 0 }
    tpr, fpr, _ := stat.ROC(nil, scores, classes, nil)
    return integrate.Trapezoidal(fpr, tpr)
}

// PRAUC is the step-wise area under the precision/recall curve.
func PRAUC(y, ps []float64) float64 {
    pairs := sortedByScore(y, ps, true)
    var tp, fp, fn int
    for _, p := range pairs { if p.y == 1 { fn++ } }
    var prevRec, auc float64
    for _, p := range pairs {
        if p.y == 1 { tp++; fn-- } else { fp++ }
        var prec, rec float64
        if tp+fp > 0 { prec = float64(tp) / float64(tp+fp) }
        if tp+fn > 0 { rec = float64(tp) / float64(tp+fn) }
        auc += (rec - prevRec) * prec
        prevRec = rec
    }
    return auc
}

// BestThresholdF1 scans thresholds 0, 0.005, ..., 1 and returns the first one with the
// highest F1.
func BestThresholdF1(y, ps []float64) (thr, best float64) {
    if len(ps) == 0 { return 0.5, 0 }
    steps := 200
    best = -1
    thr = 0.5
    for i := 0; i <= steps; i++ {
        t := float64(i) / float64(steps)
        _, _, f1 := PRF1(y, ps, t)
        if f1 > best { best = f1; thr = t }
    }
    return
}

// LogLoss is the mean binary cross-entropy with probabilities clipped away from 0 and 1.
func LogLoss(y, ps []float64) float64 {
    if len(y) == 0 { return 0 }
    var sum float64
    for i := range y {
        p := math.Min(math.Max(ps[i], clip), 1-clip)
        sum -= y[i]*math.Log(p) + (1-y[i])*math.Log(1-p)
    }
    return sum / float64(len(y))
}

func RMSE(y, pred []float64) float64 {
    if len(y) == 0 { return 0 }
    return floats.Distance(y, pred, 2) / math.Sqrt(float64(len(y)))
}

func MAE(y, pred []float64) float64 {
    if len(y) == 0 { return 0 }
    return floats.Distance(y, pred, 1) / float64(len(y))
}

// Report is the set of holdout metrics the trainer logs and stores next to a model.
type Report struct {
    Rows      int     `json:"rows"`
    Threshold float64 `json:"threshold,omitempty"`
    Accuracy  float64 `json:"accuracy,omitempty"`
    Precision float64 `json:"precision,omitempty"`
    Recall    float64 `json:"recall,omitempty"`
    F1        float64 `json:"f1,omitempty"`
    ROCAUC    float64 `json:"roc_auc,omitempty"`
    PRAUC     float64 `json:"pr_auc,omitempty"`
    LogLoss   float64 `json:"log_loss,omitempty"`
    RMSE      float64 `json:"rmse,omitempty"`
    MAE       float64 `json:"mae,omitempty"`
}

// Classification scores probabilities ps against labels y at threshold thr.
func Classification(y, ps []float64, thr float64) Report {
    prec, rec, f1 := PRF1(y, ps, thr)
    return Report{
        Rows:      len(y),
        Threshold: thr,
        Accuracy:  Accuracy(y, Binarize(ps, thr)),
        Precision: prec,
        Recall:    rec,
        F1:        f1,
        ROCAUC:    ROCAUC(y, ps),
        PRAUC:     PRAUC(y, ps),
        LogLoss:   LogLoss(y, ps),
    }
}

func Regression(y, pred []float64) Report {
    return Report{Rows: len(y), RMSE: RMSE(y, pred), MAE: MAE(y, pred)}
}
