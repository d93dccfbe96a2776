package main

import (
    "encoding/csv"
    "fmt"
    "math"
    "os"
    "path/filepath"
    "strconv"

    "gonum.org/v1/plot"
    "gonum.org/v1/plot/plotter"
    "gonum.org/v1/plot/plotutil"
    "gonum.org/v1/plot/vg"

    "tsboost/internal/data"
    "tsboost/internal/metrics"
    "tsboost/internal/models"
)

type curvePoint struct {
    Rounds    int
    TrainLoss float64
    TestLoss  float64
}

// curveRounds picks up to points strictly increasing round counts in [1,total], always
// ending at total.
func curveRounds(total, points int, useLog bool) []int {
    if total < 1 { return nil }
    if points < 2 { points = 2 }
    out := make([]int, 0, points)
    last := 0
    for i := 0; i < points; i++ {
        frac := float64(i) / float64(points-1)
        var r int
        if useLog {
            r = int(math.Round(math.Pow(float64(total), frac)))
        } else {
            r = int(math.Round(1 + frac*float64(total-1)))
        }
        if r <= last { r = last + 1 }
        if r > total { break }
        out = append(out, r)
        last = r
    }
    if last != total { out = append(out, total) }
    return out
}

func loss(task models.Task, y, pred []float64) float64 {
    if task == models.Regression { return metrics.RMSE(y, pred) }
    return metrics.LogLoss(y, pred)
}

// lossCurve scores the first k trees of gb for every k in rounds.
func lossCurve(gb *models.GradientBoosting, train, test data.Series, rounds []int) ([]curvePoint, error) {
    Xtrain, Xtest := train.Matrix(), test.Matrix()
    pts := make([]curvePoint, 0, len(rounds))
    for _, k := range rounds {
        staged := gb.Truncate(k)
        pTrain, err := staged.PredictBatch(Xtrain)
        if err != nil { return nil, fmt.Errorf("rounds=%d: %w", k, err) }
        pt := curvePoint{Rounds: k, TrainLoss: loss(gb.Params.Task, train.Targets, pTrain)}
        if test.Len() > 0 {
            pTest, err := staged.PredictBatch(Xtest)
            if err != nil { return nil, fmt.Errorf("rounds=%d: %w", k, err) }
            pt.TestLoss = loss(gb.Params.Task, test.Targets, pTest)
        }
        pts = append(pts, pt)
    }
    return pts, nil
}

func writeCurveCSV(path string, pts []curvePoint) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    if err := w.Write([]string{"rounds", "train_loss", "test_loss"}); err != nil { return err }
    for _, p := range pts {
        rec := []string{strconv.Itoa(p.Rounds), fmt.Sprintf("%.6f", p.TrainLoss), fmt.Sprintf("%.6f", p.TestLoss)}
        if err := w.Write(rec); err != nil { return err }
    }
    w.Flush()
    if err := w.Error(); err != nil { return err }
    return f.Close()
}

func plotCurvePNG(path string, pts []curvePoint, task models.Task) error {
    p := plot.New()
    p.Title.Text = "Loss by boosting round"
    p.X.Label.Text = "Rounds"
    p.Y.Label.Text = "Log loss"
    if task == models.Regression { p.Y.Label.Text = "RMSE" }
    p.Y.Min = 0

    trPts := make(plotter.XYs, len(pts))
    tePts := make(plotter.XYs, len(pts))
    for i, pt := range pts {
        trPts[i].X, trPts[i].Y = float64(pt.Rounds), pt.TrainLoss
        tePts[i].X, tePts[i].Y = float64(pt.Rounds), pt.TestLoss
    }
    if err := plotutil.AddLinePoints(p, "Train", trPts, "Holdout", tePts); err != nil { return err }
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
