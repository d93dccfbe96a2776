package main

import (
    "flag"
    "fmt"
    "os"
    "path/filepath"
    "time"

    "github.com/goccy/go-json"
    "go.uber.org/zap"

    "tsboost/internal/data"
    "tsboost/internal/metrics"
    "tsboost/internal/models"
    "tsboost/pkg/utils"
)

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    regen := flag.Bool("regen", true, "Regenerate the synthetic day/night series before training")
    hours := flag.Int("hours", 60*24, "Hours of synthetic data to generate")
    start := flag.String("start", "2024-01-01", "First timestamp of the synthetic series")
    dataPath := flag.String("data", "data/series.csv", "Training CSV (timestamp,<custom...>,target)")
    config := flag.String("config", "", "Hyperparameter file (.yaml, .toml or .json)")
    lr := flag.Float64("lr", 0.3, "Learning rate")
    maxDepth := flag.Int("max_depth", 4, "Maximum tree depth")
    minChild := flag.Float64("min_child_weight", 1, "Minimum hessian sum per child")
    rounds := flag.Int("rounds", 100, "Boosting rounds")
    task := flag.String("task", "classification", "classification|regression")
    lambda := flag.Float64("lambda", 1, "L2 regularization on leaf weights")
    gamma := flag.Float64("gamma", 0, "Minimum gain to keep a split")
    subsample := flag.Float64("subsample", 1, "Row sampling rate per round")
    colsample := flag.Float64("colsample", 1, "Column sampling rate per tree")
    seed := flag.Uint64("seed", models.DefaultSeed, "Sampling seed")
    workers := flag.Int("workers", 1, "Goroutines scanning features per split search")
    testFrac := flag.Float64("test_frac", 0.2, "Holdout fraction")
    thrAuto := flag.Bool("threshold_auto", true, "Pick the F1-maximizing threshold on the training rows")
    threshold := flag.Float64("threshold", 0.5, "Classification threshold when -threshold_auto=false")
    out := flag.String("out", "models/model.json", "Model output (.json or .gob)")
    reportPath := flag.String("report", "models/report.json", "Holdout metrics output")
    curve := flag.Bool("curve", true, "Write the per-round loss curve (PNG and CSV)")
    curvePoints := flag.Int("curve_points", 20, "Points on the loss curve")
    curveLog := flag.Bool("curve_log", false, "Space curve points logarithmically")
    curveCsv := flag.String("curve_out_csv", "data/loss_curve.csv", "Loss curve CSV")
    curveImg := flag.String("curve_out_img", "data/loss_curve.png", "Loss curve PNG")
    flag.Parse()

    params := models.DefaultParams()
    if *config != "" {
        p, err := models.LoadParamsFile(*config)
        if err != nil { logger.Fatal("failed to load params", zap.String("path", *config), zap.Error(err)) }
        params = p
    }
    // explicit flags win over the params file
    flag.Visit(func(f *flag.Flag) {
        switch f.Name {
        case "lr": params.LearningRate = *lr
        case "max_depth": params.MaxDepth = *maxDepth
        case "min_child_weight": params.MinChildWeight = *minChild
        case "rounds": params.NumRounds = *rounds
        case "task": params.Task = models.Task(*task)
        case "lambda": params.Lambda = *lambda
        case "gamma": params.Gamma = *gamma
        case "subsample": params.Subsample = *subsample
        case "colsample": params.ColsampleByTree = *colsample
        case "seed": params.Seed = *seed
        case "workers": params.Workers = *workers
        }
    })
    if t, err := models.ParseTask(string(params.Task)); err == nil { params.Task = t }
    if err := params.Validate(); err != nil { logger.Fatal("invalid params", zap.Error(err)) }

    if *regen {
        t0, err := time.Parse("2006-01-02", *start)
        if err != nil { logger.Fatal("invalid -start", zap.Error(err)) }
        logger.Info("generating synthetic series", zap.Int("hours", *hours), zap.String("out", *dataPath))
        if err := data.GenerateDayNightCSV(t0, *hours, *dataPath); err != nil {
            logger.Fatal("failed to generate series", zap.Error(err))
        }
    }

    series, err := data.ReadCSVFile(*dataPath)
    if err != nil { logger.Fatal("failed to read series", zap.String("path", *dataPath), zap.Error(err)) }
    train, test := data.Holdout(series, *testFrac, params.Seed)
    logger.Info("holdout split", zap.Int("train", train.Len()), zap.Int("test", test.Len()),
        zap.Strings("custom_features", series.CustomNames))

    gb := models.NewGradientBoosting()
    gb.Params = params
    gb.SetLogger(logger)
    if err := gb.FitWithTimestamps(train); err != nil { logger.Fatal("training failed", zap.Error(err)) }

    report, err := evaluate(gb, train, test, *thrAuto, *threshold)
    if err != nil { logger.Fatal("evaluation failed", zap.Error(err)) }
    logger.Info("holdout metrics", zap.String("model", gb.Name()), zap.Any("report", report))

    if err := gb.SaveFile(*out); err != nil { logger.Fatal("failed to save model", zap.Error(err)) }
    logger.Info("model saved", zap.String("path", *out), zap.Int("trees", len(gb.Trees())))
    if err := writeReport(*reportPath, report); err != nil {
        logger.Warn("failed to save report", zap.Error(err))
    }

    for i, fi := range gb.RankedImportance() {
        if i == 5 { break }
        logger.Info("feature importance", zap.Int("rank", i+1), zap.String("feature", fi.Name),
            zap.Float64("gain", fi.Gain), zap.Int("splits", fi.Count))
    }
    fmt.Println("Model:", gb.Name(), params)

    if *curve {
        pts, err := lossCurve(gb, train, test, curveRounds(len(gb.Trees()), *curvePoints, *curveLog))
        if err != nil { logger.Fatal("failed to compute loss curve", zap.Error(err)) }
        if err := writeCurveCSV(*curveCsv, pts); err != nil {
            logger.Warn("failed to save loss curve CSV", zap.Error(err))
        }
        if err := plotCurvePNG(*curveImg, pts, params.Task); err != nil {
            logger.Warn("failed to save loss curve PNG", zap.Error(err))
        } else {
            logger.Info("loss curve written", zap.String("png", *curveImg), zap.String("csv", *curveCsv))
        }
    }
}

// evaluate scores gb on the holdout rows. The classification threshold is either fixed
// or the F1-maximizing one on the training rows.
func evaluate(gb *models.GradientBoosting, train, test data.Series, auto bool, thr float64) (metrics.Report, error) {
    pred, err := gb.PredictBatch(test.Matrix())
    if err != nil { return metrics.Report{}, err }
    if gb.Params.Task == models.Regression { return metrics.Regression(test.Targets, pred), nil }
    if auto {
        trainPred, err := gb.PredictBatch(train.Matrix())
        if err != nil { return metrics.Report{}, err }
        thr, _ = metrics.BestThresholdF1(train.Targets, trainPred)
    }
    return metrics.Classification(test.Targets, pred, thr), nil
}

func writeReport(path string, r metrics.Report) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    raw, err := json.MarshalIndent(r, "", "  ")
    if err != nil { return err }
    return os.WriteFile(path, raw, 0o644)
}
