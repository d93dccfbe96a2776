package main

import (
    "flag"
    "fmt"
    "os"

    "go.uber.org/zap"

    "tsboost/internal/models"
    "tsboost/pkg/utils"
)

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    modelPath := flag.String("model", "models/model.json", "Saved model (.json or .gob)")
    top := flag.Int("top", 0, "Features to report (0 = all)")
    by := flag.String("by", "gain", "Ranking key: gain|count")
    outCsv := flag.String("out_csv", "data/importance.csv", "Importance CSV")
    outImg := flag.String("out_img", "data/importance.png", "Importance bar chart PNG")
    flag.Parse()

    gb, err := models.LoadFile(*modelPath, logger)
    if err != nil { logger.Fatal("failed to load model", zap.String("path", *modelPath), zap.Error(err)) }

    rows, err := rank(gb, *by, *top)
    if err != nil { logger.Fatal("invalid ranking", zap.Error(err)) }

    fmt.Printf("%s | %d trees | %d features | base score %.4f\n", gb.Name(), len(gb.Trees()), gb.NumFeatures(), gb.BaseScore())
    fmt.Println(gb.Params)
    printTable(os.Stdout, rows)

    if err := writeCSV(*outCsv, rows); err != nil {
        logger.Warn("failed to save importance CSV", zap.Error(err))
    } else {
        fmt.Println("Importance CSV:", *outCsv)
    }
    if err := plotImportance(*outImg, rows, *by); err != nil {
        logger.Warn("failed to save importance chart", zap.Error(err))
    } else {
        fmt.Println("Importance chart:", *outImg)
    }
}
