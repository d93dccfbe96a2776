package main

import (
    "encoding/csv"
    "fmt"
    "io"
    "os"
    "path/filepath"
    "sort"
    "strconv"

    "gonum.org/v1/gonum/floats"
    "gonum.org/v1/plot"
    "gonum.org/v1/plot/plotter"
    "gonum.org/v1/plot/vg"

    "tsboost/internal/models"
)

type row struct {
    models.FeatureImportance
    Share float64 // fraction of total gain
}

// rank orders features by gain or split count and keeps the first top (all when top <= 0).
func rank(gb *models.GradientBoosting, by string, top int) ([]row, error) {
    ranked := gb.RankedImportance()
    switch by {
    case "gain":
    case "count":
        sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
    default:
        return nil, fmt.Errorf("unknown ranking key %q", by)
    }
    gain, _ := gb.Importance()
    total := floats.Sum(gain)
    if top > 0 && top < len(ranked) { ranked = ranked[:top] }
    out := make([]row, len(ranked))
    for i, fi := range ranked {
        out[i] = row{FeatureImportance: fi}
        if total > 0 { out[i].Share = fi.Gain / total }
    }
    return out, nil
}

func printTable(w io.Writer, rows []row) {
    fmt.Fprintf(w, "%-4s %-20s %14s %8s %8s\n", "rank", "feature", "gain", "share", "splits")
    for i, r := range rows {
        fmt.Fprintf(w, "%-4d %-20s %14.4f %7.2f%% %8d\n", i+1, r.Name, r.Gain, 100*r.Share, r.Count)
    }
}

func writeCSV(path string, rows []row) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    if err := w.Write([]string{"rank", "index", "feature", "gain", "share", "splits"}); err != nil { return err }
    for i, r := range rows {
        rec := []string{strconv.Itoa(i + 1), strconv.Itoa(r.Index), r.Name,
            fmt.Sprintf("%.6f", r.Gain), fmt.Sprintf("%.6f", r.Share), strconv.Itoa(r.Count)}
        if err := w.Write(rec); err != nil { return err }
    }
    w.Flush()
    if err := w.Error(); err != nil { return err }
    return f.Close()
}

// plotImportance draws a horizontal bar chart with the top-ranked feature at the top.
func plotImportance(path string, rows []row, by string) error {
    if len(rows) == 0 { return fmt.Errorf("no features to plot") }
    vals := make(plotter.Values, len(rows))
    names := make([]string, len(rows))
    for i, r := range rows {
        k := len(rows) - 1 - i
        names[k] = r.Name
        vals[k] = r.Gain
        if by == "count" { vals[k] = float64(r.Count) }
    }

    p := plot.New()
    p.Title.Text = "Feature importance"
    p.X.Label.Text = "Total gain"
    if by == "count" { p.X.Label.Text = "Splits" }
    bars, err := plotter.NewBarChart(vals, vg.Points(14))
    if err != nil { return err }
    bars.Horizontal = true
    bars.LineStyle.Width = vg.Length(0)
    p.Add(bars)
    p.NominalY(names...)

    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    height := vg.Length(len(rows))*0.3*vg.Inch + 1.5*vg.Inch
    return p.Save(8*vg.Inch, height, path)
}
