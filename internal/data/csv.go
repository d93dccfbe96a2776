package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/multierr"

	"tsboost/internal/features"
)

// CSV layout: timestamp,<custom columns...>,target with a header row.

func ReadCSV(r io.Reader) (Series, error) {
    cr := csv.NewReader(r)
    rows, err := cr.ReadAll()
    if err != nil { return Series{}, fmt.Errorf("reading csv: %w", err) }
    if len(rows) < 2 { return Series{}, fmt.Errorf("csv has no data rows") }
    hdr := rows[0]
    if len(hdr) < 2 { return Series{}, fmt.Errorf("csv header needs timestamp and target columns, got %d", len(hdr)) }

    var s Series
    nCustom := len(hdr) - 2
    if nCustom > 0 {
        s.CustomNames = append([]string(nil), hdr[1:len(hdr)-1]...)
        s.Custom = make([][]float64, 0, len(rows)-1)
    }
    var errs error
    for i := 1; i < len(rows); i++ {
        row := rows[i]
        ts, err := features.ParseTimestamp(row[0])
        if err != nil {
            errs = multierr.Append(errs, fmt.Errorf("line %d: %w", i+1, err))
            continue
        }
        target, err := strconv.ParseFloat(row[len(row)-1], 64)
        if err != nil {
            errs = multierr.Append(errs, fmt.Errorf("line %d: target: %w", i+1, err))
            continue
        }
        custom := make([]float64, nCustom)
        bad := false
        for j := range custom {
            v, err := strconv.ParseFloat(row[j+1], 64)
            if err != nil {
                errs = multierr.Append(errs, fmt.Errorf("line %d: column %s: %w", i+1, hdr[j+1], err))
                bad = true
                break
            }
            custom[j] = v
        }
        if bad { continue }
        s.Timestamps = append(s.Timestamps, ts)
        s.Targets = append(s.Targets, target)
        if nCustom > 0 { s.Custom = append(s.Custom, custom) }
    }
    if errs != nil { return Series{}, errs }
    return s, nil
}

func ReadCSVFile(path string) (Series, error) {
    f, err := os.Open(path)
    if err != nil { return Series{}, err }
    defer f.Close()
    return ReadCSV(f)
}

func WriteCSV(w io.Writer, s Series) error {
    cw := csv.NewWriter(w)
    header := append([]string{"timestamp"}, s.CustomNames...)
    header = append(header, "target")
    if err := cw.Write(header); err != nil { return err }
    for i := range s.Timestamps {
        rec := []string{s.Timestamps[i].UTC().Format(time.RFC3339)}
        if s.Custom != nil {
            for _, v := range s.Custom[i] { rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64)) }
        }
        rec = append(rec, strconv.FormatFloat(s.Targets[i], 'g', -1, 64))
        if err := cw.Write(rec); err != nil { return err }
    }
    cw.Flush()
    return cw.Error()
}

func WriteCSVFile(path string, s Series) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    return WriteCSV(f, s)
}
