package data

import (
	"time"
)

// GenerateDayNight returns an hourly series starting at start (truncated to the hour,
// UTC) labelled 1 for hours in [18,24) and [0,6), 0 otherwise.
func GenerateDayNight(start time.Time, hours int) Series {
    start = start.UTC().Truncate(time.Hour)
    s := Series{
        Timestamps: make([]time.Time, 0, hours),
        Targets:    make([]float64, 0, hours),
    }
    for i := 0; i < hours; i++ {
        ts := start.Add(time.Duration(i) * time.Hour)
        label := 0.0
        if h := ts.Hour(); h >= 18 || h < 6 { label = 1 }
        s.Timestamps = append(s.Timestamps, ts)
        s.Targets = append(s.Targets, label)
    }
    return s
}

// GenerateDayNightCSV writes GenerateDayNight(start, hours) to outPath.
func GenerateDayNightCSV(start time.Time, hours int, outPath string) error {
    return WriteCSVFile(outPath, GenerateDayNight(start, hours))
}
