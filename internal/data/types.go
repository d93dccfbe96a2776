package data

import (
	"time"

	"tsboost/internal/features"
)

// Series is a timestamped training set. Custom and CustomNames are optional; when
// present every row of Custom has the same width and order as CustomNames.
type Series struct {
    Timestamps  []time.Time `json:"timestamps"`
    Custom      [][]float64 `json:"custom,omitempty"`
    CustomNames []string    `json:"custom_names,omitempty"`
    Targets     []float64   `json:"targets"`
}

func (s Series) Len() int { return len(s.Timestamps) }

// Subset returns the rows referenced by idx, in that order.
func (s Series) Subset(idx []int) Series {
    out := Series{
        Timestamps:  make([]time.Time, len(idx)),
        Targets:     make([]float64, len(idx)),
        CustomNames: s.CustomNames,
    }
    if s.Custom != nil { out.Custom = make([][]float64, len(idx)) }
    for k, i := range idx {
        out.Timestamps[k] = s.Timestamps[i]
        out.Targets[k] = s.Targets[i]
        if s.Custom != nil { out.Custom[k] = s.Custom[i] }
    }
    return out
}

// Matrix builds one model row per timestamp: the timestamp features followed by that
// row's custom features.
func (s Series) Matrix() [][]float64 {
    X := make([][]float64, len(s.Timestamps))
    for i, ts := range s.Timestamps {
        var custom []float64
        if i < len(s.Custom) { custom = s.Custom[i] }
        X[i] = features.Vectorize(ts, custom)
    }
    return X
}
