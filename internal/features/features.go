package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Count is the number of timestamp-derived columns at the front of every row.
const Count = 13

var ErrInvalidTimestamp = errors.New("invalid timestamp")

var names = []string{
	"hour", "day_of_week", "day_of_month", "month", "quarter",
	"is_night", "is_weekend",
	"hour_sin", "hour_cos", "day_of_week_sin", "day_of_week_cos", "month_sin", "month_cos",
}

// Timestamp holds the calendar fields and cyclical encodings of one instant, in UTC.
type Timestamp struct {
	Hour       int  `json:"hour"`
	DayOfWeek  int  `json:"day_of_week"`
	DayOfMonth int  `json:"day_of_month"`
	Month      int  `json:"month"`
	Quarter    int  `json:"quarter"`
	IsNight    bool `json:"is_night"`
	IsWeekend  bool `json:"is_weekend"`

	HourSin      float64 `json:"hour_sin"`
	HourCos      float64 `json:"hour_cos"`
	DayOfWeekSin float64 `json:"day_of_week_sin"`
	DayOfWeekCos float64 `json:"day_of_week_cos"`
	MonthSin     float64 `json:"month_sin"`
	MonthCos     float64 `json:"month_cos"`
}

// Names returns the column names in vector order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func Extract(t time.Time) Timestamp {
	t = t.UTC()
	hour := t.Hour()
	dow := int(t.Weekday())
	month := int(t.Month())
	ts := Timestamp{
		Hour:       hour,
		DayOfWeek:  dow,
		DayOfMonth: t.Day(),
		Month:      month,
		Quarter:    (month + 2) / 3,
		IsNight:    hour >= 18 || hour < 6,
		IsWeekend:  dow == 0 || dow == 6,
	}
	ts.HourSin, ts.HourCos = cyclical(hour, 24)
	ts.DayOfWeekSin, ts.DayOfWeekCos = cyclical(dow, 7)
	ts.MonthSin, ts.MonthCos = cyclical(month, 12)
	return ts
}

func FromEpochMillis(ms int64) Timestamp { return Extract(time.UnixMilli(ms)) }

func cyclical(v, period int) (float64, float64) {
	a := 2 * math.Pi * float64(v) / float64(period)
	return math.Sin(a), math.Cos(a)
}

// Vector returns the 13 features in their fixed order.
func (ts Timestamp) Vector() []float64 {
	return []float64{
		float64(ts.Hour),
		float64(ts.DayOfWeek),
		float64(ts.DayOfMonth),
		float64(ts.Month),
		float64(ts.Quarter),
		boolToFloat(ts.IsNight),
		boolToFloat(ts.IsWeekend),
		ts.HourSin, ts.HourCos,
		ts.DayOfWeekSin, ts.DayOfWeekCos,
		ts.MonthSin, ts.MonthCos,
	}
}

// Vectorize builds a model row: the timestamp features followed by custom in the
// caller's order. The same custom order must be used for training and inference.
func Vectorize(t time.Time, custom []float64) []float64 {
	vec := Extract(t).Vector()
	return append(vec, custom...)
}

func boolToFloat(b bool) float64 { if b { return 1.0 } ; return 0.0 }

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 string. Strings without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// Resolve converts a time.Time, epoch milliseconds or an ISO-8601 string to an instant.
func Resolve(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case *time.Time:
		if x == nil { break }
		return x.UTC(), nil
	case int64:
		return time.UnixMilli(x).UTC(), nil
	case int:
		return time.UnixMilli(int64(x)).UTC(), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) { break }
		return time.UnixMilli(int64(x)).UTC(), nil
	case json.Number:
		ms, err := x.Int64()
		if err != nil { break }
		return time.UnixMilli(ms).UTC(), nil
	case string:
		return ParseTimestamp(x)
	}
	return time.Time{}, fmt.Errorf("%w: unsupported value %v (%T)", ErrInvalidTimestamp, v, v)
}
