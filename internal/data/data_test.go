package data

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDayNight(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 30, 0, 0, time.UTC)
	s := GenerateDayNight(start, 48)

	require.Equal(t, 48, s.Len())
	assert.Equal(t, 0, s.Timestamps[0].Minute())
	for i, ts := range s.Timestamps {
		h := ts.Hour()
		want := 0.0
		if h >= 18 || h < 6 {
			want = 1
		}
		assert.Equal(t, want, s.Targets[i], "hour %d", h)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	s := Series{
		Timestamps: []time.Time{
			time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC),
			time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
		},
		Custom:      [][]float64{{1.5, 2}, {0.25, -3}},
		CustomNames: []string{"load", "temp"},
		Targets:     []float64{0, 1},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, s.CustomNames, got.CustomNames)
	assert.Equal(t, s.Custom, got.Custom)
	assert.Equal(t, s.Targets, got.Targets)
	for i := range s.Timestamps {
		assert.True(t, s.Timestamps[i].Equal(got.Timestamps[i]))
	}
}

func TestReadCSVWithoutCustomColumns(t *testing.T) {
	in := "timestamp,target\n2024-03-01T08:00:00Z,1\n2024-03-01 09:00,0\n"
	s, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Nil(t, s.Custom)
	assert.Equal(t, []float64{1, 0}, s.Targets)
}

func TestReadCSVCollectsRowErrors(t *testing.T) {
	in := "timestamp,x,target\nnope,1,0\n2024-03-01T08:00:00Z,abc,1\n2024-03-01T09:00:00Z,2,zz\n"
	_, err := ReadCSV(strings.NewReader(in))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "line 2")
	assert.Contains(t, msg, "line 3")
	assert.Contains(t, msg, "line 4")
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("timestamp,target\n"))
	assert.Error(t, err)
}

func TestHoldout(t *testing.T) {
	s := GenerateDayNight(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 100)

	train, test := Holdout(s, 0.2, 7)
	assert.Equal(t, 80, train.Len())
	assert.Equal(t, 20, test.Len())

	seen := map[time.Time]bool{}
	for _, ts := range append(train.Timestamps, test.Timestamps...) {
		assert.False(t, seen[ts])
		seen[ts] = true
	}
	assert.Len(t, seen, 100)

	train2, test2 := Holdout(s, 0.2, 7)
	assert.Equal(t, train.Timestamps, train2.Timestamps)
	assert.Equal(t, test.Timestamps, test2.Timestamps)
}

func TestHoldoutKeepsBothSides(t *testing.T) {
	s := GenerateDayNight(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 3)
	train, test := Holdout(s, 0.01, 1)
	assert.Equal(t, 2, train.Len())
	assert.Equal(t, 1, test.Len())
}

func TestSeriesMatrix(t *testing.T) {
	s := Series{
		Timestamps: []time.Time{time.Date(2024, time.March, 2, 22, 0, 0, 0, time.UTC)},
		Custom:     [][]float64{{4, 5}},
		Targets:    []float64{1},
	}
	X := s.Matrix()
	require.Len(t, X, 1)
	require.Len(t, X[0], 15)
	assert.Equal(t, 22.0, X[0][0])
	assert.Equal(t, 1.0, X[0][5])
	assert.Equal(t, []float64{4, 5}, X[0][13:])

	s.Custom = nil
	assert.Len(t, s.Matrix()[0], 13)
}
