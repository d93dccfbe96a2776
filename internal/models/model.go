package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInput           = errors.New("invalid training input")
	ErrConfig          = errors.New("invalid configuration")
	ErrUntrained       = errors.New("model has no trees")
	ErrFeatureMismatch = errors.New("feature vector shorter than split feature index")
	ErrSnapshot        = errors.New("invalid model snapshot")
)

// Task selects the loss and the output link.
type Task string

const (
	Classification Task = "classification" // logistic loss, sigmoid link
	Regression     Task = "regression"     // squared error, identity link
)

func ParseTask(s string) (Task, error) {
    switch t := Task(strings.ToLower(strings.TrimSpace(s))); t {
    case Classification, Regression:
        return t, nil
    }
    return "", fmt.Errorf("%w: unknown task %q", ErrConfig, s)
}

// Model is what the trainer and the API need from a fitted booster.
type Model interface {
    Fit(X [][]float64, y []float64) error
    PredictBatch(X [][]float64) ([]float64, error)
    Name() string
}

var _ Model = (*GradientBoosting)(nil)
