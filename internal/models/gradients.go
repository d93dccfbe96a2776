package models

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// lower bound for hessians and for the clamped base probability
const epsilon = 1e-6

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1.0 + e)
}

func logit(p float64) float64 { return math.Log(p / (1.0 - p)) }

// baseScore is the raw score every row starts from.
func baseScore(task Task, y []float64) float64 {
	mean := stat.Mean(y, nil)
	if task == Regression {
		return mean
	}
	return logit(math.Min(math.Max(mean, epsilon), 1-epsilon))
}

// computeGradients fills grad and hess with the first and second derivatives of the loss
// with respect to raw.
func computeGradients(task Task, raw, y, grad, hess []float64) {
	switch task {
	case Regression:
		for i := range raw {
			grad[i] = raw[i] - y[i]
			hess[i] = 1
		}
	default:
		for i := range raw {
			p := sigmoid(raw[i])
			grad[i] = p - y[i]
			hess[i] = math.Max(epsilon, p*(1-p))
		}
	}
}

// trainingLoss is the mean log loss (classification) or mean squared error (regression).
func trainingLoss(task Task, raw, y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	var sum float64
	for i := range y {
		if task == Regression {
			d := raw[i] - y[i]
			sum += d * d
			continue
		}
		p := math.Min(math.Max(sigmoid(raw[i]), epsilon), 1-epsilon)
		sum -= y[i]*math.Log(p) + (1-y[i])*math.Log(1-p)
	}
	return sum / float64(len(y))
}
