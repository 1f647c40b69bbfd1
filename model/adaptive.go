package model

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/trlda/matrix"
)

const initialHorizon = 1000.

// adaptiveRate derives the learning rate from moving averages of the
// parameter updates and of their squared norms, following Ranganath et
// al., An Adaptive Learning Rate for Stochastic Variational Inference.
type adaptiveRate struct {
	tau      float64    // averaging horizon
	rho      float64    // current learning rate
	sqNorm   float64    // running average of squared update norms
	gradient *mat.Dense // running average of updates
}

func newAdaptiveRate(numTopics, numWords int) *adaptiveRate {
	return &adaptiveRate{
		tau:      initialHorizon,
		rho:      1. / initialHorizon,
		sqNorm:   1.,
		gradient: mat.NewDense(numTopics, numWords, nil),
	}
}

// update folds in the update lambdaHat - lambda of one batch. Both
// averages move before the new rate and horizon are derived from them.
func (a *adaptiveRate) update(delta *mat.Dense) {
	w := 1. / a.tau

	g := matrix.RawData(a.gradient)
	floats.Scale(1.-w, g)
	floats.AddScaled(g, w, matrix.RawData(delta))
	a.sqNorm = (1.-w)*a.sqNorm + w*matrix.SquaredNorm(delta)

	a.rho = floats.Dot(g, g) / a.sqNorm
	a.tau = a.tau*(1.-a.rho) + 1.
}

func (a *adaptiveRate) clone() *adaptiveRate {
	return &adaptiveRate{
		tau:      a.tau,
		rho:      a.rho,
		sqNorm:   a.sqNorm,
		gradient: mat.DenseCopyOf(a.gradient),
	}
}
