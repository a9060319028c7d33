// Package model provides the contracts shared by all stochastic processes in
// SciGP: the Process interface implemented by Gaussian process regression and
// by warped processes, and the GloballyOptimizable interface consumed by the
// hyperparameter-search engine.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// VectorTransform maps a latent-space vector into observation space.
// A nil transform on a Distribution means the latent space is the
// observation space.
type VectorTransform interface {
	// Apply transforms every entry of the vector independently.
	Apply(v *mat.VecDense) *mat.VecDense

	// Name identifies the transform for logging and error reporting.
	Name() string
}

// Distribution is a multivariate normal predictive distribution over a set
// of test points, expressed in the latent space of the process that produced
// it. When Transform is non-nil, callers must push samples or point
// estimates through it to obtain observation-space quantities; the
// distribution object itself is never materialized in transformed form.
type Distribution struct {
	Mean      *mat.VecDense
	Cov       *mat.SymDense
	Transform VectorTransform
}

// ErrorBar is a per-test-point interval estimate: lower and upper bounds at
// some number of standard deviations around the mean.
type ErrorBar struct {
	X     []float64
	Lower float64
	Mean  float64
	Upper float64
}

// GloballyOptimizable is anything whose configuration space can be explored
// by a global optimizer: it exposes a scalar energy (negative
// log-evidence-like) over named hyperparameters. Lower energy is better.
type GloballyOptimizable interface {
	// Energy evaluates the model's objective for the given hyperparameter
	// configuration. The options map carries evaluation flags whose
	// interpretation is up to the implementation.
	Energy(hyper map[string]float64, options map[string]string) (float64, error)

	// Hyperparameters returns the current hyperparameter state. The returned
	// map is live shared state, not a copy; optimizers mutate it through
	// SetHyperparameters immediately before each energy evaluation.
	Hyperparameters() map[string]float64

	// SetHyperparameters applies a configuration to the model.
	SetHyperparameters(hyper map[string]float64) error
}

// Process is a regression process over vector inputs: Gaussian process
// regression, or any wrapper (such as a warped process) that re-derives the
// same operations in a transformed space. A Process is GloballyOptimizable,
// so it can be passed directly to the hyperparameter-search engine or
// composed as the base of another process.
type Process interface {
	GloballyOptimizable

	// Mean evaluates the process mean function at a single input.
	Mean(x []float64) float64

	// Covariance evaluates the covariance function between two inputs.
	Covariance(x, y []float64) float64

	// NPoints returns the number of training points.
	NPoints() int

	// Labels returns the training labels in training order.
	Labels() []float64

	// Predict returns a point estimate at a single input.
	Predict(x []float64) (float64, error)

	// PredictiveDistribution returns the posterior predictive distribution
	// over the test points, in the process's latent space.
	PredictiveDistribution(test [][]float64) (*Distribution, error)

	// PredictionWithErrorBars returns per-point (lower, mean, upper)
	// estimates at sigma standard deviations.
	PredictionWithErrorBars(test [][]float64, sigma float64) ([]ErrorBar, error)

	// CloneWithLabels returns a new process of the same kind, trained on the
	// same inputs with the labels replaced. Hyperparameters are copied from
	// the receiver. Used by warping, which refits in the latent space.
	CloneWithLabels(labels []float64) (Process, error)
}
