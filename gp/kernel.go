package gp

import (
	"math"
)

// Kernel is a positive-definite covariance function over vector inputs.
// Kernels are stateless; hyperparameter values are passed in at evaluation
// time from the owning process's hyperparameter map.
type Kernel interface {
	// Name identifies the kernel for logging.
	Name() string

	// Eval evaluates the covariance between two inputs.
	Eval(hyper map[string]float64, x, y []float64) float64

	// Hyperparameters returns the names of the hyperparameters the kernel
	// reads from the map, in a fixed order.
	Hyperparameters() []string
}

// 2点間のユークリッド距離
func euclidean(x, y []float64) float64 {
	var s float64
	for i := range x {
		d := x[i] - y[i]
		s += d * d
	}
	return math.Sqrt(s)
}

// RBF is the squared-exponential (Gaussian) kernel
//
//	k(x, y) = amplitude * exp(-r^2 / (2 * lengthscale^2))
//
// with hyperparameters "amplitude" and "lengthscale".
type RBF struct{}

func (RBF) Name() string { return "rbf" }

func (RBF) Hyperparameters() []string { return []string{"amplitude", "lengthscale"} }

func (RBF) Eval(hyper map[string]float64, x, y []float64) float64 {
	a := hyper["amplitude"]
	l := hyper["lengthscale"]
	r := euclidean(x, y)
	return a * math.Exp(-r*r/(2*l*l))
}

// Matern52 is the Matérn kernel with smoothness 5/2
//
//	k(x, y) = amplitude * (1 + √5 r/l + 5 r²/(3 l²)) * exp(-√5 r/l)
//
// with hyperparameters "amplitude" and "lengthscale". Compared to RBF it
// yields rougher sample paths and is the usual default for physical data.
type Matern52 struct{}

func (Matern52) Name() string { return "matern52" }

func (Matern52) Hyperparameters() []string { return []string{"amplitude", "lengthscale"} }

func (Matern52) Eval(hyper map[string]float64, x, y []float64) float64 {
	a := hyper["amplitude"]
	l := hyper["lengthscale"]
	r := euclidean(x, y)
	s := math.Sqrt(5) * r / l
	return a * (1 + s + s*s/3) * math.Exp(-s)
}
