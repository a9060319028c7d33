// Package scigp provides warped Gaussian process regression and global
// hyperparameter search for Go, designed for probabilistic modeling of
// constrained-range data (positive values, bounded ratios) in backend
// services.
//
// SciGP pairs a closed-form Gaussian process regressor with pushforward
// maps: observations are inverse-warped into a latent space, the process is
// trained there, and predictions flow back through the map. A generic
// Metropolis-Hastings sampler and a grid-search engine explore the energy
// landscape of any model exposing a scalar energy.
//
// # Features
//
// - Warped regression: compose any bijective map with any base process
// - Global search: Cartesian grids or prior-guided sampling over hyperparameters
// - Generic MCMC: Metropolis-Hastings over any type with an additive group
// - Robust Error Handling: structured errors with stack traces
// - CPU-parallel block-diagonal determinants for large training sets
//
// # Installation
//
// Install SciGP using go get:
//
//	go get github.com/YuminosukeSato/scigp
//
// # Quick Start
//
// Here's regression on positive-valued data through an exponential warp:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/scigp/gp"
//	    "github.com/YuminosukeSato/scigp/optimize"
//	    "github.com/YuminosukeSato/scigp/warp"
//	)
//
//	func main() {
//	    x := [][]float64{{0}, {1}, {2}, {3}}
//	    y := []float64{1.1, 2.9, 8.2, 19.7}
//
//	    base, err := gp.NewGPRegression(gp.RBF{}, x, y)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Train on the log scale, predict on the positive scale.
//	    model, err := warp.New(base, warp.Exp())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    search := optimize.NewGridSearch(model)
//	    best, energy, err := search.Optimize(context.Background(), model.Hyperparameters(), nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("best configuration:", best, "energy:", energy)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - gp: Gaussian process regression (RBF and Matérn kernels)
//   - warp: pushforward maps and the warped process wrapper
//   - optimize: grid search, prior-guided sampling, Metropolis-Hastings
//   - blockmat: partitioned vectors and block-diagonal matrices
//   - metrics: evaluation metrics (MSE, RMSE, MAE, R²)
//   - core/model: core interfaces and base types
//   - core/parallel: parallel processing utilities
//
// # License
//
// SciGP is released under the MIT License.
package scigp
