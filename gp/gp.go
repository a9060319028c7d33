// Package gp implements Gaussian process regression with a closed-form
// posterior. It is the base process of the toolkit: a warped process wraps a
// GPRegression (or any other model.Process) to obtain non-Gaussian
// observation models, and the hyperparameter-search engine scores it through
// its Energy method (negative log marginal likelihood).
package gp

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigp/core/model"
	"github.com/YuminosukeSato/scigp/core/parallel"
	scigperr "github.com/YuminosukeSato/scigp/pkg/errors"
	"github.com/YuminosukeSato/scigp/pkg/log"
)

// デフォルトのハイパーパラメータ
const (
	defaultAmplitude   = 1.0
	defaultLengthscale = 1.0
	defaultNoise       = 0.1

	// 数値安定化のための対角ジッター
	jitter = 1e-10

	// 訓練点数がこれを超えたらカーネル行列の充填を行単位で並列化する
	parallelRowThreshold = 64
)

// GPRegression は閉形式の事後分布を持つガウス過程回帰モデル
type GPRegression struct {
	state  *model.StateManager
	kernel Kernel

	// Training data
	x [][]float64
	y []float64

	// Hyperparameters: kernel hyperparameters plus "noise". This map is the
	// live state shared with optimizers and warped wrappers.
	hyper map[string]float64

	// Cached factorization of K + noise*I for the current hyperparameters.
	chol  *mat.Cholesky
	alpha *mat.VecDense
}

var _ model.Process = (*GPRegression)(nil)

// NewGPRegression は新しいガウス過程回帰モデルを作成する
func NewGPRegression(kernel Kernel, x [][]float64, y []float64) (*GPRegression, error) {
	const op = "gp.NewGPRegression"
	if kernel == nil {
		return nil, scigperr.NewValueError(op, "kernel must not be nil")
	}
	if len(x) == 0 {
		return nil, scigperr.NewValueError(op, "training inputs must not be empty")
	}
	if len(x) != len(y) {
		return nil, scigperr.NewDimensionError(op, len(x), len(y), 0)
	}
	if err := scigperr.CheckNumericalStability(op, y); err != nil {
		return nil, err
	}

	hyper := map[string]float64{"noise": defaultNoise}
	for _, name := range kernel.Hyperparameters() {
		switch name {
		case "amplitude":
			hyper[name] = defaultAmplitude
		case "lengthscale":
			hyper[name] = defaultLengthscale
		default:
			hyper[name] = 1.0
		}
	}

	return &GPRegression{
		state:  model.NewStateManager(),
		kernel: kernel,
		x:      x,
		y:      y,
		hyper:  hyper,
	}, nil
}

// Fit factorizes the training covariance for the current hyperparameters.
// Fit must be called before prediction; Energy refits internally.
func (g *GPRegression) Fit() error {
	const op = "GPRegression.Fit"

	n := len(g.x)
	slog.Debug("fitting Gaussian process",
		log.ProcessNameKey, "GPRegression",
		log.OperationKey, "fit",
		log.PointsKey, n,
	)

	chol, alpha, err := g.factorize(op)
	if err != nil {
		return err
	}
	g.chol = chol
	g.alpha = alpha
	g.state.SetFitted()
	g.state.SetDimensions(len(g.x[0]), n)
	return nil
}

// factorize builds K + noise*I, Cholesky-factorizes it, and solves for
// alpha = K⁻¹ y.
func (g *GPRegression) factorize(op string) (*mat.Cholesky, *mat.VecDense, error) {
	n := len(g.x)
	noise := g.hyper["noise"]

	// Rows are independent, so the upper-triangular fill parallelizes by
	// row range for larger training sets.
	k := mat.NewSymDense(n, nil)
	parallel.ParallelizeWithThreshold(n, parallelRowThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := i; j < n; j++ {
				v := g.kernel.Eval(g.hyper, g.x[i], g.x[j])
				if i == j {
					v += noise + jitter
				}
				k.SetSym(i, j, v)
			}
		}
	})

	var chol mat.Cholesky
	if ok := chol.Factorize(k); !ok {
		return nil, nil, scigperr.NewValueError(op, "covariance matrix is not positive definite; check kernel hyperparameters and noise")
	}

	alpha := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(alpha, mat.NewVecDense(n, append([]float64(nil), g.y...))); err != nil {
		return nil, nil, scigperr.Wrap(err, "scigp: "+op+": solving K alpha = y")
	}
	return &chol, alpha, nil
}

// Mean は事後平均関数を評価する。未学習の場合は事前平均（ゼロ）を返す。
func (g *GPRegression) Mean(x []float64) float64 {
	if !g.state.IsFitted() {
		return 0
	}
	var m float64
	for i := range g.x {
		m += g.kernel.Eval(g.hyper, x, g.x[i]) * g.alpha.AtVec(i)
	}
	return m
}

// Covariance は現在のハイパーパラメータでカーネルを評価する
func (g *GPRegression) Covariance(x, y []float64) float64 {
	return g.kernel.Eval(g.hyper, x, y)
}

// NPoints returns the number of training points.
func (g *GPRegression) NPoints() int {
	return len(g.x)
}

// Labels returns the training labels in training order. The slice is shared,
// not copied.
func (g *GPRegression) Labels() []float64 {
	return g.y
}

// Hyperparameters returns the live hyperparameter map.
func (g *GPRegression) Hyperparameters() map[string]float64 {
	return g.hyper
}

// SetHyperparameters applies the given values and invalidates the cached
// factorization. Keys not present in the model are rejected.
func (g *GPRegression) SetHyperparameters(hyper map[string]float64) error {
	const op = "GPRegression.SetHyperparameters"
	for k := range hyper {
		if _, ok := g.hyper[k]; !ok {
			return scigperr.NewValueError(op, "unknown hyperparameter "+k)
		}
	}
	for k, v := range hyper {
		g.hyper[k] = v
	}
	g.chol = nil
	g.alpha = nil
	g.state.Reset()
	return nil
}

// Energy evaluates the negative log marginal likelihood
//
//	E = ½ yᵀ K⁻¹ y + ½ log|K| + (n/2) log 2π
//
// for the given hyperparameter configuration. The configuration is applied
// to the model before evaluation; the options map is accepted for interface
// compatibility and currently unused.
func (g *GPRegression) Energy(hyper map[string]float64, options map[string]string) (float64, error) {
	const op = "GPRegression.Energy"

	if len(hyper) > 0 {
		if err := g.SetHyperparameters(hyper); err != nil {
			return 0, err
		}
	}

	chol, alpha, err := g.factorize(op)
	if err != nil {
		return 0, err
	}

	n := len(g.y)
	fit := 0.0
	for i := 0; i < n; i++ {
		fit += g.y[i] * alpha.AtVec(i)
	}
	energy := 0.5*fit + 0.5*chol.LogDet() + 0.5*float64(n)*math.Log(2*math.Pi)

	if err := scigperr.CheckScalar(op, energy); err != nil {
		return 0, err
	}

	slog.Debug("evaluated energy",
		log.ProcessNameKey, "GPRegression",
		log.OperationKey, "energy",
		log.EnergyKey, energy,
	)
	return energy, nil
}

// Predict returns the posterior mean at a single input.
func (g *GPRegression) Predict(x []float64) (float64, error) {
	if !g.state.IsFitted() {
		return 0, scigperr.NewNotFittedError("GPRegression", "Predict")
	}
	return g.Mean(x), nil
}

// PredictiveDistribution returns the joint posterior over the test points:
//
//	mean = K*ᵀ K⁻¹ y
//	cov  = K** − K*ᵀ K⁻¹ K*
func (g *GPRegression) PredictiveDistribution(test [][]float64) (*model.Distribution, error) {
	const op = "GPRegression.PredictiveDistribution"
	if !g.state.IsFitted() {
		return nil, scigperr.NewNotFittedError("GPRegression", "PredictiveDistribution")
	}
	if len(test) == 0 {
		return nil, scigperr.NewValueError(op, "test inputs must not be empty")
	}

	n := len(g.x)
	m := len(test)

	// Cross covariance K* (n×m), filled row-parallel like the training
	// covariance.
	kstar := mat.NewDense(n, m, nil)
	parallel.ParallelizeWithThreshold(n, parallelRowThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < m; j++ {
				kstar.Set(i, j, g.kernel.Eval(g.hyper, g.x[i], test[j]))
			}
		}
	})

	// mean = K*ᵀ alpha
	mean := mat.NewVecDense(m, nil)
	mean.MulVec(kstar.T(), g.alpha)

	// v = K⁻¹ K*
	v := mat.NewDense(n, m, nil)
	if err := g.chol.SolveTo(v, kstar); err != nil {
		return nil, scigperr.Wrap(err, "scigp: "+op+": solving K v = K*")
	}

	// cov = K** − K*ᵀ v
	var reduction mat.Dense
	reduction.Mul(kstar.T(), v)

	cov := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			kss := g.kernel.Eval(g.hyper, test[i], test[j])
			c := kss - 0.5*(reduction.At(i, j)+reduction.At(j, i))
			if i == j && c < 0 {
				// Tiny negative variances from roundoff are clamped.
				c = 0
			}
			cov.SetSym(i, j, c)
		}
	}

	return &model.Distribution{Mean: mean, Cov: cov}, nil
}

// PredictionWithErrorBars returns per-point (mean − sigma·std, mean,
// mean + sigma·std) estimates.
func (g *GPRegression) PredictionWithErrorBars(test [][]float64, sigma float64) ([]model.ErrorBar, error) {
	dist, err := g.PredictiveDistribution(test)
	if err != nil {
		return nil, err
	}

	bars := make([]model.ErrorBar, len(test))
	for i := range test {
		m := dist.Mean.AtVec(i)
		s := math.Sqrt(dist.Cov.At(i, i))
		bars[i] = model.ErrorBar{
			X:     test[i],
			Lower: m - sigma*s,
			Mean:  m,
			Upper: m + sigma*s,
		}
	}
	return bars, nil
}

// CloneWithLabels returns a new, fitted GPRegression over the same inputs
// with the labels replaced and the hyperparameter values copied.
func (g *GPRegression) CloneWithLabels(labels []float64) (model.Process, error) {
	const op = "GPRegression.CloneWithLabels"
	if len(labels) != len(g.x) {
		return nil, scigperr.NewDimensionError(op, len(g.x), len(labels), 0)
	}

	clone, err := NewGPRegression(g.kernel, g.x, append([]float64(nil), labels...))
	if err != nil {
		return nil, err
	}
	for k, v := range g.hyper {
		clone.hyper[k] = v
	}
	if err := clone.Fit(); err != nil {
		return nil, err
	}
	return clone, nil
}
