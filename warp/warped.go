package warp

import (
	"log/slog"
	"math"

	"github.com/YuminosukeSato/scigp/blockmat"
	"github.com/YuminosukeSato/scigp/core/model"
	"github.com/YuminosukeSato/scigp/pkg/errors"
	"github.com/YuminosukeSato/scigp/pkg/log"
)

const (
	// 往復変換の許容誤差
	roundTripTol = 1e-9

	// 訓練ラベルのブロック分割サイズ
	defaultLabelBlockSize = 64
)

// WarpedProcess wraps a base process and a pushforward map. It re-derives
// mean, predictive distribution, and energy in the transformed space and is
// itself a valid model.Process, so it can be optimized by the
// hyperparameter-search engine or wrapped again by another warp.
//
// The wrapped base process is shared, not copied. The training labels are
// inverse-warped once at construction and an underlying copy of the base
// process is refitted on them: training happens in the latent space so that
// pushed-forward predictions are valid in observation space.
type WarpedProcess struct {
	base model.Process
	m    Map
	vm   VectorMap

	// underlying is the base process refitted on inverse-warped labels.
	// Hyperparameter state is delegated to it, never copied.
	underlying model.Process

	// labels is the partitioned observation-space label vector at which the
	// Jacobian determinant correction is evaluated.
	labels         *blockmat.PartitionedVector
	labelBlockSize int

	encoder EncoderFunc
}

var _ model.Process = (*WarpedProcess)(nil)

// EncoderFunc serializes a process's training data into an ordered sample
// sequence. It is supplied externally; the warped process only delegates.
type EncoderFunc func() []Sample

// Sample is one (input, label) training pair.
type Sample struct {
	X []float64
	Y float64
}

// Option configures optional behavior of a warped process.
type Option func(*WarpedProcess)

// WithEncoder supplies the data-serialization transform used by DataAsSeq.
func WithEncoder(enc EncoderFunc) Option {
	return func(w *WarpedProcess) { w.encoder = enc }
}

// WithLabelBlockSize overrides the block size used to partition the training
// labels for the Jacobian determinant computation.
func WithLabelBlockSize(size int) Option {
	return func(w *WarpedProcess) {
		if size > 0 {
			w.labelBlockSize = size
		}
	}
}

// New warps a base process through m. The map must be a true bijection on
// the observed label range: construction fails with a domain error if any
// training label falls outside the invertible domain (for example a log warp
// applied to a non-positive label), and fails if the map does not round-trip
// within tolerance at the training labels.
func New(base model.Process, m Map, opts ...Option) (*WarpedProcess, error) {
	const op = "warp.New"

	if base == nil {
		return nil, errors.NewValueError(op, "base process must not be nil")
	}

	w := &WarpedProcess{
		base:           base,
		m:              m,
		vm:             Lift(m),
		labelBlockSize: defaultLabelBlockSize,
	}
	for _, o := range opts {
		o(w)
	}

	observed := base.Labels()
	latent := make([]float64, len(observed))
	for i, y := range observed {
		x := m.Inverse(y)
		if err := errors.CheckInvertible(op, y, x, m.Name()); err != nil {
			return nil, err
		}
		// Bijection check: the map must reproduce the label after a
		// round trip through the latent space.
		if back := m.Forward(x); math.Abs(back-y) > roundTripTol*math.Max(1, math.Abs(y)) {
			return nil, errors.NewDomainError(op, y, m.Name())
		}
		latent[i] = x
	}

	labels, err := blockmat.Partition(observed, w.labelBlockSize)
	if err != nil {
		return nil, err
	}
	w.labels = labels

	underlying, err := base.CloneWithLabels(latent)
	if err != nil {
		return nil, errors.Wrap(err, "scigp: "+op+": refitting base process on latent labels")
	}
	w.underlying = underlying

	slog.Debug("constructed warped process",
		log.OperationKey, "warp",
		log.MapNameKey, m.Name(),
		log.PointsKey, len(observed),
		log.BlocksKey, labels.Blocks(),
	)
	return w, nil
}

// Map returns the scalar pushforward map of the process.
func (w *WarpedProcess) Map() Map { return w.m }

// Base returns the wrapped base process.
func (w *WarpedProcess) Base() model.Process { return w.base }

// Mean returns Forward applied to the latent posterior mean. This is the
// pushforward of the mean, not the mean of the pushforward: a documented
// approximation that downstream comparisons rely on.
func (w *WarpedProcess) Mean(x []float64) float64 {
	return w.m.Forward(w.underlying.Mean(x))
}

// Covariance evaluates the latent-space covariance function. The covariance
// is not pushed forward; only densities and point estimates are.
func (w *WarpedProcess) Covariance(x, y []float64) float64 {
	return w.underlying.Covariance(x, y)
}

// NPoints returns the number of training points.
func (w *WarpedProcess) NPoints() int { return w.underlying.NPoints() }

// Labels returns the observation-space training labels.
func (w *WarpedProcess) Labels() []float64 { return w.base.Labels() }

// Hyperparameters returns the underlying refitted process's live
// hyperparameter map. Wrapper and underlying process share this state.
func (w *WarpedProcess) Hyperparameters() map[string]float64 {
	return w.underlying.Hyperparameters()
}

// SetHyperparameters delegates to the underlying refitted process.
func (w *WarpedProcess) SetHyperparameters(hyper map[string]float64) error {
	return w.underlying.SetHyperparameters(hyper)
}

// Energy evaluates the latent-space energy and multiplies it by the
// absolute Jacobian determinant of the inverse map at the training labels.
// Only the block-diagonal entries of the Jacobian are computed: off-diagonal
// blocks are zero by the independence of observations under the warp.
//
// A zero, negative, or non-finite block determinant means the density is
// undefined there; Energy fails rather than returning a misleading value.
// Landscape sweeps record such failures as +Inf per point.
func (w *WarpedProcess) Energy(hyper map[string]float64, options map[string]string) (float64, error) {
	const op = "WarpedProcess.Energy"

	latentEnergy, err := w.underlying.Energy(hyper, options)
	if err != nil {
		return 0, err
	}

	jac := w.vm.Jacobian(w.labels)
	det := 1.0
	for b := 0; b < jac.Blocks(); b++ {
		d := jac.BlockDet(b)
		if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
			return 0, errors.NewDegenerateJacobianError(op, d, b)
		}
		det *= d
	}

	energy := latentEnergy * math.Abs(det)
	slog.Debug("evaluated warped energy",
		log.ProcessNameKey, "WarpedProcess",
		log.OperationKey, "energy",
		log.MapNameKey, w.m.Name(),
		log.EnergyKey, energy,
		log.DeterminantKey, det,
	)
	return energy, nil
}

// Predict returns Forward applied to the latent 1-sigma mean estimate.
func (w *WarpedProcess) Predict(x []float64) (float64, error) {
	latent, err := w.underlying.Predict(x)
	if err != nil {
		return 0, err
	}
	return w.m.Forward(latent), nil
}

// PredictiveDistribution returns the latent-space predictive distribution
// paired with the vector pushforward map as its deferred transform. The
// transformed distribution is never materialized: callers apply the
// transform to obtain observation-space quantities when they need them.
func (w *WarpedProcess) PredictiveDistribution(test [][]float64) (*model.Distribution, error) {
	dist, err := w.underlying.PredictiveDistribution(test)
	if err != nil {
		return nil, err
	}
	dist.Transform = w.vm
	return dist, nil
}

// PredictionWithErrorBars computes the latent (mean−σs, mean, mean+σs)
// bounds and applies Forward independently to each of the three scalars per
// test point. Warping a symmetric latent interval does not produce a
// distributionally-correct credible interval in observation space; this is
// the documented per-bound transform, kept as-is.
func (w *WarpedProcess) PredictionWithErrorBars(test [][]float64, sigma float64) ([]model.ErrorBar, error) {
	bars, err := w.underlying.PredictionWithErrorBars(test, sigma)
	if err != nil {
		return nil, err
	}
	out := make([]model.ErrorBar, len(bars))
	for i, b := range bars {
		lo := w.m.Forward(b.Lower)
		mid := w.m.Forward(b.Mean)
		hi := w.m.Forward(b.Upper)
		// A decreasing forward map flips the interval orientation.
		if lo > hi {
			lo, hi = hi, lo
		}
		out[i] = model.ErrorBar{X: b.X, Lower: lo, Mean: mid, Upper: hi}
	}
	return out, nil
}

// CloneWithLabels rewarps a clone of the base process trained on the
// replacement observation-space labels.
func (w *WarpedProcess) CloneWithLabels(labels []float64) (model.Process, error) {
	baseClone, err := w.base.CloneWithLabels(labels)
	if err != nil {
		return nil, err
	}
	return New(baseClone, w.m)
}

// DataAsSeq delegates to the externally supplied data-serialization
// transform. It fails if no encoder was provided at construction.
func (w *WarpedProcess) DataAsSeq() ([]Sample, error) {
	if w.encoder == nil {
		return nil, errors.NewValueError("WarpedProcess.DataAsSeq", "no encoder supplied; construct with WithEncoder")
	}
	return w.encoder(), nil
}
