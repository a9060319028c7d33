// Package optimize implements global hyperparameter search over any system
// exposing a scalar energy. A GlobalOptimizer turns the system's energy
// function into an explorable landscape, either by Cartesian grid
// enumeration anchored at an initial configuration or by sampling from
// per-hyperparameter priors, and concrete strategies (grid minimum,
// Metropolis–Hastings walk) pick a best configuration from that landscape.
package optimize

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/YuminosukeSato/scigp/core/model"
	"github.com/YuminosukeSato/scigp/pkg/errors"
	"github.com/YuminosukeSato/scigp/pkg/log"
)

// デフォルトの探索パラメータ
const (
	defaultStepSize   = 0.3
	defaultGridSize   = 3
	defaultNumSamples = 20

	// グリッド点数がこの値を超えると指数的増加の警告を出す
	gridWarnPoints = 1000
)

// Configuration maps hyperparameter names to values. Keys are never
// duplicated; semantic order is irrelevant, but grid construction fixes a
// stable (sorted) key order so a configuration can be reconstructed as a
// vector.
type Configuration map[string]float64

// Clone returns a copy of the configuration.
func (c Configuration) Clone() Configuration {
	out := make(Configuration, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// sortedKeys returns the configuration's keys in the fixed exploration order.
func (c Configuration) sortedKeys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LandscapePoint is one explored point: the net energy (raw energy plus any
// prior penalty) and the configuration that produced it.
type LandscapePoint struct {
	Energy float64
	Config Configuration
}

// EnergyLandscape is the sequence of explored points in exploration order
// (grid order or draw order), never sorted by energy.
type EnergyLandscape []LandscapePoint

// Min returns the lowest-energy point of the landscape.
func (l EnergyLandscape) Min() (LandscapePoint, bool) {
	if len(l) == 0 {
		return LandscapePoint{}, false
	}
	best := l[0]
	for _, p := range l[1:] {
		if p.Energy < best.Energy {
			best = p
		}
	}
	return best, true
}

// GlobalOptimizer explores the configuration space of a GloballyOptimizable
// system. The zero value is not usable; construct with New.
//
// The optimizer mutates the system's hyperparameter state immediately before
// each energy evaluation; evaluations are strictly sequential over one
// system instance, which is not reentrant across concurrent Energy calls.
type GlobalOptimizer struct {
	system model.GloballyOptimizable

	step       float64
	gridSize   int
	logScale   bool
	numSamples int
	prior      map[string]Prior
	rng        *rand.Rand
}

// Option configures a GlobalOptimizer at construction. Options replace the
// mutable fluent setters of a conventional optimizer API so that a
// configured optimizer can be shared without hidden-mutation hazards.
type Option func(*GlobalOptimizer)

// WithStepSize sets the grid step size (default 0.3).
func WithStepSize(step float64) Option {
	return func(o *GlobalOptimizer) { o.step = step }
}

// WithGridSize sets the number of candidate values per dimension (default 3).
// Values below 1 are ignored.
func WithGridSize(size int) Option {
	return func(o *GlobalOptimizer) {
		if size >= 1 {
			o.gridSize = size
		}
	}
}

// WithLogScale switches grid candidate generation to the logarithmic scale.
func WithLogScale(logScale bool) Option {
	return func(o *GlobalOptimizer) { o.logScale = logScale }
}

// WithNumSamples sets the number of prior-guided samples (default 20).
// Negative values are clamped to zero.
func WithNumSamples(n int) Option {
	return func(o *GlobalOptimizer) {
		if n < 0 {
			n = 0
		}
		o.numSamples = n
	}
}

// WithPrior supplies per-hyperparameter priors. Prior-guided sampling is
// used only when every hyperparameter of the initial configuration is
// covered; otherwise the optimizer warns and falls back to grid mode.
func WithPrior(prior map[string]Prior) Option {
	return func(o *GlobalOptimizer) { o.prior = prior }
}

// WithRand sets the random source driving the Metropolis-Hastings chain
// (proposals and acceptance draws). Prior sampling draws through each
// distribution's own source, so prior-mode determinism is controlled by the
// Src of the supplied distuv values instead.
func WithRand(rng *rand.Rand) Option {
	return func(o *GlobalOptimizer) { o.rng = rng }
}

// New constructs a GlobalOptimizer over the given system.
func New(system model.GloballyOptimizable, opts ...Option) *GlobalOptimizer {
	o := &GlobalOptimizer{
		system:     system,
		step:       defaultStepSize,
		gridSize:   defaultGridSize,
		numSamples: defaultNumSamples,
		rng:        rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// System returns the optimized system.
func (o *GlobalOptimizer) System() model.GloballyOptimizable { return o.system }

// BuildGrid generates one configuration per point of the Cartesian product
// of per-hyperparameter candidate lists anchored at the initial
// configuration. In linear mode the candidates for value v are
// v-(i+1)*step; in logarithmic mode they are v/exp((i+1)*step), for i in
// 0..gridSize-1. The total grid size is gridSize^k for k hyperparameters,
// which grows exponentially; a warning is emitted once it exceeds a
// threshold.
func (o *GlobalOptimizer) BuildGrid(initial Configuration) ([]Configuration, error) {
	keys := initial.sortedKeys()
	if len(keys) == 0 {
		// A single trivial point: the landscape degenerates gracefully.
		return []Configuration{{}}, nil
	}

	candidates := make([][]float64, len(keys))
	for ki, k := range keys {
		v := initial[k]
		if o.logScale && v <= 0 {
			return nil, errors.NewGridScaleError(k, v)
		}
		vals := make([]float64, o.gridSize)
		for i := 0; i < o.gridSize; i++ {
			if o.logScale {
				vals[i] = v / math.Exp(float64(i+1)*o.step)
			} else {
				vals[i] = v - float64(i+1)*o.step
			}
		}
		candidates[ki] = vals
	}

	total := 1
	for range keys {
		total *= o.gridSize
	}
	if total > gridWarnPoints {
		errors.Warn(errors.NewGridGrowthWarning(len(keys), o.gridSize, total))
	}

	grid := make([]Configuration, 0, total)
	idx := make([]int, len(keys))
	for {
		config := make(Configuration, len(keys))
		for ki, k := range keys {
			config[k] = candidates[ki][idx[ki]]
		}
		grid = append(grid, config)

		// Odometer increment over the candidate indices.
		pos := len(idx) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < o.gridSize {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}
	return grid, nil
}

// priorCovers reports whether the configured prior covers every key of the
// initial configuration, warning about missing keys when it does not.
func (o *GlobalOptimizer) priorCovers(initial Configuration) bool {
	if len(o.prior) == 0 || len(initial) == 0 {
		return false
	}
	var missing []string
	for _, k := range initial.sortedKeys() {
		if _, ok := o.prior[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		errors.Warn(errors.NewPriorCoverageWarning(missing))
		return false
	}
	return true
}

// samplePrior draws numSamples independent configurations from the product
// of per-key priors.
func (o *GlobalOptimizer) samplePrior(initial Configuration) []Configuration {
	keys := initial.sortedKeys()
	samples := make([]Configuration, o.numSamples)
	for i := range samples {
		config := make(Configuration, len(keys))
		for _, k := range keys {
			config[k] = o.prior[k].Rand()
		}
		samples[i] = config
	}
	return samples
}

// ComputeLandscape explores the energy landscape around the initial
// configuration: prior-guided sampling when the prior covers every
// hyperparameter, grid enumeration otherwise. For each configuration the
// system's hyperparameters are set, its energy evaluated, and, when priors
// are active, the maximum-a-posteriori penalty -Σ log p_k(config[k]) added
// to obtain the net energy.
//
// A failed evaluation never drops its point (that would change the grid's
// shape): the point is recorded with energy +Inf and a warning is emitted.
// The context is checked between evaluations; on cancellation the partial
// landscape is returned together with the context's error.
func (o *GlobalOptimizer) ComputeLandscape(ctx context.Context, initial Configuration, options map[string]string) (EnergyLandscape, error) {
	var (
		configs     []Configuration
		priorActive bool
	)
	if o.priorCovers(initial) {
		configs = o.samplePrior(initial)
		priorActive = true
	} else {
		grid, err := o.BuildGrid(initial)
		if err != nil {
			return nil, err
		}
		configs = grid
	}

	slog.Debug("computing energy landscape",
		log.OperationKey, "compute_landscape",
		log.ConfigurationsKey, len(configs),
		log.SamplesKey, o.numSamples,
		log.GridSizeKey, o.gridSize,
	)

	landscape := make(EnergyLandscape, 0, len(configs))
	for _, config := range configs {
		if err := ctx.Err(); err != nil {
			return landscape, errors.Wrap(err, "scigp: landscape sweep canceled")
		}

		energy, err := o.evaluate(config, options)
		if err != nil {
			errors.Warn(errors.NewEvaluationFailedWarning(config, err))
			landscape = append(landscape, LandscapePoint{Energy: math.Inf(1), Config: config})
			continue
		}
		if priorActive {
			energy += priorEnergy(o.prior, config)
		}
		landscape = append(landscape, LandscapePoint{Energy: energy, Config: config})
	}
	return landscape, nil
}

// evaluate applies a configuration to the system and scores it. Panics from
// underlying matrix operations are converted to errors so one bad
// configuration cannot abort a whole sweep.
func (o *GlobalOptimizer) evaluate(config Configuration, options map[string]string) (float64, error) {
	var energy float64
	err := errors.SafeExecute("GlobalOptimizer.evaluate", func() error {
		if len(config) > 0 {
			if err := o.system.SetHyperparameters(config); err != nil {
				return err
			}
		}
		e, err := o.system.Energy(config, options)
		if err != nil {
			return err
		}
		energy = e
		return nil
	})
	if err != nil {
		return 0, err
	}
	return energy, nil
}

// Optimizer is a concrete global-search strategy. Strategies share
// ComputeLandscape and differ in how they select a configuration from the
// explored landscape.
type Optimizer interface {
	// Optimize explores from the initial configuration and returns the best
	// configuration found together with its net energy. The winning
	// configuration is left applied to the system.
	Optimize(ctx context.Context, initial Configuration, options map[string]string) (Configuration, float64, error)
}
