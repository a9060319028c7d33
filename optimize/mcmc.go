package optimize

import (
	"context"
	"log/slog"
	"math"
	"math/rand"

	"github.com/YuminosukeSato/scigp/core/model"
	"github.com/YuminosukeSato/scigp/pkg/errors"
	"github.com/YuminosukeSato/scigp/pkg/log"
)

// MCMCOptimizer explores the energy surface with a random-walk
// Metropolis–Hastings chain instead of exhaustive enumeration. The chain's
// stationary density is exp(-netEnergy); the best configuration visited by
// the chain is returned. The per-key Gaussian proposal uses the optimizer's
// step size as its standard deviation and numSamples as the number of
// emitted chain samples.
type MCMCOptimizer struct {
	*GlobalOptimizer

	// BurnIn is the number of discarded initial transitions.
	BurnIn int

	// Drop is the thinning count: only every (Drop+1)-th post-burn-in
	// state is emitted.
	Drop int
}

var _ Optimizer = (*MCMCOptimizer)(nil)

// NewMCMCOptimizer は新しいMCMCベースのオプティマイザを作成する
func NewMCMCOptimizer(system model.GloballyOptimizable, opts ...Option) *MCMCOptimizer {
	return &MCMCOptimizer{
		GlobalOptimizer: New(system, opts...),
		BurnIn:          50,
	}
}

// Optimize runs the chain from the initial configuration and returns the
// lowest-net-energy configuration it visited, leaving it applied to the
// system.
func (m *MCMCOptimizer) Optimize(ctx context.Context, initial Configuration, options map[string]string) (Configuration, float64, error) {
	const op = "MCMCOptimizer.Optimize"

	if len(initial) == 0 {
		energy, err := m.system.Energy(initial, options)
		if err != nil {
			return nil, 0, err
		}
		return Configuration{}, energy, nil
	}

	priorActive := m.priorCovers(initial)

	best := initial.Clone()
	bestEnergy := math.Inf(1)

	logLikelihood := func(config Configuration) float64 {
		energy, err := m.evaluate(config, options)
		if err != nil {
			// An undefined density is an automatic rejection.
			errors.Warn(errors.NewEvaluationFailedWarning(config, err))
			return math.Inf(-1)
		}
		if priorActive {
			energy += priorEnergy(m.prior, config)
		}
		if energy < bestEnergy {
			bestEnergy = energy
			best = config.Clone()
		}
		return -energy
	}

	keys := initial.sortedKeys()
	proposal := func(rng *rand.Rand) Configuration {
		d := make(Configuration, len(keys))
		for _, k := range keys {
			d[k] = rng.NormFloat64() * m.step
		}
		return d
	}

	sampler := NewMetropolis[Configuration](ConfigGroup{}, logLikelihood, proposal, initial.Clone(), m.BurnIn, m.Drop, m.rng)

	for i := 0; i < m.numSamples; i++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, errors.Wrap(err, "scigp: MCMC optimization canceled")
		}
		sampler.Next()
	}

	if math.IsInf(bestEnergy, 1) {
		return nil, 0, errors.NewValueError(op, "every energy evaluation failed")
	}
	if err := m.system.SetHyperparameters(best); err != nil {
		return nil, 0, err
	}

	slog.Debug("MCMC optimization finished",
		log.OperationKey, "optimize",
		log.SamplesKey, m.numSamples,
		log.EnergyKey, bestEnergy,
		log.AcceptanceRateKey, sampler.AcceptanceRate(),
	)
	return best, bestEnergy, nil
}
