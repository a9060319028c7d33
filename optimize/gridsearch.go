package optimize

import (
	"context"
	"log/slog"
	"math"

	"github.com/YuminosukeSato/scigp/core/model"
	"github.com/YuminosukeSato/scigp/pkg/errors"
	"github.com/YuminosukeSato/scigp/pkg/log"
)

// GridSearch is the exhaustive strategy: it computes the full energy
// landscape and picks its minimum.
type GridSearch struct {
	*GlobalOptimizer
}

var _ Optimizer = (*GridSearch)(nil)

// NewGridSearch は新しいグリッド探索オプティマイザを作成する
func NewGridSearch(system model.GloballyOptimizable, opts ...Option) *GridSearch {
	return &GridSearch{GlobalOptimizer: New(system, opts...)}
}

// Optimize computes the landscape and returns the minimum-energy
// configuration, leaving it applied to the system.
func (s *GridSearch) Optimize(ctx context.Context, initial Configuration, options map[string]string) (Configuration, float64, error) {
	const op = "GridSearch.Optimize"

	landscape, err := s.ComputeLandscape(ctx, initial, options)
	if err != nil {
		return nil, 0, err
	}

	best, ok := landscape.Min()
	if !ok {
		return nil, 0, errors.NewValueError(op, "empty landscape")
	}
	if math.IsInf(best.Energy, 1) {
		return nil, 0, errors.NewValueError(op, "every energy evaluation failed")
	}

	if len(best.Config) > 0 {
		if err := s.system.SetHyperparameters(best.Config); err != nil {
			return nil, 0, err
		}
	}

	slog.Debug("grid search finished",
		log.OperationKey, "optimize",
		log.ConfigurationsKey, len(landscape),
		log.EnergyKey, best.Energy,
	)
	return best.Config.Clone(), best.Energy, nil
}
