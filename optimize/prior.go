package optimize

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// Prior is a univariate prior distribution over a single hyperparameter.
// gonum's distuv distributions satisfy it directly, so callers typically
// write
//
//	optimize.WithPrior(map[string]optimize.Prior{
//	    "lengthscale": distuv.LogNormal{Mu: 0, Sigma: 1},
//	    "noise":       distuv.Gamma{Alpha: 2, Beta: 10},
//	})
type Prior interface {
	// Rand draws one sample from the prior.
	Rand() float64

	// LogProb returns the log density at x.
	LogProb(x float64) float64
}

var (
	_ Prior = distuv.Normal{}
	_ Prior = distuv.LogNormal{}
	_ Prior = distuv.Gamma{}
	_ Prior = distuv.Uniform{}
)

// priorEnergy is the maximum-a-posteriori penalty added to a raw energy:
// -Σ log p_k(config[k]) over prior-covered keys. Priors act additively on
// the energy, never multiplicatively.
func priorEnergy(prior map[string]Prior, config Configuration) float64 {
	var e float64
	for k, p := range prior {
		if v, ok := config[k]; ok {
			e -= p.LogProb(v)
		}
	}
	return e
}
