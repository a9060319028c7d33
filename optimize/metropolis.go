package optimize

import (
	"math"
	"math/rand"
)

// AdditiveGroup provides the additive structure a random-walk proposal
// needs: the proposal is always the current state plus an independent draw.
// Passing the group explicitly replaces implicit type-class resolution.
type AdditiveGroup[T any] interface {
	Add(a, b T) T
}

// Float64Group is the additive group of real numbers.
type Float64Group struct{}

func (Float64Group) Add(a, b float64) float64 { return a + b }

// ConfigGroup adds configurations key-wise. Keys absent from b leave a's
// value unchanged.
type ConfigGroup struct{}

func (ConfigGroup) Add(a, b Configuration) Configuration {
	out := make(Configuration, len(a))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] += v
	}
	return out
}

// Metropolis is a single-chain random-walk Metropolis–Hastings sampler over
// a type with an additive structure. The proposal is treated as symmetric:
// the transition-probability term of the acceptance ratio is fixed at zero,
// so a move is accepted with probability min(1, exp(Δ log-likelihood)).
//
// The chain is an infinite sequence consumed through Next, one state per
// pull; burn-in is consumed lazily on the first pull and only every
// (drop+1)-th post-burn-in state is emitted. A sampler is restartable by
// reconstruction, not resumable in place.
type Metropolis[T any] struct {
	group         AdditiveGroup[T]
	logLikelihood func(T) float64
	proposal      func(*rand.Rand) T
	burnIn        int
	drop          int
	rng           *rand.Rand

	current   T
	currentLL float64
	burned    bool

	steps    int
	accepted int
}

// NewMetropolis constructs a sampler at initial state x0.
func NewMetropolis[T any](
	group AdditiveGroup[T],
	logLikelihood func(T) float64,
	proposal func(*rand.Rand) T,
	x0 T,
	burnIn, drop int,
	rng *rand.Rand,
) *Metropolis[T] {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if burnIn < 0 {
		burnIn = 0
	}
	if drop < 0 {
		drop = 0
	}
	return &Metropolis[T]{
		group:         group,
		logLikelihood: logLikelihood,
		proposal:      proposal,
		burnIn:        burnIn,
		drop:          drop,
		rng:           rng,
		current:       x0,
		currentLL:     logLikelihood(x0),
	}
}

// step advances the underlying chain by one transition.
func (s *Metropolis[T]) step() {
	candidate := s.group.Add(s.current, s.proposal(s.rng))
	ll := s.logLikelihood(candidate)

	// Symmetric proposal: acceptance reduces to the likelihood ratio.
	logAccept := ll - s.currentLL
	if logAccept >= 0 || math.Log(s.rng.Float64()) < logAccept {
		s.current = candidate
		s.currentLL = ll
		s.accepted++
	}
	s.steps++
}

// Next advances the chain and returns the next emitted sample. The first
// call consumes the burn-in; every call thereafter advances drop+1 steps and
// returns the resulting state.
func (s *Metropolis[T]) Next() T {
	if !s.burned {
		for i := 0; i < s.burnIn; i++ {
			s.step()
		}
		s.burned = true
	}
	for i := 0; i <= s.drop; i++ {
		s.step()
	}
	return s.current
}

// Sample collects n emitted samples.
func (s *Metropolis[T]) Sample(n int) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = s.Next()
	}
	return out
}

// Observe returns a new sampler re-seeded at x with burn-in reset to zero,
// for resuming from a known-good point (such as an optimizer's best
// configuration) without repeating burn-in.
func (s *Metropolis[T]) Observe(x T) *Metropolis[T] {
	return NewMetropolis(s.group, s.logLikelihood, s.proposal, x, 0, s.drop, s.rng)
}

// Steps returns the number of transitions taken by the underlying chain,
// including burn-in and dropped states.
func (s *Metropolis[T]) Steps() int { return s.steps }

// AcceptanceRate returns the fraction of accepted transitions so far.
func (s *Metropolis[T]) AcceptanceRate() float64 {
	if s.steps == 0 {
		return 0
	}
	return float64(s.accepted) / float64(s.steps)
}
