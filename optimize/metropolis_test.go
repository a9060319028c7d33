package optimize

import (
	"math"
	"math/rand"
	"testing"
)

// 標準正規乱数を提案分布とするスカラー連鎖を作成する
func scalarChain(logLik func(float64) float64, burnIn, drop int) *Metropolis[float64] {
	return NewMetropolis[float64](
		Float64Group{},
		logLik,
		func(rng *rand.Rand) float64 { return rng.NormFloat64() },
		0,
		burnIn, drop,
		rand.New(rand.NewSource(7)),
	)
}

func TestMetropolisBurnIn(t *testing.T) {
	s := scalarChain(func(x float64) float64 { return -x * x }, 100, 0)

	if s.Steps() != 0 {
		t.Fatalf("Steps() before first pull = %d, want 0", s.Steps())
	}
	s.Next()
	// The first emitted sample requires the full burn-in plus one step.
	if got := s.Steps(); got != 101 {
		t.Errorf("Steps() after first pull = %d, want 101", got)
	}
	s.Next()
	if got := s.Steps(); got != 102 {
		t.Errorf("Steps() after second pull = %d, want 102", got)
	}
}

func TestMetropolisThinning(t *testing.T) {
	s := scalarChain(func(x float64) float64 { return -x * x }, 0, 2)

	s.Next()
	first := s.Steps()
	s.Next()
	second := s.Steps()

	// dropCount = 2 means consecutive emitted samples are 3 steps apart.
	if second-first != 3 {
		t.Errorf("steps between emitted samples = %d, want 3", second-first)
	}
}

func TestMetropolisAlwaysAcceptsUphillMoves(t *testing.T) {
	// Monotonically rewarding likelihood: any positive shift is uphill.
	s := NewMetropolis[float64](
		Float64Group{},
		func(x float64) float64 { return x },
		func(rng *rand.Rand) float64 { return 1 }, // deterministic +1 proposal
		0,
		0, 0,
		rand.New(rand.NewSource(1)),
	)

	for i := 1; i <= 5; i++ {
		got := s.Next()
		if got != float64(i) {
			t.Fatalf("sample %d = %v, want %v (uphill moves must always be accepted)", i, got, float64(i))
		}
	}
	if rate := s.AcceptanceRate(); rate != 1 {
		t.Errorf("AcceptanceRate() = %v, want 1", rate)
	}
}

func TestMetropolisTargetsHighLikelihoodRegion(t *testing.T) {
	// Standard normal target: post-burn-in samples concentrate near zero.
	s := scalarChain(func(x float64) float64 { return -x * x / 2 }, 200, 1)

	samples := s.Sample(500)
	var mean float64
	for _, x := range samples {
		mean += x
	}
	mean /= float64(len(samples))

	if math.Abs(mean) > 0.5 {
		t.Errorf("chain mean = %v, want near 0 for a standard normal target", mean)
	}
}

func TestMetropolisObserve(t *testing.T) {
	s := scalarChain(func(x float64) float64 { return -x * x }, 100, 2)

	resumed := s.Observe(3.0)
	resumed.Next()
	// Burn-in is reset to zero: only the thinning steps are taken.
	if got := resumed.Steps(); got != 3 {
		t.Errorf("Steps() after Observe and one pull = %d, want 3 (no burn-in)", got)
	}

	// The original sampler is untouched.
	if s.Steps() != 0 {
		t.Errorf("Observe() mutated the original sampler: Steps() = %d", s.Steps())
	}
}

func TestMetropolisConfigGroup(t *testing.T) {
	g := ConfigGroup{}
	a := Configuration{"x": 1, "y": 2}
	b := Configuration{"x": 0.5}

	sum := g.Add(a, b)
	if sum["x"] != 1.5 || sum["y"] != 2 {
		t.Errorf("Add() = %v, want x=1.5 y=2", sum)
	}
	// Inputs are not mutated.
	if a["x"] != 1 {
		t.Error("Add() mutated its first operand")
	}
}
