package warp

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/scigp/gp"
	"github.com/YuminosukeSato/scigp/pkg/errors"
)

// 正のラベルを持つ学習済みGPを作成する
func positiveGP(t *testing.T) *gp.GPRegression {
	t.Helper()
	x := [][]float64{{0}, {1}, {2}, {3}, {4}}
	y := []float64{1.0, 2.2, 4.1, 8.3, 16.5} // roughly 2^x
	g, err := gp.NewGPRegression(gp.RBF{}, x, y)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Fit(); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNewRejectsOutOfDomainLabels(t *testing.T) {
	x := [][]float64{{0}, {1}}
	y := []float64{1.0, -0.5} // negative label is outside Exp's invertible domain
	g, err := gp.NewGPRegression(gp.RBF{}, x, y)
	if err != nil {
		t.Fatal(err)
	}

	_, err = New(g, Exp())
	if err == nil {
		t.Fatal("New() with log-warped negative label should fail")
	}
	var domErr *errors.DomainError
	if !errors.As(err, &domErr) {
		t.Errorf("error should be a *DomainError, got %v", err)
	}
}

func TestNewRejectsNonBijectiveMap(t *testing.T) {
	g := positiveGP(t)
	// forward collapses everything to 1, so the round trip cannot recover
	// the labels.
	collapse := NewMap("collapse",
		func(float64) float64 { return 1 },
		func(b float64) float64 { return b },
		func(float64) float64 { return 1 },
	)
	if _, err := New(g, collapse); err == nil {
		t.Fatal("New() with a non-bijective map should fail")
	}
}

func TestIdentityWarpReproducesBase(t *testing.T) {
	g := positiveGP(t)
	w, err := New(g, Identity())
	if err != nil {
		t.Fatal(err)
	}

	hyper := map[string]float64{"amplitude": 1, "lengthscale": 1, "noise": 0.1}

	wantEnergy, err := g.Energy(hyper, nil)
	if err != nil {
		t.Fatal(err)
	}
	gotEnergy, err := w.Energy(hyper, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(gotEnergy-wantEnergy) > 1e-9*math.Abs(wantEnergy) {
		t.Errorf("identity-warped Energy = %v, want %v", gotEnergy, wantEnergy)
	}

	// Refit the base for prediction comparison (Energy resets fit state).
	if err := g.Fit(); err != nil {
		t.Fatal(err)
	}
	wBase, err := New(g, Identity())
	if err != nil {
		t.Fatal(err)
	}
	probe := []float64{1.5}
	if got, want := wBase.Mean(probe), g.Mean(probe); math.Abs(got-want) > 1e-9 {
		t.Errorf("identity-warped Mean = %v, want %v", got, want)
	}
	gotPred, err := wBase.Predict(probe)
	if err != nil {
		t.Fatal(err)
	}
	wantPred, err := g.Predict(probe)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(gotPred-wantPred) > 1e-9 {
		t.Errorf("identity-warped Predict = %v, want %v", gotPred, wantPred)
	}
}

func TestExpWarpPredictsInObservationSpace(t *testing.T) {
	g := positiveGP(t)
	w, err := New(g, Exp())
	if err != nil {
		t.Fatal(err)
	}

	// The latent process is trained on log labels, so pushing its mean
	// forward must land near the (positive) observations.
	for i, x := range [][]float64{{0}, {2}, {4}} {
		got, err := w.Predict(x)
		if err != nil {
			t.Fatal(err)
		}
		if got <= 0 {
			t.Errorf("case %d: Predict(%v) = %v, want positive", i, x, got)
		}
	}

	// Mean is Forward of the latent mean by definition.
	probe := []float64{1.5}
	want := math.Exp(w.underlying.Mean(probe))
	if got := w.Mean(probe); math.Abs(got-want) > 1e-12 {
		t.Errorf("Mean(%v) = %v, want exp(latent mean) = %v", probe, got, want)
	}
}

func TestExpWarpEnergyCorrection(t *testing.T) {
	g := positiveGP(t)
	w, err := New(g, Exp())
	if err != nil {
		t.Fatal(err)
	}

	hyper := map[string]float64{"amplitude": 1, "lengthscale": 1, "noise": 0.1}
	warped, err := w.Energy(hyper, nil)
	if err != nil {
		t.Fatal(err)
	}

	// The correction factor is Π 1/y_i over the training labels.
	det := 1.0
	for _, y := range g.Labels() {
		det *= 1 / y
	}
	latent, err := w.underlying.Energy(hyper, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := latent * math.Abs(det)
	if math.Abs(warped-want) > 1e-9*math.Abs(want) {
		t.Errorf("Energy = %v, want latent*|det| = %v", warped, want)
	}
}

func TestEnergyRejectsDegenerateJacobian(t *testing.T) {
	g := positiveGP(t)
	// Monotone map with a Jacobian that is zero everywhere: density is
	// undefined, so Energy must fail rather than return zero.
	degenerate := NewMap("degenerate",
		func(a float64) float64 { return a },
		func(b float64) float64 { return b },
		func(float64) float64 { return 0 },
	)
	w, err := New(g, degenerate)
	if err != nil {
		t.Fatal(err)
	}

	_, err = w.Energy(map[string]float64{"amplitude": 1, "lengthscale": 1, "noise": 0.1}, nil)
	if err == nil {
		t.Fatal("Energy() with zero Jacobian determinant should fail")
	}
	var degErr *errors.DegenerateJacobianError
	if !errors.As(err, &degErr) {
		t.Errorf("error should be a *DegenerateJacobianError, got %v", err)
	}
}

func TestHyperparametersAreShared(t *testing.T) {
	g := positiveGP(t)
	w, err := New(g, Exp())
	if err != nil {
		t.Fatal(err)
	}

	if err := w.SetHyperparameters(map[string]float64{"lengthscale": 3.5}); err != nil {
		t.Fatal(err)
	}
	if got := w.Hyperparameters()["lengthscale"]; got != 3.5 {
		t.Errorf("Hyperparameters()[lengthscale] = %v, want 3.5", got)
	}
	// Same keys as the underlying process, same live values.
	if got := w.underlying.Hyperparameters()["lengthscale"]; got != 3.5 {
		t.Errorf("underlying lengthscale = %v, want 3.5 (state must be shared)", got)
	}
}

func TestPredictiveDistributionCarriesTransform(t *testing.T) {
	g := positiveGP(t)
	w, err := New(g, Exp())
	if err != nil {
		t.Fatal(err)
	}

	test := [][]float64{{0.5}, {1.5}}
	dist, err := w.PredictiveDistribution(test)
	if err != nil {
		t.Fatal(err)
	}
	if dist.Transform == nil {
		t.Fatal("warped distribution must carry the vector pushforward map")
	}
	if dist.Transform.Name() != "exp" {
		t.Errorf("Transform.Name() = %q, want exp", dist.Transform.Name())
	}

	// Applying the deferred transform exponentiates the latent mean.
	obs := dist.Transform.Apply(dist.Mean)
	for i := 0; i < dist.Mean.Len(); i++ {
		want := math.Exp(dist.Mean.AtVec(i))
		if math.Abs(obs.AtVec(i)-want) > 1e-12 {
			t.Errorf("transformed mean[%d] = %v, want %v", i, obs.AtVec(i), want)
		}
	}
}

func TestPredictionWithErrorBars(t *testing.T) {
	g := positiveGP(t)
	w, err := New(g, Exp())
	if err != nil {
		t.Fatal(err)
	}

	bars, err := w.PredictionWithErrorBars([][]float64{{0.5}, {2.5}}, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range bars {
		if !(b.Lower <= b.Mean && b.Mean <= b.Upper) {
			t.Errorf("bar ordering violated: %+v", b)
		}
		if b.Lower <= 0 {
			t.Errorf("exp-warped lower bound = %v, want positive", b.Lower)
		}
	}
}

func TestWarpedProcessIsComposable(t *testing.T) {
	g := positiveGP(t)
	inner, err := New(g, Identity())
	if err != nil {
		t.Fatal(err)
	}
	outer, err := New(inner, Exp())
	if err != nil {
		t.Fatal(err)
	}

	got, err := outer.Predict([]float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if got <= 0 {
		t.Errorf("composed Predict = %v, want positive", got)
	}
}

func TestDataAsSeq(t *testing.T) {
	g := positiveGP(t)

	w, err := New(g, Identity())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.DataAsSeq(); err == nil {
		t.Error("DataAsSeq() without encoder should fail")
	}

	w, err = New(g, Identity(), WithEncoder(func() []Sample {
		samples := make([]Sample, g.NPoints())
		for i, y := range g.Labels() {
			samples[i] = Sample{X: []float64{float64(i)}, Y: y}
		}
		return samples
	}))
	if err != nil {
		t.Fatal(err)
	}
	samples, err := w.DataAsSeq()
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != g.NPoints() {
		t.Errorf("DataAsSeq() returned %d samples, want %d", len(samples), g.NPoints())
	}
}
