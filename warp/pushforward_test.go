package warp

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/scigp/blockmat"
)

func TestMapRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		m      Map
		points []float64 // valid points of the codomain
	}{
		{
			name:   "identity",
			m:      Identity(),
			points: []float64{-3, -0.5, 0, 1, 42},
		},
		{
			name:   "exp",
			m:      Exp(),
			points: []float64{0.1, 1, 2.5, 1000},
		},
		{
			name:   "affine",
			m:      Affine(2.5, -1),
			points: []float64{-10, 0, 0.3, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, b := range tt.points {
				a := tt.m.Inverse(b)
				if got := tt.m.Forward(a); math.Abs(got-b) > 1e-9*math.Max(1, math.Abs(b)) {
					t.Errorf("Forward(Inverse(%v)) = %v, want %v", b, got, b)
				}
				if got := tt.m.Inverse(tt.m.Forward(a)); math.Abs(got-a) > 1e-9*math.Max(1, math.Abs(a)) {
					t.Errorf("Inverse(Forward(%v)) = %v, want %v", a, got, a)
				}
			}
		})
	}
}

func TestExpJacobian(t *testing.T) {
	m := Exp()
	// d/db log(b) = 1/b
	for _, b := range []float64{0.5, 1, 4} {
		if got := m.Jacobian(b); math.Abs(got-1/b) > 1e-12 {
			t.Errorf("Jacobian(%v) = %v, want %v", b, got, 1/b)
		}
	}
}

func TestIdentityJacobianIsOne(t *testing.T) {
	m := Identity()
	for _, b := range []float64{-5, 0, 3} {
		if m.Jacobian(b) != 1 {
			t.Errorf("Jacobian(%v) = %v, want 1", b, m.Jacobian(b))
		}
	}
}

func TestVectorMapForward(t *testing.T) {
	v, err := blockmat.Partition([]float64{0, 1, 2, 3}, 2)
	if err != nil {
		t.Fatal(err)
	}
	warped := Lift(Exp()).Forward(v)

	got := warped.Flatten()
	for i, x := range []float64{0, 1, 2, 3} {
		want := math.Exp(x)
		if math.Abs(got[i]-want) > 1e-12 {
			t.Errorf("Forward()[%d] = %v, want %v", i, got[i], want)
		}
	}
	if warped.Blocks() != v.Blocks() {
		t.Error("vector map changed the partition")
	}
}

func TestVectorMapJacobianIsBlockDiagonal(t *testing.T) {
	v, err := blockmat.Partition([]float64{1, 2, 4, 8}, 2)
	if err != nil {
		t.Fatal(err)
	}
	jac := Lift(Exp()).Jacobian(v)

	if jac.Blocks() != 2 {
		t.Fatalf("Jacobian Blocks() = %d, want 2", jac.Blocks())
	}
	// det = Π 1/y over all entries
	want := 1.0 / (1 * 2 * 4 * 8)
	if got := jac.Det(); math.Abs(got-want) > 1e-12 {
		t.Errorf("Det() = %v, want %v", got, want)
	}
	// Diagonal blocks carry the scalar Jacobian on their diagonals only.
	b := jac.Block(0)
	if b.At(0, 1) != 0 || b.At(1, 0) != 0 {
		t.Error("off-diagonal entries of a Jacobian block should be zero")
	}
}
