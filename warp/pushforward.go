// Package warp composes a base process with an invertible, differentiable
// pushforward map, yielding a warped process with a non-Gaussian observation
// model. The base process is trained in the latent (inverse-warped) space;
// predictions are pushed forward into observation space and the energy is
// corrected by the Jacobian determinant of the inverse map, implementing the
// change-of-variables identity p_Y(y) = p_X(f⁻¹(y)) · |det J_{f⁻¹}(y)|.
package warp

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigp/blockmat"
	"github.com/YuminosukeSato/scigp/core/model"
)

// Map is an invertible, differentiable scalar transform pair. Forward must
// be strictly monotonic on the domain of interest: violating this breaks the
// density-correction invariant of the warped energy.
type Map struct {
	name     string
	forward  func(float64) float64
	inverse  func(float64) float64
	jacobian func(float64) float64
}

// NewMap constructs a pushforward map from its three components. The
// jacobian is the derivative of the inverse evaluated at a point of the
// codomain.
func NewMap(name string, forward, inverse, jacobian func(float64) float64) Map {
	return Map{name: name, forward: forward, inverse: inverse, jacobian: jacobian}
}

// Name identifies the map for logging and error reporting.
func (m Map) Name() string { return m.name }

// Forward applies the map.
func (m Map) Forward(a float64) float64 { return m.forward(a) }

// Inverse applies the inverse map.
func (m Map) Inverse(b float64) float64 { return m.inverse(b) }

// Jacobian evaluates the derivative of the inverse map at b.
func (m Map) Jacobian(b float64) float64 { return m.jacobian(b) }

// Identity は恒等写像（forward = inverse = x、ヤコビアン ≡ 1）を返す。
// 恒等ワープは基のプロセスのエネルギー・平均・予測を正確に再現する。
func Identity() Map {
	id := func(x float64) float64 { return x }
	return NewMap("identity", id, id, func(float64) float64 { return 1 })
}

// Exp is the exponential warp for positive-valued observations:
// forward = exp, inverse = log, jacobian(b) = 1/b. The latent process lives
// on the log scale; labels must be strictly positive.
func Exp() Map {
	return NewMap("exp",
		math.Exp,
		math.Log,
		func(b float64) float64 { return 1 / b },
	)
}

// Affine is the linear warp forward = scale·a + shift. Scale must be
// non-zero for the map to be a bijection; a zero scale yields a map whose
// construction succeeds but whose use fails the round-trip check in New.
func Affine(scale, shift float64) Map {
	return NewMap("affine",
		func(a float64) float64 { return scale*a + shift },
		func(b float64) float64 { return (b - shift) / scale },
		func(float64) float64 { return 1 / scale },
	)
}

// VectorMap lifts a scalar map entrywise onto partitioned vectors.
// Observations are independent under the warp, so the lifted Jacobian is
// block-diagonal with per-block diagonal blocks; off-diagonal blocks are
// structurally zero and never computed.
type VectorMap struct {
	scalar Map
}

// Lift returns the vector pushforward of m.
func Lift(m Map) VectorMap { return VectorMap{scalar: m} }

// Scalar returns the underlying scalar map.
func (vm VectorMap) Scalar() Map { return vm.scalar }

// Name identifies the lifted map.
func (vm VectorMap) Name() string { return vm.scalar.name }

// Forward applies the scalar forward map independently to every entry.
func (vm VectorMap) Forward(v *blockmat.PartitionedVector) *blockmat.PartitionedVector {
	return v.Map(vm.scalar.forward)
}

// Inverse applies the scalar inverse map independently to every entry.
func (vm VectorMap) Inverse(v *blockmat.PartitionedVector) *blockmat.PartitionedVector {
	return v.Map(vm.scalar.inverse)
}

// Jacobian builds the block-diagonal Jacobian of the inverse map evaluated
// at v.
func (vm VectorMap) Jacobian(v *blockmat.PartitionedVector) *blockmat.BlockDiagonal {
	return blockmat.DiagonalOf(v, vm.scalar.jacobian)
}

// Apply pushes a dense latent vector forward into observation space,
// satisfying model.VectorTransform so that a predictive distribution can
// carry the deferred transform to its consumer.
func (vm VectorMap) Apply(v *mat.VecDense) *mat.VecDense {
	out := mat.NewVecDense(v.Len(), nil)
	for i := 0; i < v.Len(); i++ {
		out.SetVec(i, vm.scalar.forward(v.AtVec(i)))
	}
	return out
}

var _ model.VectorTransform = VectorMap{}
