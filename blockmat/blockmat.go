// Package blockmat implements block-partitioned vectors and block-diagonal
// matrices on top of gonum. Large observation vectors are represented as
// independent sub-blocks so that elementwise maps, filters, and determinant
// computations stay block-local and can run in parallel across blocks.
package blockmat

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigp/core/parallel"
	"github.com/YuminosukeSato/scigp/pkg/errors"
)

// 1ブロックあたりの行列式計算が十分重い場合のみ並列化する
const parallelBlockThreshold = 8

// PartitionedVector is a vector stored as an ordered sequence of dense
// blocks. Block boundaries are part of the value: two vectors with the same
// entries but different partitions are not interchangeable.
type PartitionedVector struct {
	blocks []*mat.VecDense
}

// Partition splits data into blocks of blockSize entries. The final block
// absorbs the remainder when the length is not a multiple of blockSize.
func Partition(data []float64, blockSize int) (*PartitionedVector, error) {
	if blockSize <= 0 {
		return nil, errors.NewValueError("blockmat.Partition", "block size must be positive")
	}
	if len(data) == 0 {
		return nil, errors.NewValueError("blockmat.Partition", "cannot partition an empty vector")
	}

	var blocks []*mat.VecDense
	for start := 0; start < len(data); start += blockSize {
		end := start + blockSize
		if end > len(data) {
			end = len(data)
		}
		block := mat.NewVecDense(end-start, nil)
		for i := start; i < end; i++ {
			block.SetVec(i-start, data[i])
		}
		blocks = append(blocks, block)
	}
	return &PartitionedVector{blocks: blocks}, nil
}

// FromBlocks constructs a partitioned vector from existing blocks.
// The blocks are referenced, not copied.
func FromBlocks(blocks []*mat.VecDense) (*PartitionedVector, error) {
	if len(blocks) == 0 {
		return nil, errors.NewValueError("blockmat.FromBlocks", "at least one block is required")
	}
	for i, b := range blocks {
		if b == nil || b.Len() == 0 {
			return nil, errors.NewDimensionError("blockmat.FromBlocks", 1, 0, i)
		}
	}
	return &PartitionedVector{blocks: blocks}, nil
}

// Blocks returns the number of blocks.
func (v *PartitionedVector) Blocks() int {
	return len(v.blocks)
}

// Len returns the total number of entries across all blocks.
func (v *PartitionedVector) Len() int {
	n := 0
	for _, b := range v.blocks {
		n += b.Len()
	}
	return n
}

// Block returns the i-th block. The block is shared, not copied.
func (v *PartitionedVector) Block(i int) *mat.VecDense {
	return v.blocks[i]
}

// Map applies f independently to every entry, preserving the partition.
func (v *PartitionedVector) Map(f func(float64) float64) *PartitionedVector {
	out := make([]*mat.VecDense, len(v.blocks))
	for i, b := range v.blocks {
		nb := mat.NewVecDense(b.Len(), nil)
		for j := 0; j < b.Len(); j++ {
			nb.SetVec(j, f(b.AtVec(j)))
		}
		out[i] = nb
	}
	return &PartitionedVector{blocks: out}
}

// MapBlocks applies f to each block as a whole, preserving block order.
func (v *PartitionedVector) MapBlocks(f func(i int, b *mat.VecDense) *mat.VecDense) *PartitionedVector {
	out := make([]*mat.VecDense, len(v.blocks))
	for i, b := range v.blocks {
		out[i] = f(i, b)
	}
	return &PartitionedVector{blocks: out}
}

// Filter returns a new partitioned vector keeping only the blocks for which
// pred is true. The result may be empty; callers that require at least one
// block must check Blocks.
func (v *PartitionedVector) Filter(pred func(i int, b *mat.VecDense) bool) *PartitionedVector {
	var out []*mat.VecDense
	for i, b := range v.blocks {
		if pred(i, b) {
			out = append(out, b)
		}
	}
	return &PartitionedVector{blocks: out}
}

// Flatten concatenates all blocks into one dense slice in block order.
func (v *PartitionedVector) Flatten() []float64 {
	out := make([]float64, 0, v.Len())
	for _, b := range v.blocks {
		for j := 0; j < b.Len(); j++ {
			out = append(out, b.AtVec(j))
		}
	}
	return out
}

// BlockDiagonal is a square matrix stored as its diagonal blocks only.
// Off-diagonal blocks are structurally zero and never materialized, which is
// exactly the shape of a lifted pushforward Jacobian over independent
// observations.
type BlockDiagonal struct {
	blocks []*mat.Dense
}

// NewBlockDiagonal constructs a block-diagonal matrix from square blocks.
func NewBlockDiagonal(blocks []*mat.Dense) (*BlockDiagonal, error) {
	if len(blocks) == 0 {
		return nil, errors.NewValueError("blockmat.NewBlockDiagonal", "at least one block is required")
	}
	for i, b := range blocks {
		r, c := b.Dims()
		if r != c {
			return nil, errors.NewDimensionError("blockmat.NewBlockDiagonal", r, c, i)
		}
	}
	return &BlockDiagonal{blocks: blocks}, nil
}

// DiagonalOf builds a block-diagonal matrix whose i-th block is the diagonal
// matrix of f applied to the entries of the i-th block of v.
func DiagonalOf(v *PartitionedVector, f func(float64) float64) *BlockDiagonal {
	blocks := make([]*mat.Dense, v.Blocks())
	for i := 0; i < v.Blocks(); i++ {
		b := v.Block(i)
		d := mat.NewDense(b.Len(), b.Len(), nil)
		for j := 0; j < b.Len(); j++ {
			d.Set(j, j, f(b.AtVec(j)))
		}
		blocks[i] = d
	}
	return &BlockDiagonal{blocks: blocks}
}

// Blocks returns the number of diagonal blocks.
func (m *BlockDiagonal) Blocks() int {
	return len(m.blocks)
}

// Dim returns the total dimension of the (square) matrix.
func (m *BlockDiagonal) Dim() int {
	n := 0
	for _, b := range m.blocks {
		r, _ := b.Dims()
		n += r
	}
	return n
}

// Block returns the i-th diagonal block. The block is shared, not copied.
func (m *BlockDiagonal) Block(i int) *mat.Dense {
	return m.blocks[i]
}

// BlockDet returns the determinant of the i-th diagonal block.
func (m *BlockDiagonal) BlockDet(i int) float64 {
	return mat.Det(m.blocks[i])
}

// Det returns the determinant of the whole matrix as the product of the
// per-block determinants. Blocks are independent, so the computation is
// parallelized across blocks once there are enough of them.
func (m *BlockDiagonal) Det() float64 {
	if len(m.blocks) < parallelBlockThreshold {
		det := 1.0
		for _, b := range m.blocks {
			det *= mat.Det(b)
		}
		return det
	}
	return parallel.MapReduceFloat64(len(m.blocks), 1.0,
		func(i int) float64 { return mat.Det(m.blocks[i]) },
		func(a, b float64) float64 { return a * b })
}

// MulVec computes the block product m·v. Both operands must share the same
// block structure.
func (m *BlockDiagonal) MulVec(v *PartitionedVector) (*PartitionedVector, error) {
	if len(m.blocks) != v.Blocks() {
		return nil, errors.NewDimensionError("blockmat.MulVec", len(m.blocks), v.Blocks(), 0)
	}
	out := make([]*mat.VecDense, len(m.blocks))
	for i, b := range m.blocks {
		r, _ := b.Dims()
		vb := v.Block(i)
		if vb.Len() != r {
			return nil, errors.NewDimensionError("blockmat.MulVec", r, vb.Len(), 1)
		}
		nb := mat.NewVecDense(r, nil)
		nb.MulVec(b, vb)
		out[i] = nb
	}
	return &PartitionedVector{blocks: out}, nil
}
