// Package batch produces shuffled mini-batches of a training set.
//
// A Batchifier is driven one epoch at a time:
//
//	b, _ := batch.New(16, rand.New(rand.NewPCG(1, 2)))
//	for epoch := 0; epoch < epochs; epoch++ {
//	    if err := b.Batch(X, y); err != nil {
//	        return err
//	    }
//	    for mb := range b.All() {
//	        // mb.X is len(mb.Y) x D
//	    }
//	}
//
// Each call to Batch draws a fresh permutation. The resulting sequence is
// single pass; iterating again requires another call to Batch.
package batch

import (
	"iter"
	"math/rand/v2"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Batch is one mini-batch: a subset of feature rows and the matching targets,
// in permutation order.
type Batch struct {
	X *mat.Dense
	Y *mat.VecDense
}

// Size returns the number of rows in the batch.
func (b Batch) Size() int {
	return b.Y.Len()
}

// Batchifier partitions a dataset into shuffled mini-batches.
// It is not safe for concurrent use.
type Batchifier struct {
	batchSize int
	rng       *rand.Rand

	x      mat.Matrix
	y      mat.Vector
	groups [][]int
	next   int
}

// New returns a Batchifier producing batches of batchSize rows, shuffling
// with rng.
func New(batchSize int, rng *rand.Rand) (*Batchifier, error) {
	if batchSize < 1 {
		return nil, errors.NewValidationError("batch_size", "must be at least 1", batchSize)
	}
	if rng == nil {
		return nil, errors.NewValidationError("rng", "random source is required", nil)
	}
	return &Batchifier{batchSize: batchSize, rng: rng}, nil
}

// BatchSize returns the configured batch size.
func (b *Batchifier) BatchSize() int {
	return b.batchSize
}

// Batch draws a new permutation of the rows of X and partitions it into
// consecutive groups of BatchSize rows; the last group holds the remainder.
// Any unconsumed batches of a previous call are discarded.
func (b *Batchifier) Batch(X mat.Matrix, y mat.Vector) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("Batchifier.Batch", "empty data", errors.ErrEmptyData)
	}
	if y.Len() != r {
		return errors.NewDimensionError("Batchifier.Batch", r, y.Len(), 0)
	}

	perm := b.rng.Perm(r)
	groups := make([][]int, 0, (r+b.batchSize-1)/b.batchSize)
	for start := 0; start < r; start += b.batchSize {
		end := min(start+b.batchSize, r)
		groups = append(groups, perm[start:end:end])
	}

	b.x, b.y = X, y
	b.groups = groups
	b.next = 0
	return nil
}

// Len returns the number of batches in the current partition, consumed or not.
func (b *Batchifier) Len() int {
	return len(b.groups)
}

// Remaining returns how many batches Next will still yield.
func (b *Batchifier) Remaining() int {
	return len(b.groups) - b.next
}

// Next materializes the next batch. It returns false once the partition is
// exhausted or before the first call to Batch.
func (b *Batchifier) Next() (Batch, bool) {
	if b.next >= len(b.groups) {
		return Batch{}, false
	}
	idx := b.groups[b.next]
	b.next++

	_, c := b.x.Dims()
	xb := mat.NewDense(len(idx), c, nil)
	yb := mat.NewVecDense(len(idx), nil)
	for k, row := range idx {
		mat.Row(xb.RawRowView(k), row, b.x)
		yb.SetVec(k, b.y.AtVec(row))
	}
	return Batch{X: xb, Y: yb}, true
}

// All yields the remaining batches of the current partition.
func (b *Batchifier) All() iter.Seq[Batch] {
	return func(yield func(Batch) bool) {
		for {
			mb, ok := b.Next()
			if !ok || !yield(mb) {
				return
			}
		}
	}
}

// Indices returns a copy of the row indices of every batch in the current
// partition.
func (b *Batchifier) Indices() [][]int {
	out := make([][]int, len(b.groups))
	for i, g := range b.groups {
		out[i] = append([]int(nil), g...)
	}
	return out
}
