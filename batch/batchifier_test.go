package batch

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// makeData returns X with row i equal to [i, 10*i] and y_i = i.
func makeData(n int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(10*i))
		y.SetVec(i, float64(i))
	}
	return X, y
}

func newTestBatchifier(t *testing.T, size int, seed uint64) *Batchifier {
	t.Helper()
	b, err := New(size, rand.New(rand.NewPCG(seed, seed+1)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b
}

func TestBatchSizes(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		batchSize int
		want      []int
	}{
		{"remainder", 10, 3, []int{3, 3, 3, 1}},
		{"exact", 12, 4, []int{4, 4, 4}},
		{"batch larger than data", 5, 16, []int{5}},
		{"single row", 1, 1, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X, y := makeData(tt.n)
			b := newTestBatchifier(t, tt.batchSize, 42)
			if b.BatchSize() != tt.batchSize {
				t.Errorf("BatchSize() = %d, want %d", b.BatchSize(), tt.batchSize)
			}
			if err := b.Batch(X, y); err != nil {
				t.Fatalf("Batch() error = %v", err)
			}
			if b.Len() != len(tt.want) {
				t.Fatalf("Len() = %d, want %d", b.Len(), len(tt.want))
			}

			var sizes []int
			for mb := range b.All() {
				sizes = append(sizes, mb.Size())
			}
			if !slices.Equal(sizes, tt.want) {
				t.Errorf("sizes = %v, want %v", sizes, tt.want)
			}
		})
	}
}

func TestBatchCoversEveryRowOnce(t *testing.T) {
	X, y := makeData(10)
	b := newTestBatchifier(t, 3, 7)
	if err := b.Batch(X, y); err != nil {
		t.Fatalf("Batch() error = %v", err)
	}

	var seen []int
	for _, g := range b.Indices() {
		seen = append(seen, g...)
	}
	slices.Sort(seen)
	for i, v := range seen {
		if v != i {
			t.Fatalf("indices %v are not a permutation of 0..9", seen)
		}
	}

	// rows and targets stay paired and keep their feature dimensionality
	for mb := range b.All() {
		r, c := mb.X.Dims()
		if c != 2 || r != mb.Size() {
			t.Fatalf("batch dims = (%d, %d), targets %d", r, c, mb.Size())
		}
		for k := 0; k < r; k++ {
			target := mb.Y.AtVec(k)
			if mb.X.At(k, 0) != target || mb.X.At(k, 1) != 10*target {
				t.Errorf("row %d (%v, %v) does not match target %v", k, mb.X.At(k, 0), mb.X.At(k, 1), target)
			}
		}
	}
}

func TestBatchIsSinglePass(t *testing.T) {
	X, y := makeData(10)
	b := newTestBatchifier(t, 4, 1)
	if err := b.Batch(X, y); err != nil {
		t.Fatalf("Batch() error = %v", err)
	}

	count := 0
	for range b.All() {
		count++
	}
	if count != 3 {
		t.Fatalf("first pass yielded %d batches, want 3", count)
	}
	if _, ok := b.Next(); ok {
		t.Error("exhausted Batchifier should not yield again")
	}
	if b.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", b.Remaining())
	}

	if err := b.Batch(X, y); err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	if b.Remaining() != 3 {
		t.Errorf("Remaining() after re-batch = %d, want 3", b.Remaining())
	}
}

func TestBatchShufflesAndIsReproducible(t *testing.T) {
	X, y := makeData(50)

	b1 := newTestBatchifier(t, 50, 99)
	b2 := newTestBatchifier(t, 50, 99)
	if err := b1.Batch(X, y); err != nil {
		t.Fatal(err)
	}
	if err := b2.Batch(X, y); err != nil {
		t.Fatal(err)
	}

	order1 := b1.Indices()[0]
	if !slices.Equal(order1, b2.Indices()[0]) {
		t.Error("same seed should give the same permutation")
	}

	identity := make([]int, 50)
	for i := range identity {
		identity[i] = i
	}
	if slices.Equal(order1, identity) {
		t.Error("rows were not shuffled")
	}

	// a second epoch draws a new permutation
	if err := b1.Batch(X, y); err != nil {
		t.Fatal(err)
	}
	if slices.Equal(order1, b1.Indices()[0]) {
		t.Error("consecutive calls to Batch should reshuffle")
	}
}

func TestBatchValidation(t *testing.T) {
	if _, err := New(0, rand.New(rand.NewPCG(1, 1))); err == nil {
		t.Error("batch size 0 should be rejected")
	}
	if _, err := New(4, nil); err == nil {
		t.Error("nil random source should be rejected")
	}

	b := newTestBatchifier(t, 4, 1)
	X, _ := makeData(5)
	err := b.Batch(X, mat.NewVecDense(4, nil))
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError, got %v", err)
	}

	if _, ok := b.Next(); ok {
		t.Error("Next before a successful Batch should yield nothing")
	}
}

func BenchmarkBatch(b *testing.B) {
	X, y := makeData(10000)
	bf, _ := New(64, rand.New(rand.NewPCG(1, 2)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bf.Batch(X, y)
		for range bf.All() {
		}
	}
}
