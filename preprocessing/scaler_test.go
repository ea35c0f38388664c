package preprocessing

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 3, []float64{
		1, 10, 5,
		2, 20, 5,
		3, 30, 5,
		4, 40, 5,
	})

	tests := []struct {
		name      string
		withMean  bool
		withStd   bool
		wantMean  []float64
		wantScale []float64
	}{
		{"default", true, true, []float64{2.5, 25, 5}, []float64{math.Sqrt(1.25), math.Sqrt(125), 1}},
		{"no mean", false, true, []float64{0, 0, 0}, []float64{math.Sqrt(1.25), math.Sqrt(125), 1}},
		{"no std", true, false, []float64{2.5, 25, 5}, []float64{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStandardScaler(tt.withMean, tt.withStd)
			if err := s.Fit(X); err != nil {
				t.Fatalf("Fit() error = %v", err)
			}
			if !floats.EqualApprox(s.Mean, tt.wantMean, 1e-12) {
				t.Errorf("Mean = %v, want %v", s.Mean, tt.wantMean)
			}
			if !floats.EqualApprox(s.Scale, tt.wantScale, 1e-12) {
				t.Errorf("Scale = %v, want %v", s.Scale, tt.wantScale)
			}

			back, err := s.InverseTransform(mustTransform(t, s, X))
			if err != nil {
				t.Fatal(err)
			}
			if !mat.EqualApprox(back, X, 1e-12) {
				t.Errorf("InverseTransform(Transform(X)) = %v, want X", mat.Formatted(back))
			}
		})
	}
}

func mustTransform(t *testing.T, s *StandardScaler, X mat.Matrix) mat.Matrix {
	t.Helper()
	out, err := s.Transform(X)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	return out
}

func TestStandardScalerFitTransform(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{10, 20, 30, 40, 50})
	s := NewStandardScalerDefault()

	out, err := s.FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}
	col := mat.Col(nil, 0, out)
	mean, std := stat.PopMeanStdDev(col, nil)
	if math.Abs(mean) > 1e-12 || math.Abs(std-1) > 1e-12 {
		t.Errorf("standardised column has mean %v, std %v", mean, std)
	}

	v, err := s.InverseTransformVec(mat.NewVecDense(5, col))
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualApprox(v.RawVector().Data, []float64{10, 20, 30, 40, 50}, 1e-9) {
		t.Errorf("InverseTransformVec() = %v", v.RawVector().Data)
	}
}

func TestStandardScalerErrors(t *testing.T) {
	s := NewStandardScalerDefault()
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	var nfe *errors.NotFittedError
	if _, err := s.Transform(X); !errors.As(err, &nfe) {
		t.Errorf("Transform() before Fit error = %v, want NotFittedError", err)
	}
	if _, err := s.InverseTransformVec(mat.NewVecDense(2, nil)); !errors.As(err, &nfe) {
		t.Errorf("InverseTransformVec() before Fit error = %v, want NotFittedError", err)
	}

	if err := s.Fit(X); err != nil {
		t.Fatal(err)
	}
	var dimErr *errors.DimensionError
	if _, err := s.Transform(mat.NewDense(2, 3, nil)); !errors.As(err, &dimErr) {
		t.Errorf("Transform() error = %v, want DimensionError", err)
	}
	if _, err := s.InverseTransformVec(mat.NewVecDense(2, nil)); !errors.As(err, &dimErr) {
		t.Errorf("InverseTransformVec() on two columns error = %v, want DimensionError", err)
	}

	bad := mat.NewDense(2, 1, []float64{1, math.NaN()})
	var numErr *errors.NumericalInstabilityError
	if err := NewStandardScalerDefault().Fit(bad); !errors.As(err, &numErr) {
		t.Errorf("Fit() with NaN error = %v, want NumericalInstabilityError", err)
	}
}
