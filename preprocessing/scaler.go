// Package preprocessing rescales features and targets before training.
//
// The early-stopping threshold of linear.SGDRegressor is an absolute loss
// spread, so standardising the target puts it on a known scale.
package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/gdlinear/core/model"
	"github.com/YuminosukeSato/gdlinear/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// minScale is the standard deviation below which a column is treated as
// constant and left unscaled.
const minScale = 1e-8

// StandardScaler はデータを平均0、標準偏差1に変換する
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各列の平均値 (WithMean が false なら 0)
	Mean []float64

	// Scale は各列の母標準偏差 (定数列と WithStd が false の場合は 1)
	Scale []float64

	NFeatures int

	WithMean bool
	WithStd  bool
}

var _ model.Transformer = (*StandardScaler)(nil)

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault centres and scales every column.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit computes the per-column mean and population standard deviation of X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	mean := make([]float64, c)
	scale := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		if err := errors.CheckNumericalStability("StandardScaler.Fit", col, 0); err != nil {
			return err
		}

		m, std := stat.PopMeanStdDev(col, nil)
		if s.WithMean {
			mean[j] = m
		}
		scale[j] = 1
		if s.WithStd && std >= minScale {
			scale[j] = std
		}
	}

	s.Mean, s.Scale, s.NFeatures = mean, scale, c
	s.SetFitted()
	return nil
}

// Transform returns (X - Mean) / Scale column by column.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.check("Transform", X); err != nil {
		return nil, err
	}

	r, _ := X.Dims()
	result := mat.DenseCopyOf(X)
	for i := 0; i < r; i++ {
		row := result.RawRowView(i)
		floats.Sub(row, s.Mean)
		floats.Div(row, s.Scale)
	}
	return result, nil
}

// FitTransform fits on X and returns X transformed.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.check("InverseTransform", X); err != nil {
		return nil, err
	}

	r, _ := X.Dims()
	result := mat.DenseCopyOf(X)
	for i := 0; i < r; i++ {
		row := result.RawRowView(i)
		floats.Mul(row, s.Scale)
		floats.Add(row, s.Mean)
	}
	return result, nil
}

// InverseTransformVec maps a vector of standardised single-column values,
// such as predictions of a model trained on a scaled target, back to the
// original scale.
func (s *StandardScaler) InverseTransformVec(v mat.Vector) (*mat.VecDense, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransformVec")
	}
	if s.NFeatures != 1 {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransformVec", 1, s.NFeatures, 1)
	}

	out := mat.NewVecDense(v.Len(), nil)
	out.AddScaledVec(out, s.Scale[0], v)
	for i := 0; i < out.Len(); i++ {
		out.SetVec(i, out.AtVec(i)+s.Mean[0])
	}
	return out, nil
}

func (s *StandardScaler) check(method string, X mat.Matrix) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError("StandardScaler", method)
	}
	if _, c := X.Dims(); c != s.NFeatures {
		return errors.NewDimensionError("StandardScaler."+method, s.NFeatures, c, 1)
	}
	return nil
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}
