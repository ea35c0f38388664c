// Package model provides the estimator lifecycle, shared interfaces and
// weight serialization used by gdlinear models.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Predictor produces one prediction per input row.
type Predictor interface {
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction.
	Score(X, y mat.Matrix) (float64, error)
}

// LinearModel exposes the learned parameters of a linear model.
type LinearModel interface {
	// Coef は学習された重み（係数）を返す
	Coef() []float64
	// Intercept は学習された切片を返す
	Intercept() float64
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Predictor
	Scorer
	LinearModel
	IsFitted() bool
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}

// WeightExporter は重みをエクスポート可能なモデルのインターフェース
type WeightExporter interface {
	ExportWeights() (*ModelWeights, error)
	ImportWeights(weights *ModelWeights) error
}
