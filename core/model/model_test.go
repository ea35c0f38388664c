package model

import (
	"testing"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()

	if s.IsFitted() {
		t.Fatal("new StateManager should be NotFitted")
	}

	err := s.RequireFitted("SGDRegressor", "Predict")
	var notFitted *errors.NotFittedError
	if !errors.As(err, &notFitted) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}

	s.MarkFitted(3, 100)
	if s.State() != Fitted {
		t.Errorf("State() = %v, want fitted", s.State())
	}
	if err := s.RequireFitted("SGDRegressor", "Predict"); err != nil {
		t.Errorf("unexpected error after MarkFitted: %v", err)
	}
	if f, n := s.GetDimensions(); f != 3 || n != 100 {
		t.Errorf("GetDimensions() = (%d, %d), want (3, 100)", f, n)
	}

	state := s.GetState()
	if !state.Fitted || state.NFeatures != 3 {
		t.Errorf("GetState() = %+v", state)
	}

	s.Reset()
	if s.IsFitted() {
		t.Error("Reset should return to NotFitted")
	}
}

func TestBaseEstimator(t *testing.T) {
	var e BaseEstimator
	if e.IsFitted() {
		t.Fatal("zero BaseEstimator should not be fitted")
	}
	e.SetFitted()
	if !e.IsFitted() {
		t.Fatal("SetFitted should mark fitted")
	}
	e.Reset()
	if e.IsFitted() {
		t.Fatal("Reset should clear fitted")
	}
}

func TestModelWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights ModelWeights
		wantErr bool
	}{
		{
			name:    "valid fitted",
			weights: ModelWeights{ModelType: "SGDRegressor", Version: "1.0.0", Coefficients: []float64{1}, IsFitted: true},
		},
		{
			name:    "missing type",
			weights: ModelWeights{Version: "1.0.0"},
			wantErr: true,
		},
		{
			name:    "missing version",
			weights: ModelWeights{ModelType: "SGDRegressor"},
			wantErr: true,
		},
		{
			name:    "fitted without coefficients",
			weights: ModelWeights{ModelType: "SGDRegressor", Version: "1.0.0", IsFitted: true},
			wantErr: true,
		},
		{
			name:    "unfitted with coefficients",
			weights: ModelWeights{ModelType: "SGDRegressor", Version: "1.0.0", Coefficients: []float64{1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestModelWeightsClone(t *testing.T) {
	orig := &ModelWeights{
		ModelType:       "SGDRegressor",
		Version:         "1.0.0",
		Coefficients:    []float64{1, 2},
		Intercept:       0.5,
		Hyperparameters: map[string]interface{}{"learning_rate": 0.01},
		IsFitted:        true,
	}

	clone := orig.Clone()
	clone.Coefficients[0] = 99
	clone.Hyperparameters["learning_rate"] = 1.0

	if orig.Coefficients[0] != 1 {
		t.Error("Clone shares coefficient storage")
	}
	if orig.Hyperparameters["learning_rate"] != 0.01 {
		t.Error("Clone shares hyperparameter map")
	}
}
