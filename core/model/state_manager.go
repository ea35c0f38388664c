package model

import (
	"sync"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

// StateManager tracks the NotFitted -> Fitted lifecycle of a model in a
// thread-safe manner, together with the shape seen during fitting.
type StateManager struct {
	mu    sync.RWMutex
	state EstimatorState

	nFeatures int
	nSamples  int
}

// NewStateManager creates a new StateManager in the NotFitted state.
func NewStateManager() *StateManager {
	return &StateManager{state: NotFitted}
}

// State returns the current lifecycle state.
func (s *StateManager) State() EstimatorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	return s.State() == Fitted
}

// MarkFitted moves the model to Fitted and records the training shape.
func (s *StateManager) MarkFitted(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Fitted
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// Reset returns to NotFitted and forgets the training shape.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = NotFitted
	s.nFeatures = 0
	s.nSamples = 0
}

// GetDimensions returns the number of features and samples seen during fitting.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nSamples
}

// RequireFitted returns a NotFittedError naming modelName and method when the
// model is still NotFitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// ModelState is a serializable snapshot of a StateManager.
type ModelState struct {
	Fitted    bool `json:"fitted"`
	NFeatures int  `json:"n_features,omitempty"`
	NSamples  int  `json:"n_samples,omitempty"`
}

// GetState returns the current state as a ModelState struct.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ModelState{
		Fitted:    s.state == Fitted,
		NFeatures: s.nFeatures,
		NSamples:  s.nSamples,
	}
}
