// Package model provides state management for pipeline components.
package model

import (
	"sync"

	"github.com/YuminosukeSato/pricecast/pkg/errors"
)

// StateManager guards the Unfit -> Fitting -> Fitted lifecycle of a component
// that may be shared between goroutines. There is no transition back from
// Fitted: re-fitting means building a new component.
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

// IsFitted returns whether the component has been fitted.
func (s *StateManager) IsFitted() bool {
	return s.State() == Fitted
}

// BeginFit moves NotFitted to Fitting. It fails with ErrAlreadyFitted when a fit
// is already running or has completed, so only one caller can ever fit.
func (s *StateManager) BeginFit(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != NotFitted {
		return errors.NewModelError(op, "state is "+s.state.String(), errors.ErrAlreadyFitted)
	}
	s.state = Fitting
	return nil
}

// CompleteFit moves Fitting to Fitted and records the fitted dimensions.
func (s *StateManager) CompleteFit(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Fitting {
		return
	}
	s.state = Fitted
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// AbortFit moves Fitting back to NotFitted after a failed fit.
func (s *StateManager) AbortFit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Fitting {
		s.state = NotFitted
	}
}

// GetDimensions returns the number of features and samples seen during fitting.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nSamples
}

// RequireFitted returns a NotFittedError unless the component is Fitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}
