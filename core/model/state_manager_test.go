package model

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/YuminosukeSato/pricecast/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()
	if s.State() != NotFitted {
		t.Fatalf("initial state = %v, want Unfit", s.State())
	}
	if err := s.RequireFitted("Pipeline", "Predict"); err == nil {
		t.Error("RequireFitted should fail before fit")
	}

	if err := s.BeginFit("Pipeline.Fit"); err != nil {
		t.Fatalf("BeginFit() error = %v", err)
	}
	if s.State() != Fitting {
		t.Fatalf("state = %v, want Fitting", s.State())
	}
	var nf *errors.NotFittedError
	if err := s.RequireFitted("Pipeline", "Predict"); !errors.As(err, &nf) {
		t.Errorf("RequireFitted during Fitting = %v, want NotFittedError", err)
	}

	s.CompleteFit(12, 40)
	if !s.IsFitted() {
		t.Fatal("expected Fitted after CompleteFit")
	}
	if f, n := s.GetDimensions(); f != 12 || n != 40 {
		t.Errorf("GetDimensions() = (%d, %d), want (12, 40)", f, n)
	}

	err := s.BeginFit("Pipeline.Fit")
	if !errors.Is(err, errors.ErrAlreadyFitted) {
		t.Errorf("second BeginFit() = %v, want ErrAlreadyFitted", err)
	}
	s.AbortFit()
	if !s.IsFitted() {
		t.Error("AbortFit must not leave the Fitted state")
	}
}

func TestStateManagerAbortFit(t *testing.T) {
	s := NewStateManager()
	if err := s.BeginFit("op"); err != nil {
		t.Fatal(err)
	}
	s.AbortFit()
	if s.State() != NotFitted {
		t.Errorf("state after AbortFit = %v, want Unfit", s.State())
	}
	if err := s.BeginFit("op"); err != nil {
		t.Errorf("BeginFit after abort should succeed, got %v", err)
	}
}

func TestStateManagerSingleFitter(t *testing.T) {
	s := NewStateManager()
	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.BeginFit("op") == nil {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()
	if winners != 1 {
		t.Errorf("%d goroutines entered Fitting, want exactly 1", winners)
	}
}

func TestModelWeightsValidateAndClone(t *testing.T) {
	mw := &ModelWeights{
		ModelType:       "SDCARegressor",
		Version:         "1.0.0",
		Coefficients:    []float64{0.5, -1.5},
		Intercept:       2,
		Features:        []string{"item=Beef", "month"},
		Hyperparameters: map[string]interface{}{"max_iterations": 100},
		IsFitted:        true,
	}
	if err := mw.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	clone := mw.Clone()
	clone.Coefficients[0] = 99
	clone.Hyperparameters["max_iterations"] = 1
	if mw.Coefficients[0] != 0.5 || mw.Hyperparameters["max_iterations"] != 100 {
		t.Error("Clone must not share slices or maps with the original")
	}

	mw.Features = []string{"item=Beef"}
	if err := mw.Validate(); err == nil {
		t.Error("expected misaligned features to fail validation")
	}
}
