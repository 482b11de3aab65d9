package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "OneHotEncoder.Fit",
			kind:    "empty data",
			err:     ErrEmptyData,
			wantMsg: "pricecast: OneHotEncoder.Fit: empty data: empty data",
		},
		{
			name:    "without original error",
			op:      "Pipeline.Fit",
			kind:    "split failed",
			err:     nil,
			wantMsg: "pricecast: Pipeline.Fit: split failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
			if tt.err != nil && !Is(err, tt.err) {
				t.Errorf("Is(err, %v) = false, want true", tt.err)
			}
		})
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("FittedPipeline", "Predict")

	want := "pricecast: FittedPipeline: not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var nfErr *NotFittedError
	if !As(err, &nfErr) {
		t.Fatal("Error should be castable to *NotFittedError")
	}
	if nfErr.Method != "Predict" {
		t.Errorf("Method = %q, want Predict", nfErr.Method)
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("month", "must be between 1 and 12", 13)

	want := "pricecast: validation failed for 'month': must be between 1 and 12 (got: 13)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var vErr *ValidationError
	if !As(err, &vErr) {
		t.Fatal("Error should be castable to *ValidationError")
	}
	if vErr.ParamName != "month" {
		t.Errorf("ParamName = %q, want month", vErr.ParamName)
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("FittedModel.Predict", 12, 10, 1)

	want := "pricecast: FittedModel.Predict: dimension mismatch on axis 1 (features). Expected 12, got 10"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestWarningMessages(t *testing.T) {
	cw := NewConvergenceWarning("SDCARegressor", 100, "")
	if !strings.Contains(cw.Error(), "failed to converge after 100 iterations") {
		t.Errorf("unexpected ConvergenceWarning message: %s", cw.Error())
	}

	uw := NewUndefinedMetricWarning("r2_score", "zero variance in y_true", math.NaN())
	if !strings.Contains(uw.Error(), "'r2_score' is ill-defined and being set to NaN") {
		t.Errorf("unexpected UndefinedMetricWarning message: %s", uw.Error())
	}
}

func TestWarnRouting(t *testing.T) {
	var handled []error
	SetWarningHandler(func(w error) { handled = append(handled, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewConvergenceWarning("SDCARegressor", 3, "Maximum number of iterations reached"))
	if len(handled) != 1 {
		t.Fatalf("handler called %d times, want 1", len(handled))
	}

	var viaZerolog []error
	SetZerologWarnFunc(func(w error) { viaZerolog = append(viaZerolog, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewUndefinedMetricWarning("r2_score", "zero variance", math.NaN()))
	if len(viaZerolog) != 1 {
		t.Errorf("zerolog warn func called %d times, want 1", len(viaZerolog))
	}
	if len(handled) != 1 {
		t.Errorf("fallback handler should not be called when zerolog func is set")
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("op", []float64{1, 2, 3}, 0); err != nil {
		t.Errorf("unexpected error for finite values: %v", err)
	}

	err := CheckNumericalStability("sdca_epoch", []float64{1, math.NaN(), math.Inf(1)}, 7)
	if err == nil {
		t.Fatal("expected error for NaN/Inf values")
	}
	var nErr *NumericalInstabilityError
	if !As(err, &nErr) {
		t.Fatal("Error should be castable to *NumericalInstabilityError")
	}
	if nErr.Iteration != 7 || len(nErr.Values) != 2 {
		t.Errorf("got iteration=%d values=%v", nErr.Iteration, nErr.Values)
	}

	if err := CheckScalar("bias", math.Inf(-1), 1); err == nil {
		t.Error("expected error for -Inf scalar")
	}
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err, "TestRecover")
		var m map[string]int
		m["boom"] = 1
		return nil
	}

	err := run()
	if err == nil {
		t.Fatal("expected panic to be converted into an error")
	}
	var pErr *PanicError
	if !As(err, &pErr) {
		t.Fatalf("expected *PanicError, got %T", err)
	}
	if pErr.Operation != "TestRecover" {
		t.Errorf("Operation = %q, want TestRecover", pErr.Operation)
	}
}
