package linear

import (
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricecast/pkg/errors"
)

// captureWarnings はテスト中に発行された警告を記録する
func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { errors.SetWarningHandler(nil) })
	return &warnings
}

func TestSDCARegressorRecoversLinearFunction(t *testing.T) {
	warnings := captureWarnings(t)
	X, y := createBenchmarkData(200, 3, 0)

	fitted, err := NewSDCARegressor(WithL2(1e-3)).Fit(X, y)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	want := []float64{0.5, 1.0, 1.5}
	for j, w := range fitted.Weights() {
		if math.Abs(w-want[j]) > 0.05 {
			t.Errorf("weight[%d] = %v, want ~%v", j, w, want[j])
		}
	}
	if math.Abs(fitted.Intercept()-1.0) > 0.05 {
		t.Errorf("Intercept() = %v, want ~1.0", fitted.Intercept())
	}
	if !fitted.Converged() || fitted.NIter() >= 100 {
		t.Errorf("expected convergence before the cap, got converged=%v nIter=%d", fitted.Converged(), fitted.NIter())
	}
	if len(*warnings) != 0 {
		t.Errorf("unexpected warnings: %v", *warnings)
	}

	score, err := fitted.Score(X, mat.NewVecDense(200, mat.Col(nil, 0, y)))
	if err != nil {
		t.Fatal(err)
	}
	if score < 0.99 {
		t.Errorf("Score() = %v, want > 0.99", score)
	}
}

func TestSDCARegressorStopsAtIterationCap(t *testing.T) {
	warnings := captureWarnings(t)
	X, y := createBenchmarkData(200, 5, 0.01)

	fitted, err := NewSDCARegressor(WithMaxIter(2), WithTol(0)).Fit(X, y)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if fitted.NIter() != 2 {
		t.Errorf("NIter() = %d, want exactly 2", fitted.NIter())
	}
	if fitted.Converged() {
		t.Error("should not report convergence at the cap")
	}
	if len(*warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(*warnings))
	}
	var cw *errors.ConvergenceWarning
	if !errors.As((*warnings)[0], &cw) {
		t.Fatalf("expected ConvergenceWarning, got %T", (*warnings)[0])
	}
	if cw.Iterations != 2 {
		t.Errorf("warning iterations = %d, want 2", cw.Iterations)
	}
}

func TestSDCARegressorDeterministic(t *testing.T) {
	captureWarnings(t)
	X, y := createBenchmarkData(100, 4, 0.01)

	for _, shuffle := range []bool{true, false} {
		a, err := NewSDCARegressor(WithRandomState(7), WithShuffle(shuffle), WithMaxIter(5)).Fit(X, y)
		if err != nil {
			t.Fatal(err)
		}
		b, err := NewSDCARegressor(WithRandomState(7), WithShuffle(shuffle), WithMaxIter(5)).Fit(X, y)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a.Weights(), b.Weights()) || a.Intercept() != b.Intercept() {
			t.Errorf("shuffle=%v: same seed gave different weights", shuffle)
		}
	}
}

func TestSDCARegressorConstantLabels(t *testing.T) {
	captureWarnings(t)
	X := mat.NewDense(4, 1, []float64{0, 0.25, 0.5, 1})
	y := mat.NewDense(4, 1, []float64{3, 3, 3, 3})

	fitted, err := NewSDCARegressor().Fit(X, y)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	p, _ := fitted.PredictOne([]float64{0.5})
	if math.Abs(p-3) > 0.01 {
		t.Errorf("PredictOne() = %v, want ~3", p)
	}
}

func TestSDCARegressorErrors(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	tests := []struct {
		name string
		reg  *SDCARegressor
		X    mat.Matrix
		y    mat.Matrix
	}{
		{"empty data", NewSDCARegressor(), &mat.Dense{}, &mat.Dense{}},
		{"row mismatch", NewSDCARegressor(), X, mat.NewDense(3, 1, []float64{1, 2, 3})},
		{"y not a column", NewSDCARegressor(), X, mat.NewDense(4, 2, nil)},
		{"NaN feature", NewSDCARegressor(), mat.NewDense(2, 1, []float64{1, math.NaN()}), mat.NewDense(2, 1, []float64{1, 2})},
		{"Inf label", NewSDCARegressor(), mat.NewDense(2, 1, []float64{1, 2}), mat.NewDense(2, 1, []float64{1, math.Inf(1)})},
		{"zero iterations", NewSDCARegressor(WithMaxIter(0)), X, y},
		{"non-positive l2", NewSDCARegressor(WithL2(0)), X, y},
		{"negative tolerance", NewSDCARegressor(WithTol(-1)), X, y},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.reg.Fit(tt.X, tt.y); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := NewSDCARegressor().Fit(&mat.Dense{}, &mat.Dense{}); !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("empty Fit error = %v, want ErrEmptyData", err)
	}
}

// 目的関数がオーバーフローした場合は重みが有限でもエラーにする
func TestSDCARegressorObjectiveOverflow(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1e200, 1e200})
	y := mat.NewDense(2, 1, []float64{1e200, 1e200})

	_, err := NewSDCARegressor().Fit(X, y)
	var nie *errors.NumericalInstabilityError
	if !errors.As(err, &nie) {
		t.Fatalf("Fit() error = %v, want NumericalInstabilityError", err)
	}
	if nie.Iteration != 1 || !math.IsInf(nie.Values[0], 1) {
		t.Errorf("got iteration %d values %v, want iteration 1 and +Inf", nie.Iteration, nie.Values)
	}
}

func TestFittedModelPredict(t *testing.T) {
	m := &FittedModel{coef: []float64{2, -1}, intercept: 0.5}

	pred, err := m.Predict(mat.NewDense(2, 2, []float64{1, 1, 3, 2}))
	if err != nil {
		t.Fatal(err)
	}
	if pred.AtVec(0) != 1.5 || pred.AtVec(1) != 4.5 {
		t.Errorf("Predict() = %v, want [1.5 4.5]", mat.Formatted(pred.T()))
	}

	if _, err := m.Predict(mat.NewDense(1, 3, nil)); err == nil {
		t.Error("column mismatch should fail")
	}
	var dimErr *errors.DimensionError
	if _, err := m.PredictOne([]float64{1}); !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError, got %v", err)
	}

	w := m.Weights()
	w[0] = 100
	if m.Weights()[0] != 2 {
		t.Error("Weights() must return a copy")
	}
}

func TestFittedModelToWeights(t *testing.T) {
	captureWarnings(t)
	X, y := createBenchmarkData(50, 2, 0.01)
	fitted, err := NewSDCARegressor().Fit(X, y)
	if err != nil {
		t.Fatal(err)
	}

	snap := fitted.ToWeights([]string{"a", "b"})
	if err := snap.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if snap.ModelType != "SDCARegressor" || snap.Intercept != fitted.Intercept() {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.Hyperparameters["max_iter"] != 100 {
		t.Errorf("max_iter = %v, want 100", snap.Hyperparameters["max_iter"])
	}
}
