package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricecast/pkg/errors"
)

func vec(v ...float64) *mat.VecDense {
	return mat.NewVecDense(len(v), v)
}

func TestPointwiseMetrics(t *testing.T) {
	tests := []struct {
		name     string
		metric   func(yTrue, yPred mat.Vector) (float64, error)
		yTrue    *mat.VecDense
		yPred    *mat.VecDense
		want     float64
		wantErr  bool
	}{
		{"MSE perfect", MSE, vec(1, 2, 3, 4, 5), vec(1, 2, 3, 4, 5), 0, false},
		{"MSE simple", MSE, vec(1, 2, 3, 4), vec(1.5, 2.5, 2.5, 3.5), 0.25, false},
		{"MSE larger errors", MSE, vec(10, 20, 30), vec(12, 18, 33), 17.0 / 3.0, false},
		{"RMSE simple", RMSE, vec(1, 2, 3, 4), vec(1.5, 2.5, 2.5, 3.5), 0.5, false},
		{"MAE negative differences", MAE, vec(1, 2, 3), vec(2, 1, 5), 4.0 / 3.0, false},
		{"MSE dimension mismatch", MSE, vec(1, 2, 3), vec(1, 2), 0, true},
		{"MAE empty", MAE, &mat.VecDense{}, &mat.VecDense{}, 0, true},
		{"RMSE empty", RMSE, &mat.VecDense{}, &mat.VecDense{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.metric(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestR2Score(t *testing.T) {
	tests := []struct {
		name  string
		yTrue *mat.VecDense
		yPred *mat.VecDense
		want  float64
	}{
		{"perfect prediction", vec(1, 2, 3, 4), vec(1, 2, 3, 4), 1.0},
		{"mean baseline", vec(1, 2, 3, 4), vec(2.5, 2.5, 2.5, 2.5), 0.0},
		{"worse than mean baseline", vec(1, 2, 3), vec(3, 2, 1), -3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := R2Score(tt.yTrue, tt.yPred)
			if err != nil {
				t.Fatalf("R2Score() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("R2Score() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := R2Score(vec(1, 2), vec(1)); err == nil {
		t.Error("dimension mismatch should fail")
	}
}

func TestR2ScoreZeroVariance(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(nil)

	got, err := R2Score(vec(5, 5, 5), vec(4, 5, 6))
	if err != nil {
		t.Fatalf("zero variance must not be an error, got %v", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("R2Score() = %v, want NaN", got)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	var w *errors.UndefinedMetricWarning
	if !errors.As(warnings[0], &w) {
		t.Errorf("expected UndefinedMetricWarning, got %T", warnings[0])
	}
}

func TestEvaluateRegression(t *testing.T) {
	report, err := EvaluateRegression(vec(1, 2, 3, 4), vec(1.5, 2.5, 2.5, 3.5))
	if err != nil {
		t.Fatal(err)
	}
	if !report.RSquaredDefined {
		t.Error("R² should be defined")
	}
	if math.Abs(report.MSE-0.25) > 1e-12 || math.Abs(report.RMSE-0.5) > 1e-12 || math.Abs(report.MAE-0.5) > 1e-12 {
		t.Errorf("unexpected report %+v", report)
	}
	// TSS = 5, RSS = 1
	if math.Abs(report.RSquared-0.8) > 1e-12 {
		t.Errorf("RSquared = %v, want 0.8", report.RSquared)
	}
	if report.Samples != 4 {
		t.Errorf("Samples = %d, want 4", report.Samples)
	}
	if report.RMSE < 0 || report.MAE < 0 {
		t.Error("errors must be non-negative")
	}
}

func TestEvaluateRegressionDegenerate(t *testing.T) {
	errors.SetWarningHandler(func(error) {})
	defer errors.SetWarningHandler(nil)

	report, err := EvaluateRegression(vec(3, 3), vec(2, 4))
	if err != nil {
		t.Fatalf("EvaluateRegression() error = %v", err)
	}
	if report.RSquaredDefined || !math.IsNaN(report.RSquared) {
		t.Errorf("R² should be undefined, got %+v", report)
	}
	if report.RMSE != 1 {
		t.Errorf("RMSE = %v, want 1", report.RMSE)
	}

	if _, err := EvaluateRegression(&mat.VecDense{}, &mat.VecDense{}); err == nil {
		t.Error("empty input should fail")
	}
}
