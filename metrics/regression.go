// Package metrics は回帰モデルの評価指標を提供する
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/pricecast/pkg/errors"
)

// RegressionReport はテストデータに対する回帰指標のまとめ
type RegressionReport struct {
	RSquared float64 // 決定係数。RSquaredDefined が false の場合は NaN
	RMSE     float64 // 平方根平均二乗誤差
	MSE      float64 // 平均二乗誤差
	MAE      float64 // 平均絶対誤差
	Samples  int     // 評価に使ったサンプル数

	// RSquaredDefined はラベルの分散が0でない（R²が定義できる）場合に true
	RSquaredDefined bool
}

// checkPair は2つのベクトルが空でなく同じ長さであることを検証する
func checkPair(op string, yTrue, yPred mat.Vector) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// residuals は yTrue - yPred を返す
func residuals(yTrue, yPred mat.Vector, n int) []float64 {
	r := make([]float64, n)
	for i := range r {
		r[i] = yTrue.AtVec(i) - yPred.AtVec(i)
	}
	return r
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred mat.Vector) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	r := residuals(yTrue, yPred, n)
	// MSE = (1/n) * Σ(yTrue - yPred)²
	return floats.Dot(r, r) / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred mat.Vector) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred mat.Vector) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	// MAE = (1/n) * Σ|yTrue - yPred|
	return floats.Norm(residuals(yTrue, yPred, n), 1) / float64(n), nil
}

// R2Score は決定係数（R²）を計算する
//
// yTrue の分散が0の場合、R²は定義できないため NaN を返し、
// UndefinedMetricWarning を発行する（エラーにはしない）。
func R2Score(yTrue, yPred mat.Vector) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	y := mat.Col(nil, 0, yTrue)
	mean := stat.Mean(y, nil)

	// 全変動（TSS）と残差変動（RSS）
	var tss float64
	for _, v := range y {
		tss += (v - mean) * (v - mean)
	}
	r := residuals(yTrue, yPred, n)
	rss := floats.Dot(r, r)

	if tss == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("R2Score", "zero variance in the true labels", math.NaN()))
		return math.NaN(), nil
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}

// EvaluateRegression はテストデータに対する回帰指標をまとめて計算する
//
// 使用例:
//
//	report, err := metrics.EvaluateRegression(yTest, yPred)
//	fmt.Printf("R²: %.2f\n", report.RSquared)
func EvaluateRegression(yTrue, yPred mat.Vector) (RegressionReport, error) {
	n, err := checkPair("EvaluateRegression", yTrue, yPred)
	if err != nil {
		return RegressionReport{}, err
	}

	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return RegressionReport{}, err
	}
	mae, err := MAE(yTrue, yPred)
	if err != nil {
		return RegressionReport{}, err
	}
	r2, err := R2Score(yTrue, yPred)
	if err != nil {
		return RegressionReport{}, err
	}

	return RegressionReport{
		RSquared:        r2,
		RMSE:            math.Sqrt(mse),
		MSE:             mse,
		MAE:             mae,
		Samples:         n,
		RSquaredDefined: !math.IsNaN(r2),
	}, nil
}
