package linear

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricecast/core/model"
	"github.com/YuminosukeSato/pricecast/metrics"
	"github.com/YuminosukeSato/pricecast/pkg/errors"
)

// modelVersion is recorded in weight snapshots.
const modelVersion = "1.0.0"

// FittedModel は SDCARegressor の学習結果（重みと切片）
// 作成後は変更されないため、複数のゴルーチンから同時に使用できる
type FittedModel struct {
	coef      []float64
	intercept float64
	nIter     int
	converged bool
	gap       float64
	params    map[string]interface{}
}

// Weights は特徴量レイアウト順の重みのコピーを返す
func (m *FittedModel) Weights() []float64 {
	out := make([]float64, len(m.coef))
	copy(out, m.coef)
	return out
}

// Intercept は切片を返す
func (m *FittedModel) Intercept() float64 { return m.intercept }

// NFeatures は学習時の特徴量数
func (m *FittedModel) NFeatures() int { return len(m.coef) }

// NIter は実行されたパス数（maxIter を超えない）
func (m *FittedModel) NIter() int { return m.nIter }

// Converged は双対ギャップが許容誤差に達したかどうか
func (m *FittedModel) Converged() bool { return m.converged }

// DualityGap は最終パス後の双対ギャップ
func (m *FittedModel) DualityGap() float64 { return m.gap }

// PredictOne は1サンプルの予測値 w·x + b を返す
func (m *FittedModel) PredictOne(x []float64) (float64, error) {
	if len(x) != len(m.coef) {
		return 0, errors.NewDimensionError("FittedModel.PredictOne", len(m.coef), len(x), 1)
	}
	return floats.Dot(m.coef, x) + m.intercept, nil
}

// Predict は X の各行の予測値を返す
func (m *FittedModel) Predict(X mat.Matrix) (*mat.VecDense, error) {
	r, c := X.Dims()
	if c != len(m.coef) {
		return nil, errors.NewDimensionError("FittedModel.Predict", len(m.coef), c, 1)
	}
	if r == 0 {
		return nil, errors.NewModelError("FittedModel.Predict", "empty data", errors.ErrEmptyData)
	}

	// y = X * w + b
	pred := mat.NewVecDense(r, nil)
	pred.MulVec(X, mat.NewVecDense(len(m.coef), m.Weights()))
	for i := 0; i < r; i++ {
		pred.SetVec(i, pred.AtVec(i)+m.intercept)
	}
	return pred, nil
}

// Score は X, y に対する決定係数（R²）を返す
// ラベルの分散が0の場合は NaN（エラーではない）
func (m *FittedModel) Score(X mat.Matrix, y mat.Vector) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, pred)
}

// ToWeights は重みのスナップショットを作成する
// features は重みと同じ順序の特徴量名（nil可）
func (m *FittedModel) ToWeights(features []string) *model.ModelWeights {
	hyper := make(map[string]interface{}, len(m.params))
	for k, v := range m.params {
		hyper[k] = v
	}
	return &model.ModelWeights{
		ModelType:       modelName,
		Version:         modelVersion,
		Coefficients:    m.Weights(),
		Intercept:       m.intercept,
		Features:        append([]string(nil), features...),
		Hyperparameters: hyper,
		Metadata: map[string]interface{}{
			"n_iter":      m.nIter,
			"converged":   m.converged,
			"duality_gap": m.gap,
		},
		IsFitted: true,
	}
}
