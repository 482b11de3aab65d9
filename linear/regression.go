// Package linear は線形回帰の学習器を提供する
package linear

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricecast/pkg/errors"
	"github.com/YuminosukeSato/pricecast/pkg/log"
)

const modelName = "SDCARegressor"

// SDCARegressor は確率的双対座標上昇法（SDCA）によるリッジ回帰
//
// 二乗損失 + L2正則化を最小化する。切片は常に1の列を追加して学習し、
// 他の重みと同じ強さで正則化される。
// 1イテレーション = 全サンプルを1周するパス。双対ギャップが許容誤差以下になるか、
// ちょうど maxIter パスに達した時点で停止する。
type SDCARegressor struct {
	// ハイパーパラメータ
	maxIter     int     // 最大パス数
	l2          float64 // L2正則化の強さ
	tol         float64 // 相対双対ギャップの許容誤差
	randomState int64   // パスごとの順列のシード
	shuffle     bool    // 各パスでサンプル順をシャッフルするか

	logger log.Logger
}

// NewSDCARegressor は新しいSDCARegressorを作成する
//
// 使用例:
//
//	reg := linear.NewSDCARegressor(linear.WithMaxIter(100), linear.WithRandomState(0))
//	fitted, err := reg.Fit(X, y)
func NewSDCARegressor(opts ...Option) *SDCARegressor {
	r := &SDCARegressor{
		maxIter:     100,
		l2:          1e-4,
		tol:         1e-7,
		randomState: 0,
		shuffle:     true,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = log.GetLoggerWithName("linear.sdca")
	return r
}

// Params はハイパーパラメータを返す
func (r *SDCARegressor) Params() map[string]interface{} {
	return map[string]interface{}{
		"max_iter":     r.maxIter,
		"l2":           r.l2,
		"tol":          r.tol,
		"random_state": r.randomState,
		"shuffle":      r.shuffle,
	}
}

func (r *SDCARegressor) validate() error {
	if r.maxIter < 1 {
		return errors.NewValidationError("max_iterations", "must be at least 1", r.maxIter)
	}
	if !(r.l2 > 0) || math.IsInf(r.l2, 0) {
		return errors.NewValidationError("l2", "must be a positive finite number", r.l2)
	}
	if r.tol < 0 || math.IsNaN(r.tol) {
		return errors.NewValidationError("tolerance", "must be non-negative", r.tol)
	}
	return nil
}

// Fit は X (n×d) と y (n×1) からモデルを学習し、不変の FittedModel を返す
//
// 戻り値:
//   - *FittedModel: 学習済みモデル（レシーバは状態を持たないため何度でも呼べる）
//   - error: 入力が空・次元不一致・非有限値を含む場合、または数値的に不安定になった場合
func (r *SDCARegressor) Fit(X, y mat.Matrix) (*FittedModel, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	n, d := X.Dims()
	if n == 0 || d == 0 {
		return nil, errors.NewModelError("SDCARegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	ry, cy := y.Dims()
	if ry != n {
		return nil, errors.NewDimensionError("SDCARegressor.Fit", n, ry, 0)
	}
	if cy != 1 {
		return nil, errors.NewValueError("SDCARegressor.Fit", "y must be a column vector")
	}

	// 切片用に末尾へ1を追加した行
	rows := make([][]float64, n)
	sqNorms := make([]float64, n)
	labels := make([]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, d+1)
		mat.Row(row[:d], i, X)
		row[d] = 1
		for _, v := range row {
			if !errors.IsFinite(v) {
				return nil, errors.NewValidationError("X", fmt.Sprintf("non-finite value in row %d", i), v)
			}
		}
		labels[i] = y.At(i, 0)
		if !errors.IsFinite(labels[i]) {
			return nil, errors.NewValidationError("y", fmt.Sprintf("non-finite label in row %d", i), labels[i])
		}
		rows[i] = row
		sqNorms[i] = floats.Dot(row, row)
	}

	lambdaN := r.l2 * float64(n)
	w := make([]float64, d+1)
	alpha := make([]float64, n)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewPCG(uint64(r.randomState), uint64(r.randomState)))

	var (
		nIter     int
		converged bool
		gap       float64
	)
	for iter := 1; iter <= r.maxIter; iter++ {
		if r.shuffle {
			rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		for _, i := range order {
			xi := rows[i]
			// 二乗損失の座標更新は閉形式で求まる
			delta := (labels[i] - floats.Dot(w, xi) - alpha[i]) / (1 + sqNorms[i]/lambdaN)
			alpha[i] += delta
			floats.AddScaled(w, delta/lambdaN, xi)
		}

		if err := errors.CheckNumericalStability("SDCARegressor.Fit", w, iter); err != nil {
			return nil, err
		}

		var primal float64
		gap, primal = dualityGap(rows, labels, alpha, w, r.l2)
		if err := errors.CheckScalar("SDCARegressor.Fit", primal, iter); err != nil {
			return nil, err
		}
		nIter = iter

		if r.logger.Enabled(context.Background(), log.LevelDebug) {
			r.logger.Debug("SDCA pass completed",
				log.IterationKey, iter,
				log.LossKey, primal,
				log.DualityGapKey, gap,
			)
		}

		if gap <= r.tol*math.Max(1, math.Abs(primal)) {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning(modelName, nIter,
			fmt.Sprintf("duality gap %.3g is above tolerance %.3g", gap, r.tol)))
	}

	coef := make([]float64, d)
	copy(coef, w[:d])
	return &FittedModel{
		coef:      coef,
		intercept: w[d],
		nIter:     nIter,
		converged: converged,
		gap:       gap,
		params:    r.Params(),
	}, nil
}

// dualityGap は主問題と双対問題の目的関数値の差と主問題の値を返す
//
//	P(w) = (1/n) Σ ½(w·xᵢ - yᵢ)² + λ/2 ‖w‖²
//	D(α) = (1/n) Σ (αᵢyᵢ - αᵢ²/2) - λ/2 ‖w‖²
func dualityGap(rows [][]float64, labels, alpha, w []float64, l2 float64) (gap, primal float64) {
	n := float64(len(rows))
	var loss, dual float64
	for i, xi := range rows {
		res := floats.Dot(w, xi) - labels[i]
		loss += 0.5 * res * res
		dual += alpha[i]*labels[i] - 0.5*alpha[i]*alpha[i]
	}
	reg := 0.5 * l2 * floats.Dot(w, w)
	primal = loss/n + reg
	return primal - (dual/n - reg), primal
}
