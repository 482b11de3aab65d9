package model

// EstimatorState はコンポーネントの学習状態を表す
type EstimatorState int

const (
	// NotFitted は未学習の状態
	NotFitted EstimatorState = iota
	// Fitting は学習中の状態
	Fitting
	// Fitted は学習済みの状態。これ以降は変更されない
	Fitted
)

// String は状態名を返す
func (s EstimatorState) String() string {
	switch s {
	case NotFitted:
		return "Unfit"
	case Fitting:
		return "Fitting"
	case Fitted:
		return "Fitted"
	default:
		return "Unknown"
	}
}

// BaseEstimator は単一のゴルーチンから学習されるコンポーネントの基底構造体
// (エンコーダ、正規化器)。並行して学習を制御する場合は StateManager を使う
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted は学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted は学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}
