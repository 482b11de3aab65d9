package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/pricecast/core/model"
	"github.com/YuminosukeSato/pricecast/pkg/errors"
	"github.com/YuminosukeSato/pricecast/schema"
)

// Bounds は学習データで観測された数値フィールドの最小値・最大値
type Bounds struct {
	Min float64
	Max float64
}

// Degenerate は最小値と最大値が等しい（定数フィールド）かどうかを返す
func (b Bounds) Degenerate() bool {
	return b.Min == b.Max
}

// Scale は (v - Min) / (Max - Min) を返す。定数フィールドでは常に 0.0
//
// 範囲外の値はクリップしない。推論時に学習範囲外の値が来た場合、
// 結果は [0, 1] を超えてよい（モデルの外挿を許すため）。
func (b Bounds) Scale(v float64) float64 {
	if b.Degenerate() {
		return 0.0
	}
	return (v - b.Min) / (b.Max - b.Min)
}

// MinMaxNormalizer は数値フィールドを学習データの最小値・最大値で [0, 1] に正規化する
type MinMaxNormalizer struct {
	model.BaseEstimator

	fields []schema.Field
	bounds map[schema.Field]Bounds
}

// NewMinMaxNormalizer は新しいMinMaxNormalizerを作成する
//
// 使用例:
//
//	norm := preprocessing.NewMinMaxNormalizer()
//	err := norm.Fit(train, schema.NumericFields)
//	values, err := norm.Transform(record)
func NewMinMaxNormalizer() *MinMaxNormalizer {
	return &MinMaxNormalizer{}
}

// Fit は学習データから各フィールドの最小値・最大値を計算する
//
// パラメータ:
//   - records: 学習データ（学習分割のみを渡すこと）
//   - fields: 正規化する数値フィールド
//
// 戻り値:
//   - error: records が空、フィールドが不正、または学習済みの場合
func (m *MinMaxNormalizer) Fit(records []schema.PriceRecord, fields []schema.Field) error {
	if m.IsFitted() {
		return errors.NewModelError("MinMaxNormalizer.Fit", "bounds are frozen", errors.ErrAlreadyFitted)
	}
	if len(records) == 0 {
		return errors.NewModelError("MinMaxNormalizer.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := validateFields(fields, schema.Field.IsNumeric, "not a numeric feature field"); err != nil {
		return err
	}

	bounds := make(map[schema.Field]Bounds, len(fields))
	column := make([]float64, len(records))
	for _, f := range fields {
		for i, rec := range records {
			v, err := rec.Numeric(f)
			if err != nil {
				return err
			}
			column[i] = v
		}
		bounds[f] = Bounds{Min: floats.Min(column), Max: floats.Max(column)}
	}

	m.fields = append([]schema.Field(nil), fields...)
	m.bounds = bounds
	m.SetFitted()
	return nil
}

// Transform は学習済みの各フィールドを正規化した値を返す
// 戻り値の順序は Fit に渡したフィールドの順序と同じ
func (m *MinMaxNormalizer) Transform(rec schema.PriceRecord) ([]float64, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxNormalizer", "Transform")
	}
	out := make([]float64, len(m.fields))
	for i, f := range m.fields {
		v, err := m.TransformField(rec, f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// TransformField は1フィールド分の正規化値を返す
func (m *MinMaxNormalizer) TransformField(rec schema.PriceRecord, f schema.Field) (float64, error) {
	if !m.IsFitted() {
		return 0, errors.NewNotFittedError("MinMaxNormalizer", "Transform")
	}
	b, ok := m.bounds[f]
	if !ok {
		return 0, errors.NewValidationError("field", "not fitted by this normalizer", string(f))
	}
	v, err := rec.Numeric(f)
	if err != nil {
		return 0, err
	}
	return b.Scale(v), nil
}

// Bounds はフィールドの学習済み範囲を返す
func (m *MinMaxNormalizer) Bounds(f schema.Field) (Bounds, bool) {
	b, ok := m.bounds[f]
	return b, ok
}

// Fields は学習済みフィールドのコピーを返す
func (m *MinMaxNormalizer) Fields() []schema.Field {
	return append([]schema.Field(nil), m.fields...)
}

// String は正規化器の文字列表現を返す
func (m *MinMaxNormalizer) String() string {
	if !m.IsFitted() {
		return "MinMaxNormalizer()"
	}
	return fmt.Sprintf("MinMaxNormalizer(n_fields=%d)", len(m.fields))
}
