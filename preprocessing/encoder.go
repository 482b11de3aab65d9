package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/pricecast/core/model"
	"github.com/YuminosukeSato/pricecast/pkg/errors"
	"github.com/YuminosukeSato/pricecast/schema"
)

// Vocabulary はカテゴリ値からスロット番号への固定マッピング
// スロット番号は学習データ中で最初に出現した順に割り当てられる
type Vocabulary struct {
	index  map[string]int
	values []string
}

func newVocabulary() *Vocabulary {
	return &Vocabulary{index: make(map[string]int)}
}

func (v *Vocabulary) add(value string) {
	if _, ok := v.index[value]; ok {
		return
	}
	v.index[value] = len(v.values)
	v.values = append(v.values, value)
}

// Size は語彙数（インジケータベクトルの長さ）を返す
func (v *Vocabulary) Size() int {
	return len(v.values)
}

// Index は値のスロット番号を返す。未知の値の場合は false
func (v *Vocabulary) Index(value string) (int, bool) {
	i, ok := v.index[value]
	return i, ok
}

// Values はスロット順の値のコピーを返す
func (v *Vocabulary) Values() []string {
	out := make([]string, len(v.values))
	copy(out, v.values)
	return out
}

// OneHotEncoder はカテゴリフィールドをワンホットベクトルに変換する
//
// 学習時に見なかった値は全て0のベクトルに変換される（語彙は増えず、エラーにもならない）。
// 値の照合は大文字小文字を区別する。
type OneHotEncoder struct {
	model.BaseEstimator

	fields []schema.Field
	vocab  map[schema.Field]*Vocabulary
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
//
// 使用例:
//
//	enc := preprocessing.NewOneHotEncoder()
//	err := enc.Fit(train, schema.CategoricalFields)
//	vectors, err := enc.Transform(record)
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit は学習データから各フィールドの語彙を構築する
//
// パラメータ:
//   - records: 学習データ（学習分割のみを渡すこと）
//   - fields: エンコードするカテゴリフィールド
//
// 戻り値:
//   - error: records が空、フィールドが不正、または学習済みの場合
func (e *OneHotEncoder) Fit(records []schema.PriceRecord, fields []schema.Field) error {
	if e.IsFitted() {
		return errors.NewModelError("OneHotEncoder.Fit", "vocabulary is frozen", errors.ErrAlreadyFitted)
	}
	if len(records) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := validateFields(fields, schema.Field.IsCategorical, "not a categorical field"); err != nil {
		return err
	}

	vocab := make(map[schema.Field]*Vocabulary, len(fields))
	for _, f := range fields {
		vocab[f] = newVocabulary()
	}
	for _, rec := range records {
		for _, f := range fields {
			value, err := rec.Categorical(f)
			if err != nil {
				return err
			}
			vocab[f].add(value)
		}
	}

	e.fields = append([]schema.Field(nil), fields...)
	e.vocab = vocab
	e.SetFitted()
	return nil
}

// Transform は学習済みの各フィールドについてインジケータベクトルを返す
// 戻り値の順序は Fit に渡したフィールドの順序と同じ
func (e *OneHotEncoder) Transform(rec schema.PriceRecord) ([][]float64, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	out := make([][]float64, len(e.fields))
	for i, f := range e.fields {
		vec, err := e.TransformField(rec, f)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// TransformField は1フィールド分のインジケータベクトルを返す
// 未知の値は長さ Size() の全て0のベクトルになる
func (e *OneHotEncoder) TransformField(rec schema.PriceRecord, f schema.Field) ([]float64, error) {
	vec := make([]float64, 0)
	return e.appendField(vec, rec, f)
}

// appendField はフィールドのインジケータを dst の末尾に追加する
func (e *OneHotEncoder) appendField(dst []float64, rec schema.PriceRecord, f schema.Field) ([]float64, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	v, ok := e.vocab[f]
	if !ok {
		return nil, errors.NewValidationError("field", "not fitted by this encoder", string(f))
	}
	value, err := rec.Categorical(f)
	if err != nil {
		return nil, err
	}

	start := len(dst)
	for i := 0; i < v.Size(); i++ {
		dst = append(dst, 0)
	}
	if slot, known := v.Index(value); known {
		dst[start+slot] = 1
	}
	return dst, nil
}

// Contains は値が学習済み語彙に含まれるかを返す
func (e *OneHotEncoder) Contains(f schema.Field, value string) bool {
	v, ok := e.vocab[f]
	if !ok {
		return false
	}
	_, known := v.Index(value)
	return known
}

// Vocabulary はフィールドの語彙を返す
func (e *OneHotEncoder) Vocabulary(f schema.Field) (*Vocabulary, bool) {
	v, ok := e.vocab[f]
	return v, ok
}

// Fields は学習済みフィールドのコピーを返す
func (e *OneHotEncoder) Fields() []schema.Field {
	return append([]schema.Field(nil), e.fields...)
}

// String はエンコーダの文字列表現を返す
func (e *OneHotEncoder) String() string {
	if !e.IsFitted() {
		return "OneHotEncoder()"
	}
	width := 0
	for _, v := range e.vocab {
		width += v.Size()
	}
	return fmt.Sprintf("OneHotEncoder(n_fields=%d, width=%d)", len(e.fields), width)
}

func validateFields(fields []schema.Field, ok func(schema.Field) bool, reason string) error {
	if len(fields) == 0 {
		return errors.NewValidationError("fields", "at least one field is required", fields)
	}
	seen := make(map[schema.Field]bool, len(fields))
	for _, f := range fields {
		if !ok(f) {
			return errors.NewValidationError("fields", reason, string(f))
		}
		if seen[f] {
			return errors.NewValidationError("fields", "duplicate field", string(f))
		}
		seen[f] = true
	}
	return nil
}
