package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricecast/core/parallel"
	"github.com/YuminosukeSato/pricecast/pkg/errors"
	"github.com/YuminosukeSato/pricecast/schema"
)

// parallelRowThreshold is the row count above which AssembleMatrix fans out.
const parallelRowThreshold = 1000

// SlotKind tells the assembler which fitted transform produces a slot.
type SlotKind int

const (
	SlotCategorical SlotKind = iota
	SlotNumeric
)

// Slot is one entry of the feature layout.
type Slot struct {
	Field schema.Field
	Kind  SlotKind
}

// DefaultLayout is the fixed feature order of a fitted model: item, category,
// month, year, sourceCountry, tariffRate, disasterType, disasterSeverity,
// disasterMultiplier. Categorical fields expand to their one-hot block in place.
var DefaultLayout = []Slot{
	{schema.FieldItem, SlotCategorical},
	{schema.FieldCategory, SlotCategorical},
	{schema.FieldMonth, SlotNumeric},
	{schema.FieldYear, SlotNumeric},
	{schema.FieldSourceCountry, SlotCategorical},
	{schema.FieldTariffRate, SlotNumeric},
	{schema.FieldDisasterType, SlotCategorical},
	{schema.FieldDisasterSeverity, SlotNumeric},
	{schema.FieldDisasterMultiplier, SlotNumeric},
}

// FeatureAssembler concatenates the encoded and normalized outputs of a record
// into a single feature vector. Its width is fixed once constructed.
type FeatureAssembler struct {
	encoder    *OneHotEncoder
	normalizer *MinMaxNormalizer
	layout     []Slot
	width      int
	names      []string
}

// NewFeatureAssembler builds an assembler over DefaultLayout. Both transforms
// must be fitted and cover every field of the layout.
func NewFeatureAssembler(enc *OneHotEncoder, norm *MinMaxNormalizer) (*FeatureAssembler, error) {
	return NewFeatureAssemblerWithLayout(enc, norm, DefaultLayout)
}

// NewFeatureAssemblerWithLayout builds an assembler over a custom layout.
func NewFeatureAssemblerWithLayout(enc *OneHotEncoder, norm *MinMaxNormalizer, layout []Slot) (*FeatureAssembler, error) {
	if enc == nil || !enc.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Assemble")
	}
	if norm == nil || !norm.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxNormalizer", "Assemble")
	}
	if len(layout) == 0 {
		return nil, errors.NewValidationError("layout", "at least one slot is required", layout)
	}

	a := &FeatureAssembler{
		encoder:    enc,
		normalizer: norm,
		layout:     append([]Slot(nil), layout...),
	}
	for _, s := range layout {
		switch s.Kind {
		case SlotCategorical:
			v, ok := enc.Vocabulary(s.Field)
			if !ok {
				return nil, errors.NewValidationError("layout", "field not fitted by encoder", string(s.Field))
			}
			for _, value := range v.Values() {
				a.names = append(a.names, fmt.Sprintf("%s=%s", s.Field, value))
			}
			a.width += v.Size()
		case SlotNumeric:
			if _, ok := norm.Bounds(s.Field); !ok {
				return nil, errors.NewValidationError("layout", "field not fitted by normalizer", string(s.Field))
			}
			a.names = append(a.names, string(s.Field))
			a.width++
		default:
			return nil, errors.NewValidationError("layout", "unknown slot kind", s.Kind)
		}
	}
	if a.width == 0 {
		return nil, errors.NewValueError("NewFeatureAssembler", "layout produces an empty feature vector")
	}
	return a, nil
}

// Width is the length of every assembled vector.
func (a *FeatureAssembler) Width() int {
	return a.width
}

// FeatureNames returns one name per column, "field=value" for indicator slots.
func (a *FeatureAssembler) FeatureNames() []string {
	return append([]string(nil), a.names...)
}

// Layout returns a copy of the slot order.
func (a *FeatureAssembler) Layout() []Slot {
	return append([]Slot(nil), a.layout...)
}

// Assemble returns the feature vector of rec.
func (a *FeatureAssembler) Assemble(rec schema.PriceRecord) ([]float64, error) {
	out := make([]float64, 0, a.width)
	return a.appendRecord(out, rec)
}

func (a *FeatureAssembler) appendRecord(dst []float64, rec schema.PriceRecord) ([]float64, error) {
	var err error
	for _, s := range a.layout {
		switch s.Kind {
		case SlotCategorical:
			dst, err = a.encoder.appendField(dst, rec, s.Field)
			if err != nil {
				return nil, err
			}
		case SlotNumeric:
			v, err := a.normalizer.TransformField(rec, s.Field)
			if err != nil {
				return nil, err
			}
			dst = append(dst, v)
		}
	}
	return dst, nil
}

// AssembleMatrix assembles records into an n x Width matrix, one row per record.
func (a *FeatureAssembler) AssembleMatrix(records []schema.PriceRecord) (*mat.Dense, error) {
	if len(records) == 0 {
		return nil, errors.NewModelError("FeatureAssembler.AssembleMatrix", "empty data", errors.ErrEmptyData)
	}

	n := len(records)
	data := make([]float64, n*a.width)

	err := parallel.ForEachChunk(n, parallelRowThreshold, func(start, end int) error {
		for i := start; i < end; i++ {
			row := data[i*a.width : i*a.width : (i+1)*a.width]
			if _, err := a.appendRecord(row, records[i]); err != nil {
				return errors.Wrapf(err, "record %d", i)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mat.NewDense(n, a.width, data), nil
}
