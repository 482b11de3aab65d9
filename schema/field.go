package schema

import (
	"github.com/YuminosukeSato/pricecast/pkg/errors"
)

// Field names a column of PriceRecord.
type Field string

const (
	FieldItem               Field = "item"
	FieldCategory           Field = "category"
	FieldMonth              Field = "month"
	FieldYear               Field = "year"
	FieldSourceCountry      Field = "sourceCountry"
	FieldTariffRate         Field = "tariffRate"
	FieldDisasterType       Field = "disasterType"
	FieldDisasterSeverity   Field = "disasterSeverity"
	FieldDisasterMultiplier Field = "disasterMultiplier"
	FieldPrice              Field = "price"
)

// CategoricalFields are the one-hot encoded fields, in feature-layout order.
var CategoricalFields = []Field{FieldItem, FieldCategory, FieldSourceCountry, FieldDisasterType}

// NumericFields are the min-max normalized fields, in feature-layout order.
var NumericFields = []Field{FieldMonth, FieldYear, FieldTariffRate, FieldDisasterSeverity, FieldDisasterMultiplier}

// IsCategorical reports whether f holds a string value.
func (f Field) IsCategorical() bool {
	switch f {
	case FieldItem, FieldCategory, FieldSourceCountry, FieldDisasterType:
		return true
	}
	return false
}

// IsNumeric reports whether f is a numeric feature. The target is not a feature.
func (f Field) IsNumeric() bool {
	switch f {
	case FieldMonth, FieldYear, FieldTariffRate, FieldDisasterSeverity, FieldDisasterMultiplier:
		return true
	}
	return false
}

// Categorical returns the string value of a categorical field.
func (r PriceRecord) Categorical(f Field) (string, error) {
	switch f {
	case FieldItem:
		return r.Item, nil
	case FieldCategory:
		return r.Category, nil
	case FieldSourceCountry:
		return r.SourceCountry, nil
	case FieldDisasterType:
		return r.DisasterType, nil
	}
	return "", errors.NewValidationError("field", "not a categorical field", string(f))
}

// Numeric returns the value of a numeric feature field as float64.
func (r PriceRecord) Numeric(f Field) (float64, error) {
	switch f {
	case FieldMonth:
		return float64(r.Month), nil
	case FieldYear:
		return float64(r.Year), nil
	case FieldTariffRate:
		return r.TariffRate, nil
	case FieldDisasterSeverity:
		return r.DisasterSeverity, nil
	case FieldDisasterMultiplier:
		return r.DisasterMultiplier, nil
	}
	return 0, errors.NewValidationError("field", "not a numeric feature field", string(f))
}

// Labels returns the prices of records in order.
func Labels(records []PriceRecord) []float64 {
	y := make([]float64, len(records))
	for i, r := range records {
		y[i] = r.Price
	}
	return y
}
