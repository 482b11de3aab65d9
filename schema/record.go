// Package schema defines the fixed commodity-price record shape and the
// rule that derives the disaster multiplier from it.
package schema

import (
	"strings"

	"github.com/YuminosukeSato/pricecast/pkg/errors"
)

// Attributes are the raw, caller-supplied fields of an observation or query.
type Attributes struct {
	Item             string
	Category         string
	Month            int
	Year             int
	SourceCountry    string
	TariffRate       float64
	DisasterType     string
	DisasterSeverity float64
}

// PriceRecord is one validated observation. DisasterMultiplier is always
// derived from Category and DisasterType; Price is the regression target and is
// zero for query records.
type PriceRecord struct {
	Attributes
	DisasterMultiplier float64
	Price              float64
}

// NewTrainingRecord validates a and price and derives the disaster multiplier.
func NewTrainingRecord(a Attributes, price float64) (PriceRecord, error) {
	if !errors.IsFinite(price) {
		return PriceRecord{}, errors.NewValidationError(string(FieldPrice), "must be a finite number", price)
	}
	rec, err := derive(a)
	if err != nil {
		return PriceRecord{}, err
	}
	rec.Price = price
	return rec, nil
}

// NewQueryRecord validates a and derives the disaster multiplier for prediction.
func NewQueryRecord(a Attributes) (PriceRecord, error) {
	return derive(a)
}

// derive is the single place where a record gets its multiplier.
func derive(a Attributes) (PriceRecord, error) {
	if err := a.Validate(); err != nil {
		return PriceRecord{}, err
	}
	return PriceRecord{
		Attributes:         a,
		DisasterMultiplier: DisasterMultiplier(a.Category, a.DisasterType),
	}, nil
}

// Validate reports the first missing or out-of-range field.
func (a Attributes) Validate() error {
	required := []struct {
		field Field
		value string
	}{
		{FieldItem, a.Item},
		{FieldCategory, a.Category},
		{FieldSourceCountry, a.SourceCountry},
		{FieldDisasterType, a.DisasterType},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.NewValidationError(string(r.field), "is required", r.value)
		}
	}

	if a.Month < 1 || a.Month > 12 {
		return errors.NewValidationError(string(FieldMonth), "must be between 1 and 12", a.Month)
	}
	if a.Year <= 0 {
		return errors.NewValidationError(string(FieldYear), "must be positive", a.Year)
	}
	if !errors.IsFinite(a.TariffRate) {
		return errors.NewValidationError(string(FieldTariffRate), "must be a finite number", a.TariffRate)
	}
	if !errors.IsFinite(a.DisasterSeverity) {
		return errors.NewValidationError(string(FieldDisasterSeverity), "must be a finite number", a.DisasterSeverity)
	}
	return nil
}
