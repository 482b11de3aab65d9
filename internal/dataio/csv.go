// Package dataio reads historical price records from CSV.
package dataio

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/pricecast/pkg/errors"
	"github.com/YuminosukeSato/pricecast/pkg/log"
	"github.com/YuminosukeSato/pricecast/schema"
)

// Column names of the input file. Matching is case-insensitive.
const (
	ColFoodItem           = "FoodItem"
	ColFoodCategory       = "FoodCategory"
	ColMonth              = "Month"
	ColYear               = "Year"
	ColSourceCountry      = "SourceCountry"
	ColTariffRate         = "TariffRate"
	ColDisasterType       = "DisasterType"
	ColDisasterSeverity   = "DisasterSeverity"
	ColDisasterMultiplier = "DisasterMultiplier"
	ColPrice              = "Price"
)

var requiredColumns = []string{
	ColFoodItem, ColFoodCategory, ColMonth, ColYear, ColSourceCountry,
	ColTariffRate, ColDisasterType, ColDisasterSeverity, ColPrice,
}

// Header is the canonical column order written by tools that produce input files.
var Header = []string{
	ColFoodItem, ColFoodCategory, ColMonth, ColYear, ColSourceCountry,
	ColTariffRate, ColDisasterType, ColDisasterSeverity, ColDisasterMultiplier, ColPrice,
}

// Reader decodes PriceRecords from CSV with a header row.
type Reader struct {
	logger log.Logger
}

// NewReader creates a Reader logging through the package-level logger.
func NewReader() *Reader {
	return &Reader{logger: log.GetLoggerWithName("dataio")}
}

// WithLogger returns a copy of the reader using l.
func (r *Reader) WithLogger(l log.Logger) *Reader {
	return &Reader{logger: l}
}

// LoadFile reads every record from the CSV file at path.
func (r *Reader) LoadFile(path string) ([]schema.PriceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	records, err := r.Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return records, nil
}

// Read decodes records from in. The multiplier column is optional; when present
// it is ignored in favour of the derived value, and disagreements are logged.
func (r *Reader) Read(in io.Reader) ([]schema.PriceRecord, error) {
	cr := csv.NewReader(in)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewModelError("dataio.Read", "missing header", errors.ErrEmptyData)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}
	cr.FieldsPerRecord = len(header)

	var records []schema.PriceRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.ParseError already carries the line
			return nil, errors.Wrap(err, "read row")
		}
		line, _ := cr.FieldPos(0)
		if isBlank(row) {
			continue
		}

		rec, fileMultiplier, err := parseRow(row, index)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if !math.IsNaN(fileMultiplier) && fileMultiplier != rec.DisasterMultiplier {
			r.logger.Debug("Multiplier column replaced by derived value",
				log.FieldKey, ColDisasterMultiplier,
				log.ValueKey, fileMultiplier,
				"line", line,
				"derived", rec.DisasterMultiplier,
			)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, errors.NewModelError("dataio.Read", "no data rows", errors.ErrEmptyData)
	}
	r.logger.Info("Records loaded", log.SamplesKey, len(records))
	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[strings.ToLower(col)]; !ok {
			return nil, errors.NewValidationError("header", "missing required column", col)
		}
	}
	return index, nil
}

// parseRow returns the record and the file's multiplier, NaN when the column is absent.
func parseRow(row []string, index map[string]int) (schema.PriceRecord, float64, error) {
	get := func(col string) string {
		return strings.TrimSpace(row[index[strings.ToLower(col)]])
	}

	month, err := parseInt(ColMonth, get(ColMonth))
	if err != nil {
		return schema.PriceRecord{}, 0, err
	}
	year, err := parseInt(ColYear, get(ColYear))
	if err != nil {
		return schema.PriceRecord{}, 0, err
	}
	tariff, err := parseFloat(ColTariffRate, get(ColTariffRate))
	if err != nil {
		return schema.PriceRecord{}, 0, err
	}
	severity, err := parseFloat(ColDisasterSeverity, get(ColDisasterSeverity))
	if err != nil {
		return schema.PriceRecord{}, 0, err
	}
	price, err := parseFloat(ColPrice, get(ColPrice))
	if err != nil {
		return schema.PriceRecord{}, 0, err
	}

	fileMultiplier := math.NaN()
	if _, ok := index[strings.ToLower(ColDisasterMultiplier)]; ok {
		if raw := get(ColDisasterMultiplier); raw != "" {
			fileMultiplier, err = parseFloat(ColDisasterMultiplier, raw)
			if err != nil {
				return schema.PriceRecord{}, 0, err
			}
		}
	}

	rec, err := schema.NewTrainingRecord(schema.Attributes{
		Item:             get(ColFoodItem),
		Category:         get(ColFoodCategory),
		Month:            month,
		Year:             year,
		SourceCountry:    get(ColSourceCountry),
		TariffRate:       tariff,
		DisasterType:     get(ColDisasterType),
		DisasterSeverity: severity,
	}, price)
	if err != nil {
		return schema.PriceRecord{}, 0, err
	}
	return rec, fileMultiplier, nil
}

func parseInt(col, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError(col, "not an integer", raw)
	}
	return v, nil
}

func parseFloat(col, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.NewValidationError(col, "not a number", raw)
	}
	return v, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
