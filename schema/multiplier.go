package schema

import "strings"

// droughtMultipliers are keyed by lower-cased category.
var droughtMultipliers = map[string]float64{
	"meat":  1.8,
	"dairy": 1.5,
	"grain": 1.6,
}

// DisasterMultiplier returns the fixed price multiplier for a category under a
// disaster type. Matching is case-insensitive; only droughts raise prices.
func DisasterMultiplier(category, disasterType string) float64 {
	if !strings.EqualFold(strings.TrimSpace(disasterType), "drought") {
		return 1.0
	}
	if m, ok := droughtMultipliers[strings.ToLower(strings.TrimSpace(category))]; ok {
		return m
	}
	return 1.0
}
