package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/YuminosukeSato/pricecast/metrics"
	"github.com/YuminosukeSato/pricecast/schema"
)

// fixed formats v with places decimals, rounding half away from zero on the
// shortest decimal representation of v. NaN and infinities are spelled out.
func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func printMetrics(w io.Writer, r metrics.RegressionReport) {
	fmt.Fprintln(w, "Model Metrics:")
	fmt.Fprintf(w, "R²: %s\n", fixed(r.RSquared, 2))
	fmt.Fprintf(w, "RMSE: %s\n", fixed(r.RMSE, 2))
	if !r.RSquaredDefined {
		fmt.Fprintln(w, "⚠ R² is undefined: the test prices are all equal")
	}
}

func printPrediction(w io.Writer, a schema.Attributes, price float64) {
	multiplier := schema.DisasterMultiplier(a.Category, a.DisasterType)
	fmt.Fprintf(w, "\nPredicted price for %s (%s): $%s\n", a.Item, a.Category, fixed(price, 2))
	fmt.Fprintf(w, "Factors: %s (Severity: %s, Multiplier: %sx)\n",
		a.DisasterType, fixed(a.DisasterSeverity, 2), fixed(multiplier, 1))
}
