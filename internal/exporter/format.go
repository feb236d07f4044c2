package exporter

import (
	"math"

	"github.com/shopspring/decimal"
)

// FormatValue renders v rounded half away from zero to precision decimal
// places, trailing zeros trimmed. NaN and Inf render as an empty field.
func FormatValue(v float64, precision int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return decimal.NewFromFloat(v).Round(precision).String()
}

// roundValue is FormatValue for numeric cells.
func roundValue(v float64, precision int32) float64 {
	return decimal.NewFromFloat(v).Round(precision).InexactFloat64()
}

// jsonFloat maps NaN and Inf to null, since encoding/json rejects them.
func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
