package predict

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const currencyPlaces = 2

// printer groups thousands with commas and uses "." for decimals regardless
// of the host locale.
var printer = message.NewPrinter(language.English)

// FormatCurrency renders v as dollars with thousands separators and exactly
// two decimals, rounding half away from zero: 1234567.8912 -> "$1,234,567.89".
// Negative values keep the sign after the symbol ("$-12.50").
func FormatCurrency(v float64) string {
	switch {
	case math.IsNaN(v):
		return "$nan"
	case math.IsInf(v, 1):
		return "$inf"
	case math.IsInf(v, -1):
		return "$-inf"
	}
	rounded := decimal.NewFromFloat(v).Round(currencyPlaces)
	return "$" + printer.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(currencyPlaces)))
}
