// internal/premium/quote.go
package premium

import (
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultCurrencySymbol = "₹"

// FormatPremium renders a premium as currency with two decimal places and
// thousands separators, e.g. "₹12,345.60".
func FormatPremium(value float64, symbol string) string {
	d := decimal.NewFromFloat(value).Round(2)
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	intPart, frac := fixed, ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, frac = fixed[:i], fixed[i:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(symbol)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}
