package console

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatNumber renders a counter for display using English digit grouping and at most two fraction digits, e.g.
// 1234567 renders as "1,234,567" and 12.3456 as "12.35". Zero and NaN render as "0".
//
// FormatNumber has no shared state and is safe for concurrent use.
func FormatNumber(value float64) string {
	if value == 0 || math.IsNaN(value) {
		return "0"
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("%v", number.Decimal(value, number.MaxFractionDigits(2)))
}
