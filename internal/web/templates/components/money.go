package components

import (
	"math"

	"github.com/dustin/go-humanize"
)

// Money formats a sale amount as dollars with thousands separators
func Money(amount float64) string {
	if amount == math.Trunc(amount) {
		return "$" + humanize.Comma(int64(amount))
	}
	return "$" + humanize.CommafWithDigits(amount, 2)
}
