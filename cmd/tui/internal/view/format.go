package view

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount the way Indonesian ledgers print it:
// dot thousands separators and a comma before any fraction. Zero is blank.
func FormatAmount(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}

	s := d.Abs().StringFixedBank(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder

	if d.IsNegative() {
		b.WriteByte('-')
	}

	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}

		b.WriteRune(r)
	}

	if frac != "00" {
		b.WriteByte(',')
		b.WriteString(frac)
	}

	return b.String()
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
