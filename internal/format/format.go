// Package format renders dates and money the way the dashboard displays them.
package format

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

// Placeholder is rendered for missing or malformed values.
const Placeholder = "—"

const (
	dateLayout     = "02/01/06"
	dateTimeLayout = "15:04 on 02/01/06"
)

// Date renders DD/MM/YY.
func Date(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format(dateLayout)
}

// DateTime renders HH:MM on DD/MM/YY.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format(dateTimeLayout)
}

// TimestampDate renders a stored timestamp as DD/MM/YY, or the placeholder.
func TimestampDate(ts models.Timestamp) string {
	t, ok := ts.Valid()
	if !ok {
		return Placeholder
	}
	return Date(t)
}

// TimestampDateTime renders a stored timestamp as HH:MM on DD/MM/YY, or the placeholder.
func TimestampDateTime(ts models.Timestamp) string {
	t, ok := ts.Valid()
	if !ok {
		return Placeholder
	}
	return DateTime(t)
}

var gbPrinter = message.NewPrinter(language.BritishEnglish)

// GBP formats an amount as en-GB pounds, e.g. £1,234.50 or -£12.00.
func GBP(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Placeholder
	}
	return GBPDecimal(decimal.NewFromFloat(amount))
}

// GBPDecimal formats a decimal amount as en-GB pounds.
func GBPDecimal(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	f, _ := rounded.Float64()
	return sign + "£" + gbPrinter.Sprint(number.Decimal(f, number.Scale(2)))
}

// DaysUntil returns whole days from now until t, rounded up.
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

// HoursSince returns fractional hours elapsed since t.
func HoursSince(t, now time.Time) float64 {
	return now.Sub(t).Hours()
}
