package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

var halfDay = decimal.NewFromFloat(0.5)

// DeductionDays converts a month's late marks into leave days. Reaching full
// deducts one day plus half a day per mark beyond it; reaching only half
// deducts half a day.
func DeductionDays(lateMarks, half, full int) decimal.Decimal {
	switch {
	case lateMarks >= full:
		return decimal.NewFromInt(1).Add(decimal.NewFromInt(int64(lateMarks - full)).Mul(halfDay))
	case lateMarks >= half:
		return halfDay
	default:
		return decimal.Zero
	}
}

// lateMarkRange is the month-to-date window counted before date: [first of month, date-1].
func lateMarkRange(date time.Time) (from, to time.Time, ok bool) {
	from = time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	to = date.AddDate(0, 0, -1)
	return from, to, !to.Before(from)
}
