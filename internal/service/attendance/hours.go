package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

var secondsPerHour = decimal.NewFromInt(3600)

// hoursBetween returns to - from in hours, clamped at zero.
func hoursBetween(from, to time.Time) decimal.Decimal {
	d := to.Sub(from)
	if d <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(d / time.Second)).Div(secondsPerHour).Round(4)
}

// WorkingHours is zero unless both endpoints exist.
func WorkingHours(w Window) decimal.Decimal {
	if !w.Complete() {
		return decimal.Zero
	}
	return hoursBetween(*w.FirstIn, *w.LastOut)
}

func formatHours(h decimal.Decimal) string {
	return h.Round(2).String()
}
