package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/timeutil"
	"github.com/shopspring/decimal"
)

var (
	driverDefaultOut   = timeutil.NewTimeOfDay(18, 0, 0)
	driverBreakHours   = decimal.NewFromFloat(0.5)
	autoPresentRemarks = "Auto marked present (No check-in required)"
)

// WorkerAtSite is a presence check: any event marks the day present.
func WorkerAtSite(events []checkin.Checkin) attendance.Decision {
	if len(events) > 0 {
		return attendance.Present(decimal.Zero, "Worker (Site) - Check-in recorded")
	}
	return attendance.Absent("Worker (Site) - No check-in recorded")
}

// WorkerOffSite requires both endpoints. Early and late corrections were already applied at check-in time.
func WorkerOffSite(w Window) attendance.Decision {
	switch {
	case w.FirstIn == nil:
		return attendance.Absent("Worker - No check-in recorded")
	case w.LastOut == nil:
		return attendance.Absent("Worker - Check-in only, no check-out recorded")
	}
	hours := WorkingHours(w)
	return attendance.Present(hours, fmt.Sprintf("Worker attendance - %s hours", formatHours(hours)))
}

// Driver credits the day from the first IN, defaulting a missing OUT to 18:00
// and deducting a half-hour break when more than half an hour was worked.
func Driver(w Window, date time.Time, locationName string) attendance.Decision {
	if w.FirstIn == nil {
		return attendance.Absent(fmt.Sprintf("Driver (%s) - No check-in recorded", locationName))
	}

	out := driverDefaultOut.On(date)
	if w.LastOut != nil {
		out = *w.LastOut
	}

	hours := hoursBetween(*w.FirstIn, out)
	if hours.GreaterThan(driverBreakHours) {
		hours = hours.Sub(driverBreakHours)
	}
	return attendance.Present(hours, fmt.Sprintf("Driver (%s) - %s hours (30 min break deducted)", locationName, formatHours(hours)))
}

// NoCheckInRequired marks employees exempt from check-ins as present.
func NoCheckInRequired() attendance.Decision {
	return attendance.Present(decimal.Zero, autoPresentRemarks)
}

// FromEvaluation turns a shift-rule evaluation into a decision.
func FromEvaluation(ev Evaluation, hours decimal.Decimal) attendance.Decision {
	outcome := attendance.OutcomeProcessed
	if ev.Status == attendance.StatusAbsent {
		outcome = attendance.OutcomeAbsent
		hours = decimal.Zero
	}
	return attendance.Decision{
		Outcome:      outcome,
		Status:       ev.Status,
		LateEntry:    ev.LateEntry,
		EarlyExit:    ev.EarlyExit,
		WorkingHours: hours,
		Remarks:      ev.Remarks,
	}
}
