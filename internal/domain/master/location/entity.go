package location

import (
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/timeutil"
)

const (
	DefaultTreatLateAsHalfDayAfter = 5
	DefaultLateCountForHalfDay     = 3
	DefaultLateCountForFullDay     = 5
)

// ShiftConfig is the shift configuration of one work location.
type ShiftConfig struct {
	CompanyID               string
	Location                string
	ShiftStart              *timeutil.TimeOfDay
	ShiftEnd                *timeutil.TimeOfDay
	LateArrivalThreshold    *timeutil.TimeOfDay
	EarlyExitThreshold      *timeutil.TimeOfDay
	HalfDayArrivalTime      *timeutil.TimeOfDay
	HalfDayDepartureTime    *timeutil.TimeOfDay
	TreatLateAsHalfDayAfter int
	LateCountForHalfDay     int
	LateCountForFullDay     int
	LeaveTypeForDeduction   *string
	UpdatedAt               time.Time
}

// HalfDayEscalationAfter returns the late-mark count at which lateness becomes a half day.
func (c ShiftConfig) HalfDayEscalationAfter() int {
	if c.TreatLateAsHalfDayAfter <= 0 {
		return DefaultTreatLateAsHalfDayAfter
	}
	return c.TreatLateAsHalfDayAfter
}

// DeductionThresholds returns the half-day and full-day late-mark thresholds.
func (c ShiftConfig) DeductionThresholds() (half, full int) {
	half, full = c.LateCountForHalfDay, c.LateCountForFullDay
	if half <= 0 {
		half = DefaultLateCountForHalfDay
	}
	if full <= 0 {
		full = DefaultLateCountForFullDay
	}
	return half, full
}
