package attendance

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/location"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/timeutil"
)

const regularAttendance = "Regular attendance"

// EvaluationInput is everything the shift rules look at for one employee-day.
type EvaluationInput struct {
	Window    Window
	Config    *location.ShiftConfig
	LateMarks int // late marks earlier in the month
}

// Evaluation is the classification of one employee-day.
type Evaluation struct {
	Status    attendance.Status
	LateEntry bool
	EarlyExit bool
	Remarks   string
}

// Evaluate applies the location's shift rules. The steps run in a fixed order
// and later steps only look at the status left by earlier ones.
func Evaluate(in EvaluationInput) Evaluation {
	if in.Config == nil {
		return evaluateWithoutConfig(in.Window)
	}

	cfg := in.Config
	w := in.Window
	threshold := cfg.HalfDayEscalationAfter()
	escalated := in.LateMarks >= threshold

	ev := Evaluation{Status: attendance.StatusPresent}
	var remarks []string

	if w.FirstIn == nil {
		ev.LateEntry = true
		remarks = append(remarks, "Missing check-in")
	}
	if w.LastOut == nil {
		ev.EarlyExit = true
		remarks = append(remarks, "Missing check-out")
	}

	var arrived, left timeutil.TimeOfDay
	if w.FirstIn != nil {
		arrived = timeutil.Of(*w.FirstIn)
	}
	if w.LastOut != nil {
		left = timeutil.Of(*w.LastOut)
	}

	if w.FirstIn != nil && cfg.HalfDayArrivalTime != nil && arrived >= *cfg.HalfDayArrivalTime {
		ev.Status = attendance.StatusHalfDay
		remarks = append(remarks, fmt.Sprintf("Arrived at/after %s", cfg.HalfDayArrivalTime))
	}

	if w.LastOut != nil && cfg.HalfDayDepartureTime != nil && left <= *cfg.HalfDayDepartureTime {
		ev.Status = attendance.StatusHalfDay
		remarks = append(remarks, fmt.Sprintf("Left at/before %s", cfg.HalfDayDepartureTime))
	}

	if ev.Status != attendance.StatusHalfDay && w.FirstIn != nil && cfg.LateArrivalThreshold != nil && arrived > *cfg.LateArrivalThreshold {
		if escalated {
			ev.Status = attendance.StatusHalfDay
			remarks = append(remarks, fmt.Sprintf("Late arrival treated as Half Day (exceeded %d late marks)", threshold))
		} else {
			ev.LateEntry = true
			remarks = append(remarks, fmt.Sprintf("Late arrival after %s", cfg.LateArrivalThreshold))
		}
	}

	if ev.Status != attendance.StatusHalfDay && w.LastOut != nil && cfg.EarlyExitThreshold != nil && left < *cfg.EarlyExitThreshold {
		if escalated {
			ev.Status = attendance.StatusHalfDay
			remarks = append(remarks, fmt.Sprintf("Early exit treated as Half Day (exceeded %d late marks)", threshold))
		} else {
			ev.EarlyExit = true
			remarks = append(remarks, fmt.Sprintf("Early exit before %s", cfg.EarlyExitThreshold))
		}
	}

	if (ev.LateEntry || ev.EarlyExit) && ev.Status == attendance.StatusPresent && escalated {
		ev.Status = attendance.StatusHalfDay
		ev.LateEntry = false
		ev.EarlyExit = false
		remarks = append(remarks, fmt.Sprintf("Missing log treated as Half Day (exceeded %d late marks)", threshold))
	}

	if w.Empty() {
		ev.Status = attendance.StatusAbsent
	}

	ev.Remarks = joinRemarks(remarks)
	return ev
}

func evaluateWithoutConfig(w Window) Evaluation {
	ev := Evaluation{Status: attendance.StatusPresent}
	var remarks []string

	if w.FirstIn == nil {
		ev.LateEntry = true
		remarks = append(remarks, "Missing check-in")
	}
	if w.LastOut == nil {
		ev.EarlyExit = true
		remarks = append(remarks, "Missing check-out")
	}
	if w.Empty() {
		ev.Status = attendance.StatusAbsent
	}

	ev.Remarks = joinRemarks(remarks)
	return ev
}

func joinRemarks(remarks []string) string {
	if len(remarks) == 0 {
		return regularAttendance
	}
	return strings.Join(remarks, ", ")
}
