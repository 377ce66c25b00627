package attendance

import (
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/checkin"
)

// Window holds the extremes of an employee-day: the first IN and the last OUT.
type Window struct {
	FirstIn *time.Time
	LastOut *time.Time
}

// Complete reports whether both endpoints exist.
func (w Window) Complete() bool {
	return w.FirstIn != nil && w.LastOut != nil
}

// Empty reports whether neither endpoint exists.
func (w Window) Empty() bool {
	return w.FirstIn == nil && w.LastOut == nil
}

// ExtractWindow scans events ordered by time. IN and OUT events are not paired.
func ExtractWindow(events []checkin.Checkin) Window {
	var w Window
	for i := range events {
		if events[i].LogType == checkin.LogTypeIn {
			t := events[i].Time
			w.FirstIn = &t
			break
		}
	}
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].LogType == checkin.LogTypeOut {
			t := events[i].Time
			w.LastOut = &t
			break
		}
	}
	return w
}

// PendingApproval reports whether any event still waits on a manager.
func PendingApproval(events []checkin.Checkin) bool {
	for _, e := range events {
		if e.PendingApproval() {
			return true
		}
	}
	return false
}

// withoutRejected drops events a manager rejected.
func withoutRejected(events []checkin.Checkin) []checkin.Checkin {
	kept := events[:0:0]
	for _, e := range events {
		if !e.Rejected {
			kept = append(kept, e)
		}
	}
	return kept
}

// inLocation puts event times on the wall clock of loc.
func inLocation(events []checkin.Checkin, loc *time.Location) []checkin.Checkin {
	out := make([]checkin.Checkin, len(events))
	for i, e := range events {
		e.Time = e.Time.In(loc)
		out[i] = e
	}
	return out
}
