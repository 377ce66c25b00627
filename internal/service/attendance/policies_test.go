package attendance

import (
	"testing"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/checkin"
	"github.com/stretchr/testify/assert"
)

func TestWorkerAtSite(t *testing.T) {
	present := WorkerAtSite([]checkin.Checkin{event(checkin.LogTypeIn, at(13, 0))})
	absent := WorkerAtSite(nil)

	assert.Equal(t, attendance.StatusPresent, present.Status)
	assert.True(t, present.WorkingHours.IsZero())
	assert.False(t, present.LateEntry)
	assert.Equal(t, "Worker (Site) - Check-in recorded", present.Remarks)
	assert.Equal(t, attendance.StatusAbsent, absent.Status)
	assert.Equal(t, attendance.OutcomeAbsent, absent.Outcome)
}

func TestWorkerOffSite(t *testing.T) {
	tests := []struct {
		name    string
		w       Window
		status  attendance.Status
		remarks string
	}{
		{name: "no check-in", w: window(nil, ptr(at(18, 0))), status: attendance.StatusAbsent, remarks: "Worker - No check-in recorded"},
		{name: "check-in only", w: window(ptr(at(9, 0)), nil), status: attendance.StatusAbsent, remarks: "Worker - Check-in only, no check-out recorded"},
		{name: "complete", w: window(ptr(at(9, 0)), ptr(at(18, 30))), status: attendance.StatusPresent, remarks: "Worker attendance - 9.5 hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WorkerOffSite(tt.w)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.remarks, got.Remarks)
		})
	}
}

func TestDriver(t *testing.T) {
	tests := []struct {
		name    string
		w       Window
		status  attendance.Status
		hours   string
		remarks string
	}{
		{
			name:    "missing out defaults to 18:00",
			w:       window(ptr(at(8, 0)), nil),
			status:  attendance.StatusPresent,
			hours:   "9.5",
			remarks: "Driver (Noida) - 9.5 hours (30 min break deducted)",
		},
		{
			name:   "explicit out",
			w:      window(ptr(at(8, 0)), ptr(at(20, 0))),
			status: attendance.StatusPresent,
			hours:  "11.5",
		},
		{
			name:   "short day keeps undeducted hours",
			w:      window(ptr(at(17, 45)), nil),
			status: attendance.StatusPresent,
			hours:  "0.25",
		},
		{
			name:   "check-in after default out never goes negative",
			w:      window(ptr(at(19, 0)), nil),
			status: attendance.StatusPresent,
			hours:  "0",
		},
		{
			name:    "no check-in",
			w:       window(nil, ptr(at(18, 0))),
			status:  attendance.StatusAbsent,
			hours:   "0",
			remarks: "Driver (Noida) - No check-in recorded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Driver(tt.w, testDay, "Noida")

			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.hours, got.WorkingHours.String())
			assert.False(t, got.WorkingHours.IsNegative())
			if tt.remarks != "" {
				assert.Equal(t, tt.remarks, got.Remarks)
			}
		})
	}
}
