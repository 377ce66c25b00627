package location

import (
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
)

// ShiftConfigResponse represents the response structure for a location shift configuration.
type ShiftConfigResponse struct {
	Location                string              `json:"location"`
	ShiftStart              *timeutil.TimeOfDay `json:"shift_start_time,omitempty"`
	ShiftEnd                *timeutil.TimeOfDay `json:"shift_end_time,omitempty"`
	LateArrivalThreshold    *timeutil.TimeOfDay `json:"late_arrival_threshold,omitempty"`
	EarlyExitThreshold      *timeutil.TimeOfDay `json:"early_exit_threshold,omitempty"`
	HalfDayArrivalTime      *timeutil.TimeOfDay `json:"half_day_arrival_time,omitempty"`
	HalfDayDepartureTime    *timeutil.TimeOfDay `json:"half_day_departure_time,omitempty"`
	TreatLateAsHalfDayAfter int                 `json:"treat_late_as_half_day_after"`
	LateCountForHalfDay     int                 `json:"late_count_for_half_day"`
	LateCountForFullDay     int                 `json:"late_count_for_full_day"`
	LeaveTypeForDeduction   *string             `json:"leave_type_for_deduction,omitempty"`
	UpdatedAt               time.Time           `json:"updated_at"`
}

// UpsertShiftConfigRequest represents the request structure for saving a location shift configuration.
type UpsertShiftConfigRequest struct {
	CompanyID               string              `json:"-"` // From JWT
	Location                string              `json:"-"` // From URL
	ShiftStart              *timeutil.TimeOfDay `json:"shift_start_time"`
	ShiftEnd                *timeutil.TimeOfDay `json:"shift_end_time"`
	LateArrivalThreshold    *timeutil.TimeOfDay `json:"late_arrival_threshold"`
	EarlyExitThreshold      *timeutil.TimeOfDay `json:"early_exit_threshold"`
	HalfDayArrivalTime      *timeutil.TimeOfDay `json:"half_day_arrival_time"`
	HalfDayDepartureTime    *timeutil.TimeOfDay `json:"half_day_departure_time"`
	TreatLateAsHalfDayAfter *int                `json:"treat_late_as_half_day_after"`
	LateCountForHalfDay     *int                `json:"late_count_for_half_day"`
	LateCountForFullDay     *int                `json:"late_count_for_full_day"`
	LeaveTypeForDeduction   *string             `json:"leave_type_for_deduction"`
}

func (r *UpsertShiftConfigRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CompanyID) {
		errs = append(errs, validator.ValidationError{Field: "company_id", Message: "company_id is required"})
	}
	if validator.IsEmpty(r.Location) {
		errs = append(errs, validator.ValidationError{Field: "location", Message: "location is required"})
	}
	if len(r.Location) > 100 {
		errs = append(errs, validator.ValidationError{Field: "location", Message: "location must not exceed 100 characters"})
	}
	if r.ShiftStart != nil && r.ShiftEnd != nil && *r.ShiftEnd <= *r.ShiftStart {
		errs = append(errs, validator.ValidationError{Field: "shift_end_time", Message: ErrInvalidShiftWindow.Error()})
	}

	counts := map[string]*int{
		"treat_late_as_half_day_after": r.TreatLateAsHalfDayAfter,
		"late_count_for_half_day":      r.LateCountForHalfDay,
		"late_count_for_full_day":      r.LateCountForFullDay,
	}
	for field, v := range counts {
		if v != nil && *v < 1 {
			errs = append(errs, validator.ValidationError{Field: field, Message: field + " must be at least 1"})
		}
	}

	if r.LateCountForHalfDay != nil && r.LateCountForFullDay != nil && *r.LateCountForFullDay < *r.LateCountForHalfDay {
		errs = append(errs, validator.ValidationError{
			Field:   "late_count_for_full_day",
			Message: "late_count_for_full_day must not be lower than late_count_for_half_day",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToEntity applies defaults for omitted counters.
func (r *UpsertShiftConfigRequest) ToEntity() ShiftConfig {
	cfg := ShiftConfig{
		CompanyID:               r.CompanyID,
		Location:                r.Location,
		ShiftStart:              r.ShiftStart,
		ShiftEnd:                r.ShiftEnd,
		LateArrivalThreshold:    r.LateArrivalThreshold,
		EarlyExitThreshold:      r.EarlyExitThreshold,
		HalfDayArrivalTime:      r.HalfDayArrivalTime,
		HalfDayDepartureTime:    r.HalfDayDepartureTime,
		TreatLateAsHalfDayAfter: DefaultTreatLateAsHalfDayAfter,
		LateCountForHalfDay:     DefaultLateCountForHalfDay,
		LateCountForFullDay:     DefaultLateCountForFullDay,
		LeaveTypeForDeduction:   r.LeaveTypeForDeduction,
	}
	if r.TreatLateAsHalfDayAfter != nil {
		cfg.TreatLateAsHalfDayAfter = *r.TreatLateAsHalfDayAfter
	}
	if r.LateCountForHalfDay != nil {
		cfg.LateCountForHalfDay = *r.LateCountForHalfDay
	}
	if r.LateCountForFullDay != nil {
		cfg.LateCountForFullDay = *r.LateCountForFullDay
	}
	return cfg
}

func NewShiftConfigResponse(c ShiftConfig) ShiftConfigResponse {
	return ShiftConfigResponse{
		Location:                c.Location,
		ShiftStart:              c.ShiftStart,
		ShiftEnd:                c.ShiftEnd,
		LateArrivalThreshold:    c.LateArrivalThreshold,
		EarlyExitThreshold:      c.EarlyExitThreshold,
		HalfDayArrivalTime:      c.HalfDayArrivalTime,
		HalfDayDepartureTime:    c.HalfDayDepartureTime,
		TreatLateAsHalfDayAfter: c.TreatLateAsHalfDayAfter,
		LateCountForHalfDay:     c.LateCountForHalfDay,
		LateCountForFullDay:     c.LateCountForFullDay,
		LeaveTypeForDeduction:   c.LeaveTypeForDeduction,
		UpdatedAt:               c.UpdatedAt,
	}
}
