package checkin

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
)

type CreateCheckinRequest struct {
	LogType   LogType  `json:"log_type"`
	Time      *string  `json:"time,omitempty"` // RFC3339, defaults to now
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Reason    *string  `json:"reason,omitempty"`

	parsedTime *time.Time
}

func (r *CreateCheckinRequest) Validate() error {
	var errs validator.ValidationErrors

	r.LogType = LogType(strings.ToUpper(string(r.LogType)))
	if r.LogType != LogTypeIn && r.LogType != LogTypeOut {
		errs = append(errs, validator.ValidationError{Field: "log_type", Message: ErrInvalidLogType.Error()})
	}

	if r.Time != nil {
		t, ok := validator.IsValidDateTime(*r.Time)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "time", Message: "time must be an ISO8601 timestamp"})
		} else {
			r.parsedTime = &t
		}
	}

	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "latitude must be between -90 and 90"})
	}
	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		errs = append(errs, validator.ValidationError{Field: "longitude", Message: "longitude must be between -180 and 180"})
	}
	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "latitude and longitude must be sent together"})
	}

	if r.Reason != nil && len(*r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason must not exceed 500 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParsedTime is set by a successful Validate when a time was sent.
func (r *CreateCheckinRequest) ParsedTime() *time.Time {
	return r.parsedTime
}

type ApproveCheckinRequest struct {
	ID      string  `json:"-"` // From URL
	LogTime *string `json:"log_time,omitempty"`

	parsedTime *time.Time
}

func (r *ApproveCheckinRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if r.LogTime != nil {
		t, ok := validator.IsValidDateTime(*r.LogTime)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "log_time", Message: "log_time must be an ISO8601 timestamp"})
		} else {
			r.parsedTime = &t
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *ApproveCheckinRequest) ParsedTime() *time.Time {
	return r.parsedTime
}

type ListCheckinFilter struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

type CheckinResponse struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employee_id"`
	Time             time.Time `json:"time"`
	LogType          LogType   `json:"log_type"`
	ApprovalRequired bool      `json:"approval_required"`
	Approved         bool      `json:"approved"`
	Rejected         bool      `json:"rejected"`
	Reason           *string   `json:"reason,omitempty"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	Location         *string   `json:"location,omitempty"`
	Source           Source    `json:"source"`
	Message          string    `json:"message,omitempty"`
}

// ApprovalResponse carries the approved event and any warning raised while reprocessing the day.
type ApprovalResponse struct {
	Checkin          CheckinResponse `json:"checkin"`
	AttendanceStatus string          `json:"attendance_status,omitempty"`
	Warning          string          `json:"warning,omitempty"`
}

func NewCheckinResponse(c Checkin) CheckinResponse {
	return CheckinResponse{
		ID:               c.ID,
		EmployeeID:       c.EmployeeID,
		Time:             c.Time,
		LogType:          c.LogType,
		ApprovalRequired: c.ApprovalRequired,
		Approved:         c.Approved,
		Rejected:         c.Rejected,
		Reason:           c.Reason,
		Latitude:         c.Latitude,
		Longitude:        c.Longitude,
		Location:         c.Location,
		Source:           c.Source,
	}
}
