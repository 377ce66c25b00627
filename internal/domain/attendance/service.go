package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
)

// ProcessContext carries the explicit inputs of one processing pass.
type ProcessContext struct {
	Actor user.Actor
	Date  time.Time
}

// Processor derives attendance records from check-in events.
type Processor interface {
	// ProcessEmployeeDay evaluates one employee-day, superseding any earlier non-leave record
	ProcessEmployeeDay(ctx context.Context, pc ProcessContext, employeeID string) (Decision, error)

	// ProcessCompany evaluates every active employee of the actor's company, isolating per-employee failures
	ProcessCompany(ctx context.Context, pc ProcessContext) (BatchResult, error)

	// RunDaily processes yesterday for every company
	RunDaily(ctx context.Context) error
}

// AttendanceService is the HTTP-facing surface.
type AttendanceService interface {
	GetMyAttendance(ctx context.Context, actor user.Actor, filter MyAttendanceFilter) (ListAttendanceResponse, error)
	ListAttendance(ctx context.Context, actor user.Actor, filter AttendanceFilter) (ListAttendanceResponse, error)

	// Process runs a manual processing request, recording it as a ProcessingRun
	Process(ctx context.Context, actor user.Actor, req ProcessRequest) (ProcessResponse, error)
}

// DeductionService turns monthly late marks into leave deductions.
type DeductionService interface {
	// RunMonthly processes the month before now
	RunMonthly(ctx context.Context) error
	ProcessMonth(ctx context.Context, companyID string, month time.Time) (DeductionResult, error)
}

type DeductionResult struct {
	Month   string `json:"month"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Errors  int    `json:"errors"`
}
