package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (LeaveType, error)
}

// LeaveAllocationRepository - interface for leave_allocations table
type LeaveAllocationRepository interface {
	// GetCovering returns ErrNoAllocation when no allocation covers asOf
	GetCovering(ctx context.Context, employeeID, leaveTypeID string, asOf time.Time) (LeaveAllocation, error)
}

// LeaveApplicationRepository - interface for leave_applications table
type LeaveApplicationRepository interface {
	Create(ctx context.Context, app LeaveApplication) (LeaveApplication, error)
	GetByID(ctx context.Context, id string, companyID string) (LeaveApplication, error)
	ListByEmployee(ctx context.Context, employeeID string, filter MyLeaveFilter) ([]LeaveApplication, error)
	UpdateStatus(ctx context.Context, id string, status ApplicationStatus, approverUserID *string, at time.Time) error

	// SumApprovedDays adds up approved days starting in [from, to]
	SumApprovedDays(ctx context.Context, employeeID, leaveTypeID string, from, to time.Time) (decimal.Decimal, error)

	// HasOverlap reports an open or approved application intersecting [from, to]
	HasOverlap(ctx context.Context, employeeID string, from, to time.Time) (bool, error)

	// ExistsAutoDeduction reports a non-cancelled auto-deduction for the employee, date and leave type
	ExistsAutoDeduction(ctx context.Context, employeeID string, date time.Time, leaveTypeID string) (bool, error)
}
