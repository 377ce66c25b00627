package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveAllocationRepositoryImpl struct {
	db *database.DB
}

func NewLeaveAllocationRepository(db *database.DB) leave.LeaveAllocationRepository {
	return &leaveAllocationRepositoryImpl{db: db}
}

// GetCovering implements leave.LeaveAllocationRepository.
func (r *leaveAllocationRepositoryImpl) GetCovering(ctx context.Context, employeeID, leaveTypeID string, asOf time.Time) (leave.LeaveAllocation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, leave_type_id, from_date, to_date, allocated
		FROM leave_allocations
		WHERE employee_id = $1 AND leave_type_id = $2 AND from_date <= $3 AND to_date >= $3
		ORDER BY from_date DESC
		LIMIT 1
	`

	var a leave.LeaveAllocation
	err := q.QueryRow(ctx, query, employeeID, leaveTypeID, dateOnly(asOf)).Scan(
		&a.ID, &a.EmployeeID, &a.LeaveTypeID, &a.FromDate, &a.ToDate, &a.Allocated,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveAllocation{}, leave.ErrNoAllocation
		}
		return leave.LeaveAllocation{}, fmt.Errorf("failed to get leave allocation: %w", err)
	}

	return a, nil
}
