package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const leaveApplicationColumns = `id, company_id, employee_id, leave_type_id, from_date, to_date, half_day, total_days,
	description, status, auto_deduction, approver_user_id, decided_at, created_by, created_at, updated_at`

type leaveApplicationRepositoryImpl struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.LeaveApplicationRepository {
	return &leaveApplicationRepositoryImpl{db: db}
}

func scanLeaveApplication(row pgx.Row) (leave.LeaveApplication, error) {
	var a leave.LeaveApplication
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.EmployeeID, &a.LeaveTypeID, &a.FromDate, &a.ToDate, &a.HalfDay, &a.TotalDays,
		&a.Description, &a.Status, &a.AutoDeduction, &a.ApproverUserID, &a.DecidedAt, &a.CreatedBy,
		&a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// Create implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) Create(ctx context.Context, app leave.LeaveApplication) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	if app.ID == "" {
		app.ID = newID()
	}

	query := `
		INSERT INTO leave_applications (
			id, company_id, employee_id, leave_type_id, from_date, to_date, half_day, total_days,
			description, status, auto_deduction, approver_user_id, decided_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		app.ID, app.CompanyID, app.EmployeeID, app.LeaveTypeID, dateOnly(app.FromDate), dateOnly(app.ToDate),
		app.HalfDay, app.TotalDays, app.Description, app.Status, app.AutoDeduction, app.ApproverUserID,
		app.DecidedAt, app.CreatedBy,
	).Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return leave.LeaveApplication{}, fmt.Errorf("failed to create leave application: %w", err)
	}

	return app, nil
}

// GetByID implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveApplicationColumns + ` FROM leave_applications WHERE id = $1 AND company_id = $2`

	app, err := scanLeaveApplication(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveApplication{}, leave.ErrLeaveApplicationNotFound
		}
		return leave.LeaveApplication{}, fmt.Errorf("failed to get leave application %s: %w", id, err)
	}

	return app, nil
}

// ListByEmployee implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, filter leave.MyLeaveFilter) ([]leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"employee_id = $1"}
	args := []interface{}{employeeID}
	paramCount := 1

	if filter.Status != nil {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", paramCount))
		args = append(args, *filter.Status)
	}
	if filter.Year != nil {
		paramCount++
		whereClauses = append(whereClauses, fmt.Sprintf("EXTRACT(YEAR FROM from_date) = $%d", paramCount))
		args = append(args, *filter.Year)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_applications
		WHERE %s
		ORDER BY from_date DESC, created_at DESC
	`, leaveApplicationColumns, strings.Join(whereClauses, " AND "))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave applications: %w", err)
	}
	defer rows.Close()

	var apps []leave.LeaveApplication
	for rows.Next() {
		app, err := scanLeaveApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave applications: %w", err)
	}

	return apps, nil
}

// UpdateStatus implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.ApplicationStatus, approverUserID *string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_applications
		SET status = $1, approver_user_id = COALESCE($2, approver_user_id), decided_at = $3, updated_at = $3
		WHERE id = $4
	`

	tag, err := q.Exec(ctx, query, status, approverUserID, at, id)
	if err != nil {
		return fmt.Errorf("failed to update leave application %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveApplicationNotFound
	}

	return nil
}

// SumApprovedDays implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) SumApprovedDays(ctx context.Context, employeeID, leaveTypeID string, from, to time.Time) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(total_days), 0)
		FROM leave_applications
		WHERE employee_id = $1 AND leave_type_id = $2 AND status = $3
		  AND from_date BETWEEN $4 AND $5
	`

	var total decimal.Decimal
	err := q.QueryRow(ctx, query, employeeID, leaveTypeID, leave.StatusApproved, dateOnly(from), dateOnly(to)).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum approved leave: %w", err)
	}

	return total, nil
}

// HasOverlap implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) HasOverlap(ctx context.Context, employeeID string, from, to time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM leave_applications
			WHERE employee_id = $1
			  AND status IN ($2, $3)
			  AND from_date <= $5 AND to_date >= $4
		)
	`

	var exists bool
	err := q.QueryRow(ctx, query, employeeID, leave.StatusOpen, leave.StatusApproved, dateOnly(from), dateOnly(to)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}

	return exists, nil
}

// ExistsAutoDeduction implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) ExistsAutoDeduction(ctx context.Context, employeeID string, date time.Time, leaveTypeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM leave_applications
			WHERE employee_id = $1 AND from_date = $2 AND leave_type_id = $3
			  AND auto_deduction AND status <> $4
		)
	`

	var exists bool
	err := q.QueryRow(ctx, query, employeeID, dateOnly(date), leaveTypeID, leave.StatusCancelled).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check auto deduction: %w", err)
	}

	return exists, nil
}
