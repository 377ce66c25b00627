package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `id, company_id, employee_id, attendance_date, status, late_entry, early_exit,
	working_hours, remarks, leave_application_id, doc_status, processed_by, created_at, cancelled_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.EmployeeID, &a.Date, &a.Status, &a.LateEntry, &a.EarlyExit,
		&a.WorkingHours, &a.Remarks, &a.LeaveApplicationID, &a.DocStatus, &a.ProcessedBy,
		&a.CreatedAt, &a.CancelledAt,
	)
	return a, err
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	if a.ID == "" {
		a.ID = newID()
	}
	if a.DocStatus == "" {
		a.DocStatus = attendance.DocStatusSubmitted
	}

	query := `
		INSERT INTO attendances (
			id, company_id, employee_id, attendance_date, status, late_entry, early_exit,
			working_hours, remarks, leave_application_id, doc_status, processed_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		a.ID,
		a.CompanyID,
		a.EmployeeID,
		dateOnly(a.Date),
		a.Status,
		a.LateEntry,
		a.EarlyExit,
		a.WorkingHours,
		a.Remarks,
		a.LeaveApplicationID,
		a.DocStatus,
		a.ProcessedBy,
	).Scan(&a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrAttendanceExists
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return a, nil
}

// GetActive implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetActive(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND attendance_date = $2 AND doc_status <> $3
		LIMIT 1
	`

	a, err := scanAttendance(q.QueryRow(ctx, query, employeeID, dateOnly(date), attendance.DocStatusCancelled))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	return &a, nil
}

// Cancel implements attendance.AttendanceRepository.
func (r *attendanceRepository) Cancel(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET doc_status = $1, cancelled_at = $2
		WHERE id = $3 AND doc_status <> $1
	`

	tag, err := q.Exec(ctx, query, attendance.DocStatusCancelled, at, id)
	if err != nil {
		return fmt.Errorf("failed to cancel attendance %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrNotCancellable
	}

	return nil
}

// CountLateMarks implements attendance.AttendanceRepository.
func (r *attendanceRepository) CountLateMarks(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM attendances
		WHERE employee_id = $1
		  AND doc_status = $2
		  AND attendance_date BETWEEN $3 AND $4
		  AND (late_entry OR early_exit)
	`

	var count int
	if err := q.QueryRow(ctx, query, employeeID, attendance.DocStatusSubmitted, dateOnly(from), dateOnly(to)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count late marks: %w", err)
	}

	return count, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"company_id = $1", "doc_status <> $2"}
	args := []interface{}{filter.CompanyID, attendance.DocStatusCancelled}
	argIdx := 3

	if filter.EmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.From != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("attendance_date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("attendance_date <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}

	where := strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM attendances WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendances
		WHERE %s
		ORDER BY attendance_date DESC, employee_id
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, where, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return records, total, nil
}

type attendanceRunRepository struct {
	db *database.DB
}

func NewAttendanceRunRepository(db *database.DB) attendance.RunRepository {
	return &attendanceRunRepository{db: db}
}

// Create implements attendance.RunRepository.
func (r *attendanceRunRepository) Create(ctx context.Context, run attendance.ProcessingRun) (attendance.ProcessingRun, error) {
	q := GetQuerier(ctx, r.db)

	if run.ID == "" {
		run.ID = newID()
	}

	query := `
		INSERT INTO attendance_runs (id, company_id, run_date, employee_id, status, started_by, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query, run.ID, run.CompanyID, dateOnly(run.Date), run.EmployeeID, run.Status, run.StartedBy, run.StartedAt)
	if err != nil {
		return attendance.ProcessingRun{}, fmt.Errorf("failed to create processing run: %w", err)
	}

	return run, nil
}

// Finish implements attendance.RunRepository.
func (r *attendanceRunRepository) Finish(ctx context.Context, run attendance.ProcessingRun) error {
	q := GetQuerier(ctx, r.db)

	result, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}

	query := `
		UPDATE attendance_runs
		SET status = $1, result = $2, error = $3, finished_at = $4
		WHERE id = $5
	`

	tag, err := q.Exec(ctx, query, run.Status, result, run.Error, run.FinishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish processing run %s: %w", run.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRunNotFound
	}

	return nil
}

// GetCompleted implements attendance.RunRepository.
func (r *attendanceRunRepository) GetCompleted(ctx context.Context, companyID string, date time.Time, employeeID *string) (*attendance.ProcessingRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, run_date, employee_id, status, result, error, started_by, started_at, finished_at
		FROM attendance_runs
		WHERE company_id = $1 AND run_date = $2 AND status = $3
		  AND employee_id IS NOT DISTINCT FROM $4
		ORDER BY started_at DESC
		LIMIT 1
	`

	var (
		run    attendance.ProcessingRun
		result []byte
	)
	err := q.QueryRow(ctx, query, companyID, dateOnly(date), attendance.RunStatusCompleted, employeeID).Scan(
		&run.ID, &run.CompanyID, &run.Date, &run.EmployeeID, &run.Status, &result,
		&run.Error, &run.StartedBy, &run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get completed run: %w", err)
	}

	if result != nil {
		if err := json.Unmarshal(result, &run.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run result: %w", err)
		}
	}

	return &run, nil
}
