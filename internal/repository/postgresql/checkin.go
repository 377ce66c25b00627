package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const checkinColumns = `id, company_id, employee_id, log_time, log_type, approval_required, approved, rejected,
	requested_from, approver_user_id, approved_at, reason, latitude, longitude, location, source, created_at`

type checkinRepository struct {
	db *database.DB
}

func NewCheckinRepository(db *database.DB) checkin.CheckinRepository {
	return &checkinRepository{db: db}
}

func scanCheckin(row pgx.Row) (checkin.Checkin, error) {
	var c checkin.Checkin
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.EmployeeID, &c.Time, &c.LogType, &c.ApprovalRequired, &c.Approved, &c.Rejected,
		&c.RequestedFrom, &c.ApproverUserID, &c.ApprovedAt, &c.Reason, &c.Latitude, &c.Longitude,
		&c.Location, &c.Source, &c.CreatedAt,
	)
	return c, err
}

func (r *checkinRepository) queryCheckins(ctx context.Context, query string, args ...interface{}) ([]checkin.Checkin, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	defer rows.Close()

	var list []checkin.Checkin
	for rows.Next() {
		c, err := scanCheckin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate check-ins: %w", err)
	}

	return list, nil
}

// Create implements checkin.CheckinRepository.
func (r *checkinRepository) Create(ctx context.Context, c checkin.Checkin) (checkin.Checkin, error) {
	q := GetQuerier(ctx, r.db)

	if c.ID == "" {
		c.ID = newID()
	}

	query := `
		INSERT INTO checkins (
			id, company_id, employee_id, log_time, log_type, approval_required, approved, rejected,
			requested_from, reason, latitude, longitude, location, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		c.ID, c.CompanyID, c.EmployeeID, c.Time, c.LogType, c.ApprovalRequired, c.Approved, c.Rejected,
		c.RequestedFrom, c.Reason, c.Latitude, c.Longitude, c.Location, c.Source,
	).Scan(&c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return checkin.Checkin{}, checkin.ErrDuplicateCheckin
		}
		return checkin.Checkin{}, fmt.Errorf("failed to create check-in: %w", err)
	}

	return c, nil
}

// GetByID implements checkin.CheckinRepository.
func (r *checkinRepository) GetByID(ctx context.Context, id string, companyID string) (checkin.Checkin, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + checkinColumns + ` FROM checkins WHERE id = $1 AND company_id = $2`

	c, err := scanCheckin(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return checkin.Checkin{}, checkin.ErrCheckinNotFound
		}
		return checkin.Checkin{}, fmt.Errorf("failed to get check-in %s: %w", id, err)
	}

	return c, nil
}

// ListForDay implements checkin.CheckinRepository.
func (r *checkinRepository) ListForDay(ctx context.Context, employeeID string, date time.Time) ([]checkin.Checkin, error) {
	query := `
		SELECT ` + checkinColumns + `
		FROM checkins
		WHERE employee_id = $1 AND log_time >= $2 AND log_time < $3
		ORDER BY log_time, created_at
	`
	return r.queryCheckins(ctx, query, employeeID, date, date.AddDate(0, 0, 1))
}

// ExistsOnDay implements checkin.CheckinRepository.
func (r *checkinRepository) ExistsOnDay(ctx context.Context, employeeID string, date time.Time, logType checkin.LogType, excludeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exclude *string
	if excludeID != "" {
		exclude = &excludeID
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM checkins
			WHERE employee_id = $1 AND log_type = $2 AND NOT rejected
				AND log_time >= $3 AND log_time < $4
				AND ($5::uuid IS NULL OR id <> $5::uuid)
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, logType, date, date.AddDate(0, 0, 1), exclude).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existing check-in: %w", err)
	}

	return exists, nil
}

// ListByEmployee implements checkin.CheckinRepository.
func (r *checkinRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]checkin.Checkin, error) {
	query := `
		SELECT ` + checkinColumns + `
		FROM checkins
		WHERE employee_id = $1 AND log_time >= $2 AND log_time < $3
		ORDER BY log_time DESC
	`
	return r.queryCheckins(ctx, query, employeeID, from, to.AddDate(0, 0, 1))
}

// ListPendingForApprover implements checkin.CheckinRepository.
func (r *checkinRepository) ListPendingForApprover(ctx context.Context, managerEmployeeID string) ([]checkin.Checkin, error) {
	query := `
		SELECT ` + checkinColumns + `
		FROM checkins
		WHERE requested_from = $1 AND approval_required AND NOT approved AND NOT rejected
		ORDER BY log_time
	`
	return r.queryCheckins(ctx, query, managerEmployeeID)
}

// Approve implements checkin.CheckinRepository.
func (r *checkinRepository) Approve(ctx context.Context, id string, approverUserID string, at time.Time, newTime *time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE checkins
		SET approved = true, approver_user_id = $1, approved_at = $2, log_time = COALESCE($3, log_time)
		WHERE id = $4 AND NOT approved AND NOT rejected
	`

	tag, err := q.Exec(ctx, query, approverUserID, at, newTime, id)
	if err != nil {
		if isUniqueViolation(err) {
			return checkin.ErrDuplicateCheckin
		}
		return fmt.Errorf("failed to approve check-in %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return checkin.ErrAlreadyDecided
	}

	return nil
}

// Reject implements checkin.CheckinRepository.
func (r *checkinRepository) Reject(ctx context.Context, id string, approverUserID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE checkins
		SET rejected = true, approver_user_id = $1, approved_at = $2
		WHERE id = $3 AND NOT approved AND NOT rejected
	`

	tag, err := q.Exec(ctx, query, approverUserID, at, id)
	if err != nil {
		return fmt.Errorf("failed to reject check-in %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return checkin.ErrAlreadyDecided
	}

	return nil
}
