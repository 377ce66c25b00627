package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/overtime"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const allowedOvertimeColumns = `id, company_id, employee_id, overtime_date, overtime_allowed, early_entry_allowed,
	late_exit_allowed, created_by, created_at`

type allowedOvertimeRepositoryImpl struct {
	db *database.DB
}

func NewAllowedOvertimeRepository(db *database.DB) overtime.AllowedOvertimeRepository {
	return &allowedOvertimeRepositoryImpl{db: db}
}

func scanAllowedOvertime(row pgx.Row) (overtime.AllowedOvertime, error) {
	var o overtime.AllowedOvertime
	err := row.Scan(
		&o.ID, &o.CompanyID, &o.EmployeeID, &o.Date, &o.OvertimeAllowed, &o.EarlyEntryAllowed,
		&o.LateExitAllowed, &o.CreatedBy, &o.CreatedAt,
	)
	return o, err
}

// Create implements overtime.AllowedOvertimeRepository.
func (r *allowedOvertimeRepositoryImpl) Create(ctx context.Context, entry overtime.AllowedOvertime) (overtime.AllowedOvertime, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO allowed_overtimes (
			id, company_id, employee_id, overtime_date, overtime_allowed, early_entry_allowed, late_exit_allowed, created_by
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + allowedOvertimeColumns

	created, err := scanAllowedOvertime(q.QueryRow(ctx, query,
		entry.CompanyID, entry.EmployeeID, dateOnly(entry.Date), entry.OvertimeAllowed,
		entry.EarlyEntryAllowed, entry.LateExitAllowed, entry.CreatedBy,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return overtime.AllowedOvertime{}, overtime.ErrOvertimeExists
		}
		return overtime.AllowedOvertime{}, fmt.Errorf("failed to create allowed overtime: %w", err)
	}

	return created, nil
}

// GetByEmployeeAndDate implements overtime.AllowedOvertimeRepository.
func (r *allowedOvertimeRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*overtime.AllowedOvertime, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + allowedOvertimeColumns + ` FROM allowed_overtimes WHERE employee_id = $1 AND overtime_date = $2`

	o, err := scanAllowedOvertime(q.QueryRow(ctx, query, employeeID, dateOnly(date)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get allowed overtime: %w", err)
	}

	return &o, nil
}

// List implements overtime.AllowedOvertimeRepository.
func (r *allowedOvertimeRepositoryImpl) List(ctx context.Context, filter overtime.ListFilter) ([]overtime.AllowedOvertime, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"company_id = $1"}
	args := []interface{}{filter.CompanyID}
	argIdx := 2

	if filter.EmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.From != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("overtime_date >= $%d", argIdx))
		args = append(args, dateOnly(*filter.From))
		argIdx++
	}
	if filter.To != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("overtime_date <= $%d", argIdx))
		args = append(args, dateOnly(*filter.To))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM allowed_overtimes
		WHERE %s
		ORDER BY overtime_date DESC, employee_id
	`, allowedOvertimeColumns, strings.Join(whereClauses, " AND "))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list allowed overtime: %w", err)
	}
	defer rows.Close()

	var entries []overtime.AllowedOvertime
	for rows.Next() {
		o, err := scanAllowedOvertime(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allowed overtime: %w", err)
		}
		entries = append(entries, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allowed overtime: %w", err)
	}

	return entries, nil
}

// Delete implements overtime.AllowedOvertimeRepository.
func (r *allowedOvertimeRepositoryImpl) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM allowed_overtimes WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete allowed overtime %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return overtime.ErrOvertimeNotFound
	}

	return nil
}
