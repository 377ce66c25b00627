package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const (
	employeePullColumns = `id, employee, company, employee_name, designation, department, cell_number,
	is_team_leader, origin, extra, updated_at`
	salesOrderPullColumns = `id, sales_order, company, customer, transaction_date, delivery_date, grand_total,
	status, origin, updated_at`
	leaderLocationColumns = `id, employee, company, latitude, longitude, recorded_at, origin`
)

type syncRecordRepository struct {
	db *database.DB
}

func NewSyncRecordRepository(db *database.DB) erpsync.RecordRepository {
	return &syncRecordRepository{db: db}
}

func scanEmployeePull(row pgx.Row, extra ...interface{}) (erpsync.EmployeePull, error) {
	var (
		e       erpsync.EmployeePull
		payload []byte
	)
	dest := []interface{}{
		&e.ID, &e.Employee, &e.Company, &e.EmployeeName, &e.Designation, &e.Department, &e.CellNumber,
		&e.IsTeamLeader, &e.Origin, &payload, &e.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return erpsync.EmployeePull{}, err
	}
	if len(payload) > 0 {
		e.Extra = payload
	}
	return e, nil
}

func scanSalesOrderPull(row pgx.Row, extra ...interface{}) (erpsync.SalesOrderPull, error) {
	var s erpsync.SalesOrderPull
	dest := []interface{}{
		&s.ID, &s.SalesOrder, &s.Company, &s.Customer, &s.TransactionDate, &s.DeliveryDate, &s.GrandTotal,
		&s.Status, &s.Origin, &s.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return s, err
}

// UpsertEmployeePull implements erpsync.RecordRepository.
func (r *syncRecordRepository) UpsertEmployeePull(ctx context.Context, e erpsync.EmployeePull) (erpsync.EmployeePull, bool, error) {
	q := GetQuerier(ctx, r.db)

	var extra []byte
	if len(e.Extra) > 0 {
		extra = e.Extra
	}

	query := `
		INSERT INTO employee_pulls (
			id, employee, company, employee_name, designation, department, cell_number, is_team_leader, origin, extra, updated_at
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (employee, company) DO UPDATE SET
			employee_name = EXCLUDED.employee_name,
			designation = EXCLUDED.designation,
			department = EXCLUDED.department,
			cell_number = EXCLUDED.cell_number,
			is_team_leader = EXCLUDED.is_team_leader,
			origin = EXCLUDED.origin,
			extra = EXCLUDED.extra,
			updated_at = NOW()
		RETURNING ` + employeePullColumns + `, (xmax = 0) AS inserted`

	var inserted bool
	saved, err := scanEmployeePull(q.QueryRow(ctx, query,
		e.Employee, e.Company, e.EmployeeName, e.Designation, e.Department, e.CellNumber,
		e.IsTeamLeader, e.Origin, extra,
	), &inserted)
	if err != nil {
		return erpsync.EmployeePull{}, false, fmt.Errorf("failed to upsert employee pull %s: %w", e.Key(), err)
	}

	return saved, inserted, nil
}

// UpsertSalesOrderPull implements erpsync.RecordRepository.
func (r *syncRecordRepository) UpsertSalesOrderPull(ctx context.Context, s erpsync.SalesOrderPull) (erpsync.SalesOrderPull, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO sales_order_pulls (
			id, sales_order, company, customer, transaction_date, delivery_date, grand_total, status, origin, updated_at
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (sales_order, company) DO UPDATE SET
			customer = EXCLUDED.customer,
			transaction_date = EXCLUDED.transaction_date,
			delivery_date = EXCLUDED.delivery_date,
			grand_total = EXCLUDED.grand_total,
			status = EXCLUDED.status,
			origin = EXCLUDED.origin,
			updated_at = NOW()
		RETURNING ` + salesOrderPullColumns + `, (xmax = 0) AS inserted`

	var inserted bool
	saved, err := scanSalesOrderPull(q.QueryRow(ctx, query,
		s.SalesOrder, s.Company, s.Customer, s.TransactionDate, s.DeliveryDate, s.GrandTotal, s.Status, s.Origin,
	), &inserted)
	if err != nil {
		return erpsync.SalesOrderPull{}, false, fmt.Errorf("failed to upsert sales order pull %s: %w", s.Key(), err)
	}

	return saved, inserted, nil
}

// UpsertLeaderLocation implements erpsync.RecordRepository.
func (r *syncRecordRepository) UpsertLeaderLocation(ctx context.Context, l erpsync.LeaderLocation) (erpsync.LeaderLocation, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leader_locations (id, employee, company, latitude, longitude, recorded_at, origin)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6)
		ON CONFLICT (employee, company, recorded_at) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			origin = EXCLUDED.origin
		RETURNING ` + leaderLocationColumns + `, (xmax = 0) AS inserted`

	var (
		saved    erpsync.LeaderLocation
		inserted bool
	)
	err := q.QueryRow(ctx, query, l.Employee, l.Company, l.Latitude, l.Longitude, l.RecordedAt, l.Origin).Scan(
		&saved.ID, &saved.Employee, &saved.Company, &saved.Latitude, &saved.Longitude, &saved.RecordedAt,
		&saved.Origin, &inserted,
	)
	if err != nil {
		return erpsync.LeaderLocation{}, false, fmt.Errorf("failed to upsert leader location %s: %w", l.Key(), err)
	}

	return saved, inserted, nil
}

// GetEmployeePull implements erpsync.RecordRepository.
func (r *syncRecordRepository) GetEmployeePull(ctx context.Context, employee, company string) (erpsync.EmployeePull, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeePullColumns + ` FROM employee_pulls WHERE employee = $1 AND company = $2`

	e, err := scanEmployeePull(q.QueryRow(ctx, query, employee, company))
	if err != nil {
		if err == pgx.ErrNoRows {
			return erpsync.EmployeePull{}, erpsync.ErrLeaderNotFound
		}
		return erpsync.EmployeePull{}, fmt.Errorf("failed to get employee pull: %w", err)
	}

	return e, nil
}

// ListEmployeePulls implements erpsync.RecordRepository.
func (r *syncRecordRepository) ListEmployeePulls(ctx context.Context, origin string) ([]erpsync.EmployeePull, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeePullColumns + ` FROM employee_pulls WHERE origin = $1 ORDER BY company, employee`

	rows, err := q.Query(ctx, query, origin)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee pulls: %w", err)
	}
	defer rows.Close()

	var records []erpsync.EmployeePull
	for rows.Next() {
		e, err := scanEmployeePull(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee pull: %w", err)
		}
		records = append(records, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee pulls: %w", err)
	}

	return records, nil
}

// ListSalesOrderPulls implements erpsync.RecordRepository.
func (r *syncRecordRepository) ListSalesOrderPulls(ctx context.Context, origin string) ([]erpsync.SalesOrderPull, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + salesOrderPullColumns + ` FROM sales_order_pulls WHERE origin = $1 ORDER BY company, sales_order`

	rows, err := q.Query(ctx, query, origin)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales order pulls: %w", err)
	}
	defer rows.Close()

	var records []erpsync.SalesOrderPull
	for rows.Next() {
		s, err := scanSalesOrderPull(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales order pull: %w", err)
		}
		records = append(records, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales order pulls: %w", err)
	}

	return records, nil
}
