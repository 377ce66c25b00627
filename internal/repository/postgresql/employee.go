package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `id, company_id, user_id, employee_code, full_name, staff_type, location, holiday_list_id,
	reports_to, no_check_in, is_team_leader, employment_status, created_at, updated_at`

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.CompanyID, &emp.UserID, &emp.EmployeeCode, &emp.FullName, &emp.StaffType,
		&emp.Location, &emp.HolidayListID, &emp.ReportsTo, &emp.NoCheckIn, &emp.IsTeamLeader,
		&emp.EmploymentStatus, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

func (e *employeeRepositoryImpl) getOne(ctx context.Context, where string, args ...interface{}) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE ` + where

	emp, err := scanEmployee(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return emp, nil
}

func (e *employeeRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return e.getOne(ctx, "id = $1", id)
}

// GetByCode implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByCode(ctx context.Context, code string, companyID string) (employee.Employee, error) {
	return e.getOne(ctx, "employee_code = $1 AND company_id = $2", code, companyID)
}

// GetByUserID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	return e.getOne(ctx, "user_id = $1", userID)
}

// ListActiveByCompany implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActiveByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE company_id = $1 AND employment_status = $2
		ORDER BY employee_code
	`
	return e.list(ctx, query, companyID, employee.EmploymentStatusActive)
}

// ListActiveByLocation implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActiveByLocation(ctx context.Context, location string) ([]employee.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE location = $1 AND employment_status = $2
		ORDER BY company_id, employee_code
	`
	return e.list(ctx, query, location, employee.EmploymentStatusActive)
}

// ListCompanyIDs implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListCompanyIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT DISTINCT company_id FROM employees WHERE employment_status = $1 ORDER BY company_id`

	rows, err := q.Query(ctx, query, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan company id: %w", err)
	}

	return ids, nil
}
