package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByCode(ctx context.Context, code string, companyID string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)

	// ListActiveByCompany returns active employees ordered by employee code
	ListActiveByCompany(ctx context.Context, companyID string) ([]Employee, error)

	// ListActiveByLocation returns active employees of every company at a location
	ListActiveByLocation(ctx context.Context, location string) ([]Employee, error)

	// ListCompanyIDs returns companies that have at least one active employee
	ListCompanyIDs(ctx context.Context) ([]string, error)
}
