package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

// GetByID implements leave.LeaveTypeRepository.
func (l *leaveTypeRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT id, company_id, name, allow_half_day, is_active
		FROM leave_types
		WHERE id = $1 AND company_id = $2
	`

	var lt leave.LeaveType
	err := q.QueryRow(ctx, query, id, companyID).Scan(&lt.ID, &lt.CompanyID, &lt.Name, &lt.AllowHalfDay, &lt.IsActive)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("failed to get leave type %s: %w", id, err)
	}

	return lt, nil
}
