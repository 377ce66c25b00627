package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type holidayRepository struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepository{db: db}
}

// IsHoliday implements holiday.HolidayRepository.
func (r *holidayRepository) IsHoliday(ctx context.Context, listID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM holidays WHERE holiday_list_id = $1 AND holiday_date = $2)`

	var exists bool
	if err := q.QueryRow(ctx, query, listID, dateOnly(date)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check holiday: %w", err)
	}

	return exists, nil
}

// GetCompanyDefaultListID implements holiday.HolidayRepository.
func (r *holidayRepository) GetCompanyDefaultListID(ctx context.Context, companyID string) (*string, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT default_holiday_list_id FROM companies WHERE id = $1`

	var listID *string
	err := q.QueryRow(ctx, query, companyID).Scan(&listID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company holiday list: %w", err)
	}

	return listID, nil
}
