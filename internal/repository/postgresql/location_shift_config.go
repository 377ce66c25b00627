package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/location"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const shiftConfigColumns = `company_id, location, shift_start, shift_end, late_arrival_threshold, early_exit_threshold,
	half_day_arrival_time, half_day_departure_time, treat_late_as_half_day_after,
	late_count_for_half_day, late_count_for_full_day, leave_type_for_deduction, updated_at`

type shiftConfigRepositoryImpl struct {
	db *database.DB
}

func NewShiftConfigRepository(db *database.DB) location.ShiftConfigRepository {
	return &shiftConfigRepositoryImpl{db: db}
}

func scanShiftConfig(row pgx.Row) (location.ShiftConfig, error) {
	var (
		cfg                                      location.ShiftConfig
		start, end, lateAt, earlyAt, hdIn, hdOut pgtype.Time
	)
	err := row.Scan(
		&cfg.CompanyID, &cfg.Location, &start, &end, &lateAt, &earlyAt, &hdIn, &hdOut,
		&cfg.TreatLateAsHalfDayAfter, &cfg.LateCountForHalfDay, &cfg.LateCountForFullDay,
		&cfg.LeaveTypeForDeduction, &cfg.UpdatedAt,
	)
	if err != nil {
		return location.ShiftConfig{}, err
	}

	cfg.ShiftStart = fromPgTime(start)
	cfg.ShiftEnd = fromPgTime(end)
	cfg.LateArrivalThreshold = fromPgTime(lateAt)
	cfg.EarlyExitThreshold = fromPgTime(earlyAt)
	cfg.HalfDayArrivalTime = fromPgTime(hdIn)
	cfg.HalfDayDepartureTime = fromPgTime(hdOut)
	return cfg, nil
}

// Get implements location.ShiftConfigRepository.
func (r *shiftConfigRepositoryImpl) Get(ctx context.Context, companyID string, loc string) (location.ShiftConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftConfigColumns + ` FROM location_shift_configs WHERE company_id = $1 AND location = $2`

	cfg, err := scanShiftConfig(q.QueryRow(ctx, query, companyID, loc))
	if err != nil {
		if err == pgx.ErrNoRows {
			return location.ShiftConfig{}, location.ErrShiftConfigNotFound
		}
		return location.ShiftConfig{}, fmt.Errorf("failed to get shift config for %s: %w", loc, err)
	}

	return cfg, nil
}

// Upsert implements location.ShiftConfigRepository.
func (r *shiftConfigRepositoryImpl) Upsert(ctx context.Context, cfg location.ShiftConfig) (location.ShiftConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO location_shift_configs (
			company_id, location, shift_start, shift_end, late_arrival_threshold, early_exit_threshold,
			half_day_arrival_time, half_day_departure_time, treat_late_as_half_day_after,
			late_count_for_half_day, late_count_for_full_day, leave_type_for_deduction, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (company_id, location) DO UPDATE SET
			shift_start = EXCLUDED.shift_start,
			shift_end = EXCLUDED.shift_end,
			late_arrival_threshold = EXCLUDED.late_arrival_threshold,
			early_exit_threshold = EXCLUDED.early_exit_threshold,
			half_day_arrival_time = EXCLUDED.half_day_arrival_time,
			half_day_departure_time = EXCLUDED.half_day_departure_time,
			treat_late_as_half_day_after = EXCLUDED.treat_late_as_half_day_after,
			late_count_for_half_day = EXCLUDED.late_count_for_half_day,
			late_count_for_full_day = EXCLUDED.late_count_for_full_day,
			leave_type_for_deduction = EXCLUDED.leave_type_for_deduction,
			updated_at = NOW()
		RETURNING ` + shiftConfigColumns

	saved, err := scanShiftConfig(q.QueryRow(ctx, query,
		cfg.CompanyID,
		cfg.Location,
		toPgTime(cfg.ShiftStart),
		toPgTime(cfg.ShiftEnd),
		toPgTime(cfg.LateArrivalThreshold),
		toPgTime(cfg.EarlyExitThreshold),
		toPgTime(cfg.HalfDayArrivalTime),
		toPgTime(cfg.HalfDayDepartureTime),
		cfg.TreatLateAsHalfDayAfter,
		cfg.LateCountForHalfDay,
		cfg.LateCountForFullDay,
		cfg.LeaveTypeForDeduction,
	))
	if err != nil {
		return location.ShiftConfig{}, fmt.Errorf("failed to save shift config for %s: %w", cfg.Location, err)
	}

	return saved, nil
}

// List implements location.ShiftConfigRepository.
func (r *shiftConfigRepositoryImpl) List(ctx context.Context, companyID string) ([]location.ShiftConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftConfigColumns + ` FROM location_shift_configs WHERE company_id = $1 ORDER BY location`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift configs: %w", err)
	}
	defer rows.Close()

	var configs []location.ShiftConfig
	for rows.Next() {
		cfg, err := scanShiftConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift config: %w", err)
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shift configs: %w", err)
	}

	return configs, nil
}
