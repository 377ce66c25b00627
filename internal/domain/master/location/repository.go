package location

import "context"

type ShiftConfigRepository interface {
	// Get returns ErrShiftConfigNotFound when the location has no configuration
	Get(ctx context.Context, companyID string, location string) (ShiftConfig, error)
	Upsert(ctx context.Context, cfg ShiftConfig) (ShiftConfig, error)
	List(ctx context.Context, companyID string) ([]ShiftConfig, error)
}
