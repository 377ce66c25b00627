package postgresql

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/timeutil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// newID returns a time-ordered UUID for primary keys.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// dateOnly strips the clock so DATE parameters encode the calendar day of t.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toPgTime(t *timeutil.TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}

func fromPgTime(t pgtype.Time) *timeutil.TimeOfDay {
	if !t.Valid {
		return nil
	}
	tod := timeutil.TimeOfDay(time.Duration(t.Microseconds) * time.Microsecond)
	return &tod
}
