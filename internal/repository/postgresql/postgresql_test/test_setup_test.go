package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// testTables lists every table the repository tests write to, children first.
var testTables = []string{
	"expense_journal_entries",
	"expenses",
	"expense_type_accounts",
	"business_lines",
	"expense_types",
	"leader_locations",
	"sales_order_pulls",
	"employee_pulls",
	"sync_queue",
	"sync_peers",
	"notification_preferences",
	"notifications",
	"attendance_runs",
	"attendances",
	"checkins",
	"allowed_overtimes",
	"location_shift_configs",
	"leave_applications",
	"leave_allocations",
	"leave_types",
	"employees",
	"holidays",
	"holiday_lists",
	"companies",
}

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties every table.
// The test is skipped when no database is configured.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := t.Context()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.Migrate(ctx, db))
	require.NoError(t, truncateAll(ctx, db))
	return db
}

func truncateAll(ctx context.Context, db *database.DB) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range testTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

type fixture struct {
	CompanyID  string
	EmployeeID string
}

// seedEmployee inserts one company with one active employee.
func seedEmployee(t *testing.T, db *database.DB) fixture {
	t.Helper()
	ctx := t.Context()

	var f fixture
	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO companies (name) VALUES ('Acme') RETURNING id`,
	).Scan(&f.CompanyID))
	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO employees (company_id, employee_code, full_name, staff_type, location)
		 VALUES ($1, 'EMP-001', 'Asha Rao', 'Employee', 'Head Office') RETURNING id`,
		f.CompanyID,
	).Scan(&f.EmployeeID))
	return f
}
