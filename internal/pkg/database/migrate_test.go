package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrations(t *testing.T) {
	names := []string{"migrations/0002_expenses.sql", "migrations/0001_init.sql", "migrations/0003_indexes.sql"}

	tests := []struct {
		name    string
		applied map[string]bool
		want    []string
	}{
		{
			name:    "fresh database",
			applied: map[string]bool{},
			want:    []string{"migrations/0001_init.sql", "migrations/0002_expenses.sql", "migrations/0003_indexes.sql"},
		},
		{
			name:    "partially applied",
			applied: map[string]bool{"0001_init.sql": true},
			want:    []string{"migrations/0002_expenses.sql", "migrations/0003_indexes.sql"},
		},
		{
			name:    "up to date",
			applied: map[string]bool{"0001_init.sql": true, "0002_expenses.sql": true, "0003_indexes.sql": true},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pendingMigrations(names, tt.applied))
		})
	}
}

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	assert.Equal(t, "migrations/0001_init.sql", pendingMigrations(names, map[string]bool{})[0])
}
