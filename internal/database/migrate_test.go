package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/oulpan?sslmode=disable",
		MigrationURL("postgres://u:p@localhost:5432/oulpan?sslmode=disable"))
	assert.Equal(t, "pgx5://localhost/oulpan", MigrationURL("postgresql://localhost/oulpan"))
	assert.Equal(t, "pgx5://localhost/oulpan", MigrationURL("pgx5://localhost/oulpan"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFS, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Equal(t, len(ups), len(downs))
}
