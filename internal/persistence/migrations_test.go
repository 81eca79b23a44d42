package persistence

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/bank?sslmode=disable", migrationURL("postgres://u:p@db:5432/bank?sslmode=disable"))
	assert.Equal(t, "pgx5://db/bank", migrationURL("postgresql://db/bank"))
	assert.Equal(t, "pgx5://db/bank", migrationURL("pgx5://db/bank"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFS, "migrations/*.down.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
