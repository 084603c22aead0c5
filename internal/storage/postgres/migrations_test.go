package postgres

import (
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrationsEmbedded(t *testing.T) {
	ms, err := loadMigrations(migrationFiles, "migrations")
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, 1, ms[0].version)
	assert.Equal(t, "001_create_mechanic.sql", ms[0].name)
	assert.Contains(t, ms[0].sql, "schema_migrations")
	assert.Equal(t, 2, ms[1].version)
}

func TestLoadMigrationsOrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"m/10_later.sql":  {Data: []byte("SELECT 10")},
		"m/2_second.sql":  {Data: []byte("SELECT 2")},
		"m/1_first.sql":   {Data: []byte("SELECT 1")},
		"m/README.md":     {Data: []byte("ignored")},
		"m/sub/3_tmp.sql": {Data: []byte("ignored")},
	}

	ms, err := loadMigrations(fsys, "m")
	require.NoError(t, err)

	var versions []int
	for _, m := range ms {
		versions = append(versions, m.version)
	}
	assert.Equal(t, []int{1, 2, 10}, versions)
}

func TestLoadMigrationsRejectsBadNames(t *testing.T) {
	for _, name := range []string{"create.sql", "x_create.sql", "0_zero.sql"} {
		_, err := loadMigrations(fstest.MapFS{"m/" + name: {Data: []byte("SELECT 1")}}, "m")
		assert.Error(t, err, name)
	}

	_, err := loadMigrations(fstest.MapFS{
		"m/001_a.sql": {Data: []byte("SELECT 1")},
		"m/1_b.sql":   {Data: []byte("SELECT 1")},
	}, "m")
	assert.ErrorContains(t, err, "share version 1")
}

func TestIsUndefinedTable(t *testing.T) {
	assert.True(t, isUndefinedTable(&pgconn.PgError{Code: "42P01"}))
	assert.True(t, isUndefinedTable(fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01"})))
	assert.False(t, isUndefinedTable(&pgconn.PgError{Code: "42501"}))
	assert.False(t, isUndefinedTable(fmt.Errorf("connection refused")))
}
