package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/mechanics-api/internal/config"
	"github.com/aanand-mishra/mechanics-api/internal/storage"
	"github.com/aanand-mishra/mechanics-api/internal/storage/storagetest"
	"github.com/aanand-mishra/mechanics-api/internal/types"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()

	s, err := New(config.Storage{
		Driver:         config.DriverSQLite,
		Path:           filepath.Join(t.TempDir(), "mechanics.db"),
		MigrateOnStart: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestConformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage { return newTestStore(t) })
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, storagetest.Fixture(1)))
	require.NoError(t, s.Migrate(ctx))

	ok, err := s.Exists(ctx, "M001")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mechanics.db")
	cfg := config.Storage{Driver: config.DriverSQLite, Path: path, MigrateOnStart: true}
	ctx := context.Background()

	s, err := New(cfg)
	require.NoError(t, err)
	want := types.Mechanic{Code: "M100", FirstName: "Jane", LastName: "Doe", Specialization: "Brakes"}
	require.NoError(t, s.Insert(ctx, want))
	require.NoError(t, s.Close())

	s, err = New(cfg)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "M100")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWithoutMigrationQueriesFail(t *testing.T) {
	s, err := New(config.Storage{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "empty.db"),
	})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Exists(context.Background(), "M001")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestUlowerFoldsUnicode(t *testing.T) {
	s := newTestStore(t)

	var got string
	require.NoError(t, s.Db.QueryRowContext(context.Background(), "SELECT ulower('ÉMILE Ørsted')").Scan(&got))
	assert.Equal(t, "émile ørsted", got)
}
