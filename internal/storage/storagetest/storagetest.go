// Package storagetest is a conformance suite run against every
// storage.Storage backend so that they agree on search, sort and paging.
package storagetest

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/mechanics-api/internal/storage"
	"github.com/aanand-mishra/mechanics-api/internal/types"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) storage.Storage

var (
	firstNames      = []string{"Alice", "Bruno", "Chen", "Dana", "Emil"}
	specializations = []string{"Brakes", "Engine", "Electrical", "Suspension", "Transmission"}
)

// Fixture returns the i-th deterministic mechanic, codes M001, M002, ...
func Fixture(i int) types.Mechanic {
	return types.Mechanic{
		Code:           fmt.Sprintf("M%03d", i),
		FirstName:      firstNames[(i-1)%len(firstNames)],
		LastName:       fmt.Sprintf("Smith%02d", i),
		Specialization: specializations[(i-1)%len(specializations)],
	}
}

// Seed inserts Fixture(1) through Fixture(n).
func Seed(t *testing.T, s storage.Storage, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, s.Insert(context.Background(), Fixture(i)))
	}
}

func page(search string, field storage.SortField, dir storage.Direction, p, size int) storage.PageQuery {
	return storage.PageQuery{Search: search, SortField: field, Direction: dir, Page: p, Size: size}
}

func codes(ms []types.Mechanic) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Code)
	}
	return out
}

// Run executes the full suite.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("InsertAndGet", func(t *testing.T) {
		s := newStore(t)
		want := types.Mechanic{Code: "M100", FirstName: "Jane", LastName: "Doe", Specialization: "Brakes"}
		require.NoError(t, s.Insert(ctx, want))

		got, err := s.Get(ctx, "M100")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Exists", func(t *testing.T) {
		s := newStore(t)
		Seed(t, s, 1)

		ok, err := s.Exists(ctx, "M001")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Exists(ctx, "M999")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("InsertDuplicate", func(t *testing.T) {
		s := newStore(t)
		Seed(t, s, 1)

		dup := Fixture(1)
		dup.FirstName = "Changed"
		err := s.Insert(ctx, dup)
		require.ErrorIs(t, err, storage.ErrDuplicateKey)

		got, err := s.Get(ctx, "M001")
		require.NoError(t, err)
		assert.Equal(t, Fixture(1), got)
	})

	t.Run("Replace", func(t *testing.T) {
		s := newStore(t)
		Seed(t, s, 1)

		updated := types.Mechanic{Code: "M001", FirstName: "Zoe", LastName: "Quinn", Specialization: "Tyres"}
		require.NoError(t, s.Replace(ctx, updated))

		got, err := s.Get(ctx, "M001")
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("ReplaceMissing", func(t *testing.T) {
		s := newStore(t)
		err := s.Replace(ctx, Fixture(1))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DeleteByKey", func(t *testing.T) {
		s := newStore(t)
		Seed(t, s, 2)

		require.NoError(t, s.DeleteByKey(ctx, "M001"))

		ok, err := s.Exists(ctx, "M001")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = s.Exists(ctx, "M002")
		require.NoError(t, err)
		assert.True(t, ok)

		assert.ErrorIs(t, s.DeleteByKey(ctx, "M001"), storage.ErrNotFound)
	})

	t.Run("FindPagePagination", func(t *testing.T) {
		s := newStore(t)
		Seed(t, s, 25)

		rows, total, err := s.FindPage(ctx, page("", storage.SortByCode, storage.Ascending, 1, 10))
		require.NoError(t, err)
		assert.EqualValues(t, 25, total)
		assert.Len(t, rows, 10)
		assert.Equal(t, "M001", rows[0].Code)
		assert.Equal(t, "M010", rows[9].Code)

		rows, total, err = s.FindPage(ctx, page("", storage.SortByCode, storage.Ascending, 3, 10))
		require.NoError(t, err)
		assert.EqualValues(t, 25, total)
		assert.Equal(t, []string{"M021", "M022", "M023", "M024", "M025"}, codes(rows))

		rows, total, err = s.FindPage(ctx, page("", storage.SortByCode, storage.Ascending, 4, 10))
		require.NoError(t, err)
		assert.EqualValues(t, 25, total)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("FindPageLargeRequests", func(t *testing.T) {
		s := newStore(t)
		Seed(t, s, 3)

		rows, total, err := s.FindPage(ctx, page("", storage.SortByCode, storage.Ascending, 1, math.MaxInt))
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Equal(t, []string{"M001", "M002", "M003"}, codes(rows))

		rows, total, err = s.FindPage(ctx, page("", storage.SortByCode, storage.Ascending, math.MaxInt/4+1, 4))
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("FindPageEmptyStore", func(t *testing.T) {
		s := newStore(t)
		rows, total, err := s.FindPage(ctx, page("", storage.DefaultSortField, storage.DefaultDirection, 1, 10))
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("FindPageDefaultOrderIsCodeDescending", func(t *testing.T) {
		s := newStore(t)
		Seed(t, s, 5)

		rows, _, err := s.FindPage(ctx, page("", storage.DefaultSortField, storage.DefaultDirection, 1, 3))
		require.NoError(t, err)
		assert.Equal(t, []string{"M005", "M004", "M003"}, codes(rows))
	})

	t.Run("FindPageSortByFieldBreaksTiesByCode", func(t *testing.T) {
		s := newStore(t)
		Seed(t, s, 10)

		// Fixtures 1 and 6 share "Alice", 2 and 7 share "Bruno", and so on.
		rows, _, err := s.FindPage(ctx, page("", storage.SortByFirstName, storage.Ascending, 1, 4))
		require.NoError(t, err)
		assert.Equal(t, []string{"M001", "M006", "M002", "M007"}, codes(rows))

		rows, _, err = s.FindPage(ctx, page("", storage.SortBySpecialization, storage.Descending, 1, 2))
		require.NoError(t, err)
		assert.Equal(t, []string{"M005", "M010"}, codes(rows))
	})

	t.Run("FindPageSearch", func(t *testing.T) {
		s := newStore(t)
		Seed(t, s, 10)
		require.NoError(t, s.Insert(ctx, types.Mechanic{
			Code: "M100", FirstName: "Jane", LastName: "Doe", Specialization: "Paint",
		}))

		cases := []struct {
			name   string
			search string
			want   []string
		}{
			{"code", "m100", []string{"M100"}},
			{"first name any case", "JANE", []string{"M100"}},
			{"last name prefix", "do", []string{"M100"}},
			{"specialization substring", "rake", []string{"M006", "M001"}},
			{"full name", "jane d", []string{"M100"}},
			{"no match", "zzz", []string{}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				rows, total, err := s.FindPage(ctx, page(tc.search, storage.SortByCode, storage.Descending, 1, 10))
				require.NoError(t, err)
				assert.EqualValues(t, len(tc.want), total)
				assert.Equal(t, tc.want, codes(rows))
			})
		}
	})

	t.Run("FindPageSearchWildcardsAreLiteral", func(t *testing.T) {
		s := newStore(t)
		Seed(t, s, 3)
		require.NoError(t, s.Insert(ctx, types.Mechanic{
			Code: "50%_OFF", FirstName: "Promo", LastName: "Code", Specialization: "Sales",
		}))

		for _, term := range []string{"%", "_", "0%_"} {
			rows, total, err := s.FindPage(ctx, page(term, storage.SortByCode, storage.Ascending, 1, 10))
			require.NoError(t, err, term)
			assert.EqualValues(t, 1, total, term)
			assert.Equal(t, []string{"50%_OFF"}, codes(rows), term)
		}
	})

	t.Run("FindPageSearchNonASCII", func(t *testing.T) {
		s := newStore(t)
		Seed(t, s, 3)
		require.NoError(t, s.Insert(ctx, types.Mechanic{
			Code: "M200", FirstName: "Émile", LastName: "Zola", Specialization: "Peinture",
		}))

		for _, term := range []string{"Émile", "émile", "ÉMILE", "mile", "émile zo"} {
			rows, total, err := s.FindPage(ctx, page(term, storage.SortByCode, storage.Ascending, 1, 10))
			require.NoError(t, err, term)
			assert.EqualValues(t, 1, total, term)
			assert.Equal(t, []string{"M200"}, codes(rows), term)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(ctx))
	})
}
