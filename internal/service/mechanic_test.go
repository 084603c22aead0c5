package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/mechanics-api/internal/storage"
	"github.com/aanand-mishra/mechanics-api/internal/storage/memory"
	"github.com/aanand-mishra/mechanics-api/internal/storage/storagetest"
	"github.com/aanand-mishra/mechanics-api/internal/types"
)

// faultyStore wraps a real store and lets a test override single calls.
type faultyStore struct {
	storage.Storage

	existsErr  error
	existsLie  *bool
	insertErr  error
	findErr    error
	replaceErr error
	deleteErr  error
	getErr     error
}

func (f *faultyStore) Exists(ctx context.Context, code string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	if f.existsLie != nil {
		return *f.existsLie, nil
	}
	return f.Storage.Exists(ctx, code)
}

func (f *faultyStore) Insert(ctx context.Context, m types.Mechanic) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	return f.Storage.Insert(ctx, m)
}

func (f *faultyStore) FindPage(ctx context.Context, q storage.PageQuery) ([]types.Mechanic, int64, error) {
	if f.findErr != nil {
		return nil, 0, f.findErr
	}
	return f.Storage.FindPage(ctx, q)
}

func (f *faultyStore) Replace(ctx context.Context, m types.Mechanic) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	return f.Storage.Replace(ctx, m)
}

func (f *faultyStore) DeleteByKey(ctx context.Context, code string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Storage.DeleteByKey(ctx, code)
}

func (f *faultyStore) Get(ctx context.Context, code string) (types.Mechanic, error) {
	if f.getErr != nil {
		return types.Mechanic{}, f.getErr
	}
	return f.Storage.Get(ctx, code)
}

func newService(t *testing.T, store storage.Storage) (*Service, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(store, log), &buf
}

var jane = types.MechanicDTO{Code: "M100", FirstName: "Jane", LastName: "Doe", Specialization: "Brakes"}

func requireKind(t *testing.T, err error, want Kind) *Error {
	t.Helper()
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, want, e.Kind, e.Error())
	return e
}

func TestCreateRoundTrip(t *testing.T) {
	svc, _ := newService(t, memory.New())
	ctx := context.Background()

	created, err := svc.Create(ctx, jane)
	require.NoError(t, err)
	assert.Equal(t, jane, created)

	got, err := svc.Get(ctx, "M100")
	require.NoError(t, err)
	assert.Equal(t, jane, got)

	page, err := svc.List(ctx, ListParams{Search: "M100", Page: 1, RPP: 10})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, jane, page.Content[0])
}

func TestCreateRequiresCode(t *testing.T) {
	svc, _ := newService(t, memory.New())

	for _, code := range []string{"", "   "} {
		dto := jane
		dto.Code = code
		_, err := svc.Create(context.Background(), dto)
		e := requireKind(t, err, KindInvalidRequest)
		assert.Equal(t, "Mechanic code must be provided.", e.Message)
	}
}

func TestCreateDuplicateLeavesOriginal(t *testing.T) {
	store := memory.New()
	svc, _ := newService(t, store)
	ctx := context.Background()

	_, err := svc.Create(ctx, jane)
	require.NoError(t, err)

	dup := jane
	dup.FirstName = "Impostor"
	_, err = svc.Create(ctx, dup)
	e := requireKind(t, err, KindInvalidRequest)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, "Mechanic already exists with this code.", e.Message)

	got, err := svc.Get(ctx, "M100")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.FirstName)
}

func TestCreateRaceReportsAlreadyExists(t *testing.T) {
	// Pre-check says "free", but the insert loses to a concurrent creator.
	no := false
	store := &faultyStore{
		Storage:   memory.New(),
		existsLie: &no,
		insertErr: storage.ErrDuplicateKey,
	}
	svc, logs := newService(t, store)

	_, err := svc.Create(context.Background(), jane)
	requireKind(t, err, KindInvalidRequest)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.NotContains(t, logs.String(), "level=ERROR")
}

func TestCreateDatabaseError(t *testing.T) {
	cause := errors.New("disk I/O error")
	svc, logs := newService(t, &faultyStore{Storage: memory.New(), insertErr: cause})

	_, err := svc.Create(context.Background(), jane)
	e := requireKind(t, err, KindDatabaseError)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to add mechanic.", e.Message)
	assert.NotContains(t, e.Message, "disk")

	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "code=M100")
	assert.Contains(t, logs.String(), "disk I/O error")
}

func TestCreateExistsCheckFails(t *testing.T) {
	svc, _ := newService(t, &faultyStore{Storage: memory.New(), existsErr: errors.New("conn refused")})

	_, err := svc.Create(context.Background(), jane)
	requireKind(t, err, KindDatabaseError)
}

func TestUpdateReplacesAllFieldsKeepsCode(t *testing.T) {
	svc, _ := newService(t, memory.New())
	ctx := context.Background()

	_, err := svc.Create(ctx, jane)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "M100", types.MechanicDTO{
		Code:           "OTHER",
		FirstName:      "Janet",
		LastName:       "Dove",
		Specialization: "Engine",
	})
	require.NoError(t, err)

	want := types.MechanicDTO{Code: "M100", FirstName: "Janet", LastName: "Dove", Specialization: "Engine"}
	assert.Equal(t, want, updated)

	got, err := svc.Get(ctx, "M100")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = svc.Get(ctx, "OTHER")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestUpdateUnknownCode(t *testing.T) {
	store := memory.New()
	svc, _ := newService(t, store)
	ctx := context.Background()

	_, err := svc.Update(ctx, "NOPE", jane)
	e := requireKind(t, err, KindInvalidRequest)
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, "Invalid mechanic code.", e.Message)

	_, total, err := store.FindPage(ctx, storage.PageQuery{SortField: storage.SortByCode, Direction: storage.Descending, Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUpdateDeletedConcurrently(t *testing.T) {
	yes := true
	svc, _ := newService(t, &faultyStore{Storage: memory.New(), existsLie: &yes})

	_, err := svc.Update(context.Background(), "GONE", jane)
	requireKind(t, err, KindInvalidRequest)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestUpdateDatabaseError(t *testing.T) {
	inner := memory.New()
	require.NoError(t, inner.Insert(context.Background(), storagetest.Fixture(1)))
	svc, _ := newService(t, &faultyStore{Storage: inner, replaceErr: errors.New("timeout")})

	_, err := svc.Update(context.Background(), "M001", jane)
	e := requireKind(t, err, KindDatabaseError)
	assert.Equal(t, "Failed to update mechanic", e.Message)
}

func TestDelete(t *testing.T) {
	store := memory.New()
	svc, _ := newService(t, store)
	ctx := context.Background()

	_, err := svc.Create(ctx, jane)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "M100"))

	ok, err := store.Exists(ctx, "M100")
	require.NoError(t, err)
	assert.False(t, ok)

	// Not idempotent.
	err = svc.Delete(ctx, "M100")
	requireKind(t, err, KindInvalidRequest)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestDeleteDatabaseError(t *testing.T) {
	inner := memory.New()
	require.NoError(t, inner.Insert(context.Background(), storagetest.Fixture(1)))
	svc, _ := newService(t, &faultyStore{Storage: inner, deleteErr: errors.New("locked")})

	err := svc.Delete(context.Background(), "M001")
	e := requireKind(t, err, KindDatabaseError)
	assert.Equal(t, "Failed to delete mechanic", e.Message)
}

func TestGetDatabaseError(t *testing.T) {
	svc, _ := newService(t, &faultyStore{Storage: memory.New(), getErr: errors.New("boom")})

	_, err := svc.Get(context.Background(), "M001")
	requireKind(t, err, KindDatabaseError)
}

func TestListPagination(t *testing.T) {
	store := memory.New()
	storagetest.Seed(t, store, 25)
	svc, _ := newService(t, store)

	page, err := svc.List(context.Background(), ListParams{Page: 1, RPP: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.EqualValues(t, 25, page.TotalElements)
	require.Len(t, page.Content, 10)
	assert.Equal(t, "M025", page.Content[0].Code, "default order is code descending")
}

func TestListRejectsBadArguments(t *testing.T) {
	svc, _ := newService(t, memory.New())
	ctx := context.Background()

	cases := map[string]ListParams{
		"page zero":             {Page: 0, RPP: 10},
		"negative rpp":          {Page: 1, RPP: -1},
		"rpp over maximum":      {Page: 1, RPP: storage.MaxPageSize + 1},
		"huge rpp":              {Page: 1, RPP: math.MaxInt},
		"page offset overflows": {Page: math.MaxInt/4 + 1, RPP: 4},
		"page at max int":       {Page: math.MaxInt, RPP: 1},
		"unknown field":         {Page: 1, RPP: 10, SortField: "salary"},
		"unknown order":         {Page: 1, RPP: 10, SortOrder: "random"},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.List(ctx, p)
			requireKind(t, err, KindInvalidRequest)
		})
	}
}

func TestListAcceptsPagingLimits(t *testing.T) {
	store := memory.New()
	svc, _ := newService(t, store)
	ctx := context.Background()
	storagetest.Seed(t, store, 3)

	got, err := svc.List(ctx, ListParams{Page: 1, RPP: storage.MaxPageSize})
	require.NoError(t, err)
	assert.Len(t, got.Content, 3)
	assert.Equal(t, 1, got.TotalPages)

	got, err = svc.List(ctx, ListParams{Page: storage.MaxOffset/storage.MaxPageSize + 1, RPP: storage.MaxPageSize})
	require.NoError(t, err)
	assert.Empty(t, got.Content)
	assert.EqualValues(t, 3, got.TotalElements)
}

func TestListDatabaseError(t *testing.T) {
	svc, logs := newService(t, &faultyStore{Storage: memory.New(), findErr: errors.New("no such table: mechanic")})

	_, err := svc.List(context.Background(), ListParams{Search: "jane", Page: 2, RPP: 5})
	e := requireKind(t, err, KindDatabaseError)
	assert.Equal(t, "Failed to retrieve mechanics", e.Message)

	out := logs.String()
	assert.Contains(t, out, "search=jane")
	assert.Contains(t, out, "page=2")
	assert.Contains(t, out, "rpp=5")
	assert.Contains(t, out, "no such table")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidRequest, KindOf(invalid("x")))
	assert.Equal(t, KindDatabaseError, KindOf(dbError("x", errors.New("y"))))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, "INVALID_REQUEST", KindInvalidRequest.String())
	assert.Equal(t, "DATABASE_ERROR", KindDatabaseError.String())
}
