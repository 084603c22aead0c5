// Package storage defines the Storage interface: the contract that any
// database backend must satisfy to hold mechanic records.
//
// The service layer depends only on this interface, so switching from
// SQLite to PostgreSQL (or to the in-memory store used by tests) means
// changing one line in main.go and zero lines anywhere else.
//
// Every backend must translate its own driver errors into the sentinel
// errors below. Raw driver errors are still wrapped (%w) for logging, but
// callers only ever need errors.Is against ErrDuplicateKey / ErrNotFound.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aanand-mishra/mechanics-api/internal/types"
)

// Sentinel errors shared by all backends.
var (
	// ErrNotFound is returned when no record exists for a key.
	ErrNotFound = errors.New("mechanic not found")

	// ErrDuplicateKey is returned by Insert when the primary key is taken.
	ErrDuplicateKey = errors.New("mechanic code already exists")
)

// Storage is the persistence contract for mechanics.
type Storage interface {
	// Exists reports whether a record with the given code exists.
	Exists(ctx context.Context, code string) (bool, error)

	// Get fetches one record by code, or ErrNotFound.
	Get(ctx context.Context, code string) (types.Mechanic, error)

	// FindPage returns one page of records matching q, plus the total
	// number of matching records across all pages.
	FindPage(ctx context.Context, q PageQuery) ([]types.Mechanic, int64, error)

	// Insert creates a new record. Returns ErrDuplicateKey if the code exists.
	Insert(ctx context.Context, m types.Mechanic) error

	// Replace overwrites every non-key column of an existing record.
	// Returns ErrNotFound if no row was affected.
	Replace(ctx context.Context, m types.Mechanic) error

	// DeleteByKey removes a record. Returns ErrNotFound if no row was affected.
	DeleteByKey(ctx context.Context, code string) error

	// Ping checks connectivity to the backing store.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

// ─────────────────────────────────────────────────────────────────────────────
// Search / sort / pagination
// ─────────────────────────────────────────────────────────────────────────────

// SortField is a sortable attribute of a mechanic.
type SortField string

// Sortable fields. The zero value is never used directly; ParseSortField
// maps an empty input onto SortByCode.
const (
	SortByCode           SortField = "code"
	SortByFirstName      SortField = "firstName"
	SortByLastName       SortField = "lastName"
	SortBySpecialization SortField = "specialization"
)

// Column returns the table column backing the field.
func (f SortField) Column() string {
	switch f {
	case SortByFirstName:
		return "first_name"
	case SortByLastName:
		return "last_name"
	case SortBySpecialization:
		return "specialization"
	default:
		return "code"
	}
}

// Direction is the sort direction.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// DefaultSortField and DefaultDirection apply when the caller omits them.
const (
	DefaultSortField = SortByCode
	DefaultDirection = Descending
)

// ParseSortField resolves a client-supplied sort field. Matching is
// case-insensitive and accepts both the JSON name and the column name.
// An empty string yields DefaultSortField.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultSortField, nil
	case "code", "mechaniccode", "mechanic_code":
		return SortByCode, nil
	case "firstname", "first_name":
		return SortByFirstName, nil
	case "lastname", "last_name":
		return SortByLastName, nil
	case "specialization":
		return SortBySpecialization, nil
	}
	return "", fmt.Errorf("unsupported sort field %q", s)
}

// ParseDirection resolves a client-supplied sort order. An empty string
// yields DefaultDirection.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultDirection, nil
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("unsupported sort order %q", s)
}

// PageQuery describes one page of a filtered, sorted listing.
// Page is 1-based, as received from the client.
type PageQuery struct {
	Search    string
	SortField SortField
	Direction Direction
	Page      int
	Size      int
}

// Paging limits. MaxOffset keeps (Page-1)*Size inside every backend's
// integer range on any platform.
const (
	MaxPageSize = 1000
	MaxOffset   = math.MaxInt32
)

// Offset converts the 1-based page number into a 0-based row offset.
// Out-of-range queries are clamped to [0, MaxOffset].
func (q PageQuery) Offset() int {
	if q.Page < 1 || q.Size < 1 {
		return 0
	}
	if q.Page-1 > MaxOffset/q.Size {
		return MaxOffset
	}
	return (q.Page - 1) * q.Size
}

// TotalPages returns how many pages of the given size hold total elements.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// LikePattern builds a "%term%" pattern for a LIKE ... ESCAPE '\' clause,
// lower-casing the term and escaping the wildcard characters so they match
// literally.
func LikePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
