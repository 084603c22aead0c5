// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk. There is no network,
// no separate server process, and no installation beyond the driver.
//
// The package registers its own database/sql driver, driverName, which is
// go-sqlite3 with a Unicode-aware ulower() SQL function on every
// connection. SQLite's built-in lower() folds ASCII letters only.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aanand-mishra/mechanics-api/internal/config"
	"github.com/aanand-mishra/mechanics-api/internal/storage"
	"github.com/aanand-mishra/mechanics-api/internal/types"

	"github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

const driverName = "sqlite3_mechanics"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("ulower", strings.ToLower, true)
		},
	})
}

// schema is idempotent, so it is safe to run on every startup.
//
//	code           primary key chosen by the client
//	first_name     mechanic's first name
//	last_name      mechanic's last name
//	specialization e.g. "Brakes", "Transmission"
const schema = `
	CREATE TABLE IF NOT EXISTS mechanic (
		code           TEXT NOT NULL PRIMARY KEY,
		first_name     TEXT NOT NULL,
		last_name      TEXT NOT NULL,
		specialization TEXT NOT NULL
	)
`

// New opens the SQLite database at cfg.Path and, unless disabled, creates
// the mechanic table.
func New(cfg config.Storage) (*SQLite, error) {
	// sql.Open does NOT open a real connection yet; it only validates the
	// driver name and the data source name.
	db, err := sql.Open(driverName, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	s := &SQLite{Db: db}

	if cfg.MigrateOnStart {
		if err := s.Migrate(context.Background()); err != nil {
			db.Close()
			return nil, err
		}
	}

	return s, nil
}

// Migrate creates the mechanic table if it does not exist yet.
func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.Db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite.Migrate: create table: %w", err)
	}
	return nil
}

// Exists reports whether a mechanic with the given code is stored.
func (s *SQLite) Exists(ctx context.Context, code string) (bool, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM mechanic WHERE code = ?)",
	)
	if err != nil {
		return false, fmt.Errorf("Exists: prepare: %w", err)
	}
	defer stmt.Close()

	var exists bool
	if err := stmt.QueryRowContext(ctx, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("Exists: scan: %w", err)
	}

	return exists, nil
}

// Get fetches exactly one mechanic row matched by primary key.
func (s *SQLite) Get(ctx context.Context, code string) (types.Mechanic, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT code, first_name, last_name, specialization FROM mechanic WHERE code = ? LIMIT 1",
	)
	if err != nil {
		return types.Mechanic{}, fmt.Errorf("Get: prepare: %w", err)
	}
	defer stmt.Close()

	var m types.Mechanic

	// QueryRow never returns nil; a missing row surfaces only at Scan.
	err = stmt.QueryRowContext(ctx, code).Scan(
		&m.Code,
		&m.FirstName,
		&m.LastName,
		&m.Specialization,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Mechanic{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Mechanic{}, fmt.Errorf("Get: scan: %w", err)
	}

	return m, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FindPage runs two statements: a COUNT over the filtered set, then the
// LIMIT/OFFSET page itself. Both share the same WHERE clause.
//
// ORDER BY cannot take a placeholder, so the column comes from
// SortField.Column(), which only ever returns a fixed column name.
// Ties are broken by code so that paging through equal values is stable.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) FindPage(ctx context.Context, q storage.PageQuery) ([]types.Mechanic, int64, error) {
	where, args := searchClause(q.Search)

	var total int64
	if err := s.Db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM mechanic"+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("FindPage: count: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT code, first_name, last_name, specialization FROM mechanic%s ORDER BY %s %s, code ASC LIMIT ? OFFSET ?",
		where, q.SortField.Column(), q.Direction,
	)

	rows, err := s.Db.QueryContext(ctx, query, append(args, q.Size, q.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("FindPage: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so the envelope encodes [] rather than null. The capacity is
	// not taken from q.Size: the page may hold far fewer rows than asked for.
	mechanics := []types.Mechanic{}

	for rows.Next() {
		var m types.Mechanic
		if err := rows.Scan(
			&m.Code,
			&m.FirstName,
			&m.LastName,
			&m.Specialization,
		); err != nil {
			return nil, 0, fmt.Errorf("FindPage: scan row: %w", err)
		}
		mechanics = append(mechanics, m)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("FindPage: rows iteration: %w", err)
	}

	return mechanics, total, nil
}

// searchClause returns the WHERE fragment for a typeahead search, or an
// empty string when every record is eligible.
func searchClause(term string) (string, []any) {
	if strings.TrimSpace(term) == "" {
		return "", nil
	}

	pattern := storage.LikePattern(term)
	where := ` WHERE ulower(code) LIKE ? ESCAPE '\'` +
		` OR ulower(first_name) LIKE ? ESCAPE '\'` +
		` OR ulower(last_name) LIKE ? ESCAPE '\'` +
		` OR ulower(specialization) LIKE ? ESCAPE '\'` +
		` OR ulower(first_name || ' ' || last_name) LIKE ? ESCAPE '\'`

	return where, []any{pattern, pattern, pattern, pattern, pattern}
}

// Insert adds a new row. The primary key constraint is the final arbiter
// of uniqueness, so a concurrent creator that slipped past Exists ends up
// here as ErrDuplicateKey.
func (s *SQLite) Insert(ctx context.Context, m types.Mechanic) error {
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO mechanic (code, first_name, last_name, specialization) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("Insert: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, m.Code, m.FirstName, m.LastName, m.Specialization); err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("Insert: %w", storage.ErrDuplicateKey)
		}
		return fmt.Errorf("Insert: exec: %w", err)
	}

	return nil
}

// Replace overwrites the non-key columns of an existing row.
func (s *SQLite) Replace(ctx context.Context, m types.Mechanic) error {
	stmt, err := s.Db.PrepareContext(ctx,
		"UPDATE mechanic SET first_name = ?, last_name = ?, specialization = ? WHERE code = ?",
	)
	if err != nil {
		return fmt.Errorf("Replace: prepare: %w", err)
	}
	defer stmt.Close()

	// Argument order matches the ? order in the SQL.
	result, err := stmt.ExecContext(ctx, m.FirstName, m.LastName, m.Specialization, m.Code)
	if err != nil {
		return fmt.Errorf("Replace: exec: %w", err)
	}

	return checkAffected(result, "Replace")
}

// DeleteByKey removes a mechanic row by primary key.
func (s *SQLite) DeleteByKey(ctx context.Context, code string) error {
	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM mechanic WHERE code = ?")
	if err != nil {
		return fmt.Errorf("DeleteByKey: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, code)
	if err != nil {
		return fmt.Errorf("DeleteByKey: exec: %w", err)
	}

	return checkAffected(result, "DeleteByKey")
}

// Ping verifies the database file is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.Db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

func checkAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// isDuplicateKey checks for a PRIMARY KEY or UNIQUE constraint violation.
func isDuplicateKey(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
