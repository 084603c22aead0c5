// Package postgres provides a PostgreSQL implementation of storage.Storage.
// It uses pgx/v5 for connection pooling.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aanand-mishra/mechanics-api/internal/config"
	"github.com/aanand-mishra/mechanics-api/internal/storage"
	"github.com/aanand-mishra/mechanics-api/internal/types"
)

// uniqueViolation is the SQLSTATE for a unique/primary key violation.
const uniqueViolation = "23505"

// Store is a PostgreSQL-backed Storage.
type Store struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

var _ storage.Storage = (*Store)(nil)

// New opens a connection pool for cfg.DSN, verifies connectivity and, if
// cfg.MigrateOnStart is set, applies pending migrations.
func New(ctx context.Context, cfg config.Storage, log *slog.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool, log: log}

	if cfg.MigrateOnStart {
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Exists reports whether a mechanic with the given code is stored.
func (s *Store) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM mechanic WHERE code = $1)", code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking mechanic existence: %w", err)
	}
	return exists, nil
}

// Get fetches a mechanic by code.
func (s *Store) Get(ctx context.Context, code string) (types.Mechanic, error) {
	var m types.Mechanic
	err := s.pool.QueryRow(ctx,
		"SELECT code, first_name, last_name, specialization FROM mechanic WHERE code = $1",
		code,
	).Scan(&m.Code, &m.FirstName, &m.LastName, &m.Specialization)

	if errors.Is(err, pgx.ErrNoRows) {
		return types.Mechanic{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Mechanic{}, fmt.Errorf("querying mechanic: %w", err)
	}
	return m, nil
}

// FindPage returns one sorted page of mechanics matching q.Search.
func (s *Store) FindPage(ctx context.Context, q storage.PageQuery) ([]types.Mechanic, int64, error) {
	where := ""
	args := []any{}

	if strings.TrimSpace(q.Search) != "" {
		// LikePattern lower-cases, and ILIKE is case-insensitive anyway;
		// lower() keeps the two backends on identical matching rules.
		where = ` WHERE lower(code) LIKE $1 ESCAPE '\'` +
			` OR lower(first_name) LIKE $1 ESCAPE '\'` +
			` OR lower(last_name) LIKE $1 ESCAPE '\'` +
			` OR lower(specialization) LIKE $1 ESCAPE '\'` +
			` OR lower(first_name || ' ' || last_name) LIKE $1 ESCAPE '\'`
		args = append(args, storage.LikePattern(q.Search))
	}

	var total int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM mechanic"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting mechanics: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT code, first_name, last_name, specialization FROM mechanic%s ORDER BY %s %s, code ASC LIMIT $%d OFFSET $%d",
		where, q.SortField.Column(), q.Direction, len(args)+1, len(args)+2,
	)
	args = append(args, q.Size, q.Offset())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing mechanics: %w", err)
	}

	mechanics, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Mechanic, error) {
		var m types.Mechanic
		err := row.Scan(&m.Code, &m.FirstName, &m.LastName, &m.Specialization)
		return m, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scanning mechanics: %w", err)
	}
	if mechanics == nil {
		mechanics = []types.Mechanic{}
	}

	return mechanics, total, nil
}

// Insert persists a new mechanic.
func (s *Store) Insert(ctx context.Context, m types.Mechanic) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO mechanic (code, first_name, last_name, specialization) VALUES ($1, $2, $3, $4)",
		m.Code, m.FirstName, m.LastName, m.Specialization,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("inserting mechanic: %w", storage.ErrDuplicateKey)
		}
		return fmt.Errorf("inserting mechanic: %w", err)
	}
	return nil
}

// Replace overwrites the non-key columns of an existing mechanic.
func (s *Store) Replace(ctx context.Context, m types.Mechanic) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE mechanic SET first_name = $1, last_name = $2, specialization = $3 WHERE code = $4",
		m.FirstName, m.LastName, m.Specialization, m.Code,
	)
	if err != nil {
		return fmt.Errorf("updating mechanic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteByKey removes a mechanic.
func (s *Store) DeleteByKey(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM mechanic WHERE code = $1", code)
	if err != nil {
		return fmt.Errorf("deleting mechanic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
