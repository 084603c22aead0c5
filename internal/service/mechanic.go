// Package service implements the business rules for mechanic records:
// request validation that needs the store (existence checks), paging
// arguments, mapping rows to DTOs, and translating storage failures into
// the Kind taxonomy.
//
// Every exported method returns either a value or an *Error. Storage
// failures are logged here, once, with the operation and its parameters;
// callers receive only the client-safe Message.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aanand-mishra/mechanics-api/internal/mapper"
	"github.com/aanand-mishra/mechanics-api/internal/storage"
	"github.com/aanand-mishra/mechanics-api/internal/types"
)

// Client-facing messages.
const (
	msgAlreadyExists = "Mechanic already exists with this code."
	msgInvalidCode   = "Invalid mechanic code."
	msgCodeRequired  = "Mechanic code must be provided."

	msgListFailed   = "Failed to retrieve mechanics"
	msgGetFailed    = "Failed to retrieve mechanic"
	msgCreateFailed = "Failed to add mechanic."
	msgUpdateFailed = "Failed to update mechanic"
	msgDeleteFailed = "Failed to delete mechanic"
)

// Service orchestrates storage access for mechanics. It holds no state of
// its own between calls.
type Service struct {
	store storage.Storage
	log   *slog.Logger
}

// New builds a Service on top of store.
func New(store storage.Storage, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// ListParams are the raw listing arguments as received from the client.
// Empty SortField / SortOrder select the defaults (code, descending).
type ListParams struct {
	Search    string
	SortField string
	SortOrder string
	Page      int
	RPP       int
}

// List returns one page of mechanics matching p.Search.
func (s *Service) List(ctx context.Context, p ListParams) (types.Page[types.MechanicDTO], error) {
	if p.Page < 1 {
		return types.Page[types.MechanicDTO]{}, invalid("page must be greater than or equal to 1")
	}
	if p.RPP < 1 {
		return types.Page[types.MechanicDTO]{}, invalid("rpp must be greater than or equal to 1")
	}
	if p.RPP > storage.MaxPageSize {
		return types.Page[types.MechanicDTO]{}, invalid(fmt.Sprintf("rpp must be less than or equal to %d", storage.MaxPageSize))
	}
	if p.Page-1 > storage.MaxOffset/p.RPP {
		return types.Page[types.MechanicDTO]{}, invalid("page is out of range")
	}

	field, err := storage.ParseSortField(p.SortField)
	if err != nil {
		return types.Page[types.MechanicDTO]{}, invalid(err.Error())
	}
	dir, err := storage.ParseDirection(p.SortOrder)
	if err != nil {
		return types.Page[types.MechanicDTO]{}, invalid(err.Error())
	}

	rows, total, err := s.store.FindPage(ctx, storage.PageQuery{
		Search:    p.Search,
		SortField: field,
		Direction: dir,
		Page:      p.Page,
		Size:      p.RPP,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "failed to retrieve mechanics",
			slog.String("search", p.Search),
			slog.String("sortField", string(field)),
			slog.String("sortOrder", string(dir)),
			slog.Int("page", p.Page),
			slog.Int("rpp", p.RPP),
			slog.String("error", err.Error()),
		)
		return types.Page[types.MechanicDTO]{}, dbError(msgListFailed, err)
	}

	return types.Page[types.MechanicDTO]{
		Content:       mapper.ToDTOs(rows),
		TotalElements: total,
		TotalPages:    storage.TotalPages(total, p.RPP),
	}, nil
}

// Get returns the mechanic with the given code.
func (s *Service) Get(ctx context.Context, code string) (types.MechanicDTO, error) {
	m, err := s.store.Get(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return types.MechanicDTO{}, invalidErr(msgInvalidCode, ErrInvalidCode)
	}
	if err != nil {
		s.log.ErrorContext(ctx, "failed to retrieve mechanic",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
		return types.MechanicDTO{}, dbError(msgGetFailed, err)
	}
	return *mapper.ToDTO(&m), nil
}

// Create persists a new mechanic. The existence pre-check and the insert
// are not atomic; a concurrent creator that wins the race surfaces as
// storage.ErrDuplicateKey and is reported exactly like the pre-check.
func (s *Service) Create(ctx context.Context, dto types.MechanicDTO) (types.MechanicDTO, error) {
	if strings.TrimSpace(dto.Code) == "" {
		return types.MechanicDTO{}, invalid(msgCodeRequired)
	}

	exists, err := s.store.Exists(ctx, dto.Code)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to add mechanic",
			slog.String("code", dto.Code),
			slog.String("error", err.Error()),
		)
		return types.MechanicDTO{}, dbError(msgCreateFailed, err)
	}
	if exists {
		return types.MechanicDTO{}, invalidErr(msgAlreadyExists, ErrAlreadyExists)
	}

	m := mapper.ToEntity(dto)
	if err := s.store.Insert(ctx, m); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			s.log.InfoContext(ctx, "mechanic created concurrently", slog.String("code", dto.Code))
			return types.MechanicDTO{}, invalidErr(msgAlreadyExists, ErrAlreadyExists)
		}
		s.log.ErrorContext(ctx, "failed to add mechanic",
			slog.String("code", dto.Code),
			slog.String("error", err.Error()),
		)
		return types.MechanicDTO{}, dbError(msgCreateFailed, err)
	}

	return *mapper.ToDTO(&m), nil
}

// Update replaces firstName, lastName and specialization of the mechanic
// identified by code. dto.Code is ignored: the key never changes.
func (s *Service) Update(ctx context.Context, code string, dto types.MechanicDTO) (types.MechanicDTO, error) {
	exists, err := s.store.Exists(ctx, code)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to update mechanic",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
		return types.MechanicDTO{}, dbError(msgUpdateFailed, err)
	}
	if !exists {
		return types.MechanicDTO{}, invalidErr(msgInvalidCode, ErrInvalidCode)
	}

	m := mapper.ToEntity(dto)
	m.Code = code

	if err := s.store.Replace(ctx, m); err != nil {
		// Deleted between the check and the write.
		if errors.Is(err, storage.ErrNotFound) {
			return types.MechanicDTO{}, invalidErr(msgInvalidCode, ErrInvalidCode)
		}
		s.log.ErrorContext(ctx, "failed to update mechanic",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
		return types.MechanicDTO{}, dbError(msgUpdateFailed, err)
	}

	return *mapper.ToDTO(&m), nil
}

// Delete removes the mechanic identified by code. Deleting an unknown code
// is an error, not a no-op.
func (s *Service) Delete(ctx context.Context, code string) error {
	exists, err := s.store.Exists(ctx, code)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to delete mechanic",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
		return dbError(msgDeleteFailed, err)
	}
	if !exists {
		return invalidErr(msgInvalidCode, ErrInvalidCode)
	}

	if err := s.store.DeleteByKey(ctx, code); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return invalidErr(msgInvalidCode, ErrInvalidCode)
		}
		s.log.ErrorContext(ctx, "failed to delete mechanic",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
		return dbError(msgDeleteFailed, err)
	}

	return nil
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
