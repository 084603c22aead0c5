// Package memory provides an in-memory implementation of storage.Storage
// for tests and throwaway deployments. Records are lost when the process
// restarts.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aanand-mishra/mechanics-api/internal/storage"
	"github.com/aanand-mishra/mechanics-api/internal/types"
)

// Store is a mutex-guarded map keyed by mechanic code.
type Store struct {
	mu        sync.RWMutex
	mechanics map[string]types.Mechanic
}

var _ storage.Storage = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{mechanics: make(map[string]types.Mechanic)}
}

func (s *Store) Exists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.mechanics[code]
	return ok, nil
}

func (s *Store) Get(_ context.Context, code string) (types.Mechanic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.mechanics[code]
	if !ok {
		return types.Mechanic{}, storage.ErrNotFound
	}
	return m, nil
}

// FindPage filters, sorts and slices a snapshot of the map. Matching
// follows the SQL backends: a lower-cased substring test against code,
// first name, last name, specialization and "first last".
func (s *Store) FindPage(_ context.Context, q storage.PageQuery) ([]types.Mechanic, int64, error) {
	s.mu.RLock()
	matched := make([]types.Mechanic, 0, len(s.mechanics))
	for _, m := range s.mechanics {
		if matches(m, q.Search) {
			matched = append(matched, m)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := sortKey(matched[i], q.SortField), sortKey(matched[j], q.SortField)
		if a != b {
			if q.Direction == storage.Ascending {
				return a < b
			}
			return a > b
		}
		return matched[i].Code < matched[j].Code
	})

	total := int64(len(matched))
	start := q.Offset()
	if q.Size < 1 || start >= len(matched) {
		return []types.Mechanic{}, total, nil
	}
	end := start + min(q.Size, len(matched)-start)

	return matched[start:end], total, nil
}

func (s *Store) Insert(_ context.Context, m types.Mechanic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mechanics[m.Code]; ok {
		return storage.ErrDuplicateKey
	}
	s.mechanics[m.Code] = m
	return nil
}

func (s *Store) Replace(_ context.Context, m types.Mechanic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mechanics[m.Code]; !ok {
		return storage.ErrNotFound
	}
	s.mechanics[m.Code] = m
	return nil
}

func (s *Store) DeleteByKey(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mechanics[code]; !ok {
		return storage.ErrNotFound
	}
	delete(s.mechanics, code)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func matches(m types.Mechanic, term string) bool {
	if strings.TrimSpace(term) == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, v := range []string{
		m.Code,
		m.FirstName,
		m.LastName,
		m.Specialization,
		m.FirstName + " " + m.LastName,
	} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

func sortKey(m types.Mechanic, f storage.SortField) string {
	switch f {
	case storage.SortByFirstName:
		return m.FirstName
	case storage.SortByLastName:
		return m.LastName
	case storage.SortBySpecialization:
		return m.Specialization
	default:
		return m.Code
	}
}
