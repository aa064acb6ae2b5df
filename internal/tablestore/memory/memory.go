// Package memory implements an in-process tablestore used by tests and
// the default development backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"balcao/internal/tablestore"
)

type Store struct {
	mu     sync.Mutex
	tables map[string][][]string
}

var _ tablestore.Store = (*Store)(nil)

func New() *Store {
	return &Store{tables: make(map[string][][]string)}
}

// Seed creates the table with the given rows, replacing any prior content.
func (s *Store) Seed(table string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = cloneRows(rows)
}

func (s *Store) Tables(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) ReadAll(_ context.Context, table string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tables[table]
	if !ok {
		return nil, tablestore.ErrTableNotFound
	}
	return cloneRows(rows), nil
}

func (s *Store) AppendRows(_ context.Context, table string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tables[table]
	if !ok {
		return tablestore.ErrTableNotFound
	}
	s.tables[table] = append(existing, cloneRows(rows)...)
	return nil
}

func (s *Store) ReplaceAll(_ context.Context, table string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[table]; !ok {
		return tablestore.ErrTableNotFound
	}
	s.tables[table] = cloneRows(rows)
	return nil
}

func (s *Store) UpdateHeader(_ context.Context, table string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tables[table]
	if !ok {
		return tablestore.ErrTableNotFound
	}
	if len(rows) == 0 {
		rows = [][]string{nil}
	}
	rows[0] = append([]string(nil), header...)
	s.tables[table] = rows
	return nil
}

func (s *Store) CreateTable(_ context.Context, table string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[table]; ok {
		return nil
	}
	s.tables[table] = [][]string{append([]string(nil), header...)}
	return nil
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
