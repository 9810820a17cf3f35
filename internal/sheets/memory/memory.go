// Package memory provides a map-backed CellStore for tests and offline runs.
package memory

import (
	"context"
	"strings"
	"sync"

	"tagtrack/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	cells map[string]map[string]string // sheet -> addr -> value
	rows  map[string][][]string       // sheet -> appended rows
}

func New() *Store {
	return &Store{
		cells: make(map[string]map[string]string),
		rows:  make(map[string][][]string),
	}
}

// Seed writes a header row into a sheet, one label per column starting at A1.
// Convenience for tests that need FindHeader to resolve.
func (s *Store) Seed(sheet string, headers []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, label := range headers {
		s.setLocked(sheet, sheets.CellRef(i+1, 1), label)
	}
}

func (s *Store) GetCell(_ context.Context, sheet, addr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cells[sheet][addr], nil
}

func (s *Store) SetCell(_ context.Context, sheet, addr, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(sheet, addr, value)
	return nil
}

func (s *Store) FindHeader(_ context.Context, sheet, label string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.cells[sheet]
	// Scan left to right until the first fully empty header cell.
	for col := 1; ; col++ {
		v, ok := row[sheets.CellRef(col, 1)]
		if !ok {
			return 0, false, nil
		}
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(label)) {
			return col, true, nil
		}
	}
}

func (s *Store) AppendRow(_ context.Context, sheet string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[sheet] = append(s.rows[sheet], append([]string(nil), values...))
	return nil
}

// Rows returns the rows appended to a sheet, for assertions.
func (s *Store) Rows(sheet string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows[sheet]))
	for i, r := range s.rows[sheet] {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func (s *Store) setLocked(sheet, addr, value string) {
	if s.cells[sheet] == nil {
		s.cells[sheet] = make(map[string]string)
	}
	s.cells[sheet][addr] = value
}
