// Package memory runs the query IR directly over rows held in memory.
//
// Results match the SQLite backend: ordering follows ir.Compare (nulls
// first ascending, last descending; text byte-wise), and comparisons
// involving NULL are never true.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/queryir"
)

// ErrUnknownTable is returned when a query names a table that was never
// created.
var ErrUnknownTable = errors.New("unknown table")

// Store holds named tables of rows. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	tables map[string][]ir.Object
}

// New creates an empty store.
func New() *Store {
	return &Store{tables: make(map[string][]ir.Object)}
}

// CreateTable creates an empty table. Creating an existing table is a
// no-op.
func (s *Store) CreateTable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[name]; !ok {
		s.tables[name] = []ir.Object{}
	}
}

// Insert appends rows to a table, creating it if needed. Rows are copied.
func (s *Store) Insert(_ context.Context, table string, rows ...ir.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		cp := make(ir.Object, len(row))
		for k, v := range row {
			cp[k] = v
		}
		s.tables[table] = append(s.tables[table], cp)
	}
	if _, ok := s.tables[table]; !ok {
		s.tables[table] = []ir.Object{}
	}
	return nil
}

// Fetch runs a Select. Rows come back projected through the bindings.
func (s *Store) Fetch(ctx context.Context, q queryir.Select) ([]ir.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matched, err := s.scan(q.From, q.Filter)
	if err != nil {
		return nil, err
	}

	if len(q.OrderBy) > 0 {
		var sortErr error
		slices.SortStableFunc(matched, func(a, b ir.Object) int {
			c, err := compareRows(a, b, q.OrderBy)
			if err != nil && sortErr == nil {
				sortErr = err
			}
			return c
		})
		if sortErr != nil {
			return nil, fmt.Errorf("order %s: %w", q.From, sortErr)
		}
	}

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	out := make([]ir.Object, len(matched))
	for i, row := range matched {
		out[i] = project(row, q.Bindings)
	}
	return out, nil
}

// Count runs a Count.
func (s *Store) Count(ctx context.Context, q queryir.Count) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	matched, err := s.scan(q.From, q.Filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (s *Store) scan(table string, filter queryir.Predicate) ([]ir.Object, error) {
	s.mu.RLock()
	rows, ok := s.tables[table]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	var matched []ir.Object
	for _, row := range rows {
		ok, err := Match(row, filter)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", table, err)
		}
		if ok {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func project(row ir.Object, bindings map[string]string) ir.Object {
	if len(bindings) == 0 {
		out := make(ir.Object, len(row))
		for k, v := range row {
			out[k] = v
		}
		return out
	}
	out := make(ir.Object, len(bindings))
	for source, alias := range bindings {
		if alias == "" {
			alias = source
		}
		out[alias] = row.Get(source)
	}
	return out
}

func compareRows(a, b ir.Object, orders []queryir.Order) (int, error) {
	for _, o := range orders {
		c, err := ir.Compare(a.Get(o.Field), b.Get(o.Field))
		if err != nil {
			return 0, fmt.Errorf("field %s: %w", o.Field, err)
		}
		if o.Desc {
			c = -c
		}
		if c != 0 {
			return c, nil
		}
	}
	return 0, nil
}
