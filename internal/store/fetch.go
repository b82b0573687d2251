package store

import (
	"context"
	"fmt"

	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/queryir"
)

// Fetch runs a Select through the configured compiler. Rows come back
// keyed by output name; BOOLEAN columns are decoded from SQLite's 0/1.
func (s *Store) Fetch(ctx context.Context, q queryir.Select) ([]ir.Object, error) {
	def, err := s.Collection(ctx, q.From)
	if err != nil {
		return nil, err
	}

	query, params, err := s.compiler.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile select on %s: %w", q.From, err)
	}
	s.logQuery(ctx, query, params)

	rows, err := s.db.QueryxContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.From, err)
	}
	defer rows.Close()

	booleans := booleanOutputs(def, q)
	var out []ir.Object
	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", q.From, err)
		}
		row, err := decodeRow(raw, booleans)
		if err != nil {
			return nil, fmt.Errorf("decode %s row: %w", q.From, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", q.From, err)
	}
	return out, nil
}

// Count runs a Count through the configured compiler.
func (s *Store) Count(ctx context.Context, q queryir.Count) (int64, error) {
	if _, err := s.Collection(ctx, q.From); err != nil {
		return 0, err
	}

	query, params, err := s.compiler.Compile(q)
	if err != nil {
		return 0, fmt.Errorf("compile count on %s: %w", q.From, err)
	}
	s.logQuery(ctx, query, params)

	var n int64
	if err := s.db.GetContext(ctx, &n, query, params...); err != nil {
		return 0, fmt.Errorf("count %s: %w", q.From, err)
	}
	return n, nil
}

// booleanOutputs returns the output names of BOOLEAN columns in q.
func booleanOutputs(def Definition, q queryir.Select) map[string]bool {
	out := make(map[string]bool)
	for _, c := range def.Columns {
		if c.Type != TypeBoolean {
			continue
		}
		if len(q.Bindings) == 0 {
			out[c.Name] = true
			continue
		}
		if _, ok := q.Bindings[c.Name]; ok {
			out[q.OutputName(c.Name)] = true
		}
	}
	return out
}

func decodeRow(raw map[string]any, booleans map[string]bool) (ir.Object, error) {
	row := make(ir.Object, len(raw))
	for name, v := range raw {
		if n, ok := v.(int64); ok && booleans[name] {
			row[name] = ir.Bool(n != 0)
			continue
		}
		val, err := ir.FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		row[name] = val
	}
	return row, nil
}
