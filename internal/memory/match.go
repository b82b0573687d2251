package memory

import (
	"fmt"

	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/queryir"
)

// Match evaluates a predicate against a row. A nil predicate matches
// everything. Comparisons with a NULL on either side are never true,
// as in SQL.
func Match(row ir.Object, p queryir.Predicate) (bool, error) {
	switch pred := queryir.Unwrap(p).(type) {
	case nil:
		return true, nil
	case queryir.Equals:
		return compareField(row, pred.Field, pred.Value, func(c int) bool { return c == 0 })
	case queryir.Compare:
		if !pred.Op.Valid() {
			return false, fmt.Errorf("unsupported operator %q", pred.Op)
		}
		return compareField(row, pred.Field, pred.Value, pred.Op.Holds)
	case queryir.RowCompare:
		return matchRow(row, pred)
	case queryir.IsNull:
		return ir.IsNull(row.Get(pred.Field)) != pred.Negate, nil
	case queryir.And:
		for _, sub := range pred.Predicates {
			ok, err := Match(row, sub)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case queryir.Or:
		for _, sub := range pred.Predicates {
			ok, err := Match(row, sub)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compareField(row ir.Object, field string, value ir.Value, holds func(int) bool) (bool, error) {
	got := row.Get(field)
	if ir.IsNull(got) || ir.IsNull(value) {
		return false, nil
	}
	c, err := ir.Compare(got, value)
	if err != nil {
		return false, fmt.Errorf("field %s: %w", field, err)
	}
	return holds(c), nil
}

// matchRow compares (f1, f2, ...) against (v1, v2, ...) lexicographically.
// The first unequal pair decides; a NULL met before that makes the result
// unknown, which never matches.
func matchRow(row ir.Object, rc queryir.RowCompare) (bool, error) {
	if len(rc.Fields) == 0 || len(rc.Fields) != len(rc.Values) {
		return false, fmt.Errorf("row comparison has %d fields and %d values", len(rc.Fields), len(rc.Values))
	}
	if !rc.Op.Valid() {
		return false, fmt.Errorf("unsupported operator %q", rc.Op)
	}
	for i, field := range rc.Fields {
		got := row.Get(field)
		if ir.IsNull(got) || ir.IsNull(rc.Values[i]) {
			return false, nil
		}
		c, err := ir.Compare(got, rc.Values[i])
		if err != nil {
			return false, fmt.Errorf("field %s: %w", field, err)
		}
		if c != 0 {
			return rc.Op.Holds(c), nil
		}
	}
	return rc.Op.Holds(0), nil
}
