package window

import (
	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/queryir"
)

// KeysetRewriter turns "rows after these key values" into a predicate a
// backend can run. orders are in fetch direction: a descending key means
// "after" is smaller. Implementations must reject null values.
type KeysetRewriter interface {
	Rewrite(orders []queryir.Order, after []ir.Value) (queryir.Predicate, error)
}

// RewriterFunc adapts a function to KeysetRewriter.
type RewriterFunc func(orders []queryir.Order, after []ir.Value) (queryir.Predicate, error)

// Rewrite calls f.
func (f RewriterFunc) Rewrite(orders []queryir.Order, after []ir.Value) (queryir.Predicate, error) {
	return f(orders, after)
}

// ExpansionRewriter emits the portable lexicographic expansion:
//
//	(k1 > v1)
//	OR (k1 = v1 AND k2 > v2)
//	OR (k1 = v1 AND k2 = v2 AND k3 > v3)
//
// with < in place of > for descending keys. Every backend that can
// evaluate Equals, Compare, And and Or runs it.
type ExpansionRewriter struct{}

// Rewrite implements KeysetRewriter.
func (ExpansionRewriter) Rewrite(orders []queryir.Order, after []ir.Value) (queryir.Predicate, error) {
	if err := CheckKeyset(orders, after); err != nil {
		return nil, err
	}

	branches := make([]queryir.Predicate, 0, len(orders))
	for i, o := range orders {
		terms := make([]queryir.Predicate, 0, i+1)
		for j := 0; j < i; j++ {
			terms = append(terms, queryir.Equals{Field: orders[j].Field, Value: after[j]})
		}
		terms = append(terms, queryir.Compare{Field: o.Field, Op: AfterOp(o), Value: after[i]})
		branches = append(branches, queryir.Conjoin(terms...))
	}

	if len(branches) == 1 {
		return branches[0], nil
	}
	return queryir.Or{Predicates: branches}, nil
}

// AfterOp returns the strict comparison selecting rows after a value
// under o.
func AfterOp(o queryir.Order) queryir.Op {
	if o.Desc {
		return queryir.OpLt
	}
	return queryir.OpGt
}

// CheckKeyset verifies a keyset is non-empty, matches its orders and
// holds no nulls. Rewriters call it before building predicates.
func CheckKeyset(orders []queryir.Order, after []ir.Value) error {
	if len(orders) == 0 {
		return configError("position", "keyset requires at least one sort key")
	}
	if len(orders) != len(after) {
		return configError("position", "keyset has %d values for %d sort keys", len(after), len(orders))
	}
	for i, v := range after {
		if ir.IsNull(v) {
			return nullSortKeyError(orders[i].Field, i)
		}
		switch v.(type) {
		case ir.String, ir.Int, ir.Bool:
		default:
			return configError("position", "keyset value for %q has unsupported type %T", orders[i].Field, v)
		}
	}
	return nil
}
