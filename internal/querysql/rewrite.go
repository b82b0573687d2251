package querysql

import (
	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/queryir"
	"github.com/roach88/pagewin/internal/window"
)

// RowValueRewriter emits SQLite row-value keyset predicates:
//
//	(title, id) > (?, ?)
//
// Row values compare every term in one direction, so mixed-direction sorts
// fall back to the expanded OR-of-ANDs form.
type RowValueRewriter struct{}

var _ window.KeysetRewriter = RowValueRewriter{}

// Rewrite implements window.KeysetRewriter.
func (RowValueRewriter) Rewrite(orders []queryir.Order, after []ir.Value) (queryir.Predicate, error) {
	if err := window.CheckKeyset(orders, after); err != nil {
		return nil, err
	}
	if len(orders) == 1 || !sameDirection(orders) {
		return window.ExpansionRewriter{}.Rewrite(orders, after)
	}

	fields := make([]string, len(orders))
	for i, o := range orders {
		fields[i] = o.Field
	}
	return queryir.RowCompare{
		Fields: fields,
		Op:     window.AfterOp(orders[0]),
		Values: append([]ir.Value(nil), after...),
	}, nil
}

func sameDirection(orders []queryir.Order) bool {
	for _, o := range orders[1:] {
		if o.Desc != orders[0].Desc {
			return false
		}
	}
	return true
}
