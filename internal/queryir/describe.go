package queryir

import "github.com/roach88/pagewin/internal/ir"

// Describe returns a structural form of p that canonical JSON can encode,
// so equal predicates fingerprint alike. A nil predicate describes as an
// empty And.
//
// Literal values are wrapped as {"value": v}; a null literal becomes
// {"null": true} because canonical JSON has no null.
func Describe(p Predicate) ir.Value {
	switch pred := Unwrap(p).(type) {
	case nil:
		return ir.Object{"and": ir.Array{}}
	case Equals:
		return ir.Object{"eq": ir.String(pred.Field), "to": literal(pred.Value)}
	case Compare:
		return ir.Object{"cmp": ir.String(pred.Field), "op": ir.String(string(pred.Op)), "to": literal(pred.Value)}
	case RowCompare:
		fields := make(ir.Array, len(pred.Fields))
		for i, f := range pred.Fields {
			fields[i] = ir.String(f)
		}
		values := make(ir.Array, len(pred.Values))
		for i, v := range pred.Values {
			values[i] = literal(v)
		}
		return ir.Object{"row": fields, "op": ir.String(string(pred.Op)), "to": values}
	case IsNull:
		return ir.Object{"is_null": ir.String(pred.Field), "negate": ir.Bool(pred.Negate)}
	case And:
		return ir.Object{"and": describeAll(pred.Predicates)}
	case Or:
		return ir.Object{"or": describeAll(pred.Predicates)}
	}
	return ir.Object{"unknown": ir.Bool(true)}
}

func describeAll(preds []Predicate) ir.Array {
	out := make(ir.Array, len(preds))
	for i, p := range preds {
		out[i] = Describe(p)
	}
	return out
}

func literal(v ir.Value) ir.Value {
	if ir.IsNull(v) {
		return ir.Object{"null": ir.Bool(true)}
	}
	return ir.Object{"value": v}
}
