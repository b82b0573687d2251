package queryir

import "github.com/roach88/pagewin/internal/ir"

// Query is a sealed interface over the query shapes a backend must run.
//
// Query types:
//   - Select: filtered, ordered, optionally limited/offset row fetch
//   - Count: row count over a filter, ignoring order, limit and offset
type Query interface {
	queryNode()
}

// Predicate is a sealed interface over filter conditions.
//
// Predicate types:
//   - Equals: field = literal
//   - Compare: field <op> literal
//   - RowCompare: (f1, f2, ...) <op> (v1, v2, ...)
//   - IsNull: field IS [NOT] NULL
//   - And / Or: conjunction / disjunction
//
// Both value and pointer forms are accepted everywhere; Unwrap returns the
// value form so backends can switch over value types only.
type Predicate interface {
	predicateNode()
}

// Select fetches rows from a table or collection.
//
// Semantics:
//
//	SELECT <bindings> FROM <from> WHERE <filter>
//	ORDER BY <order_by> LIMIT <limit> OFFSET <offset>
//
// Bindings maps source field -> output name. Rows come back keyed by output
// name. Empty bindings mean every field under its own name.
//
// Limit 0 means no limit. OrderBy empty means the backend may return rows in
// any order.
type Select struct {
	From     string
	Filter   Predicate
	Bindings map[string]string
	OrderBy  []Order
	Limit    int
	Offset   int
}

func (Select) queryNode() {}

// CountQuery returns the count over the same source and filter. Order,
// limit and offset are dropped: a total never depends on them.
func (s Select) CountQuery() Count {
	return Count{From: s.From, Filter: s.Filter}
}

// OutputName returns the name a source field appears under in result rows.
func (s Select) OutputName(field string) string {
	if alias, ok := s.Bindings[field]; ok && alias != "" {
		return alias
	}
	return field
}

// Count counts rows matching a filter.
//
//	SELECT COUNT(*) FROM <from> WHERE <filter>
type Count struct {
	From   string
	Filter Predicate
}

func (Count) queryNode() {}

// Order is one ORDER BY term.
type Order struct {
	Field string
	Desc  bool
}

// Reverse flips the direction.
func (o Order) Reverse() Order {
	return Order{Field: o.Field, Desc: !o.Desc}
}

// ReverseOrders flips every direction, keeping the key sequence.
func ReverseOrders(orders []Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = o.Reverse()
	}
	return out
}

// Op is a comparison operator.
type Op string

const (
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

// Valid reports whether op is one of the four ordering operators.
func (op Op) Valid() bool {
	switch op {
	case OpLt, OpLte, OpGt, OpGte:
		return true
	}
	return false
}

// Strict returns the operator without its equality part (<= becomes <).
func (op Op) Strict() Op {
	switch op {
	case OpLte:
		return OpLt
	case OpGte:
		return OpGt
	}
	return op
}

// Holds reports whether a comparison result c (-1, 0, +1) satisfies op.
func (op Op) Holds(c int) bool {
	switch op {
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	}
	return false
}

// Equals matches rows whose field equals a literal.
//
//	<field> = <value>
type Equals struct {
	Field string
	Value ir.Value
}

func (Equals) predicateNode() {}

// Compare matches rows whose field orders against a literal.
//
//	<field> <op> <value>
type Compare struct {
	Field string
	Op    Op
	Value ir.Value
}

func (Compare) predicateNode() {}

// RowCompare is a lexicographic row-value comparison.
//
//	(<f1>, <f2>, ...) <op> (<v1>, <v2>, ...)
//
// All terms compare in the same direction. Not every backend supports it
// natively; Validate reports it as non-portable.
type RowCompare struct {
	Fields []string
	Op     Op
	Values []ir.Value
}

func (RowCompare) predicateNode() {}

// IsNull matches rows whose field is NULL, or not NULL when Negate is set.
type IsNull struct {
	Field  string
	Negate bool
}

func (IsNull) predicateNode() {}

// And holds when every predicate holds. Empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or holds when any predicate holds. Empty Or is always false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Unwrap returns the value form of a pointer predicate. Nil pointers
// become a nil Predicate.
func Unwrap(p Predicate) Predicate {
	switch pred := p.(type) {
	case *Equals:
		if pred == nil {
			return nil
		}
		return *pred
	case *Compare:
		if pred == nil {
			return nil
		}
		return *pred
	case *RowCompare:
		if pred == nil {
			return nil
		}
		return *pred
	case *IsNull:
		if pred == nil {
			return nil
		}
		return *pred
	case *And:
		if pred == nil {
			return nil
		}
		return *pred
	case *Or:
		if pred == nil {
			return nil
		}
		return *pred
	}
	return p
}

// UnwrapQuery returns the value form of a pointer query.
func UnwrapQuery(q Query) Query {
	switch query := q.(type) {
	case *Select:
		if query == nil {
			return nil
		}
		return *query
	case *Count:
		if query == nil {
			return nil
		}
		return *query
	}
	return q
}

// Conjoin combines predicates with AND, skipping nils and flattening nested
// Ands. Returns nil when nothing remains and the single predicate when only
// one does.
func Conjoin(preds ...Predicate) Predicate {
	var flat []Predicate
	for _, p := range preds {
		p = Unwrap(p)
		if p == nil {
			continue
		}
		if and, ok := p.(And); ok {
			flat = append(flat, and.Predicates...)
			continue
		}
		flat = append(flat, p)
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return And{Predicates: flat}
}
