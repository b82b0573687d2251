// Package querygoqu compiles the query IR to goqu datasets, so the same
// windowed query renders for SQLite, PostgreSQL or MySQL.
package querygoqu

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/queryir"
)

// Supported dialect names.
const (
	SQLite3  = "sqlite3"
	Postgres = "postgres"
	MySQL    = "mysql"
)

// Dialects lists the supported dialect names.
func Dialects() []string {
	return []string{SQLite3, Postgres, MySQL}
}

// Compiler renders query IR through a goqu dialect. Output is always
// prepared: values travel as parameters.
type Compiler struct {
	name    string
	dialect goqu.DialectWrapper
}

// New returns a compiler for dialect. "sqlite" is accepted as an alias
// of "sqlite3".
func New(dialect string) (*Compiler, error) {
	name := strings.ToLower(strings.TrimSpace(dialect))
	if name == "sqlite" {
		name = SQLite3
	}
	switch name {
	case SQLite3, Postgres, MySQL:
	default:
		return nil, fmt.Errorf("unsupported dialect %q (want one of %s)", dialect, strings.Join(Dialects(), ", "))
	}
	return &Compiler{name: name, dialect: goqu.Dialect(name)}, nil
}

// Dialect returns the dialect name.
func (c *Compiler) Dialect() string {
	return c.name
}

// Compile renders q to (sql, params).
func (c *Compiler) Compile(q queryir.Query) (string, []any, error) {
	var ds *goqu.SelectDataset
	var err error
	switch query := queryir.UnwrapQuery(q).(type) {
	case nil:
		return "", nil, fmt.Errorf("cannot compile nil query")
	case queryir.Select:
		ds, err = c.Select(query)
	case queryir.Count:
		ds, err = c.Count(query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
	if err != nil {
		return "", nil, err
	}

	sql, params, err := ds.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("render %s: %w", c.name, err)
	}
	return sql, params, nil
}

// Select builds the dataset for a Select.
func (c *Compiler) Select(q queryir.Select) (*goqu.SelectDataset, error) {
	if q.From == "" {
		return nil, fmt.Errorf("select has no source")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("negative limit or offset (%d, %d)", q.Limit, q.Offset)
	}

	ds := c.dialect.From(q.From).Prepared(true)
	if cols := selectColumns(q.Bindings); len(cols) > 0 {
		ds = ds.Select(cols...)
	}

	where, err := c.filter(q.Filter)
	if err != nil {
		return nil, err
	}
	if where != nil {
		ds = ds.Where(where)
	}

	if len(q.OrderBy) > 0 {
		orders := make([]exp.OrderedExpression, len(q.OrderBy))
		for i, o := range q.OrderBy {
			if o.Desc {
				orders[i] = goqu.I(o.Field).Desc()
			} else {
				orders[i] = goqu.I(o.Field).Asc()
			}
		}
		ds = ds.Order(orders...)
	}

	switch {
	case q.Limit > 0:
		ds = ds.Limit(uint(q.Limit))
	case q.Offset > 0:
		// MySQL and SQLite reject OFFSET without LIMIT.
		ds = ds.Limit(uint(math.MaxInt32))
	}
	if q.Offset > 0 {
		ds = ds.Offset(uint(q.Offset))
	}
	return ds, nil
}

// Count builds the dataset for a Count.
func (c *Compiler) Count(q queryir.Count) (*goqu.SelectDataset, error) {
	if q.From == "" {
		return nil, fmt.Errorf("count has no source")
	}
	ds := c.dialect.From(q.From).Prepared(true).Select(goqu.COUNT(goqu.Star()))

	where, err := c.filter(q.Filter)
	if err != nil {
		return nil, err
	}
	if where != nil {
		ds = ds.Where(where)
	}
	return ds, nil
}

func (c *Compiler) filter(p queryir.Predicate) (exp.Expression, error) {
	if queryir.Unwrap(p) == nil {
		return nil, nil
	}
	where, err := c.predicate(p)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	return where, nil
}

func selectColumns(bindings map[string]string) []any {
	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := make([]any, 0, len(keys))
	for _, source := range keys {
		alias := bindings[source]
		if alias == "" || alias == source {
			cols = append(cols, goqu.C(source))
			continue
		}
		cols = append(cols, goqu.C(source).As(alias))
	}
	return cols
}

func (c *Compiler) predicate(p queryir.Predicate) (exp.Expression, error) {
	switch pred := queryir.Unwrap(p).(type) {
	case nil:
		return goqu.L("1 = 1"), nil
	case queryir.Equals:
		val, err := scalar(pred.Field, pred.Value)
		if err != nil {
			return nil, err
		}
		return goqu.C(pred.Field).Eq(val), nil
	case queryir.Compare:
		val, err := scalar(pred.Field, pred.Value)
		if err != nil {
			return nil, err
		}
		col := goqu.C(pred.Field)
		switch pred.Op {
		case queryir.OpLt:
			return col.Lt(val), nil
		case queryir.OpLte:
			return col.Lte(val), nil
		case queryir.OpGt:
			return col.Gt(val), nil
		case queryir.OpGte:
			return col.Gte(val), nil
		}
		return nil, fmt.Errorf("unsupported operator %q", pred.Op)
	case queryir.RowCompare:
		return rowCompare(pred)
	case queryir.IsNull:
		if pred.Negate {
			return goqu.C(pred.Field).IsNotNull(), nil
		}
		return goqu.C(pred.Field).IsNull(), nil
	case queryir.And:
		if len(pred.Predicates) == 0 {
			return goqu.L("1 = 1"), nil
		}
		subs, err := c.predicates(pred.Predicates)
		if err != nil {
			return nil, err
		}
		return goqu.And(subs...), nil
	case queryir.Or:
		if len(pred.Predicates) == 0 {
			return goqu.L("1 = 0"), nil
		}
		subs, err := c.predicates(pred.Predicates)
		if err != nil {
			return nil, err
		}
		return goqu.Or(subs...), nil
	default:
		return nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *Compiler) predicates(preds []queryir.Predicate) ([]exp.Expression, error) {
	out := make([]exp.Expression, len(preds))
	for i, p := range preds {
		e, err := c.predicate(p)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// rowCompare renders (a, b) > (?, ?) as a literal. goqu has no row-value
// expression; identifiers still go through the dialect's quoting.
func rowCompare(rc queryir.RowCompare) (exp.Expression, error) {
	if len(rc.Fields) == 0 || len(rc.Fields) != len(rc.Values) {
		return nil, fmt.Errorf("row comparison has %d fields and %d values", len(rc.Fields), len(rc.Values))
	}
	if !rc.Op.Valid() {
		return nil, fmt.Errorf("unsupported operator %q", rc.Op)
	}

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(rc.Fields)), ", ")
	args := make([]any, 0, 2*len(rc.Fields))
	for _, f := range rc.Fields {
		args = append(args, goqu.I(f))
	}
	for i, v := range rc.Values {
		val, err := scalar(rc.Fields[i], v)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return goqu.L(fmt.Sprintf("(%s) %s (%s)", marks, rc.Op, marks), args...), nil
}

// scalar converts a predicate literal. Null literals are rejected: goqu
// renders "= NULL" as IS NULL, which would diverge from the other
// backends. Use queryir.IsNull instead.
func scalar(field string, v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.String:
		return string(val), nil
	case ir.Int:
		return int64(val), nil
	case ir.Bool:
		return bool(val), nil
	case nil, ir.Null:
		return nil, fmt.Errorf("field %s compared to NULL, use IsNull", field)
	default:
		return nil, fmt.Errorf("field %s: %T cannot be used as a SQL parameter", field, v)
	}
}
