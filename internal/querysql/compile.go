// Package querysql compiles the query IR to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/queryir"
)

// SQLCompiler compiles query IR to parameterized SQL for SQLite.
//
// All values are parameterized, never interpolated. Identifiers are
// checked against a plain identifier pattern instead of being quoted.
// Text ordering uses COLLATE BINARY so every SQLite build sorts alike.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CheckIdentifier returns an error unless name is a plain SQL identifier.
func CheckIdentifier(name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// Compile converts a query to parameterized SQL.
// Returns (sql, params, error).
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	switch query := queryir.UnwrapQuery(q).(type) {
	case nil:
		return "", nil, fmt.Errorf("cannot compile nil query")
	case queryir.Select:
		return c.compileSelect(query)
	case queryir.Count:
		return c.compileCount(query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	if err := CheckIdentifier(q.From); err != nil {
		return "", nil, fmt.Errorf("compile from: %w", err)
	}
	selectClause, err := c.compileBindings(q.Bindings)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", selectClause, q.From)

	params, err := c.writeWhere(&b, q.Filter)
	if err != nil {
		return "", nil, err
	}

	if len(q.OrderBy) > 0 {
		orderBy, err := c.compileOrderBy(q.OrderBy)
		if err != nil {
			return "", nil, err
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(orderBy)
	}

	switch {
	case q.Limit < 0 || q.Offset < 0:
		return "", nil, fmt.Errorf("negative limit or offset (%d, %d)", q.Limit, q.Offset)
	case q.Limit > 0:
		b.WriteString(" LIMIT ?")
		params = append(params, int64(q.Limit))
	case q.Offset > 0:
		// SQLite only accepts OFFSET after LIMIT; -1 means no limit.
		b.WriteString(" LIMIT -1")
	}
	if q.Offset > 0 {
		b.WriteString(" OFFSET ?")
		params = append(params, int64(q.Offset))
	}

	return b.String(), params, nil
}

func (c *SQLCompiler) compileCount(q queryir.Count) (string, []any, error) {
	if err := CheckIdentifier(q.From); err != nil {
		return "", nil, fmt.Errorf("compile from: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT COUNT(*) FROM %s", q.From)
	params, err := c.writeWhere(&b, q.Filter)
	if err != nil {
		return "", nil, err
	}
	return b.String(), params, nil
}

func (c *SQLCompiler) writeWhere(b *strings.Builder, filter queryir.Predicate) ([]any, error) {
	if queryir.Unwrap(filter) == nil {
		return nil, nil
	}
	sql, params, err := c.compilePredicate(filter)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	b.WriteString(" WHERE ")
	b.WriteString(sql)
	return params, nil
}

// compileBindings converts the bindings map to a SELECT column list.
// Example: {"item_id": "itemId"} -> "item_id AS itemId"
// Keys are sorted for deterministic output.
func (c *SQLCompiler) compileBindings(bindings map[string]string) (string, error) {
	if len(bindings) == 0 {
		return "*", nil
	}

	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, source := range keys {
		alias := bindings[source]
		if err := CheckIdentifier(source); err != nil {
			return "", fmt.Errorf("compile bindings: %w", err)
		}
		if alias == "" || alias == source {
			parts = append(parts, source)
			continue
		}
		if err := CheckIdentifier(alias); err != nil {
			return "", fmt.Errorf("compile bindings: %w", err)
		}
		parts = append(parts, fmt.Sprintf("%s AS %s", source, alias))
	}
	return strings.Join(parts, ", "), nil
}

func (c *SQLCompiler) compileOrderBy(orders []queryir.Order) (string, error) {
	parts := make([]string, len(orders))
	for i, o := range orders {
		if err := CheckIdentifier(o.Field); err != nil {
			return "", fmt.Errorf("compile order by: %w", err)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts[i] = fmt.Sprintf("%s COLLATE BINARY %s", o.Field, dir)
	}
	return strings.Join(parts, ", "), nil
}

// compilePredicate compiles a predicate to a WHERE clause fragment.
// Values are never interpolated.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := queryir.Unwrap(p).(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.Equals:
		return c.compileComparison(pred.Field, "=", pred.Value)
	case queryir.Compare:
		if !pred.Op.Valid() {
			return "", nil, fmt.Errorf("unsupported operator %q", pred.Op)
		}
		return c.compileComparison(pred.Field, string(pred.Op), pred.Value)
	case queryir.RowCompare:
		return c.compileRowCompare(pred)
	case queryir.IsNull:
		if err := CheckIdentifier(pred.Field); err != nil {
			return "", nil, err
		}
		if pred.Negate {
			return pred.Field + " IS NOT NULL", nil, nil
		}
		return pred.Field + " IS NULL", nil, nil
	case queryir.And:
		return c.compileJunction(pred.Predicates, " AND ", "1 = 1", false)
	case queryir.Or:
		return c.compileJunction(pred.Predicates, " OR ", "1 = 0", true)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileComparison(field, op string, value ir.Value) (string, []any, error) {
	if err := CheckIdentifier(field); err != nil {
		return "", nil, err
	}
	param, err := irValueToParam(value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value for %s: %w", field, err)
	}
	return fmt.Sprintf("%s %s ?", field, op), []any{param}, nil
}

func (c *SQLCompiler) compileRowCompare(rc queryir.RowCompare) (string, []any, error) {
	if len(rc.Fields) == 0 || len(rc.Fields) != len(rc.Values) {
		return "", nil, fmt.Errorf("row comparison has %d fields and %d values", len(rc.Fields), len(rc.Values))
	}
	if !rc.Op.Valid() {
		return "", nil, fmt.Errorf("unsupported operator %q", rc.Op)
	}

	params := make([]any, len(rc.Values))
	marks := make([]string, len(rc.Values))
	for i, field := range rc.Fields {
		if err := CheckIdentifier(field); err != nil {
			return "", nil, err
		}
		param, err := irValueToParam(rc.Values[i])
		if err != nil {
			return "", nil, fmt.Errorf("convert value for %s: %w", field, err)
		}
		params[i] = param
		marks[i] = "?"
	}
	sql := fmt.Sprintf("(%s) %s (%s)", strings.Join(rc.Fields, ", "), rc.Op, strings.Join(marks, ", "))
	return sql, params, nil
}

// compileJunction joins sub-predicates. Disjunctions are parenthesized as
// a whole and wrap multi-term conjunctions, so the output never depends on
// AND/OR precedence.
func (c *SQLCompiler) compileJunction(preds []queryir.Predicate, sep, empty string, disjunction bool) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}

	parts := make([]string, 0, len(preds))
	var params []any
	for _, pred := range preds {
		sql, subParams, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		if and, ok := queryir.Unwrap(pred).(queryir.And); disjunction && ok && len(and.Predicates) > 1 {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		params = append(params, subParams...)
	}

	sql := strings.Join(parts, sep)
	if disjunction && len(parts) > 1 {
		sql = "(" + sql + ")"
	}
	return sql, params, nil
}

// irValueToParam converts a scalar ir.Value to a database/sql parameter.
func irValueToParam(v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.String:
		return string(val), nil
	case ir.Int:
		return int64(val), nil
	case ir.Bool:
		return bool(val), nil
	case nil, ir.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("%T cannot be used as a SQL parameter", v)
	}
}
