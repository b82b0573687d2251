package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/pagewin/internal/ir"
)

// ValidationResult contains portability analysis of a query.
//
// The portable fragment is the subset of the query IR every executor can
// run with identical results: SQL through either compiler, the in-memory
// table, and document stores that only know field comparisons.
type ValidationResult struct {
	// IsPortable indicates if the query uses only portable fragment features.
	IsPortable bool

	// Warnings lists non-portable or nondeterministic features used in the
	// query. Empty when IsPortable is true.
	Warnings []string
}

// Validate checks if a query conforms to the portable fragment rules.
//
// Portable fragment rules:
//  1. No NULL literals - comparisons use explicit values, IsNull tests nulls
//  2. No row-value comparisons - keyset predicates use the expanded form
//  3. Explicit bindings - no SELECT * wildcards
//  4. Deterministic windows - LIMIT and OFFSET require ORDER BY
//
// Non-portable queries are allowed and run correctly on the SQL backends.
// Warnings inform callers which backends may disagree.
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	q = UnwrapQuery(q)
	if q == nil {
		v.addWarning("nil query - portable fragment requires valid query nodes")
		return
	}

	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case Count:
		v.validatePredicate(query.Filter)
	default:
		v.addWarning("Unknown query type: %T - portability cannot be verified", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	// Rule 3
	if len(sel.Bindings) == 0 {
		v.addWarning("Empty bindings (SELECT *) - portable fragment requires explicit field selection")
	}

	// Rule 4
	if len(sel.OrderBy) == 0 {
		if sel.Limit > 0 {
			v.addWarning("LIMIT %d without ORDER BY - the rows kept are backend-dependent", sel.Limit)
		}
		if sel.Offset > 0 {
			v.addWarning("OFFSET %d without ORDER BY - the rows skipped are backend-dependent", sel.Offset)
		}
	}
	if sel.Limit < 0 {
		v.addWarning("negative LIMIT %d", sel.Limit)
	}
	if sel.Offset < 0 {
		v.addWarning("negative OFFSET %d", sel.Offset)
	}

	v.validatePredicate(sel.Filter)
}

func (v *validator) validatePredicate(p Predicate) {
	p = Unwrap(p)
	if p == nil {
		return
	}

	switch pred := p.(type) {
	case Equals:
		if ir.IsNull(pred.Value) {
			v.addWarning("Field '%s' compared to NULL - use IsNull instead", pred.Field)
		}
	case Compare:
		if ir.IsNull(pred.Value) {
			v.addWarning("Field '%s' ordered against NULL - result depends on backend null ordering", pred.Field)
		}
		if !pred.Op.Valid() {
			v.addWarning("Field '%s' uses unknown operator %q", pred.Field, pred.Op)
		}
	case RowCompare:
		// Rule 2
		v.addWarning("Row-value comparison on (%s) - SQL-specific, expand to OR of ANDs for other backends", strings.Join(pred.Fields, ", "))
		if len(pred.Fields) != len(pred.Values) {
			v.addWarning("Row-value comparison has %d fields but %d values", len(pred.Fields), len(pred.Values))
		}
	case IsNull:
		// Explicit null tests are portable.
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Or:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addWarning("Unknown predicate type: %T - portability cannot be verified", p)
	}
}
