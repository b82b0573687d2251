package collection

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pagewin/internal/window"
)

// Defaults applied when a spec omits page_size.
const (
	DefaultPageSize = 20
	DefaultMaxSize  = 100
)

// Compile parses a CUE value into a Spec. The value should be the
// collection struct itself:
//
//	v := ctx.CompileString(`collection: Articles: { ... }`)
//	spec, err := Compile(v.LookupPath(cue.ParsePath("collection.Articles")))
//
// Compile checks structure and types only; call Spec.Validate for the
// cross-field rules.
func Compile(v cue.Value) (*Spec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &Spec{
		PageSize: PageSize{Default: DefaultPageSize, Max: DefaultMaxSize},
	}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	var err error
	if spec.Table, err = requiredString(v, "table"); err != nil {
		return nil, err
	}
	if spec.Key, err = requiredString(v, "key"); err != nil {
		return nil, err
	}

	spec.Fields, err = parseFields(v)
	if err != nil {
		return nil, err
	}

	if sortable := v.LookupPath(cue.ParsePath("sortable")); sortable.Exists() {
		if err := sortable.Decode(&spec.Sortable); err != nil {
			return nil, &CompileError{Field: "sortable", Message: "must be a list of field names", Pos: sortable.Pos()}
		}
	}

	if ds := v.LookupPath(cue.ParsePath("default_sort")); ds.Exists() {
		text, err := ds.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.DefaultSort, err = window.ParseSort(text)
		if err != nil {
			return nil, &CompileError{Field: "default_sort", Message: err.Error(), Pos: ds.Pos()}
		}
	}

	if ps := v.LookupPath(cue.ParsePath("page_size")); ps.Exists() {
		if err := parsePageSize(ps, &spec.PageSize); err != nil {
			return nil, err
		}
	}

	return spec, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// parseFields reads fields in declaration order.
func parseFields(v cue.Value) ([]Field, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{Field: "fields", Message: "fields is required", Pos: v.Pos()}
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []Field
	for iter.Next() {
		typ, nullable, err := extractTypeName(iter.Value())
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: iter.Label(), Type: typ, Nullable: nullable})
	}
	return fields, nil
}

func parsePageSize(v cue.Value, ps *PageSize) error {
	for field, dst := range map[string]*int{"default": &ps.Default, "max": &ps.Max} {
		fv := v.LookupPath(cue.ParsePath(field))
		if !fv.Exists() {
			continue
		}
		n, err := fv.Int64()
		if err != nil {
			return formatCUEError(err)
		}
		*dst = int(n)
	}
	return nil
}

// extractTypeName maps a CUE field type to a column type name. A
// disjunction with null (string | null) marks the field nullable.
// Floats are forbidden: sort keys must compare exactly.
func extractTypeName(v cue.Value) (string, bool, error) {
	kind := v.IncompleteKind()
	nullable := kind&cue.NullKind != 0 && kind != cue.NullKind
	kind &^= cue.NullKind

	switch kind {
	case cue.StringKind:
		return "string", nullable, nil
	case cue.IntKind:
		return "int", nullable, nil
	case cue.BoolKind:
		return "bool", nullable, nil
	case cue.FloatKind, cue.NumberKind:
		return "", false, &CompileError{
			Field:   "type",
			Message: "float types are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	default:
		return "", false, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
