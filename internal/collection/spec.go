package collection

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"github.com/roach88/pagewin/internal/queryir"
	"github.com/roach88/pagewin/internal/querysql"
	"github.com/roach88/pagewin/internal/store"
	"github.com/roach88/pagewin/internal/window"
)

// ErrUnknownProperty is returned when a sort names a property the
// collection does not allow sorting by.
var ErrUnknownProperty = errors.New("unknown sort property")

// Spec is a compiled collection.
type Spec struct {
	Name        string      `json:"name" validate:"required"`
	Table       string      `json:"table" validate:"required,sqlident"`
	Key         string      `json:"key" validate:"required,sqlident"`
	Fields      []Field     `json:"fields" validate:"required,min=1,dive"`
	Sortable    []string    `json:"sortable" validate:"unique,dive,required"`
	DefaultSort window.Sort `json:"-"`
	PageSize    PageSize    `json:"page_size"`
}

// Field is one typed collection field.
type Field struct {
	Name     string `json:"name" validate:"required,sqlident"`
	Type     string `json:"type" validate:"oneof=string int bool"`
	Nullable bool   `json:"nullable"`
}

// PageSize bounds the sizes callers may request.
type PageSize struct {
	Default int `json:"default" validate:"gte=1,ltefield=Max"`
	Max     int `json:"max" validate:"gte=1"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return querysql.CheckIdentifier(fl.Field().String()) == nil
	})
	return v
}

var messages = map[string]string{
	"required": "the field '%s' is required",
	"sqlident": "the field '%s' must be a plain SQL identifier",
	"min":      "the field '%s' must have at least %s entries",
	"gte":      "the field '%s' must be greater than or equal to %s",
	"ltefield": "the field '%s' must not exceed %s",
	"oneof":    "the field '%s' must be one of %s",
	"unique":   "the field '%s' must not repeat entries",
}

func validationMessage(e validator.FieldError) string {
	name := e.Namespace()
	if msg, ok := messages[e.Tag()]; ok {
		if strings.Count(msg, "%s") == 2 {
			return fmt.Sprintf(msg, name, e.Param())
		}
		return fmt.Sprintf(msg, name)
	}
	return fmt.Sprintf("the field '%s' is invalid: %s", name, e.Tag())
}

// Validate checks struct tags and the cross-field rules: the key is a
// non-nullable field, sortable names are fields, and the default sort
// only uses sortable fields. All problems are reported together.
func (s *Spec) Validate() error {
	var result *multierror.Error

	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, e := range verrs {
			result = multierror.Append(result, fmt.Errorf("collection %s: %s", s.Name, validationMessage(e)))
		}
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if seen[f.Name] {
			result = multierror.Append(result, fmt.Errorf("collection %s: field %s declared twice", s.Name, f.Name))
		}
		seen[f.Name] = true
	}

	if key, ok := s.Field(s.Key); !ok {
		result = multierror.Append(result, fmt.Errorf("collection %s: key %q is not a field", s.Name, s.Key))
	} else if key.Nullable {
		result = multierror.Append(result, fmt.Errorf("collection %s: key %q must not be nullable", s.Name, s.Key))
	}

	for _, name := range s.Sortable {
		if _, ok := s.Field(name); !ok {
			result = multierror.Append(result, fmt.Errorf("collection %s: sortable %q is not a field", s.Name, name))
		}
	}
	if err := s.CheckSort(s.DefaultSort); err != nil {
		result = multierror.Append(result, fmt.Errorf("collection %s: default_sort: %w", s.Name, err))
	}

	return result.ErrorOrNil()
}

// Field returns the named field.
func (s *Spec) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// CanSort reports whether callers may sort by property. The key is always
// sortable.
func (s *Spec) CanSort(property string) bool {
	return property == s.Key || slices.Contains(s.Sortable, property)
}

// CheckSort returns ErrUnknownProperty (wrapped) for the first property
// of sort that is not sortable.
func (s *Spec) CheckSort(sort window.Sort) error {
	for _, prop := range sort.Properties() {
		if !s.CanSort(prop) {
			return fmt.Errorf("%w: %q in %s", ErrUnknownProperty, prop, s.Name)
		}
	}
	return nil
}

// CheckKeyset returns a NULL_SORT_KEY window.Error for the first nullable
// property of sort. Keyset walks skip rows whose sort keys are null.
func (s *Spec) CheckKeyset(sort window.Sort) error {
	for _, prop := range sort.Properties() {
		if f, ok := s.Field(prop); ok && f.Nullable {
			return window.NullableSortKeyError(prop)
		}
	}
	return nil
}

// Normalize applies the default sort when sort is unsorted and appends the
// key ascending unless sort already orders by it.
func (s *Spec) Normalize(sort window.Sort) window.Sort {
	if !sort.IsSorted() {
		sort = s.DefaultSort
	}
	if !sort.Has(s.Key) {
		sort = sort.And(window.By(window.Asc(s.Key)))
	}
	return sort
}

// ClampSize returns n bounded by the page size limits: the default when
// n <= 0, the max when n exceeds it.
func (s *Spec) ClampSize(n int) int {
	switch {
	case n <= 0:
		return s.PageSize.Default
	case n > s.PageSize.Max:
		return s.PageSize.Max
	}
	return n
}

// Base returns the unfiltered base query, every field under its own name.
func (s *Spec) Base() queryir.Select {
	bindings := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		bindings[f.Name] = f.Name
	}
	return queryir.Select{From: s.Table, Bindings: bindings}
}

// Definition returns the store table definition for the collection.
func (s *Spec) Definition() (store.Definition, error) {
	def := store.Definition{Table: s.Table, Key: s.Key}
	for _, f := range s.Fields {
		typ, err := store.ParseColumnType(f.Type)
		if err != nil {
			return store.Definition{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		def.Columns = append(def.Columns, store.Column{Name: f.Name, Type: typ})
	}
	return def, nil
}
