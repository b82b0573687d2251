package window

import (
	"errors"
	"fmt"
)

// Error is returned when a request cannot be turned into a plan.
//
// Every window error is local, synchronous and non-retryable: the caller
// fixes the request. Codes:
//   - CONFIGURATION: mutually exclusive parameters, invalid sizes, a keyset
//     that does not match its sort
//   - NULL_ARGUMENT: a nil Sort, Limit or Position where a sentinel
//     (Unsorted, Unlimited, Unpaged) is required
//   - NULL_SORT_KEY: a keyset value or boundary row key is null
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field names the request parameter at fault (sort, limit, position,
	// shape, base).
	Field string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes window errors.
type ErrorCode string

const (
	// ErrCodeConfiguration indicates parameters that cannot be combined or
	// hold invalid values.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"

	// ErrCodeNullArgument indicates nil was passed instead of a sentinel.
	ErrCodeNullArgument ErrorCode = "NULL_ARGUMENT"

	// ErrCodeNullSortKey indicates a null value in a keyset, or a keyset
	// sort over a property that may hold nulls.
	ErrCodeNullSortKey ErrorCode = "NULL_SORT_KEY"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigurationError returns true if err wraps a CONFIGURATION error.
func IsConfigurationError(err error) bool {
	return hasCode(err, ErrCodeConfiguration)
}

// IsNullArgumentError returns true if err wraps a NULL_ARGUMENT error.
func IsNullArgumentError(err error) bool {
	return hasCode(err, ErrCodeNullArgument)
}

// IsNullSortKeyError returns true if err wraps a NULL_SORT_KEY error.
func IsNullSortKeyError(err error) bool {
	return hasCode(err, ErrCodeNullSortKey)
}

func hasCode(err error, code ErrorCode) bool {
	var we *Error
	if errors.As(err, &we) {
		return we.Code == code
	}
	return false
}

func configError(field, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeConfiguration,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
	}
}

func nullArgumentError(field, sentinel string) *Error {
	return &Error{
		Code:    ErrCodeNullArgument,
		Message: fmt.Sprintf("%s is nil, use %s() to leave it unset", field, sentinel),
		Field:   field,
	}
}

func nullSortKeyError(property string, index int) *Error {
	return &Error{
		Code:    ErrCodeNullSortKey,
		Message: fmt.Sprintf("keyset value for %q is null", property),
		Field:   "position",
		Details: map[string]string{
			"property": property,
			"index":    fmt.Sprintf("%d", index),
		},
	}
}

// NullableSortKeyError reports a keyset sort over a property that may be
// null. A keyset predicate never matches a null key, so a walk over such a
// sort would skip those rows.
func NullableSortKeyError(property string) *Error {
	return &Error{
		Code:    ErrCodeNullSortKey,
		Message: fmt.Sprintf("keyset sort key %q is nullable", property),
		Field:   "sort",
		Details: map[string]string{"property": property},
	}
}
