package filters

import (
	"errors"
	"fmt"
)

// Sentinel errors. All of them are caller or schema contract violations and
// abort the request; none is degraded to "no filter".
var (
	// ErrColumnNotFound indicates a condition or sort references a field the
	// table does not expose.
	ErrColumnNotFound = errors.New("column not found")

	// ErrUnsupportedOperator indicates an unknown operator string.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrInvalidArity indicates the value payload does not match the
	// operator, e.g. between with fewer than two values.
	ErrInvalidArity = errors.New("invalid operator arity")

	// ErrOperatorNotAllowed indicates a known operator used on a field whose
	// type does not allow it.
	ErrOperatorNotAllowed = errors.New("operator not allowed for field")

	// ErrInvalidEnumValue indicates a literal outside an enum's closed set.
	ErrInvalidEnumValue = errors.New("invalid enum value")

	// ErrEnumValuesRequired indicates an enum field declared without values.
	ErrEnumValuesRequired = errors.New("enum field requires enum values")

	// ErrInvalidSortDirection indicates a sort direction other than asc/desc.
	ErrInvalidSortDirection = errors.New("invalid sort direction")

	// ErrNotSortable indicates an ordering on a relation field.
	ErrNotSortable = errors.New("field is not sortable")

	// ErrNotSearchable indicates a search over a non-scalar field.
	ErrNotSearchable = errors.New("field is not searchable")

	// ErrInvalidSchema indicates a malformed table schema.
	ErrInvalidSchema = errors.New("invalid table schema")
)

// FieldError attaches the offending field and operator to a sentinel error.
type FieldError struct {
	Field    string
	Operator Operator
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	switch {
	case e.Field != "" && e.Operator != "":
		return fmt.Sprintf("%v: field %q operator %q: %s", e.Err, e.Field, e.Operator, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%v: field %q: %s", e.Err, e.Field, e.Message)
	default:
		return fmt.Sprintf("%v: %s", e.Err, e.Message)
	}
}

// Unwrap returns the sentinel error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err (or anything it wraps) is one of the
// package's contract violations, as opposed to a storage failure.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrColumnNotFound, ErrUnsupportedOperator, ErrInvalidArity,
		ErrOperatorNotAllowed, ErrInvalidEnumValue, ErrEnumValuesRequired,
		ErrInvalidSortDirection, ErrNotSortable, ErrNotSearchable, ErrInvalidSchema,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
