package filters

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cast"
)

// ValidateState checks state against the vocabulary in fields and returns
// every violation joined into one error, or nil.
//
// It checks that each condition names a known field, uses an operator that
// field allows, carries the payload its operator's arity requires and, for
// enum fields, only uses declared literals. Sorts must name known non-relation
// fields with a valid direction.
func ValidateState(fields []FilterField, state FilterState) error {
	byKey := make(map[string]FilterField, len(fields))
	for _, f := range fields {
		byKey[f.Key] = f
	}

	var errs []error
	for _, cond := range state.Conditions {
		if err := validateCondition(byKey, cond); err != nil {
			errs = append(errs, err)
		}
	}

	for _, s := range state.Sort {
		f, ok := byKey[s.Field]
		switch {
		case !ok:
			errs = append(errs, &FieldError{Field: s.Field, Message: "unknown sort field", Err: ErrColumnNotFound})
		case f.Type == FieldTypeRelation:
			errs = append(errs, &FieldError{Field: s.Field, Message: "relations cannot be sorted", Err: ErrNotSortable})
		case !s.Direction.IsValid():
			errs = append(errs, &FieldError{Field: s.Field, Message: fmt.Sprintf("direction %q must be asc or desc", s.Direction), Err: ErrInvalidSortDirection})
		}
	}

	return errors.Join(errs...)
}

func validateCondition(byKey map[string]FilterField, cond FilterCondition) error {
	f, ok := byKey[cond.Field]
	if !ok {
		return &FieldError{Field: cond.Field, Message: "unknown filter field", Err: ErrColumnNotFound}
	}
	if !cond.Operator.IsValid() {
		return &FieldError{Field: cond.Field, Operator: cond.Operator, Message: "operator is not recognised", Err: ErrUnsupportedOperator}
	}
	if !f.Supports(cond.Operator) {
		return &FieldError{Field: cond.Field, Operator: cond.Operator, Message: "operator not allowed for " + f.Type.String() + " fields", Err: ErrOperatorNotAllowed}
	}
	if err := validateArity(cond); err != nil {
		return err
	}
	if f.Type == FieldTypeEnum {
		return validateEnum(f, cond)
	}
	return nil
}

// validateArity enforces that exactly one of value/values is populated
// according to the operator.
func validateArity(cond FilterCondition) error {
	hasValue := cond.Value != nil
	hasValues := len(cond.Values) > 0

	var msg string
	switch cond.Operator.Arity() {
	case ArityNone:
		if hasValue || hasValues {
			msg = "operator takes no value"
		}
	case AritySingle:
		if !hasValue || hasValues {
			msg = "operator takes exactly one value"
		}
	case ArityMulti:
		if !hasValues || hasValue {
			msg = "operator takes a non-empty values list"
		}
	case ArityRange:
		if len(cond.Values) != 2 || hasValue {
			msg = fmt.Sprintf("between requires exactly 2 values, got %d", len(cond.Values))
		}
	}
	if msg == "" {
		return nil
	}
	return &FieldError{Field: cond.Field, Operator: cond.Operator, Message: msg, Err: ErrInvalidArity}
}

func validateEnum(f FilterField, cond FilterCondition) error {
	literals := slices.Clone(cond.Values)
	if cond.Value != nil {
		literals = append(literals, cond.Value)
	}
	for _, v := range literals {
		s := cast.ToString(v)
		if !slices.Contains(f.EnumValues, s) {
			return &FieldError{
				Field:    cond.Field,
				Operator: cond.Operator,
				Message:  fmt.Sprintf("%q is not one of %v", s, f.EnumValues),
				Err:      ErrInvalidEnumValue,
			}
		}
	}
	return nil
}
