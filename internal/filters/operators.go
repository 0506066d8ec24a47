// Package filters turns declarative filter, sort and pagination state into
// GORM predicate and ordering expressions, and maps that state to and from
// URL query parameters.
package filters

import (
	"slices"
	"strings"
)

// FieldType is the abstract type of a filterable field.
type FieldType string

// Field types.
const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeEnum     FieldType = "enum"
	FieldTypeArray    FieldType = "array"
	FieldTypeRelation FieldType = "relation"
)

// String returns the string representation of the field type.
func (t FieldType) String() string {
	return string(t)
}

// Operator is a comparison operator in a filter condition.
// The string values are part of the deep-link wire format and must not change.
type Operator string

// Filter operators.
const (
	OpEquals     Operator = "equals"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpIn         Operator = "in"
	OpNotIn      Operator = "notIn"
	OpBetween    Operator = "between"
	OpIsNull     Operator = "isNull"
	OpIsNotNull  Operator = "isNotNull"
)

// Arity describes which value payload an operator expects.
type Arity int

const (
	// ArityNone operators carry no value (isNull, isNotNull).
	ArityNone Arity = iota
	// AritySingle operators read FilterCondition.Value.
	AritySingle
	// ArityMulti operators read FilterCondition.Values (in, notIn).
	ArityMulti
	// ArityRange operators read exactly two Values, lower then upper.
	ArityRange
)

// Arity returns the value arity of the operator. Unknown operators report
// AritySingle and are rejected later by IsValid checks.
func (op Operator) Arity() Arity {
	switch op {
	case OpIsNull, OpIsNotNull:
		return ArityNone
	case OpIn, OpNotIn:
		return ArityMulti
	case OpBetween:
		return ArityRange
	default:
		return AritySingle
	}
}

// IsValid reports whether op is one of the known operators.
func (op Operator) IsValid() bool {
	switch op {
	case OpEquals, OpContains, OpStartsWith, OpEndsWith,
		OpGt, OpGte, OpLt, OpLte,
		OpIn, OpNotIn, OpBetween, OpIsNull, OpIsNotNull:
		return true
	default:
		return false
	}
}

// SortDirection is the direction of a sort condition.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// IsValid reports whether d is asc or desc.
func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

// operatorsByType is the canonical type to operator table.
var operatorsByType = map[FieldType][]Operator{
	FieldTypeText:     {OpEquals, OpContains, OpStartsWith, OpEndsWith, OpIn, OpNotIn, OpIsNull, OpIsNotNull},
	FieldTypeNumber:   {OpEquals, OpGt, OpGte, OpLt, OpLte, OpBetween, OpIn, OpNotIn, OpIsNull, OpIsNotNull},
	FieldTypeDate:     {OpEquals, OpGt, OpGte, OpLt, OpLte, OpBetween, OpIsNull, OpIsNotNull},
	FieldTypeBoolean:  {OpEquals, OpIsNull, OpIsNotNull},
	FieldTypeEnum:     {OpEquals, OpIn, OpNotIn, OpIsNull, OpIsNotNull},
	FieldTypeArray:    {OpContains, OpIn, OpNotIn, OpIsNull, OpIsNotNull},
	FieldTypeRelation: {OpEquals, OpIn, OpNotIn, OpIsNull, OpIsNotNull},
}

// OperatorsForType returns the operators legal for t, in display order.
// The returned slice is a copy and may be modified by the caller.
func OperatorsForType(t FieldType) []Operator {
	ops, ok := operatorsByType[t]
	if !ok {
		return []Operator{OpEquals, OpIsNull, OpIsNotNull}
	}
	return slices.Clone(ops)
}

// TypeAllows reports whether op is legal for fields of type t.
func TypeAllows(t FieldType, op Operator) bool {
	return slices.Contains(operatorsByType[t], op)
}

// typeRule maps raw column type substrings to an abstract type.
type typeRule struct {
	fieldType FieldType
	patterns  []string
}

// typeRules are checked in order; the first match wins.
var typeRules = []typeRule{
	{FieldTypeText, []string{"text", "varchar", "char"}},
	{FieldTypeNumber, []string{"int", "serial", "numeric", "decimal", "float", "double", "real"}},
	{FieldTypeDate, []string{"timestamp", "date", "time"}},
	{FieldTypeBoolean, []string{"boolean", "bool"}},
	{FieldTypeEnum, []string{"enum"}},
	{FieldTypeArray, []string{"array", "[]"}},
}

// ClassifyType maps a raw column type such as "varchar(255)", "timestamp" or
// "numeric" onto an abstract FieldType. Unrecognised types are text, so an
// unknown column stays filterable by equality and substring.
func ClassifyType(raw string) FieldType {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, rule := range typeRules {
		for _, pattern := range rule.patterns {
			if strings.Contains(normalized, pattern) {
				return rule.fieldType
			}
		}
	}
	return FieldTypeText
}
