package filters

import (
	"math"
	"slices"
)

// Pagination defaults applied when a FilterState leaves page or limit unset.
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// FilterField describes one filterable field of an entity.
type FilterField struct {
	Key         string     `json:"key" yaml:"key"`
	Label       string     `json:"label" yaml:"label"`
	Type        FieldType  `json:"type" yaml:"type"`
	Operators   []Operator `json:"operators" yaml:"operators"`
	EnumValues  []string   `json:"enumValues,omitempty" yaml:"enumValues,omitempty"`
	Placeholder string     `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	// Min and Max are advisory bounds for UIs; the query builder ignores them.
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Supports reports whether the field accepts op.
func (f FilterField) Supports(op Operator) bool {
	return slices.Contains(f.Operators, op)
}

// Validate checks the field invariants: a non-empty operator set drawn from
// the field type, and enum values for enum fields.
func (f FilterField) Validate() error {
	if f.Key == "" {
		return &FieldError{Message: "field key is required", Err: ErrInvalidSchema}
	}
	if len(f.Operators) == 0 {
		return &FieldError{Field: f.Key, Message: "field has no operators", Err: ErrInvalidSchema}
	}
	for _, op := range f.Operators {
		if !TypeAllows(f.Type, op) {
			return &FieldError{Field: f.Key, Operator: op, Message: "operator not legal for " + f.Type.String() + " fields", Err: ErrOperatorNotAllowed}
		}
	}
	if f.Type == FieldTypeEnum && len(f.EnumValues) == 0 {
		return &FieldError{Field: f.Key, Message: "enum field requires enumValues", Err: ErrEnumValuesRequired}
	}
	return nil
}

// FilterCondition is a single (field, operator, value|values) predicate.
type FilterCondition struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`
	// Values holds the payload of in, notIn and between ([lower, upper]).
	Values []any `json:"values,omitempty" yaml:"values,omitempty"`
}

// SortCondition orders results by one field.
type SortCondition struct {
	Field     string        `json:"field" yaml:"field"`
	Direction SortDirection `json:"direction" yaml:"direction"`
}

// FilterState is the full description of one view of a list: free-text
// search, AND-combined conditions, sort priority and pagination.
// A zero Page or Limit means "not specified".
type FilterState struct {
	Search     string            `json:"search,omitempty" yaml:"search,omitempty"`
	Conditions []FilterCondition `json:"conditions" yaml:"conditions"`
	Sort       []SortCondition   `json:"sort" yaml:"sort"`
	Page       int               `json:"page,omitempty" yaml:"page,omitempty"`
	Limit      int               `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// EffectivePage returns the 1-based page, defaulting to DefaultPage.
func (s FilterState) EffectivePage() int {
	if s.Page < 1 {
		return DefaultPage
	}
	return s.Page
}

// EffectiveLimit returns the page size, defaulting to DefaultLimit.
func (s FilterState) EffectiveLimit() int {
	if s.Limit < 1 {
		return DefaultLimit
	}
	return s.Limit
}

// maxPage is the highest page whose offset fits in an int.
func maxPage(limit int) int {
	return math.MaxInt / limit
}

// Offset returns the number of rows to skip for the effective page. Pages
// past maxPage are treated as maxPage so the offset never overflows.
func (s FilterState) Offset() int {
	limit := s.EffectiveLimit()
	return (min(s.EffectivePage(), maxPage(limit)) - 1) * limit
}

// Normalize returns a copy with page and limit made explicit and the limit
// clamped to maxLimit. A maxLimit below 1 leaves the limit unclamped. The
// page is capped so its offset fits in an int.
func (s FilterState) Normalize(maxLimit int) FilterState {
	out := s.Clone()
	out.Limit = s.EffectiveLimit()
	if maxLimit > 0 && out.Limit > maxLimit {
		out.Limit = maxLimit
	}
	out.Page = min(s.EffectivePage(), maxPage(out.Limit))
	return out
}

// Clone returns a deep copy of the state. Condition values are copied at the
// slice level; scalar literals are shared.
func (s FilterState) Clone() FilterState {
	out := s
	out.Conditions = make([]FilterCondition, len(s.Conditions))
	for i, c := range s.Conditions {
		c.Values = slices.Clone(c.Values)
		out.Conditions[i] = c
	}
	out.Sort = make([]SortCondition, len(s.Sort))
	copy(out.Sort, s.Sort)
	return out
}

// PaginationInfo is derived from a total row count; build it with
// CalculatePagination.
type PaginationInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// FilteredResponse is the list envelope returned to clients. It always echoes
// the state that produced it.
type FilteredResponse[T any] struct {
	Data           []T            `json:"data"`
	Pagination     PaginationInfo `json:"pagination"`
	AppliedFilters FilterState    `json:"appliedFilters"`
}
