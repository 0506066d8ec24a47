package filters

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gorm.io/gorm/clause"
)

// isoDateTime matches the leading YYYY-MM-DDTHH:MM:SS of an ISO-8601
// date-time string.
var isoDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)

// isoLayouts are tried in order when coercing date-time strings.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// normalizeValue coerces ISO-8601 date-time strings to UTC time.Time so that
// date filters travelling as JSON strings compare chronologically. Anything
// else, including strings that look like dates but fail to parse, is
// returned unchanged.
func normalizeValue(v any) any {
	s, ok := v.(string)
	if !ok || !isoDateTime.MatchString(s) {
		return v
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return v
}

func normalizeValues(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = normalizeValue(v)
	}
	return out
}

// BuildCondition compiles one operator application against col into a GORM
// expression. Comparison values are normalised first (see normalizeValue).
//
// in and notIn read values, falling back to a one-element list of value.
// between requires at least two values and compiles to
// col >= values[0] AND col <= values[1]. Single-value operators fail with
// ErrInvalidArity when value is nil. Unknown operators fail with
// ErrUnsupportedOperator.
func BuildCondition(col Column, op Operator, value any, values []any) (clause.Expression, error) {
	if op.IsValid() && op.Arity() == AritySingle && value == nil {
		return nil, arityError(col.Key, op, op.String()+" requires a value")
	}
	if col.IsRelation() {
		return buildRelationCondition(col, op, value, values)
	}

	column := clause.Column{Name: col.Name}

	switch op {
	case OpEquals:
		return clause.Eq{Column: column, Value: normalizeValue(value)}, nil
	case OpContains:
		return caseInsensitiveLike(column, "%"+likeText(value)+"%"), nil
	case OpStartsWith:
		return caseInsensitiveLike(column, likeText(value)+"%"), nil
	case OpEndsWith:
		return caseInsensitiveLike(column, "%"+likeText(value)), nil
	case OpGt:
		return clause.Gt{Column: column, Value: normalizeValue(value)}, nil
	case OpGte:
		return clause.Gte{Column: column, Value: normalizeValue(value)}, nil
	case OpLt:
		return clause.Lt{Column: column, Value: normalizeValue(value)}, nil
	case OpLte:
		return clause.Lte{Column: column, Value: normalizeValue(value)}, nil
	case OpIn, OpNotIn:
		set, err := setValues(col.Key, op, value, values)
		if err != nil {
			return nil, err
		}
		in := clause.IN{Column: column, Values: set}
		if op == OpNotIn {
			return clause.Not(in), nil
		}
		return in, nil
	case OpBetween:
		if len(values) < 2 {
			return nil, arityError(col.Key, op, fmt.Sprintf("between requires exactly 2 values, got %d", len(values)))
		}
		return clause.And(
			clause.Gte{Column: column, Value: normalizeValue(values[0])},
			clause.Lte{Column: column, Value: normalizeValue(values[1])},
		), nil
	case OpIsNull:
		return clause.Eq{Column: column, Value: nil}, nil
	case OpIsNotNull:
		return clause.Neq{Column: column, Value: nil}, nil
	default:
		return nil, &FieldError{Field: col.Key, Operator: op, Message: "operator is not recognised", Err: ErrUnsupportedOperator}
	}
}

// BuildWhereClause compiles conditions into a single AND-combined predicate.
// An empty list returns nil, which callers treat as "match everything".
func BuildWhereClause(t *Table, conditions []FilterCondition) (clause.Expression, error) {
	if len(conditions) == 0 {
		return nil, nil
	}

	exprs := make([]clause.Expression, 0, len(conditions))
	for _, cond := range conditions {
		col, err := t.Column(cond.Field)
		if err != nil {
			return nil, err
		}
		expr, err := BuildCondition(col, cond.Operator, cond.Value, cond.Values)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}

	return And(exprs...), nil
}

// BuildOrderByClause compiles sort conditions into ordering columns, keeping
// list order as priority order.
func BuildOrderByClause(t *Table, sorts []SortCondition) ([]clause.OrderByColumn, error) {
	order := make([]clause.OrderByColumn, 0, len(sorts))
	for _, s := range sorts {
		col, err := t.Column(s.Field)
		if err != nil {
			return nil, err
		}
		if col.IsRelation() {
			return nil, &FieldError{Field: s.Field, Message: "relations cannot be sorted", Err: ErrNotSortable}
		}
		if !s.Direction.IsValid() {
			return nil, &FieldError{Field: s.Field, Message: fmt.Sprintf("direction %q must be asc or desc", s.Direction), Err: ErrInvalidSortDirection}
		}
		order = append(order, clause.OrderByColumn{
			Column: clause.Column{Name: col.Name},
			Desc:   s.Direction == SortDesc,
		})
	}
	return order, nil
}

// BuildSearchCondition matches rows where any of fields contains term,
// case-insensitively. It returns nil when term is blank or no fields are
// configured.
func BuildSearchCondition(t *Table, term string, fields []string) (clause.Expression, error) {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return nil, nil
	}

	pattern := "%" + strings.ToLower(term) + "%"
	exprs := make([]clause.Expression, 0, len(fields))
	for _, field := range fields {
		col, err := t.Column(field)
		if err != nil {
			return nil, err
		}
		if col.IsRelation() {
			return nil, &FieldError{Field: field, Message: "relations cannot be searched", Err: ErrNotSearchable}
		}
		exprs = append(exprs, caseInsensitiveLike(clause.Column{Name: col.Name}, pattern))
	}

	// GORM joins a single-element OrConditions to its predecessor with OR,
	// which would break AND composition at the call site.
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return clause.Or(exprs...), nil
}

// And combines independently built predicate fragments under a single AND,
// skipping nil fragments. It returns nil when nothing remains.
func And(exprs ...clause.Expression) clause.Expression {
	kept := make([]clause.Expression, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			kept = append(kept, e)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return clause.And(kept...)
	}
}

// CalculatePagination derives pagination info for a result of total rows.
// Page and limit below 1 fall back to the defaults.
func CalculatePagination(total int64, page, limit int) PaginationInfo {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if total <= 0 {
		totalPages = 0
	}

	return PaginationInfo{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// BuildFilteredResponse assembles the list envelope for rows, echoing the
// state that produced them.
func BuildFilteredResponse[T any](rows []T, total int64, state FilterState) FilteredResponse[T] {
	if rows == nil {
		rows = []T{}
	}
	return FilteredResponse[T]{
		Data:           rows,
		Pagination:     CalculatePagination(total, state.EffectivePage(), state.EffectiveLimit()),
		AppliedFilters: state.Clone(),
	}
}

// caseInsensitiveLike renders LOWER(column) LIKE pattern. The pattern must
// already be lower-cased.
func caseInsensitiveLike(column clause.Column, pattern string) clause.Expression {
	return clause.Expr{SQL: "LOWER(?) LIKE ?", Vars: []any{column, pattern}}
}

func likeText(v any) string {
	return strings.ToLower(cast.ToString(v))
}

// setValues returns the payload of in/notIn.
func setValues(field string, op Operator, value any, values []any) ([]any, error) {
	if len(values) > 0 {
		return normalizeValues(values), nil
	}
	if value != nil {
		return []any{normalizeValue(value)}, nil
	}
	return nil, arityError(field, op, op.String()+" requires at least one value")
}

func arityError(field string, op Operator, msg string) error {
	return &FieldError{Field: field, Operator: op, Message: msg, Err: ErrInvalidArity}
}

// String returns the wire name of the operator.
func (op Operator) String() string {
	return string(op)
}
