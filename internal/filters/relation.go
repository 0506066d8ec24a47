package filters

import (
	"gorm.io/gorm/clause"
)

// relationMatch restricts the local key to rows that have (or, when negate is
// set, do not have) a related row satisfying inner. A nil inner matches any
// related row.
type relationMatch struct {
	rel    *RelationSchema
	inner  clause.Expression
	negate bool
}

// Build renders
//
//	local_key [NOT] IN (SELECT join.local FROM join JOIN rel ON ... WHERE inner)
//
// for many-to-many relations and
//
//	local_key [NOT] IN (SELECT rel.fk FROM rel WHERE rel.fk IS NOT NULL AND inner)
//
// otherwise. A negated one relation also matches rows whose local key is
// NULL, so that "not in" means "has no matching related row" for every
// relation type.
func (m relationMatch) Build(b clause.Builder) {
	if m.negate && m.rel.Type == RelationOne {
		b.WriteByte('(')
		b.WriteQuoted(clause.Column{Name: m.rel.LocalKey})
		b.WriteString(" IS NULL OR ")
		m.buildIn(b)
		b.WriteByte(')')
		return
	}
	m.buildIn(b)
}

func (m relationMatch) buildIn(b clause.Builder) {
	b.WriteQuoted(clause.Column{Name: m.rel.LocalKey})
	if m.negate {
		b.WriteString(" NOT IN (SELECT ")
	} else {
		b.WriteString(" IN (SELECT ")
	}

	related := clause.Table{Name: m.rel.Table}
	if m.rel.JoinTable != "" {
		b.WriteQuoted(clause.Column{Table: m.rel.JoinTable, Name: m.rel.JoinLocalKey})
		b.WriteString(" FROM ")
		b.WriteQuoted(clause.Table{Name: m.rel.JoinTable})
		if m.inner != nil {
			b.WriteString(" INNER JOIN ")
			b.WriteQuoted(related)
			b.WriteString(" ON ")
			b.WriteQuoted(clause.Column{Table: m.rel.Table, Name: m.rel.ForeignKey})
			b.WriteString(" = ")
			b.WriteQuoted(clause.Column{Table: m.rel.JoinTable, Name: m.rel.JoinForeignKey})
			b.WriteString(" WHERE ")
			m.inner.Build(b)
		}
		b.WriteByte(')')
		return
	}

	// NOT IN over a set containing NULL matches nothing.
	fk := clause.Column{Table: m.rel.Table, Name: m.rel.ForeignKey}
	b.WriteQuoted(fk)
	b.WriteString(" FROM ")
	b.WriteQuoted(related)
	b.WriteString(" WHERE ")
	b.WriteQuoted(fk)
	b.WriteString(" IS NOT NULL")
	if m.inner != nil {
		b.WriteString(" AND ")
		m.inner.Build(b)
	}
	b.WriteByte(')')
}

// buildRelationCondition compiles a condition on a relation field against the
// relation's first match field.
func buildRelationCondition(col Column, op Operator, value any, values []any) (clause.Expression, error) {
	rel := col.Relation
	match := clause.Column{Table: rel.Table, Name: rel.Fields[0]}

	switch op {
	case OpEquals:
		return relationMatch{rel: rel, inner: clause.Eq{Column: match, Value: normalizeValue(value)}}, nil
	case OpIn, OpNotIn:
		set, err := setValues(col.Key, op, value, values)
		if err != nil {
			return nil, err
		}
		return relationMatch{rel: rel, inner: clause.IN{Column: match, Values: set}, negate: op == OpNotIn}, nil
	case OpIsNull, OpIsNotNull:
		if rel.Type == RelationOne {
			local := clause.Column{Name: rel.LocalKey}
			if op == OpIsNull {
				return clause.Eq{Column: local, Value: nil}, nil
			}
			return clause.Neq{Column: local, Value: nil}, nil
		}
		return relationMatch{rel: rel, negate: op == OpIsNull}, nil
	default:
		if !op.IsValid() {
			return nil, &FieldError{Field: col.Key, Operator: op, Message: "operator is not recognised", Err: ErrUnsupportedOperator}
		}
		return nil, &FieldError{Field: col.Key, Operator: op, Message: "operator not legal for relation fields", Err: ErrOperatorNotAllowed}
	}
}
