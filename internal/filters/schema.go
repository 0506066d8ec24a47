package filters

import (
	"errors"
	"fmt"

	"gorm.io/gorm/schema"
)

// RelationType is the cardinality of a relation.
type RelationType string

// Relation cardinalities.
const (
	RelationOne  RelationType = "one"
	RelationMany RelationType = "many"
)

// SchemaField is the raw description of one column.
type SchemaField struct {
	// Key is the field identifier used in conditions, sorts and URLs.
	Key string
	// Type is the raw database type, e.g. "varchar(255)" or "timestamp".
	Type string
	// Column overrides the database column name. Defaults to the GORM
	// naming strategy applied to Key.
	Column     string
	Nullable   bool
	EnumValues []string

	// Min and Max are explicit advisory bounds for number fields.
	Min *float64
	Max *float64

	Label       string
	Placeholder string
	Description string
}

// RelationSchema describes a related table that can be filtered on by one of
// its columns.
type RelationSchema struct {
	Key   string
	Type  RelationType
	Table string
	// Fields lists the related columns of interest; the first one is matched
	// by relation conditions.
	Fields []string

	// LocalKey is the column on this table. For one relations it holds the
	// foreign key (default "<key>_id"); for many relations it is the primary
	// key (default "id").
	LocalKey string
	// ForeignKey is the column on the related table that LocalKey matches
	// (default "id"). A many relation without a join table points back at
	// LocalKey through ForeignKey, which must then be set explicitly.
	ForeignKey string

	// JoinTable, JoinLocalKey and JoinForeignKey describe the link table of
	// a many-to-many relation.
	JoinTable      string
	JoinLocalKey   string
	JoinForeignKey string

	Label       string
	Placeholder string
	Description string
}

// TableSchema is the filterable surface of one table. Fields and relations are
// ordered; generated filter fields keep that order.
type TableSchema struct {
	Name      string
	Fields    []SchemaField
	Relations []RelationSchema
}

// Validate reports schema violations: missing or duplicate keys, enum fields
// without values, and relations that cannot be compiled.
func (s TableSchema) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(s.Fields)+len(s.Relations))

	for _, f := range s.Fields {
		if f.Key == "" {
			errs = append(errs, &FieldError{Message: "schema field without key", Err: ErrInvalidSchema})
			continue
		}
		if seen[f.Key] {
			errs = append(errs, &FieldError{Field: f.Key, Message: "duplicate key", Err: ErrInvalidSchema})
		}
		seen[f.Key] = true
		if ClassifyType(f.Type) == FieldTypeEnum && len(f.EnumValues) == 0 {
			errs = append(errs, &FieldError{Field: f.Key, Message: "enum field requires enumValues", Err: ErrEnumValuesRequired})
		}
	}

	for _, r := range s.Relations {
		if r.Key == "" {
			errs = append(errs, &FieldError{Message: "relation without key", Err: ErrInvalidSchema})
			continue
		}
		if seen[r.Key] {
			errs = append(errs, &FieldError{Field: r.Key, Message: "duplicate key", Err: ErrInvalidSchema})
		}
		seen[r.Key] = true
		if r.Table == "" || len(r.Fields) == 0 {
			errs = append(errs, &FieldError{Field: r.Key, Message: "relation requires a table and at least one field", Err: ErrInvalidSchema})
		}
		switch r.Type {
		case RelationOne:
		case RelationMany:
			if r.JoinTable == "" && r.ForeignKey == "" {
				errs = append(errs, &FieldError{Field: r.Key, Message: "many relation requires a join table or a foreign key", Err: ErrInvalidSchema})
			}
			if r.JoinTable != "" && (r.JoinLocalKey == "" || r.JoinForeignKey == "") {
				errs = append(errs, &FieldError{Field: r.Key, Message: "join table requires both join keys", Err: ErrInvalidSchema})
			}
		default:
			errs = append(errs, &FieldError{Field: r.Key, Message: fmt.Sprintf("unknown relation type %q", r.Type), Err: ErrInvalidSchema})
		}
	}

	return errors.Join(errs...)
}

// Column is the resolved descriptor of one filterable field: a scalar column
// or, when Relation is set, a relation matched through a subquery.
type Column struct {
	Key  string
	Name string
	Type FieldType

	Relation *RelationSchema
}

// IsRelation reports whether the column is a relation.
func (c Column) IsRelation() bool {
	return c.Relation != nil
}

// Table is a validated, indexed TableSchema. It is the only way the query
// builder resolves field names and is safe for concurrent use.
type Table struct {
	name    string
	schema  TableSchema
	columns map[string]Column
}

// columnNamer derives column names from keys the same way GORM does for
// struct fields.
var columnNamer = schema.NamingStrategy{}

// NewTable validates s and indexes its fields and relations.
func NewTable(s TableSchema) (*Table, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("table %s: %w", s.Name, err)
	}

	t := &Table{
		name:    s.Name,
		schema:  s,
		columns: make(map[string]Column, len(s.Fields)+len(s.Relations)),
	}

	for _, f := range s.Fields {
		name := f.Column
		if name == "" {
			name = columnNamer.ColumnName("", f.Key)
		}
		t.columns[f.Key] = Column{Key: f.Key, Name: name, Type: ClassifyType(f.Type)}
	}

	for i := range s.Relations {
		rel := normalizeRelation(s.Relations[i])
		t.columns[rel.Key] = Column{Key: rel.Key, Name: rel.LocalKey, Type: FieldTypeRelation, Relation: &rel}
	}

	return t, nil
}

// MustNewTable is like NewTable but panics on an invalid schema. Intended for
// package-level schema declarations.
func MustNewTable(s TableSchema) *Table {
	t, err := NewTable(s)
	if err != nil {
		panic(err)
	}
	return t
}

// normalizeRelation fills relation key defaults.
func normalizeRelation(r RelationSchema) RelationSchema {
	if r.ForeignKey == "" {
		r.ForeignKey = "id"
	}
	if r.LocalKey == "" {
		if r.Type == RelationOne {
			r.LocalKey = columnNamer.ColumnName("", r.Key) + "_id"
		} else {
			r.LocalKey = "id"
		}
	}
	r.Fields = append([]string(nil), r.Fields...)
	return r
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Schema returns the schema the table was built from.
func (t *Table) Schema() TableSchema {
	return t.schema
}

// Column resolves a field key. Unknown keys fail with ErrColumnNotFound.
func (t *Table) Column(key string) (Column, error) {
	col, ok := t.columns[key]
	if !ok {
		return Column{}, &FieldError{
			Field:   key,
			Message: fmt.Sprintf("not found in table %s", t.name),
			Err:     ErrColumnNotFound,
		}
	}
	return col, nil
}
