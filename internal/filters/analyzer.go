package filters

import (
	"slices"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Heuristic bounds applied when InferBounds is set and the schema declares
// none.
const (
	defaultNumberMin = 0
	priceMax         = 10000
	yearMin          = 1900
	yearHorizon      = 10
)

// Analyzer derives FilterField descriptors from a TableSchema.
type Analyzer struct {
	// Now supplies the current time for year bounds. Defaults to time.Now.
	Now func() time.Time

	// InferBounds enables name-based bounds for number fields that declare
	// no explicit Min/Max: every number gets min 0, keys containing "price"
	// get max 10000 and keys containing "year" get 1900..now+10.
	InferBounds bool
}

// DefaultAnalyzer is used by GenerateFilterFields.
var DefaultAnalyzer = &Analyzer{InferBounds: true}

// GenerateFilterFields derives filter fields for schema with the default
// analyzer, skipping the keys in exclude.
func GenerateFilterFields(s TableSchema, exclude ...string) []FilterField {
	return DefaultAnalyzer.Generate(s, exclude...)
}

// Generate derives one FilterField per schema field and relation not listed
// in exclude. It never fails: unknown column types are treated as text.
func (a *Analyzer) Generate(s TableSchema, exclude ...string) []FilterField {
	fields := make([]FilterField, 0, len(s.Fields)+len(s.Relations))

	for _, sf := range s.Fields {
		if slices.Contains(exclude, sf.Key) {
			continue
		}

		fieldType := ClassifyType(sf.Type)
		field := FilterField{
			Key:         sf.Key,
			Label:       labelOr(sf.Label, sf.Key),
			Type:        fieldType,
			Operators:   OperatorsForType(fieldType),
			Placeholder: sf.Placeholder,
			Description: sf.Description,
		}
		if field.Placeholder == "" {
			field.Placeholder = defaultPlaceholder(field.Label)
		}
		if fieldType == FieldTypeEnum && len(sf.EnumValues) > 0 {
			field.EnumValues = slices.Clone(sf.EnumValues)
		}
		if fieldType == FieldTypeNumber {
			field.Min, field.Max = a.bounds(sf)
		}

		fields = append(fields, field)
	}

	for _, rel := range s.Relations {
		if slices.Contains(exclude, rel.Key) {
			continue
		}
		field := FilterField{
			Key:         rel.Key,
			Label:       labelOr(rel.Label, rel.Key),
			Type:        FieldTypeRelation,
			Operators:   OperatorsForType(FieldTypeRelation),
			Placeholder: rel.Placeholder,
			Description: rel.Description,
		}
		if field.Placeholder == "" {
			field.Placeholder = defaultPlaceholder(field.Label)
		}
		fields = append(fields, field)
	}

	return fields
}

// bounds returns the advisory bounds for a number field.
func (a *Analyzer) bounds(sf SchemaField) (*float64, *float64) {
	if sf.Min != nil || sf.Max != nil || !a.InferBounds {
		return cloneFloat(sf.Min), cloneFloat(sf.Max)
	}

	key := strings.ToLower(sf.Key)
	switch {
	case strings.Contains(key, "price"):
		return floatPtr(defaultNumberMin), floatPtr(priceMax)
	case strings.Contains(key, "year"):
		return floatPtr(yearMin), floatPtr(float64(a.now().Year() + yearHorizon))
	default:
		return floatPtr(defaultNumberMin), nil
	}
}

func (a *Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// FormatFieldLabel turns a field key into a display label by splitting
// camelCase and underscores and title-casing the words:
// "displayOrder" → "Display Order", "created_at" → "Created At",
// "showID" → "Show ID".
func FormatFieldLabel(key string) string {
	// Casers carry state and are not shared between goroutines.
	caser := cases.Title(language.English, cases.NoLower)
	words := splitWords(key)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// splitWords breaks a key on underscores, hyphens, spaces and case changes.
// Runs of capitals stay together as one word.
func splitWords(key string) []string {
	runes := []rune(key)
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(current) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()

	return words
}

func labelOr(label, key string) string {
	if label != "" {
		return label
	}
	return FormatFieldLabel(key)
}

func defaultPlaceholder(label string) string {
	return "Filter by " + strings.ToLower(label) + "..."
}

func floatPtr(v float64) *float64 {
	return &v
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return floatPtr(*v)
}
