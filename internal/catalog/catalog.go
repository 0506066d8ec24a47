package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/jmylchreest/showbook/internal/filters"
	"github.com/jmylchreest/showbook/internal/urlutil"
)

// Entity is the query surface of one list endpoint.
type Entity struct {
	Name filters.Entity

	// Table resolves field keys to columns for the query builder.
	Table *filters.Table

	// Fields are advertised to clients for building filter UIs.
	Fields []filters.FilterField

	// QueryFields is the vocabulary accepted in conditions and sorts. It is
	// a superset of Fields: hidden fields such as createdAt stay usable by
	// presets and deep links.
	QueryFields []filters.FilterField

	// SearchFields are matched by the free-text search term.
	SearchFields []string

	// DefaultSort applies when a request specifies no sort.
	DefaultSort []filters.SortCondition
}

// Validate checks state against the entity's query vocabulary.
func (e *Entity) Validate(state filters.FilterState) error {
	return filters.ValidateState(e.QueryFields, state)
}

// Field returns the query field with key.
func (e *Entity) Field(key string) (filters.FilterField, bool) {
	idx := slices.IndexFunc(e.QueryFields, func(f filters.FilterField) bool { return f.Key == key })
	if idx < 0 {
		return filters.FilterField{}, false
	}
	return e.QueryFields[idx], true
}

// definition is the static declaration of an entity.
type definition struct {
	name         filters.Entity
	schema       filters.TableSchema
	hidden       []string
	internal     []string
	searchFields []string
	defaultSort  []filters.SortCondition
}

func definitions() []definition {
	return []definition{
		{
			name:         Shows,
			schema:       ShowsSchema(),
			hidden:       []string{"description", "createdAt", "featured"},
			internal:     []string{"id"},
			searchFields: []string{"title", "description"},
			defaultSort:  []filters.SortCondition{{Field: "createdAt", Direction: filters.SortDesc}},
		},
		{
			name:         Arrangements,
			schema:       ArrangementsSchema(),
			hidden:       []string{"createdAt"},
			internal:     []string{"id", "showId"},
			searchFields: []string{"title"},
			defaultSort:  []filters.SortCondition{{Field: "title", Direction: filters.SortAsc}},
		},
	}
}

// Catalog is the immutable set of entities and their presets.
type Catalog struct {
	entities map[filters.Entity]*Entity
	presets  *filters.PresetRegistry
}

// New builds the catalog with analyzer. Every preset is validated against its
// entity so a broken preset fails at startup rather than per request.
func New(analyzer *filters.Analyzer) (*Catalog, error) {
	if analyzer == nil {
		analyzer = filters.DefaultAnalyzer
	}

	c := &Catalog{
		entities: make(map[filters.Entity]*Entity),
		presets:  filters.NewPresetRegistry(DefaultPresets()),
	}

	for _, def := range definitions() {
		table, err := filters.NewTable(def.schema)
		if err != nil {
			return nil, fmt.Errorf("building %s table: %w", def.name, err)
		}

		c.entities[def.name] = &Entity{
			Name:         def.name,
			Table:        table,
			Fields:       analyzer.Generate(table.Schema(), slices.Concat(def.internal, def.hidden)...),
			QueryFields:  analyzer.Generate(table.Schema(), def.internal...),
			SearchFields: def.searchFields,
			DefaultSort:  def.defaultSort,
		}
	}

	var errs []error
	for _, name := range c.presets.Entities() {
		entity, ok := c.entities[name]
		if !ok {
			errs = append(errs, fmt.Errorf("presets declared for unknown entity %q", name))
			continue
		}
		for _, p := range c.presets.ForEntity(name) {
			if err := entity.Validate(p.Filters); err != nil {
				errs = append(errs, fmt.Errorf("preset %s/%s: %w", name, p.ID, err))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(analyzer *filters.Analyzer) *Catalog {
	c, err := New(analyzer)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the entity with name.
func (c *Catalog) Lookup(name string) (*Entity, bool) {
	e, ok := c.entities[filters.Entity(name)]
	return e, ok
}

// Entities returns all entities sorted by name.
func (c *Catalog) Entities() []*Entity {
	out := make([]*Entity, 0, len(c.entities))
	for _, e := range c.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Presets returns the preset registry.
func (c *Catalog) Presets() *filters.PresetRegistry {
	return c.presets
}

// ListPath is the API path listing entity.
func ListPath(entity filters.Entity) string {
	return "/api/v1/" + entity.String()
}

// PresetLink is a preset with a deep link reproducing its view.
type PresetLink struct {
	filters.FilterPreset `yaml:",inline"`
	URL string `json:"url" yaml:"url"`
}

// PresetLinks returns entity's presets with deep links rooted at baseURL.
// An empty baseURL yields relative links.
func (c *Catalog) PresetLinks(urls *filters.URLManager, baseURL string, entity filters.Entity) []PresetLink {
	presets := c.presets.ForEntity(entity)
	base := urlutil.JoinPath(urlutil.NormalizeBaseURL(baseURL), ListPath(entity))
	links := make([]PresetLink, len(presets))
	for i, p := range presets {
		links[i] = PresetLink{FilterPreset: p, URL: urls.URL(base, p.Filters)}
	}
	return links
}
