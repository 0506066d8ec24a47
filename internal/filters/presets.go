package filters

import (
	"slices"
	"sort"
)

// Entity names a list-like resource that owns presets, e.g. "shows".
type Entity string

// String returns the entity name.
func (e Entity) String() string {
	return string(e)
}

// FilterPreset is a named, reusable filter state.
type FilterPreset struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Filters     FilterState `json:"filters" yaml:"filters"`
}

func (p FilterPreset) clone() FilterPreset {
	p.Filters = p.Filters.Clone()
	return p
}

// PresetRegistry maps (entity, preset id) to immutable presets. The registry
// is populated once at construction and is safe for concurrent reads.
type PresetRegistry struct {
	presets map[Entity][]FilterPreset
}

// NewPresetRegistry copies presets into a new registry.
func NewPresetRegistry(presets map[Entity][]FilterPreset) *PresetRegistry {
	r := &PresetRegistry{presets: make(map[Entity][]FilterPreset, len(presets))}
	for entity, list := range presets {
		copied := make([]FilterPreset, len(list))
		for i, p := range list {
			copied[i] = p.clone()
		}
		r.presets[entity] = copied
	}
	return r
}

// Entities returns the entities that have presets, sorted by name.
func (r *PresetRegistry) Entities() []Entity {
	entities := make([]Entity, 0, len(r.presets))
	for e := range r.presets {
		entities = append(entities, e)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i] < entities[j] })
	return entities
}

// ForEntity returns copies of the entity's presets in declaration order, or an
// empty slice for unknown entities.
func (r *PresetRegistry) ForEntity(entity Entity) []FilterPreset {
	list := r.presets[entity]
	out := make([]FilterPreset, len(list))
	for i, p := range list {
		out[i] = p.clone()
	}
	return out
}

// Find returns a copy of the preset with the given id. A missing preset is
// not an error; callers treat it as a no-op.
func (r *PresetRegistry) Find(entity Entity, id string) (FilterPreset, bool) {
	idx := slices.IndexFunc(r.presets[entity], func(p FilterPreset) bool { return p.ID == id })
	if idx < 0 {
		return FilterPreset{}, false
	}
	return r.presets[entity][idx].clone(), true
}

// Apply replaces the search, conditions and sort of current with the
// preset's, keeps the current limit and resets the page to 1.
func Apply(preset FilterPreset, current FilterState) FilterState {
	applied := preset.Filters.Clone()
	applied.Page = DefaultPage
	applied.Limit = current.Limit
	return applied
}
