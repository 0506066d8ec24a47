package catalog

import (
	"github.com/jmylchreest/showbook/internal/filters"
)

func preset(id, name, description string, conditions []filters.FilterCondition, sort ...filters.SortCondition) filters.FilterPreset {
	if conditions == nil {
		conditions = []filters.FilterCondition{}
	}
	return filters.FilterPreset{
		ID:          id,
		Name:        name,
		Description: description,
		Filters: filters.FilterState{
			Conditions: conditions,
			Sort:       sort,
		},
	}
}

// DefaultPresets returns the built-in presets per entity.
func DefaultPresets() map[filters.Entity][]filters.FilterPreset {
	return map[filters.Entity][]filters.FilterPreset{
		Shows: {
			preset("featured", "Featured", "Editor's picks",
				[]filters.FilterCondition{{Field: "featured", Operator: filters.OpEquals, Value: true}},
				filters.SortCondition{Field: "createdAt", Direction: filters.SortDesc}),
			preset("recent", "Recently Added", "Newest shows first", nil,
				filters.SortCondition{Field: "createdAt", Direction: filters.SortDesc}),
			preset("beginner-friendly", "Beginner Friendly", "Shows for developing programs",
				[]filters.FilterCondition{{Field: "difficulty", Operator: filters.OpEquals, Value: "Beginner"}},
				filters.SortCondition{Field: "title", Direction: filters.SortAsc}),
		},
		Arrangements: {
			preset("orchestral", "Orchestral Arrangements", "Full orchestral arrangements",
				[]filters.FilterCondition{{Field: "type", Operator: filters.OpContains, Value: "orchestral"}},
				filters.SortCondition{Field: "title", Direction: filters.SortAsc}),
			preset("marching-band", "Marching Band", "Marching band arrangements",
				[]filters.FilterCondition{{Field: "type", Operator: filters.OpContains, Value: "marching"}},
				filters.SortCondition{Field: "title", Direction: filters.SortAsc}),
			preset("affordable-arrangements", "Budget Arrangements", "Arrangements under $100",
				[]filters.FilterCondition{{Field: "price", Operator: filters.OpLte, Value: 100.0}},
				filters.SortCondition{Field: "price", Direction: filters.SortAsc}),
			preset("premium", "Premium Arrangements", "High-end arrangements over $200",
				[]filters.FilterCondition{{Field: "price", Operator: filters.OpGte, Value: 200.0}},
				filters.SortCondition{Field: "price", Direction: filters.SortDesc}),
		},
	}
}
