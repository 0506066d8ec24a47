package handlers

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jmylchreest/showbook/internal/catalog"
	"github.com/jmylchreest/showbook/internal/filters"
)

// ListQueryInput carries the deep-link wire format. Page and limit are kept
// as strings so malformed values are ignored rather than rejected.
type ListQueryInput struct {
	Search  string `query:"search" doc:"Free-text search across the entity's search fields"`
	Page    string `query:"page" doc:"1-based page number" example:"1"`
	Limit   string `query:"limit" doc:"Page size, capped by the server maximum" example:"20"`
	Filters string `query:"filters" doc:"JSON array of {field, operator, value, values} conditions, AND-combined"`
	Sort    string `query:"sort" doc:"JSON array of {field, direction} in priority order"`
	Preset  string `query:"preset" doc:"Preset ID; replaces search, filters and sort and resets the page"`
}

func (in ListQueryInput) values() url.Values {
	v := url.Values{}
	for key, val := range map[string]string{
		filters.ParamSearch:  in.Search,
		filters.ParamPage:    in.Page,
		filters.ParamLimit:   in.Limit,
		filters.ParamFilters: in.Filters,
		filters.ParamSort:    in.Sort,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v
}

// stateResolver turns list query inputs into validated filter states for
// one entity.
type stateResolver struct {
	entity       *catalog.Entity
	presets      *filters.PresetRegistry
	urls         *filters.URLManager
	defaultLimit int
}

// resolve decodes in, applies the named preset and validates the result
// against the entity's fields.
func (r stateResolver) resolve(in ListQueryInput) (filters.FilterState, error) {
	state := r.urls.FromURLParams(in.values())

	if in.Preset != "" {
		preset, ok := r.presets.Find(r.entity.Name, in.Preset)
		if !ok {
			return filters.FilterState{}, huma.Error400BadRequest(fmt.Sprintf("unknown preset %q for %s", in.Preset, r.entity.Name))
		}
		state = filters.Apply(preset, state)
	}

	if state.Limit < 1 && r.defaultLimit > 0 {
		state.Limit = r.defaultLimit
	}

	if err := r.entity.Validate(state); err != nil {
		return filters.FilterState{}, badQuery(err)
	}
	return state, nil
}

// badQuery reports each violation in err as a separate error detail.
func badQuery(err error) error {
	var details []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		details = joined.Unwrap()
	} else {
		details = []error{err}
	}
	return huma.Error400BadRequest("invalid list query", details...)
}

// listError maps a repository error to a response: contract violations are
// the client's fault, anything else is logged and hidden.
func listError(logger *slog.Logger, entity filters.Entity, err error) error {
	if filters.IsValidationError(err) {
		return badQuery(err)
	}
	logger.Error("list query failed",
		slog.String("entity", entity.String()),
		slog.String("error", err.Error()),
	)
	return huma.Error500InternalServerError(fmt.Sprintf("failed to list %s", entity))
}

// getError maps a repository lookup error to a 500.
func getError(logger *slog.Logger, what string, err error) error {
	logger.Error("lookup failed", slog.String("entity", what), slog.String("error", err.Error()))
	return huma.Error500InternalServerError(fmt.Sprintf("failed to fetch %s", what))
}
