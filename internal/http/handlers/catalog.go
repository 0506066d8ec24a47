package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jmylchreest/showbook/internal/catalog"
	"github.com/jmylchreest/showbook/internal/filters"
)

// CatalogHandler serves filter metadata: the fields each entity can be
// filtered on and its presets.
type CatalogHandler struct {
	catalog *catalog.Catalog
	urls    *filters.URLManager
	baseURL string
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler. Preset links are rooted
// at baseURL; an empty baseURL yields relative links.
func NewCatalogHandler(cat *catalog.Catalog, baseURL string) *CatalogHandler {
	return &CatalogHandler{
		catalog: cat,
		urls:    filters.NewURLManager(nil),
		baseURL: baseURL,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger for the handler.
func (h *CatalogHandler) WithLogger(logger *slog.Logger) *CatalogHandler {
	h.logger = logger
	h.urls = filters.NewURLManager(logger)
	return h
}

// Register registers the catalog routes with the API.
func (h *CatalogHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listCatalogEntities",
		Method:      "GET",
		Path:        "/api/v1/catalog",
		Summary:     "List filterable entities",
		Tags:        []string{"Catalog"},
	}, h.ListEntities)

	huma.Register(api, huma.Operation{
		OperationID: "getCatalogFields",
		Method:      "GET",
		Path:        "/api/v1/catalog/{entity}/fields",
		Summary:     "Get filter fields",
		Description: "Returns the fields a client may offer for filtering, with operators, enum values and bounds",
		Tags:        []string{"Catalog"},
	}, h.GetFields)

	huma.Register(api, huma.Operation{
		OperationID: "getCatalogPresets",
		Method:      "GET",
		Path:        "/api/v1/catalog/{entity}/presets",
		Summary:     "Get filter presets",
		Description: "Returns the entity's presets, each with a deep link reproducing its view",
		Tags:        []string{"Catalog"},
	}, h.GetPresets)
}

// EntitySummary describes one filterable entity.
type EntitySummary struct {
	Name         string                  `json:"name"`
	SearchFields []string                `json:"searchFields"`
	DefaultSort  []filters.SortCondition `json:"defaultSort"`
	ListPath     string                  `json:"listPath"`
}

// ListEntitiesOutput is the output for listing entities.
type ListEntitiesOutput struct {
	Body struct {
		Entities []EntitySummary `json:"entities"`
	}
}

// ListEntities returns every filterable entity.
func (h *CatalogHandler) ListEntities(ctx context.Context, input *struct{}) (*ListEntitiesOutput, error) {
	out := &ListEntitiesOutput{}
	for _, e := range h.catalog.Entities() {
		out.Body.Entities = append(out.Body.Entities, EntitySummary{
			Name:         e.Name.String(),
			SearchFields: e.SearchFields,
			DefaultSort:  e.DefaultSort,
			ListPath:     catalog.ListPath(e.Name),
		})
	}
	return out, nil
}

// EntityInput identifies an entity by name.
type EntityInput struct {
	Entity string `path:"entity" doc:"Entity name" example:"shows"`
}

func (h *CatalogHandler) lookup(name string) (*catalog.Entity, error) {
	entity, ok := h.catalog.Lookup(name)
	if !ok {
		h.logger.Debug("unknown catalog entity requested", slog.String("entity", name))
		return nil, huma.Error404NotFound(fmt.Sprintf("unknown entity %q", name))
	}
	return entity, nil
}

// GetFieldsOutput is the output for getting filter fields.
type GetFieldsOutput struct {
	Body struct {
		Entity string                `json:"entity"`
		Fields []filters.FilterField `json:"fields"`
	}
}

// GetFields returns the advertised filter fields of an entity.
func (h *CatalogHandler) GetFields(ctx context.Context, input *EntityInput) (*GetFieldsOutput, error) {
	entity, err := h.lookup(input.Entity)
	if err != nil {
		return nil, err
	}

	out := &GetFieldsOutput{}
	out.Body.Entity = entity.Name.String()
	out.Body.Fields = entity.Fields
	return out, nil
}

// GetPresetsOutput is the output for getting presets.
type GetPresetsOutput struct {
	Body struct {
		Entity  string               `json:"entity"`
		Presets []catalog.PresetLink `json:"presets"`
	}
}

// GetPresets returns the presets of an entity with their deep links.
func (h *CatalogHandler) GetPresets(ctx context.Context, input *EntityInput) (*GetPresetsOutput, error) {
	entity, err := h.lookup(input.Entity)
	if err != nil {
		return nil, err
	}

	out := &GetPresetsOutput{}
	out.Body.Entity = entity.Name.String()
	out.Body.Presets = h.catalog.PresetLinks(h.urls, h.baseURL, entity.Name)
	return out, nil
}
