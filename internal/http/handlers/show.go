package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jmylchreest/showbook/internal/catalog"
	"github.com/jmylchreest/showbook/internal/filters"
	"github.com/jmylchreest/showbook/internal/models"
	"github.com/jmylchreest/showbook/internal/repository"
)

// ShowHandler handles show browsing API endpoints.
type ShowHandler struct {
	repo     repository.ShowRepository
	resolver stateResolver
	logger   *slog.Logger
}

// NewShowHandler creates a new show handler. defaultLimit applies when a
// request names no page size.
func NewShowHandler(repo repository.ShowRepository, cat *catalog.Catalog, defaultLimit int) *ShowHandler {
	entity, _ := cat.Lookup(string(catalog.Shows))
	return &ShowHandler{
		repo: repo,
		resolver: stateResolver{
			entity:       entity,
			presets:      cat.Presets(),
			urls:         filters.NewURLManager(nil),
			defaultLimit: defaultLimit,
		},
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the handler.
func (h *ShowHandler) WithLogger(logger *slog.Logger) *ShowHandler {
	h.logger = logger
	h.resolver.urls = filters.NewURLManager(logger)
	return h
}

// Register registers the show routes with the API.
func (h *ShowHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listShows",
		Method:      "GET",
		Path:        "/api/v1/shows",
		Summary:     "List shows",
		Description: "Returns a filtered, sorted and paginated list of shows",
		Tags:        []string{"Shows"},
	}, h.ListShows)

	huma.Register(api, huma.Operation{
		OperationID: "getShow",
		Method:      "GET",
		Path:        "/api/v1/shows/{id}",
		Summary:     "Get show by ID",
		Description: "Returns a show with its tags and arrangements",
		Tags:        []string{"Shows"},
	}, h.GetShow)
}

// ListShowsInput is the input for listing shows.
type ListShowsInput struct {
	ListQueryInput
	Featured string `query:"featured" enum:"true,false" doc:"Restrict to featured (true) or non-featured (false) shows"`
}

// ListShowsOutput is the output for listing shows.
type ListShowsOutput struct {
	Body ListResponse[ShowResponse]
}

// ListShows returns one page of shows.
func (h *ShowHandler) ListShows(ctx context.Context, input *ListShowsInput) (*ListShowsOutput, error) {
	state, err := h.resolver.resolve(input.ListQueryInput)
	if err != nil {
		return nil, err
	}

	var opts repository.ShowListOptions
	if input.Featured != "" {
		featured := input.Featured == "true"
		opts.Featured = &featured
	}

	resp, err := h.repo.List(ctx, state, opts)
	if err != nil {
		return nil, listError(h.logger, catalog.Shows, err)
	}

	return &ListShowsOutput{Body: mapList(resp, ShowFromModel)}, nil
}

// GetShowInput is the input for getting a show.
type GetShowInput struct {
	ID string `path:"id" doc:"Show ID (ULID)"`
}

// GetShowOutput is the output for getting a show.
type GetShowOutput struct {
	Body ShowResponse
}

// GetShow returns a show by ID.
func (h *ShowHandler) GetShow(ctx context.Context, input *GetShowInput) (*GetShowOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	show, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, getError(h.logger, "show", err)
	}
	if show == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("show %s not found", input.ID))
	}

	return &GetShowOutput{Body: ShowFromModel(show)}, nil
}
