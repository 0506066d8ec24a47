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

// ArrangementHandler handles arrangement browsing API endpoints.
type ArrangementHandler struct {
	repo     repository.ArrangementRepository
	resolver stateResolver
	logger   *slog.Logger
}

// NewArrangementHandler creates a new arrangement handler.
func NewArrangementHandler(repo repository.ArrangementRepository, cat *catalog.Catalog, defaultLimit int) *ArrangementHandler {
	entity, _ := cat.Lookup(string(catalog.Arrangements))
	return &ArrangementHandler{
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
func (h *ArrangementHandler) WithLogger(logger *slog.Logger) *ArrangementHandler {
	h.logger = logger
	h.resolver.urls = filters.NewURLManager(logger)
	return h
}

// Register registers the arrangement routes with the API.
func (h *ArrangementHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listArrangements",
		Method:      "GET",
		Path:        "/api/v1/arrangements",
		Summary:     "List arrangements",
		Description: "Returns a filtered, sorted and paginated list of arrangements",
		Tags:        []string{"Arrangements"},
	}, h.ListArrangements)

	huma.Register(api, huma.Operation{
		OperationID: "getArrangement",
		Method:      "GET",
		Path:        "/api/v1/arrangements/{id}",
		Summary:     "Get arrangement by ID",
		Tags:        []string{"Arrangements"},
	}, h.GetArrangement)
}

// ListArrangementsInput is the input for listing arrangements.
type ListArrangementsInput struct {
	ListQueryInput
}

// ListArrangementsOutput is the output for listing arrangements.
type ListArrangementsOutput struct {
	Body ListResponse[ArrangementResponse]
}

// ListArrangements returns one page of arrangements.
func (h *ArrangementHandler) ListArrangements(ctx context.Context, input *ListArrangementsInput) (*ListArrangementsOutput, error) {
	state, err := h.resolver.resolve(input.ListQueryInput)
	if err != nil {
		return nil, err
	}

	resp, err := h.repo.List(ctx, state)
	if err != nil {
		return nil, listError(h.logger, catalog.Arrangements, err)
	}

	return &ListArrangementsOutput{Body: mapList(resp, ArrangementFromModel)}, nil
}

// GetArrangementInput is the input for getting an arrangement.
type GetArrangementInput struct {
	ID string `path:"id" doc:"Arrangement ID (ULID)"`
}

// GetArrangementOutput is the output for getting an arrangement.
type GetArrangementOutput struct {
	Body ArrangementResponse
}

// GetArrangement returns an arrangement by ID.
func (h *ArrangementHandler) GetArrangement(ctx context.Context, input *GetArrangementInput) (*GetArrangementOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid ID format", err)
	}

	arrangement, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, getError(h.logger, "arrangement", err)
	}
	if arrangement == nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("arrangement %s not found", input.ID))
	}

	return &GetArrangementOutput{Body: ArrangementFromModel(arrangement)}, nil
}
