// Package handlers provides HTTP API handlers for showbook.
package handlers

import (
	"time"

	"github.com/jmylchreest/showbook/internal/filters"
	"github.com/jmylchreest/showbook/internal/models"
)

// ListResponse is the filtered list envelope with API representations.
type ListResponse[T any] struct {
	Data           []T                    `json:"data"`
	Pagination     filters.PaginationInfo `json:"pagination"`
	AppliedFilters filters.FilterState    `json:"appliedFilters"`
}

func mapList[M, T any](resp *filters.FilteredResponse[M], convert func(*M) T) ListResponse[T] {
	data := make([]T, len(resp.Data))
	for i := range resp.Data {
		data[i] = convert(&resp.Data[i])
	}
	return ListResponse[T]{
		Data:           data,
		Pagination:     resp.Pagination,
		AppliedFilters: resp.AppliedFilters,
	}
}

// ShowSummary is the compact show representation nested in arrangements.
type ShowSummary struct {
	ID         models.ULID       `json:"id"`
	Title      string            `json:"title"`
	Year       int               `json:"year"`
	Difficulty models.Difficulty `json:"difficulty"`
}

// ShowResponse represents a show in API responses.
type ShowResponse struct {
	ID           models.ULID           `json:"id"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	Title        string                `json:"title"`
	Year         int                   `json:"year"`
	Difficulty   models.Difficulty     `json:"difficulty"`
	Featured     bool                  `json:"featured"`
	DisplayOrder int                   `json:"displayOrder"`
	Duration     string                `json:"duration,omitempty"`
	Price        float64               `json:"price"`
	Description  *string               `json:"description,omitempty"`
	Tags         []string              `json:"tags"`
	Arrangements []ArrangementResponse `json:"arrangements,omitempty"`
}

// ShowFromModel converts a model to a response.
func ShowFromModel(s *models.Show) ShowResponse {
	resp := ShowResponse{
		ID:           s.ID,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Title:        s.Title,
		Year:         s.Year,
		Difficulty:   s.Difficulty,
		Featured:     s.Featured,
		DisplayOrder: s.DisplayOrder,
		Duration:     s.Duration,
		Price:        s.Price,
		Description:  s.Description,
		Tags:         make([]string, len(s.Tags)),
	}
	for i, t := range s.Tags {
		resp.Tags[i] = t.Name
	}
	for i := range s.Arrangements {
		resp.Arrangements = append(resp.Arrangements, ArrangementFromModel(&s.Arrangements[i]))
	}
	return resp
}

// ArrangementResponse represents an arrangement in API responses.
type ArrangementResponse struct {
	ID        models.ULID  `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	Title     string       `json:"title"`
	Type      *string      `json:"type,omitempty"`
	Price     float64      `json:"price"`
	ShowID    *models.ULID `json:"showId,omitempty"`
	Show      *ShowSummary `json:"show,omitempty"`
}

// ArrangementFromModel converts a model to a response.
func ArrangementFromModel(a *models.Arrangement) ArrangementResponse {
	resp := ArrangementResponse{
		ID:        a.ID,
		CreatedAt: a.CreatedAt,
		Title:     a.Title,
		Type:      a.Type,
		Price:     a.Price,
		ShowID:    a.ShowID,
	}
	if a.Show != nil {
		resp.Show = &ShowSummary{
			ID:         a.Show.ID,
			Title:      a.Show.Title,
			Year:       a.Show.Year,
			Difficulty: a.Show.Difficulty,
		}
	}
	return resp
}
