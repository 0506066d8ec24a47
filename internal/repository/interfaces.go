// Package repository defines data access interfaces for showbook entities.
// All database access goes through these interfaces, enabling easy testing
// and database backend switching.
package repository

import (
	"context"

	"github.com/jmylchreest/showbook/internal/filters"
	"github.com/jmylchreest/showbook/internal/models"
)

// ShowListOptions narrows a show listing beyond its filter state.
type ShowListOptions struct {
	// Featured, when set, restricts the listing to shows with that flag.
	Featured *bool
}

// ShowRepository defines operations for show persistence.
type ShowRepository interface {
	// Create creates a new show. Tags are linked by name and created when
	// missing.
	Create(ctx context.Context, show *models.Show) error
	// GetByID retrieves a show with its tags and arrangements, or nil when
	// it does not exist.
	GetByID(ctx context.Context, id models.ULID) (*models.Show, error)
	// List returns one page of shows matching state.
	List(ctx context.Context, state filters.FilterState, opts ShowListOptions) (*filters.FilteredResponse[models.Show], error)
	// Count returns the total number of shows.
	Count(ctx context.Context) (int64, error)
}

// ArrangementRepository defines operations for arrangement persistence.
type ArrangementRepository interface {
	// Create creates a new arrangement.
	Create(ctx context.Context, arrangement *models.Arrangement) error
	// GetByID retrieves an arrangement with its show, or nil when it does
	// not exist.
	GetByID(ctx context.Context, id models.ULID) (*models.Arrangement, error)
	// List returns one page of arrangements matching state.
	List(ctx context.Context, state filters.FilterState) (*filters.FilteredResponse[models.Arrangement], error)
}

// TagRepository defines operations for tag persistence.
type TagRepository interface {
	// Create creates a new tag.
	Create(ctx context.Context, tag *models.Tag) error
	// GetByName retrieves a tag by name, or nil when it does not exist.
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	// GetAll retrieves all tags ordered by name.
	GetAll(ctx context.Context) ([]*models.Tag, error)
}
