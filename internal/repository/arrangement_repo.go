package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmylchreest/showbook/internal/catalog"
	"github.com/jmylchreest/showbook/internal/filters"
	"github.com/jmylchreest/showbook/internal/models"
	"gorm.io/gorm"
)

// arrangementRepository implements ArrangementRepository using GORM.
type arrangementRepository struct {
	db       *gorm.DB
	entity   *catalog.Entity
	maxLimit int
}

// NewArrangementRepository creates a new ArrangementRepository.
func NewArrangementRepository(db *gorm.DB, entity *catalog.Entity, maxLimit int) ArrangementRepository {
	return &arrangementRepository{db: db, entity: entity, maxLimit: maxLimit}
}

// Create creates a new arrangement.
func (r *arrangementRepository) Create(ctx context.Context, arrangement *models.Arrangement) error {
	if err := arrangement.Validate(); err != nil {
		return fmt.Errorf("validating arrangement: %w", err)
	}
	if err := r.db.WithContext(ctx).Omit("Show").Create(arrangement).Error; err != nil {
		return fmt.Errorf("creating arrangement: %w", err)
	}
	return nil
}

// GetByID retrieves an arrangement by ID.
func (r *arrangementRepository) GetByID(ctx context.Context, id models.ULID) (*models.Arrangement, error) {
	var arrangement models.Arrangement
	if err := r.db.WithContext(ctx).Preload("Show").First(&arrangement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting arrangement: %w", err)
	}
	return &arrangement, nil
}

// List returns one page of arrangements with their show.
func (r *arrangementRepository) List(ctx context.Context, state filters.FilterState) (*filters.FilteredResponse[models.Arrangement], error) {
	return List[models.Arrangement](ctx, r.db, ListQuery{
		Entity:   r.entity,
		State:    state,
		Preload:  []string{"Show"},
		MaxLimit: r.maxLimit,
	})
}

// Ensure arrangementRepository implements ArrangementRepository.
var _ ArrangementRepository = (*arrangementRepository)(nil)
