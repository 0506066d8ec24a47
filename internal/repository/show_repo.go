package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmylchreest/showbook/internal/catalog"
	"github.com/jmylchreest/showbook/internal/filters"
	"github.com/jmylchreest/showbook/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// showRepository implements ShowRepository using GORM.
type showRepository struct {
	db       *gorm.DB
	entity   *catalog.Entity
	maxLimit int
}

// NewShowRepository creates a new ShowRepository. Page sizes are capped at
// maxLimit; zero leaves them uncapped.
func NewShowRepository(db *gorm.DB, entity *catalog.Entity, maxLimit int) ShowRepository {
	return &showRepository{db: db, entity: entity, maxLimit: maxLimit}
}

// Create creates a new show and links its tags by name.
func (r *showRepository) Create(ctx context.Context, show *models.Show) error {
	if err := show.Validate(); err != nil {
		return fmt.Errorf("validating show: %w", err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags := make([]models.Tag, 0, len(show.Tags))
		for _, t := range show.Tags {
			if err := t.Validate(); err != nil {
				return fmt.Errorf("validating tag: %w", err)
			}
			if err := tx.Where(models.Tag{Name: t.Name}).FirstOrCreate(&t).Error; err != nil {
				return fmt.Errorf("resolving tag %q: %w", t.Name, err)
			}
			tags = append(tags, t)
		}

		show.Tags = nil
		if err := tx.Omit(clause.Associations).Create(show).Error; err != nil {
			return fmt.Errorf("creating show: %w", err)
		}
		if len(tags) > 0 {
			if err := tx.Model(show).Association("Tags").Append(&tags); err != nil {
				return fmt.Errorf("linking tags: %w", err)
			}
		}
		show.Tags = tags
		return nil
	})
}

// GetByID retrieves a show by ID with its tags and arrangements.
func (r *showRepository) GetByID(ctx context.Context, id models.ULID) (*models.Show, error) {
	var show models.Show
	err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Arrangements", func(db *gorm.DB) *gorm.DB { return db.Order("title ASC") }).
		First(&show, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting show: %w", err)
	}
	return &show, nil
}

// List returns one page of shows with their tags.
func (r *showRepository) List(ctx context.Context, state filters.FilterState, opts ShowListOptions) (*filters.FilteredResponse[models.Show], error) {
	q := ListQuery{
		Entity:   r.entity,
		State:    state,
		Preload:  []string{"Tags"},
		MaxLimit: r.maxLimit,
	}
	if opts.Featured != nil {
		q.Where = append(q.Where, clause.Eq{Column: clause.Column{Name: "featured"}, Value: *opts.Featured})
	}
	return List[models.Show](ctx, r.db, q)
}

// Count returns the total number of shows.
func (r *showRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Show{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting shows: %w", err)
	}
	return count, nil
}

// Ensure showRepository implements ShowRepository.
var _ ShowRepository = (*showRepository)(nil)
