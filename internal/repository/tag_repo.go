package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmylchreest/showbook/internal/models"
	"gorm.io/gorm"
)

// tagRepository implements TagRepository using GORM.
type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// Create creates a new tag.
func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("validating tag: %w", err)
	}
	return r.db.WithContext(ctx).Create(tag).Error
}

// GetByName retrieves a tag by name.
func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// GetAll retrieves all tags ordered by name.
func (r *tagRepository) GetAll(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Ensure tagRepository implements TagRepository.
var _ TagRepository = (*tagRepository)(nil)
