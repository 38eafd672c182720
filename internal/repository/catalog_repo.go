package repository

import (
	"context"
	"errors"

	"foodgram/internal/domain/catalog"

	"gorm.io/gorm"
)

// IngredientRepository reads the ingredient reference book. Rows are
// created by cmd/seed, not through the API.
type IngredientRepository interface {
	List(ctx context.Context, namePrefix string) ([]catalog.Ingredient, error)
	GetByID(ctx context.Context, id int64) (*catalog.Ingredient, error)
	GetByIDs(ctx context.Context, ids []int64) ([]catalog.Ingredient, error)
	Create(ctx context.Context, ing *catalog.Ingredient) error
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) List(ctx context.Context, namePrefix string) ([]catalog.Ingredient, error) {
	var ingredients []catalog.Ingredient
	query := r.db.WithContext(ctx).Order("name ASC")
	if namePrefix != "" {
		query = query.Where("name LIKE ?", namePrefix+"%")
	}
	err := query.Find(&ingredients).Error
	return ingredients, err
}

func (r *ingredientRepository) GetByID(ctx context.Context, id int64) (*catalog.Ingredient, error) {
	var ing catalog.Ingredient
	if err := r.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrIngredientNotFound
		}
		return nil, err
	}
	return &ing, nil
}

// GetByIDs resolves a batch of ids. A missing id shows up as a shorter
// result slice; callers use that to reject references to unknown rows.
func (r *ingredientRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Ingredient, error) {
	var ingredients []catalog.Ingredient
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error
	return ingredients, err
}

func (r *ingredientRepository) Create(ctx context.Context, ing *catalog.Ingredient) error {
	return r.db.WithContext(ctx).Create(ing).Error
}

// TagRepository reads the shared tag set.
type TagRepository interface {
	List(ctx context.Context) ([]catalog.Tag, error)
	GetByID(ctx context.Context, id int64) (*catalog.Tag, error)
	GetByIDs(ctx context.Context, ids []int64) ([]catalog.Tag, error)
	Create(ctx context.Context, tag *catalog.Tag) error
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context) ([]catalog.Tag, error) {
	var tags []catalog.Tag
	err := r.db.WithContext(ctx).Order("id ASC").Find(&tags).Error
	return tags, err
}

func (r *tagRepository) GetByID(ctx context.Context, id int64) (*catalog.Tag, error) {
	var tag catalog.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Tag, error) {
	var tags []catalog.Tag
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *tagRepository) Create(ctx context.Context, tag *catalog.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}
