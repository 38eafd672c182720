package repository

import (
	"context"
	"errors"

	"foodgram/internal/domain/catalog"
	"foodgram/internal/domain/recipe"

	"gorm.io/gorm"
)

// RecipeFilters narrows the recipe list. Zero values mean "no filter".
// FavoritedBy / InCartOf are viewer ids and are only set for
// authenticated requests.
type RecipeFilters struct {
	TagSlugs    []string
	AuthorID    int64
	FavoritedBy int64
	InCartOf    int64
	Limit       int
	Offset      int
}

// RecipeRepository persists recipes together with their ingredient lines
// and tag links. Create and Update run inside a single transaction so a
// reader never observes a recipe without its lines.
type RecipeRepository interface {
	Create(ctx context.Context, rec *recipe.Recipe, lines []recipe.RecipeIngredient) error
	Update(ctx context.Context, rec *recipe.Recipe, lines []recipe.RecipeIngredient, tags []catalog.Tag) error
	GetByID(ctx context.Context, id int64) (*recipe.Recipe, error)
	List(ctx context.Context, f RecipeFilters) ([]recipe.Recipe, int64, error)
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]recipe.Recipe, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create inserts the recipe row, its tag links (rec.Tags must hold
// existing tags) and the ingredient lines atomically.
func (r *recipeRepository) Create(ctx context.Context, rec *recipe.Recipe, lines []recipe.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].RecipeID = rec.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			if isUniqueViolation(err) {
				return recipe.ErrDuplicateIngredient
			}
			return err
		}
		return nil
	})
}

// Update rewrites the recipe's scalar fields and, when lines or tags are
// non-nil, replaces the full existing set wholesale. Replacement is
// delete-then-insert, not a merge, so the stored order is exactly the
// submitted order.
func (r *recipeRepository) Update(ctx context.Context, rec *recipe.Recipe, lines []recipe.RecipeIngredient, tags []catalog.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&recipe.Recipe{ID: rec.ID}).
			Select("Name", "Image", "Text", "CookingTime").
			Updates(rec).Error
		if err != nil {
			return err
		}

		if lines != nil {
			if err := tx.Where("recipe_id = ?", rec.ID).
				Delete(&recipe.RecipeIngredient{}).Error; err != nil {
				return err
			}
			for i := range lines {
				lines[i].ID = 0
				lines[i].RecipeID = rec.ID
			}
			if err := tx.Create(&lines).Error; err != nil {
				if isUniqueViolation(err) {
					return recipe.ErrDuplicateIngredient
				}
				return err
			}
		}

		if tags != nil {
			if err := tx.Model(rec).Association("Tags").Replace(&tags); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID loads the full write-side graph: author, tags and ingredient
// lines in insertion order.
func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*recipe.Recipe, error) {
	var rec recipe.Recipe
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id ASC")
		}).
		Preload("Ingredients.Ingredient").
		First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// List returns recipes newest-first. Relation filters go through IN
// subqueries so a recipe matching several tag slugs still appears once.
func (r *recipeRepository) List(ctx context.Context, f RecipeFilters) ([]recipe.Recipe, int64, error) {
	query := r.db.WithContext(ctx).Model(&recipe.Recipe{})

	if len(f.TagSlugs) > 0 {
		query = query.Where("recipes.id IN (?)",
			r.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.TagSlugs))
	}
	if f.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", f.AuthorID)
	}
	if f.FavoritedBy != 0 {
		query = query.Where("recipes.id IN (?)",
			r.db.Table("favorites").
				Select("recipe_id").
				Where("user_id = ?", f.FavoritedBy))
	}
	if f.InCartOf != 0 {
		query = query.Where("recipes.id IN (?)",
			r.db.Table("cart_items").
				Select("recipe_id").
				Where("user_id = ?", f.InCartOf))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []recipe.Recipe
	query = query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id ASC")
		}).
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC, recipes.id DESC")
	if f.Limit > 0 {
		query = query.Limit(f.Limit).Offset(f.Offset)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ListByAuthor returns the author's newest recipes, used by the
// subscriptions view. limit <= 0 means all of them.
func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]recipe.Recipe, error) {
	var recipes []recipe.Recipe
	query := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&recipe.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

// Delete removes the recipe and everything hanging off it. The relation
// rows are deleted explicitly so the behavior does not depend on
// database-level cascade support.
func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&recipe.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&recipe.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&recipe.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&recipe.Recipe{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return recipe.ErrRecipeNotFound
		}
		return nil
	})
}
