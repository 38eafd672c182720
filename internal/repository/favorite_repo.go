package repository

import (
	"context"

	"foodgram/internal/domain/recipe"

	"gorm.io/gorm"
)

// FavoriteRepository persists the user<->recipe favorite relation.
// Add and Remove follow the shared membership contract: a duplicate add is
// a domain error, removing an absent row is a domain error, and the
// composite unique index keeps concurrent adds down to a single row.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, recipeID int64) error
	Remove(ctx context.Context, userID, recipeID int64) error
	Exists(ctx context.Context, userID, recipeID int64) (bool, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Add(ctx context.Context, userID, recipeID int64) error {
	fav := &recipe.Favorite{UserID: userID, RecipeID: recipeID}
	err := r.db.WithContext(ctx).Create(fav).Error
	if isUniqueViolation(err) {
		return recipe.ErrAlreadyFavorited
	}
	return err
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, recipeID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&recipe.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipe.ErrNotFavorited
	}
	return nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, recipeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&recipe.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}
