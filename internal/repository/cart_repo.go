package repository

import (
	"context"

	"foodgram/internal/domain/recipe"

	"gorm.io/gorm"
)

// ShoppingListItem is one aggregated line of a user's shopping list.
// Grouping is by the display key (name, unit), not by ingredient id: two
// ingredient rows sharing a name and unit collapse into one line.
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Total           int    `json:"total"`
}

// CartRepository persists the user<->recipe shopping-cart relation and
// computes the aggregated shopping list.
type CartRepository interface {
	Add(ctx context.Context, userID, recipeID int64) error
	Remove(ctx context.Context, userID, recipeID int64) error
	Exists(ctx context.Context, userID, recipeID int64) (bool, error)
	ShoppingList(ctx context.Context, userID int64) ([]ShoppingListItem, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Add(ctx context.Context, userID, recipeID int64) error {
	item := &recipe.CartItem{UserID: userID, RecipeID: recipeID}
	err := r.db.WithContext(ctx).Create(item).Error
	if isUniqueViolation(err) {
		return recipe.ErrAlreadyInCart
	}
	return err
}

func (r *cartRepository) Remove(ctx context.Context, userID, recipeID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&recipe.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipe.ErrNotInCart
	}
	return nil
}

func (r *cartRepository) Exists(ctx context.Context, userID, recipeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&recipe.CartItem{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

// ShoppingList sums ingredient amounts across every recipe in the user's
// cart in a single grouped query, so the result is consistent under
// concurrent cart edits and independent of cart size. Ties on the total
// are broken by ingredient name to keep the output deterministic.
func (r *cartRepository) ShoppingList(ctx context.Context, userID int64) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := r.db.WithContext(ctx).
		Model(&recipe.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN cart_items ON cart_items.recipe_id = recipe_ingredients.recipe_id").
		Where("cart_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("total DESC, name ASC").
		Scan(&items).Error
	return items, err
}
