package recipe

import (
	"errors"
	"time"

	"foodgram/internal/domain/catalog"
	"foodgram/internal/domain/user"
)

var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrNotAuthor      = errors.New("only the author may modify this recipe")
	ErrMissingAuthor  = errors.New("recipe write requires an authenticated author")

	ErrNoIngredients       = errors.New("recipe must have at least one ingredient")
	ErrDuplicateIngredient = errors.New("duplicate ingredient in recipe")
	ErrInvalidAmount       = errors.New("ingredient amount must be at least 1")
	ErrInvalidCookingTime  = errors.New("cooking time must be at least 1 minute")

	ErrAlreadyFavorited = errors.New("recipe is already in favorites")
	ErrNotFavorited     = errors.New("recipe is not in favorites")
	ErrAlreadyInCart    = errors.New("recipe is already in the shopping cart")
	ErrNotInCart        = errors.New("recipe is not in the shopping cart")
)

// Recipe is the write-side entity. API responses are built from it by the
// recipe module's view builder, which attaches viewer-relative flags.
type Recipe struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	AuthorID    int64     `json:"author_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Image       string    `json:"image" gorm:"size:500"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	CookingTime int       `json:"cooking_time" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;index"`

	Author      *user.User         `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Tags        []catalog.Tag      `json:"-" gorm:"many2many:recipe_tags"`
	Ingredients []RecipeIngredient `json:"-" gorm:"foreignKey:RecipeID"`
}

func (Recipe) TableName() string { return "recipes" }

// RecipeIngredient is the junction row carrying the amount. Rows are kept
// in primary-key order, which is the order the client submitted them in;
// readers must not re-sort.
type RecipeIngredient struct {
	ID           int64 `json:"id" gorm:"primaryKey"`
	RecipeID     int64 `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_recipe_ingredient"`
	IngredientID int64 `json:"ingredient_id" gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	Amount       int   `json:"amount" gorm:"not null"`

	Ingredient *catalog.Ingredient `json:"-" gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

func (RecipeIngredient) TableName() string { return "recipe_ingredients" }

// Favorite marks a recipe as favorited by a user.
type Favorite struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  int64     `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_favorite_user_recipe"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	User   *user.User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe *Recipe    `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (Favorite) TableName() string { return "favorites" }

// CartItem marks a recipe as queued for the user's shopping list.
type CartItem struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  int64     `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_cart_user_recipe"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	User   *user.User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe *Recipe    `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (CartItem) TableName() string { return "cart_items" }
