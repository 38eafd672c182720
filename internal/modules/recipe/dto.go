package recipe

import (
	"foodgram/internal/domain/catalog"
	"foodgram/internal/domain/recipe"
	"foodgram/internal/modules/users"
)

// IngredientAmount is one (ingredient id, amount) pair of a submission.
// Submission order is preserved all the way into storage.
type IngredientAmount struct {
	ID     int64 `json:"id" validate:"required,gt=0"`
	Amount int   `json:"amount" validate:"required,gte=1"`
}

type CreateRecipeRequest struct {
	Name        string             `json:"name" validate:"required,max=200"`
	Text        string             `json:"text" validate:"required"`
	CookingTime int                `json:"cooking_time" validate:"required,gte=1"`
	Image       string             `json:"image,omitempty"`
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []int64            `json:"tags"`
}

// UpdateRecipeRequest uses pointers so omitted fields keep their prior
// values. A supplied ingredient or tag list replaces the whole stored
// set; there is no merge.
type UpdateRecipeRequest struct {
	Name        *string             `json:"name,omitempty" validate:"omitempty,max=200"`
	Text        *string             `json:"text,omitempty"`
	CookingTime *int                `json:"cooking_time,omitempty" validate:"omitempty,gte=1"`
	Image       *string             `json:"image,omitempty"`
	Ingredients *[]IngredientAmount `json:"ingredients,omitempty" validate:"omitempty,dive"`
	Tags        *[]int64            `json:"tags,omitempty"`
}

// LineResponse is one ingredient line of the read-model; ID is the
// ingredient's id, not the junction row's.
type LineResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the read-model: the denormalized view returned to API
// callers, distinct from the stored write representation.
type RecipeResponse struct {
	ID               int64              `json:"id"`
	Tags             []catalog.Tag      `json:"tags"`
	Author           users.UserResponse `json:"author"`
	Ingredients      []LineResponse     `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
}

// BriefResponse is the short card returned by the favorite and cart
// toggles.
type BriefResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func newBriefResponse(r *recipe.Recipe) BriefResponse {
	return BriefResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// ListQuery carries the recipe list filters after parsing. Favorited and
// InCart are honored only for authenticated viewers.
type ListQuery struct {
	TagSlugs  []string
	AuthorID  int64
	Favorited bool
	InCart    bool
	Page      int
	Limit     int
}
