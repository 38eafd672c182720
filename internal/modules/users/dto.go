package users

import (
	"foodgram/internal/domain/recipe"
	"foodgram/internal/domain/user"
)

// UserResponse is the profile shape returned everywhere a user appears.
// IsSubscribed is viewer-relative and always false for anonymous viewers.
type UserResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func NewUserResponse(u *user.User, subscribed bool) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// RecipeBrief is the short recipe card shown inside subscription entries.
type RecipeBrief struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func NewRecipeBrief(r *recipe.Recipe) RecipeBrief {
	return RecipeBrief{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// SubscriptionResponse is an author profile extended with their newest
// recipes, returned by subscribe and the subscriptions listing.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeBrief `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}
