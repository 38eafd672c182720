package users

import (
	"context"

	"foodgram/internal/domain/user"
	"foodgram/internal/repository"
)

type Service struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	recipes repository.RecipeRepository
}

func NewService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	recipes repository.RecipeRepository,
) *Service {
	return &Service{users: users, follows: follows, recipes: recipes}
}

// Get returns a profile with the viewer-relative is_subscribed flag.
// Anonymous viewers (viewerID 0) never trigger a follow lookup.
func (s *Service) Get(ctx context.Context, viewerID, id int64) (*UserResponse, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	subscribed := false
	if viewerID != 0 {
		subscribed, err = s.follows.Exists(ctx, viewerID, u.ID)
		if err != nil {
			return nil, err
		}
	}

	resp := NewUserResponse(u, subscribed)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, viewerID int64, limit, offset int) ([]UserResponse, int64, error) {
	list, total, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]UserResponse, 0, len(list))
	for i := range list {
		subscribed := false
		if viewerID != 0 {
			subscribed, err = s.follows.Exists(ctx, viewerID, list[i].ID)
			if err != nil {
				return nil, 0, err
			}
		}
		out = append(out, NewUserResponse(&list[i], subscribed))
	}
	return out, total, nil
}

// Subscribe follows an author and returns their profile with recipes.
// Fails on self-follow, unknown author, or an existing subscription.
func (s *Service) Subscribe(ctx context.Context, userID, authorID int64) (*SubscriptionResponse, error) {
	if userID == authorID {
		return nil, user.ErrSelfFollow
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if err := s.follows.Add(ctx, userID, authorID); err != nil {
		return nil, err
	}
	return s.subscriptionResponse(ctx, author, 0)
}

func (s *Service) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return err
	}
	return s.follows.Remove(ctx, userID, authorID)
}

// Subscriptions lists followed authors with their newest recipes.
// recipesLimit <= 0 includes all of an author's recipes.
func (s *Service) Subscriptions(ctx context.Context, userID int64, limit, offset, recipesLimit int) ([]SubscriptionResponse, int64, error) {
	authors, total, err := s.follows.ListAuthors(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		resp, err := s.subscriptionResponse(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *resp)
	}
	return out, total, nil
}

func (s *Service) subscriptionResponse(ctx context.Context, author *user.User, recipesLimit int) (*SubscriptionResponse, error) {
	list, err := s.recipes.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}
	count, err := s.recipes.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	briefs := make([]RecipeBrief, 0, len(list))
	for i := range list {
		briefs = append(briefs, NewRecipeBrief(&list[i]))
	}

	return &SubscriptionResponse{
		UserResponse: NewUserResponse(author, true),
		Recipes:      briefs,
		RecipesCount: count,
	}, nil
}
