package recipe

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/domain/catalog"
	"foodgram/internal/domain/recipe"
	"foodgram/internal/modules/users"
	"foodgram/internal/pkg/media"
	"foodgram/internal/repository"
)

type Service struct {
	recipes     repository.RecipeRepository
	ingredients repository.IngredientRepository
	tags        repository.TagRepository
	favorites   repository.FavoriteRepository
	cart        repository.CartRepository
	follows     repository.FollowRepository
	media       *media.Store
}

func NewService(
	recipes repository.RecipeRepository,
	ingredients repository.IngredientRepository,
	tags repository.TagRepository,
	favorites repository.FavoriteRepository,
	cart repository.CartRepository,
	follows repository.FollowRepository,
	mediaStore *media.Store,
) *Service {
	return &Service{
		recipes:     recipes,
		ingredients: ingredients,
		tags:        tags,
		favorites:   favorites,
		cart:        cart,
		follows:     follows,
		media:       mediaStore,
	}
}

/* ---------- read-model builder ---------- */

// Get renders the read-model for one recipe as seen by the viewer.
// viewerID 0 means anonymous: both membership flags are false and no
// membership queries run.
func (s *Service) Get(ctx context.Context, viewerID, id int64) (*RecipeResponse, error) {
	rec, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, viewerID, rec)
}

// List renders a filtered page of read-models.
func (s *Service) List(ctx context.Context, viewerID int64, q ListQuery) ([]RecipeResponse, int64, error) {
	filters := repository.RecipeFilters{
		TagSlugs: q.TagSlugs,
		AuthorID: q.AuthorID,
		Limit:    q.Limit,
		Offset:   (q.Page - 1) * q.Limit,
	}
	if viewerID != 0 {
		if q.Favorited {
			filters.FavoritedBy = viewerID
		}
		if q.InCart {
			filters.InCartOf = viewerID
		}
	}

	list, total, err := s.recipes.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	out := make([]RecipeResponse, 0, len(list))
	for i := range list {
		view, err := s.buildView(ctx, viewerID, &list[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *view)
	}
	return out, total, nil
}

// buildView assembles the response from a loaded recipe graph. Read-only:
// the write representation never leaks out directly.
func (s *Service) buildView(ctx context.Context, viewerID int64, rec *recipe.Recipe) (*RecipeResponse, error) {
	var err error

	favorited, inCart, subscribed := false, false, false
	if viewerID != 0 {
		if favorited, err = s.favorites.Exists(ctx, viewerID, rec.ID); err != nil {
			return nil, err
		}
		if inCart, err = s.cart.Exists(ctx, viewerID, rec.ID); err != nil {
			return nil, err
		}
		if rec.Author != nil {
			if subscribed, err = s.follows.Exists(ctx, viewerID, rec.AuthorID); err != nil {
				return nil, err
			}
		}
	}

	lines := make([]LineResponse, 0, len(rec.Ingredients))
	for _, line := range rec.Ingredients {
		lr := LineResponse{ID: line.IngredientID, Amount: line.Amount}
		if line.Ingredient != nil {
			lr.Name = line.Ingredient.Name
			lr.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		lines = append(lines, lr)
	}

	tags := rec.Tags
	if tags == nil {
		tags = []catalog.Tag{}
	}

	view := &RecipeResponse{
		ID:               rec.ID,
		Tags:             tags,
		Ingredients:      lines,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             rec.Name,
		Image:            rec.Image,
		Text:             rec.Text,
		CookingTime:      rec.CookingTime,
	}
	if rec.Author != nil {
		view.Author = users.NewUserResponse(rec.Author, subscribed)
	}
	return view, nil
}

/* ---------- write pipeline ---------- */

// Create validates and persists a new recipe with its lines and tag links
// in one transaction, then re-renders it through the read-model builder.
// The author comes from the caller's identity, never from the payload.
func (s *Service) Create(ctx context.Context, authorID int64, req CreateRecipeRequest) (*RecipeResponse, error) {
	if authorID == 0 {
		return nil, recipe.ErrMissingAuthor
	}
	if req.CookingTime < 1 {
		return nil, recipe.ErrInvalidCookingTime
	}

	lines, err := s.resolveLines(ctx, req.Ingredients)
	if err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	imageRef := ""
	if req.Image != "" {
		if imageRef, err = s.media.SaveDataURI(req.Image); err != nil {
			return nil, err
		}
	}

	rec := &recipe.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Image:       imageRef,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Tags:        tags,
	}
	if err := s.recipes.Create(ctx, rec, lines); err != nil {
		return nil, err
	}

	return s.Get(ctx, authorID, rec.ID)
}

// Update validates and applies a partial update. Supplied ingredient or
// tag sets replace the stored sets wholesale inside the same transaction
// as the scalar fields.
func (s *Service) Update(ctx context.Context, callerID, id int64, req UpdateRecipeRequest) (*RecipeResponse, error) {
	if callerID == 0 {
		return nil, recipe.ErrMissingAuthor
	}

	rec, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.AuthorID != callerID {
		return nil, recipe.ErrNotAuthor
	}

	if req.Name != nil {
		rec.Name = *req.Name
	}
	if req.Text != nil {
		rec.Text = *req.Text
	}
	if req.CookingTime != nil {
		if *req.CookingTime < 1 {
			return nil, recipe.ErrInvalidCookingTime
		}
		rec.CookingTime = *req.CookingTime
	}
	if req.Image != nil && *req.Image != "" {
		ref, err := s.media.SaveDataURI(*req.Image)
		if err != nil {
			return nil, err
		}
		rec.Image = ref
	}

	var lines []recipe.RecipeIngredient
	if req.Ingredients != nil {
		if lines, err = s.resolveLines(ctx, *req.Ingredients); err != nil {
			return nil, err
		}
	}

	var tags []catalog.Tag
	if req.Tags != nil {
		if tags, err = s.resolveTags(ctx, *req.Tags); err != nil {
			return nil, err
		}
	}

	if err := s.recipes.Update(ctx, rec, lines, tags); err != nil {
		return nil, err
	}

	return s.Get(ctx, callerID, rec.ID)
}

func (s *Service) Delete(ctx context.Context, callerID, id int64) error {
	if callerID == 0 {
		return recipe.ErrMissingAuthor
	}

	rec, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.AuthorID != callerID {
		return recipe.ErrNotAuthor
	}

	return s.recipes.Delete(ctx, id)
}

// resolveLines validates the submitted pairs and resolves them into
// junction rows in submission order.
func (s *Service) resolveLines(ctx context.Context, pairs []IngredientAmount) ([]recipe.RecipeIngredient, error) {
	if len(pairs) == 0 {
		return nil, recipe.ErrNoIngredients
	}

	ids := make([]int64, 0, len(pairs))
	seen := make(map[int64]struct{}, len(pairs))
	for _, p := range pairs {
		if p.Amount < 1 {
			return nil, recipe.ErrInvalidAmount
		}
		if _, dup := seen[p.ID]; dup {
			return nil, recipe.ErrDuplicateIngredient
		}
		seen[p.ID] = struct{}{}
		ids = append(ids, p.ID)
	}

	found, err := s.ingredients.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, catalog.ErrIngredientNotFound
	}

	lines := make([]recipe.RecipeIngredient, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, recipe.RecipeIngredient{
			IngredientID: p.ID,
			Amount:       p.Amount,
		})
	}
	return lines, nil
}

func (s *Service) resolveTags(ctx context.Context, ids []int64) ([]catalog.Tag, error) {
	if len(ids) == 0 {
		return []catalog.Tag{}, nil
	}

	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	tags, err := s.tags.GetByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(unique) {
		return nil, catalog.ErrTagNotFound
	}
	return tags, nil
}

/* ---------- membership toggles ---------- */

// AddFavorite, RemoveFavorite, AddToCart and RemoveFromCart share one
// contract: add conflicts on duplicates, remove fails on absent rows,
// and both verify the recipe first. Favorites and the cart never cross.

func (s *Service) AddFavorite(ctx context.Context, userID, recipeID int64) (*BriefResponse, error) {
	return s.addMembership(ctx, userID, recipeID, s.favorites.Add)
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, recipeID int64) error {
	return s.removeMembership(ctx, userID, recipeID, s.favorites.Remove)
}

func (s *Service) AddToCart(ctx context.Context, userID, recipeID int64) (*BriefResponse, error) {
	return s.addMembership(ctx, userID, recipeID, s.cart.Add)
}

func (s *Service) RemoveFromCart(ctx context.Context, userID, recipeID int64) error {
	return s.removeMembership(ctx, userID, recipeID, s.cart.Remove)
}

func (s *Service) addMembership(ctx context.Context, userID, recipeID int64, add func(context.Context, int64, int64) error) (*BriefResponse, error) {
	rec, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := add(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	brief := newBriefResponse(rec)
	return &brief, nil
}

func (s *Service) removeMembership(ctx context.Context, userID, recipeID int64, remove func(context.Context, int64, int64) error) error {
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return err
	}
	return remove(ctx, userID, recipeID)
}

/* ---------- shopping list ---------- */

// ShoppingList renders the viewer's aggregated shopping list as plain
// text, one "name (unit) - total" line per distinct (name, unit) pair,
// largest totals first. An empty cart yields an empty document.
func (s *Service) ShoppingList(ctx context.Context, userID int64) (string, error) {
	items, err := s.cart.ShoppingList(ctx, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s (%s) - %d", item.Name, item.MeasurementUnit, item.Total)
	}
	return b.String(), nil
}
