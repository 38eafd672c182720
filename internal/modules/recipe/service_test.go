package recipe

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"foodgram/internal/domain/catalog"
	"foodgram/internal/domain/recipe"
	"foodgram/internal/domain/user"
	"foodgram/internal/pkg/media"
	"foodgram/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// Registers the cgo-free "sqlite" database/sql driver used below.
	_ "modernc.org/sqlite"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping sqlite test on windows because CGO is disabled")
	}

	dsn := fmt.Sprintf("file:recipe_service_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to open sqlite db")

	err = db.AutoMigrate(
		&user.User{},
		&user.Follow{},
		&catalog.Ingredient{},
		&catalog.Tag{},
		&recipe.Recipe{},
		&recipe.RecipeIngredient{},
		&recipe.Favorite{},
		&recipe.CartItem{},
	)
	require.NoError(t, err, "failed to migrate db")

	svc := NewService(
		repository.NewRecipeRepository(db),
		repository.NewIngredientRepository(db),
		repository.NewTagRepository(db),
		repository.NewFavoriteRepository(db),
		repository.NewCartRepository(db),
		repository.NewFollowRepository(db),
		media.NewStore(t.TempDir(), "/media"),
	)
	return svc, db
}

func createUser(t *testing.T, db *gorm.DB, username string) *user.User {
	t.Helper()
	u := &user.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createIngredient(t *testing.T, db *gorm.DB, name, unit string) *catalog.Ingredient {
	t.Helper()
	ing := &catalog.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

func createTag(t *testing.T, db *gorm.DB, name, slug string) *catalog.Tag {
	t.Helper()
	tag := &catalog.Tag{Name: name, Color: "#49B64E", Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func TestService_CreateAndGet(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := createUser(t, db, "chef")
	egg := createIngredient(t, db, "egg", "pcs")
	salt := createIngredient(t, db, "salt", "g")
	breakfast := createTag(t, db, "Breakfast", "breakfast")

	view, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name:        "Omelette",
		Text:        "Whisk and fry.",
		CookingTime: 10,
		Ingredients: []IngredientAmount{
			{ID: salt.ID, Amount: 1},
			{ID: egg.ID, Amount: 2},
		},
		Tags: []int64{breakfast.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Omelette", view.Name)
	assert.Equal(t, 10, view.CookingTime)
	assert.Equal(t, author.ID, view.Author.ID)
	require.Len(t, view.Tags, 1)
	assert.Equal(t, "breakfast", view.Tags[0].Slug)

	// ingredient lines come back in submission order, not sorted
	require.Len(t, view.Ingredients, 2)
	assert.Equal(t, "salt", view.Ingredients[0].Name)
	assert.Equal(t, 1, view.Ingredients[0].Amount)
	assert.Equal(t, "egg", view.Ingredients[1].Name)
	assert.Equal(t, 2, view.Ingredients[1].Amount)
}

func TestService_Create_MissingAuthor(t *testing.T) {
	svc, db := setupService(t)
	egg := createIngredient(t, db, "egg", "pcs")

	_, err := svc.Create(context.Background(), 0, CreateRecipeRequest{
		Name:        "Nope",
		Text:        "x",
		CookingTime: 1,
		Ingredients: []IngredientAmount{{ID: egg.ID, Amount: 1}},
	})
	assert.ErrorIs(t, err, recipe.ErrMissingAuthor)
}

func TestService_Create_UnknownIngredient_NothingPersisted(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := createUser(t, db, "chef")
	egg := createIngredient(t, db, "egg", "pcs")

	_, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name:        "Broken",
		Text:        "x",
		CookingTime: 5,
		Ingredients: []IngredientAmount{
			{ID: egg.ID, Amount: 1},
			{ID: 99999, Amount: 2},
		},
	})
	assert.ErrorIs(t, err, catalog.ErrIngredientNotFound)

	var recipes, lines int64
	require.NoError(t, db.Model(&recipe.Recipe{}).Count(&recipes).Error)
	require.NoError(t, db.Model(&recipe.RecipeIngredient{}).Count(&lines).Error)
	assert.Zero(t, recipes)
	assert.Zero(t, lines)
}

func TestService_Create_DuplicateIngredient(t *testing.T) {
	svc, db := setupService(t)

	author := createUser(t, db, "chef")
	egg := createIngredient(t, db, "egg", "pcs")

	_, err := svc.Create(context.Background(), author.ID, CreateRecipeRequest{
		Name:        "Double egg",
		Text:        "x",
		CookingTime: 5,
		Ingredients: []IngredientAmount{
			{ID: egg.ID, Amount: 1},
			{ID: egg.ID, Amount: 2},
		},
	})
	assert.ErrorIs(t, err, recipe.ErrDuplicateIngredient)
}

func TestService_Create_Validation(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := createUser(t, db, "chef")
	egg := createIngredient(t, db, "egg", "pcs")

	_, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "No ingredients", Text: "x", CookingTime: 5,
	})
	assert.ErrorIs(t, err, recipe.ErrNoIngredients)

	_, err = svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Zero amount", Text: "x", CookingTime: 5,
		Ingredients: []IngredientAmount{{ID: egg.ID, Amount: 0}},
	})
	assert.ErrorIs(t, err, recipe.ErrInvalidAmount)

	_, err = svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Instant", Text: "x", CookingTime: 0,
		Ingredients: []IngredientAmount{{ID: egg.ID, Amount: 1}},
	})
	assert.ErrorIs(t, err, recipe.ErrInvalidCookingTime)

	_, err = svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Ghost tag", Text: "x", CookingTime: 5,
		Ingredients: []IngredientAmount{{ID: egg.ID, Amount: 1}},
		Tags:        []int64{4242},
	})
	assert.ErrorIs(t, err, catalog.ErrTagNotFound)
}

func TestService_Update_EmptyIngredients_PreservesLines(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := createUser(t, db, "chef")
	egg := createIngredient(t, db, "egg", "pcs")
	salt := createIngredient(t, db, "salt", "g")

	view, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Omelette", Text: "x", CookingTime: 10,
		Ingredients: []IngredientAmount{
			{ID: egg.ID, Amount: 2},
			{ID: salt.ID, Amount: 1},
		},
	})
	require.NoError(t, err)

	// an empty list is invalid input, not an erase-all
	empty := []IngredientAmount{}
	_, err = svc.Update(ctx, author.ID, view.ID, UpdateRecipeRequest{Ingredients: &empty})
	assert.ErrorIs(t, err, recipe.ErrNoIngredients)

	var lines int64
	require.NoError(t, db.Model(&recipe.RecipeIngredient{}).
		Where("recipe_id = ?", view.ID).Count(&lines).Error)
	assert.EqualValues(t, 2, lines)
}

func TestService_Update_ReplacesLinesWholesale(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := createUser(t, db, "chef")
	egg := createIngredient(t, db, "egg", "pcs")
	salt := createIngredient(t, db, "salt", "g")
	flour := createIngredient(t, db, "flour", "g")

	view, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Omelette", Text: "x", CookingTime: 10,
		Ingredients: []IngredientAmount{
			{ID: egg.ID, Amount: 2},
			{ID: salt.ID, Amount: 1},
		},
	})
	require.NoError(t, err)

	pairs := []IngredientAmount{
		{ID: flour.ID, Amount: 200},
		{ID: egg.ID, Amount: 3},
	}
	updated, err := svc.Update(ctx, author.ID, view.ID, UpdateRecipeRequest{Ingredients: &pairs})
	require.NoError(t, err)

	require.Len(t, updated.Ingredients, 2)
	assert.Equal(t, "flour", updated.Ingredients[0].Name)
	assert.Equal(t, 200, updated.Ingredients[0].Amount)
	assert.Equal(t, "egg", updated.Ingredients[1].Name)
	assert.Equal(t, 3, updated.Ingredients[1].Amount)

	// the old set is gone, not merged
	var lines int64
	require.NoError(t, db.Model(&recipe.RecipeIngredient{}).
		Where("recipe_id = ?", view.ID).Count(&lines).Error)
	assert.EqualValues(t, 2, lines)
}

func TestService_Update_OmittedFieldsKeepValues(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := createUser(t, db, "chef")
	egg := createIngredient(t, db, "egg", "pcs")

	view, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Omelette", Text: "Whisk and fry.", CookingTime: 10,
		Ingredients: []IngredientAmount{{ID: egg.ID, Amount: 2}},
	})
	require.NoError(t, err)

	name := "Omelette deluxe"
	updated, err := svc.Update(ctx, author.ID, view.ID, UpdateRecipeRequest{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Omelette deluxe", updated.Name)
	assert.Equal(t, "Whisk and fry.", updated.Text)
	assert.Equal(t, 10, updated.CookingTime)
	require.Len(t, updated.Ingredients, 1)
}

func TestService_Update_NotAuthor(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := createUser(t, db, "chef")
	other := createUser(t, db, "intruder")
	egg := createIngredient(t, db, "egg", "pcs")

	view, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Omelette", Text: "x", CookingTime: 10,
		Ingredients: []IngredientAmount{{ID: egg.ID, Amount: 2}},
	})
	require.NoError(t, err)

	name := "Stolen"
	_, err = svc.Update(ctx, other.ID, view.ID, UpdateRecipeRequest{Name: &name})
	assert.ErrorIs(t, err, recipe.ErrNotAuthor)

	err = svc.Delete(ctx, other.ID, view.ID)
	assert.ErrorIs(t, err, recipe.ErrNotAuthor)
}

func TestService_AnonymousViewerFlags(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := createUser(t, db, "chef")
	egg := createIngredient(t, db, "egg", "pcs")

	view, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Omelette", Text: "x", CookingTime: 10,
		Ingredients: []IngredientAmount{{ID: egg.ID, Amount: 2}},
	})
	require.NoError(t, err)

	_, err = svc.AddFavorite(ctx, author.ID, view.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, author.ID, view.ID)
	require.NoError(t, err)

	// anonymous viewers always see false, whatever the data says
	anon, err := svc.Get(ctx, 0, view.ID)
	require.NoError(t, err)
	assert.False(t, anon.IsFavorited)
	assert.False(t, anon.IsInShoppingCart)

	authed, err := svc.Get(ctx, author.ID, view.ID)
	require.NoError(t, err)
	assert.True(t, authed.IsFavorited)
	assert.True(t, authed.IsInShoppingCart)
}

func TestService_FavoriteToggle(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := createUser(t, db, "chef")
	viewer := createUser(t, db, "reader")
	egg := createIngredient(t, db, "egg", "pcs")

	view, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Omelette", Text: "x", CookingTime: 10,
		Ingredients: []IngredientAmount{{ID: egg.ID, Amount: 2}},
	})
	require.NoError(t, err)

	brief, err := svc.AddFavorite(ctx, viewer.ID, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, brief.ID)
	assert.Equal(t, "Omelette", brief.Name)

	_, err = svc.AddFavorite(ctx, viewer.ID, view.ID)
	assert.ErrorIs(t, err, recipe.ErrAlreadyFavorited)

	var count int64
	require.NoError(t, db.Model(&recipe.Favorite{}).
		Where("user_id = ?", viewer.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, svc.RemoveFavorite(ctx, viewer.ID, view.ID))

	// add then remove leaves no trace
	require.NoError(t, db.Model(&recipe.Favorite{}).
		Where("user_id = ?", viewer.ID).Count(&count).Error)
	assert.Zero(t, count)

	err = svc.RemoveFavorite(ctx, viewer.ID, view.ID)
	assert.ErrorIs(t, err, recipe.ErrNotFavorited)
}

func TestService_CartToggle(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := createUser(t, db, "chef")
	viewer := createUser(t, db, "reader")
	egg := createIngredient(t, db, "egg", "pcs")

	view, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Omelette", Text: "x", CookingTime: 10,
		Ingredients: []IngredientAmount{{ID: egg.ID, Amount: 2}},
	})
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, viewer.ID, view.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, viewer.ID, view.ID)
	assert.ErrorIs(t, err, recipe.ErrAlreadyInCart)

	// removing from the cart must not touch favorites
	_, err = svc.AddFavorite(ctx, viewer.ID, view.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RemoveFromCart(ctx, viewer.ID, view.ID))

	favorited, err := repository.NewFavoriteRepository(db).Exists(ctx, viewer.ID, view.ID)
	require.NoError(t, err)
	assert.True(t, favorited)

	err = svc.RemoveFromCart(ctx, viewer.ID, view.ID)
	assert.ErrorIs(t, err, recipe.ErrNotInCart)
}

func TestService_ToggleMissingRecipe(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	viewer := createUser(t, db, "reader")

	_, err := svc.AddFavorite(ctx, viewer.ID, 12345)
	assert.ErrorIs(t, err, recipe.ErrRecipeNotFound)
	err = svc.RemoveFromCart(ctx, viewer.ID, 12345)
	assert.ErrorIs(t, err, recipe.ErrRecipeNotFound)
}

func TestService_ShoppingList(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := createUser(t, db, "chef")
	egg := createIngredient(t, db, "egg", "pcs")
	salt := createIngredient(t, db, "salt", "g")

	a, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Omelette", Text: "x", CookingTime: 10,
		Ingredients: []IngredientAmount{
			{ID: egg.ID, Amount: 2},
			{ID: salt.ID, Amount: 1},
		},
	})
	require.NoError(t, err)

	b, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Scramble", Text: "x", CookingTime: 5,
		Ingredients: []IngredientAmount{{ID: egg.ID, Amount: 3}},
	})
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, author.ID, a.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, author.ID, b.ID)
	require.NoError(t, err)

	text, err := svc.ShoppingList(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "egg (pcs) - 5\nsalt (g) - 1", text)
}

func TestService_ShoppingList_EmptyCart(t *testing.T) {
	svc, db := setupService(t)
	viewer := createUser(t, db, "reader")

	text, err := svc.ShoppingList(context.Background(), viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestService_ShoppingList_GroupsByNameAndUnit(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := createUser(t, db, "chef")
	sugarG := createIngredient(t, db, "sugar", "g")
	sugarTbsp := createIngredient(t, db, "sugar", "tbsp")

	a, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Cake", Text: "x", CookingTime: 60,
		Ingredients: []IngredientAmount{
			{ID: sugarG.ID, Amount: 100},
			{ID: sugarTbsp.ID, Amount: 2},
		},
	})
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, author.ID, a.ID)
	require.NoError(t, err)

	// same name, different unit: two separate lines
	text, err := svc.ShoppingList(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "sugar (g) - 100\nsugar (tbsp) - 2", text)
}

func TestService_Delete(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	author := createUser(t, db, "chef")
	egg := createIngredient(t, db, "egg", "pcs")

	view, err := svc.Create(ctx, author.ID, CreateRecipeRequest{
		Name: "Omelette", Text: "x", CookingTime: 10,
		Ingredients: []IngredientAmount{{ID: egg.ID, Amount: 2}},
	})
	require.NoError(t, err)

	_, err = svc.AddFavorite(ctx, author.ID, view.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, author.ID, view.ID))

	_, err = svc.Get(ctx, 0, view.ID)
	assert.ErrorIs(t, err, recipe.ErrRecipeNotFound)

	var lines, favorites int64
	require.NoError(t, db.Model(&recipe.RecipeIngredient{}).Count(&lines).Error)
	require.NoError(t, db.Model(&recipe.Favorite{}).Count(&favorites).Error)
	assert.Zero(t, lines)
	assert.Zero(t, favorites)
}

func TestService_List_Filters(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	chef := createUser(t, db, "chef")
	baker := createUser(t, db, "baker")
	egg := createIngredient(t, db, "egg", "pcs")
	breakfast := createTag(t, db, "Breakfast", "breakfast")
	dinner := createTag(t, db, "Dinner", "dinner")

	omelette, err := svc.Create(ctx, chef.ID, CreateRecipeRequest{
		Name: "Omelette", Text: "x", CookingTime: 10,
		Ingredients: []IngredientAmount{{ID: egg.ID, Amount: 2}},
		Tags:        []int64{breakfast.ID},
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, baker.ID, CreateRecipeRequest{
		Name: "Frittata", Text: "x", CookingTime: 25,
		Ingredients: []IngredientAmount{{ID: egg.ID, Amount: 4}},
		Tags:        []int64{dinner.ID},
	})
	require.NoError(t, err)

	// tag slug any-match
	list, total, err := svc.List(ctx, 0, ListQuery{TagSlugs: []string{"breakfast"}, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Omelette", list[0].Name)

	// author filter
	list, total, err = svc.List(ctx, 0, ListQuery{AuthorID: baker.ID, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Frittata", list[0].Name)

	// favorited filter only applies to the viewer
	_, err = svc.AddFavorite(ctx, baker.ID, omelette.ID)
	require.NoError(t, err)

	list, total, err = svc.List(ctx, baker.ID, ListQuery{Favorited: true, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Omelette", list[0].Name)

	// anonymous viewers cannot use viewer-relative filters
	_, total, err = svc.List(ctx, 0, ListQuery{Favorited: true, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
