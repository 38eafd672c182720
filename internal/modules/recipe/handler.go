package recipe

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"foodgram/internal/domain/catalog"
	"foodgram/internal/domain/recipe"
	"foodgram/internal/middleware"
	"foodgram/internal/pkg/media"
	"foodgram/internal/pkg/response"
	"foodgram/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires reads onto the viewer-aware group and writes onto
// the authenticated group.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/recipes", h.List)
	public.GET("/recipes/:id", h.Get)

	protected.POST("/recipes", h.Create)
	protected.PATCH("/recipes/:id", h.Update)
	protected.DELETE("/recipes/:id", h.Delete)

	protected.POST("/recipes/:id/favorite", h.AddFavorite)
	protected.DELETE("/recipes/:id/favorite", h.RemoveFavorite)
	protected.POST("/recipes/:id/shopping_cart", h.AddToCart)
	protected.DELETE("/recipes/:id/shopping_cart", h.RemoveFromCart)
	protected.GET("/recipes/download_shopping_cart", h.DownloadShoppingCart)
}

func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		TagSlugs:  c.QueryArray("tags"),
		Favorited: boolQuery(c, "is_favorited"),
		InCart:    boolQuery(c, "is_in_shopping_cart"),
	}
	if author := c.Query("author"); author != "" {
		if id, err := strconv.ParseInt(author, 10, 64); err == nil {
			q.AuthorID = id
		}
	}
	q.Page, q.Limit = pagination(c)

	recipes, total, err := h.service.List(c.Request.Context(), middleware.ViewerID(c), q)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"recipes":    recipes,
		"pagination": paginationMeta(q.Page, q.Limit, total),
	})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	view, err := h.service.Get(c.Request.Context(), middleware.ViewerID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", fields)
		return
	}

	view, err := h.service.Create(c.Request.Context(), middleware.ViewerID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", fields)
		return
	}

	view, err := h.service.Update(c.Request.Context(), middleware.ViewerID(c), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.ViewerID(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.NoContent(c)
}

/* ---------- membership toggles ---------- */

// All four toggle handlers share the same outcome mapping: 201 with a
// brief card on add, 204 on remove, 400 for duplicates and absent rows.

func (h *Handler) AddFavorite(c *gin.Context) {
	h.addMembership(c, h.service.AddFavorite)
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	h.removeMembership(c, h.service.RemoveFavorite)
}

func (h *Handler) AddToCart(c *gin.Context) {
	h.addMembership(c, h.service.AddToCart)
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	h.removeMembership(c, h.service.RemoveFromCart)
}

func (h *Handler) addMembership(c *gin.Context, add func(context.Context, int64, int64) (*BriefResponse, error)) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	brief, err := add(c.Request.Context(), middleware.ViewerID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, brief)
}

func (h *Handler) removeMembership(c *gin.Context, remove func(context.Context, int64, int64) error) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), middleware.ViewerID(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.NoContent(c)
}

/* ---------- shopping list ---------- */

// DownloadShoppingCart streams the aggregated list as a text attachment.
func (h *Handler) DownloadShoppingCart(c *gin.Context) {
	text, err := h.service.ShoppingList(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename=shopping_cart.txt`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

/* ---------- helpers ---------- */

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid recipe ID")
		return 0, false
	}
	return id, true
}

func boolQuery(c *gin.Context, name string) bool {
	v := c.Query(name)
	return v == "1" || v == "true"
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, recipe.ErrRecipeNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Recipe not found")
	case errors.Is(err, recipe.ErrNotAuthor):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the author may modify this recipe")
	case errors.Is(err, recipe.ErrMissingAuthor):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, recipe.ErrAlreadyFavorited),
		errors.Is(err, recipe.ErrAlreadyInCart):
		response.Error(c, http.StatusBadRequest, "ALREADY_EXISTS", err.Error())
	case errors.Is(err, recipe.ErrNotFavorited),
		errors.Is(err, recipe.ErrNotInCart):
		response.Error(c, http.StatusBadRequest, "NOT_IN_LIST", err.Error())
	case errors.Is(err, recipe.ErrDuplicateIngredient):
		response.Error(c, http.StatusBadRequest, "DUPLICATE_INGREDIENT", err.Error())
	case errors.Is(err, recipe.ErrNoIngredients),
		errors.Is(err, recipe.ErrInvalidAmount),
		errors.Is(err, recipe.ErrInvalidCookingTime),
		errors.Is(err, catalog.ErrIngredientNotFound),
		errors.Is(err, catalog.ErrTagNotFound),
		errors.Is(err, media.ErrInvalidImage),
		errors.Is(err, media.ErrUnsupportedType):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func paginationMeta(page, limit int, total int64) gin.H {
	totalPages := (int(total) + limit - 1) / limit
	return gin.H{
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": totalPages,
	}
}
