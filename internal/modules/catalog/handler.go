package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"foodgram/internal/domain/catalog"
	"foodgram/internal/pkg/response"
	"foodgram/internal/repository"

	"github.com/gin-gonic/gin"
)

// Handler serves the ingredient and tag reference books. Pure reads, no
// service layer in between.
type Handler struct {
	ingredients repository.IngredientRepository
	tags        repository.TagRepository
}

func NewHandler(ingredients repository.IngredientRepository, tags repository.TagRepository) *Handler {
	return &Handler{ingredients: ingredients, tags: tags}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ingredients", h.ListIngredients)
	rg.GET("/ingredients/:id", h.GetIngredient)
	rg.GET("/tags", h.ListTags)
	rg.GET("/tags/:id", h.GetTag)
}

// ListIngredients supports ?name= prefix search, unpaginated like the
// rest of the reference book.
func (h *Handler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredients.List(c.Request.Context(), c.Query("name"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to list ingredients")
		return
	}
	response.Success(c, http.StatusOK, ingredients)
}

func (h *Handler) GetIngredient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ingredient ID")
		return
	}

	ing, err := h.ingredients.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrIngredientNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Ingredient not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to get ingredient")
		return
	}
	response.Success(c, http.StatusOK, ing)
}

func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to list tags")
		return
	}
	response.Success(c, http.StatusOK, tags)
}

func (h *Handler) GetTag(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid tag ID")
		return
	}

	tag, err := h.tags.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrTagNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Tag not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to get tag")
		return
	}
	response.Success(c, http.StatusOK, tag)
}
