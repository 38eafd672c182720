package users

import (
	"errors"
	"net/http"
	"strconv"

	"foodgram/internal/domain/user"
	"foodgram/internal/middleware"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires profile reads onto the viewer-aware group and
// subscription writes onto the authenticated group.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/users", h.List)
	public.GET("/users/:id", h.Get)

	protected.GET("/users/me", h.Me)
	protected.GET("/users/subscriptions", h.Subscriptions)
	protected.POST("/users/:id/subscribe", h.Subscribe)
	protected.DELETE("/users/:id/subscribe", h.Unsubscribe)
}

func (h *Handler) List(c *gin.Context) {
	page, limit := pagination(c)
	users, total, err := h.service.List(c.Request.Context(), middleware.ViewerID(c), limit, (page-1)*limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"users":      users,
		"pagination": paginationMeta(page, limit, total),
	})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	profile, err := h.service.Get(c.Request.Context(), middleware.ViewerID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

func (h *Handler) Me(c *gin.Context) {
	viewerID := middleware.ViewerID(c)
	profile, err := h.service.Get(c.Request.Context(), viewerID, viewerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

func (h *Handler) Subscribe(c *gin.Context) {
	authorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	resp, err := h.service.Subscribe(c.Request.Context(), middleware.ViewerID(c), authorID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	authorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.service.Unsubscribe(c.Request.Context(), middleware.ViewerID(c), authorID); err != nil {
		handleError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) Subscriptions(c *gin.Context) {
	page, limit := pagination(c)

	recipesLimit := 0
	if v := c.Query("recipes_limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			recipesLimit = n
		}
	}

	subs, total, err := h.service.Subscriptions(
		c.Request.Context(), middleware.ViewerID(c), limit, (page-1)*limit, recipesLimit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"subscriptions": subs,
		"pagination":    paginationMeta(page, limit, total),
	})
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, user.ErrSelfFollow):
		response.Error(c, http.StatusBadRequest, "SELF_FOLLOW", "Cannot subscribe to yourself")
	case errors.Is(err, user.ErrAlreadyFollowing):
		response.Error(c, http.StatusBadRequest, "ALREADY_EXISTS", "Already subscribed to this author")
	case errors.Is(err, user.ErrNotFollowing):
		response.Error(c, http.StatusBadRequest, "NOT_IN_LIST", "Not subscribed to this author")
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
