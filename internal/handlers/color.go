package handlers

import (
	"errors"
	"net/http"

	"github.com/grvsharma1810/pulse/internal/core"
	"github.com/grvsharma1810/pulse/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ColorHandler serves the favorite-color resource for web and CLI callers.
type ColorHandler struct {
	users  *services.UserService
	logger *zap.Logger
}

func NewColorHandler(us *services.UserService, logger *zap.Logger) *ColorHandler {
	return &ColorHandler{users: us, logger: logger}
}

// GetFavoriteColor handles GET /favorite-color and GET /cli/favorite-color.
func (h *ColorHandler) GetFavoriteColor(c *gin.Context) {
	p, ok := core.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		return
	}

	color, err := h.users.GetFavoriteColor(c.Request.Context(), p.WorkOSID)
	if errors.Is(err, services.ErrUserNotFound) && p.User != nil {
		_, err = h.users.EnsureUser(c.Request.Context(), p.User)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favoriteColor": color})
}

type setColorRequest struct {
	FavoriteColor string `json:"favoriteColor" binding:"required"`
}

// SetFavoriteColor handles POST /favorite-color and POST /cli/favorite-color.
func (h *ColorHandler) SetFavoriteColor(c *gin.Context) {
	p, ok := core.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		return
	}

	var req setColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "favoriteColor is required"})
		return
	}

	ctx := c.Request.Context()
	if p.User != nil {
		if _, err := h.users.EnsureUser(ctx, p.User); err != nil {
			h.logger.Warn("failed to sync user before color update", zap.Error(err))
		}
	}

	color, err := h.users.SetFavoriteColor(ctx, p.WorkOSID, req.FavoriteColor)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Favorite color updated successfully",
		"favoriteColor": color,
	})
}

func (h *ColorHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidColor):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		h.logger.Error("favorite color request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
