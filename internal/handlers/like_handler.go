package handlers

import (
	"net/http"

	"github.com/anonto42/snapshare/backend/internal/middleware"
	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	toggler *services.LikeToggler
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(toggler *services.LikeToggler) *LikeHandler {
	return &LikeHandler{toggler: toggler}
}

// RegisterLikeRoutes registers like routes on an authenticated group
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/toggle", h.ToggleLike)
}

// ToggleLike likes or unlikes the post named in the body
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	var req models.ToggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return models.NewValidationError("Invalid request payload")
	}

	res, err := h.toggler.Toggle(c.Request().Context(), identity.UserID, req.PostID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
