package handlers

import (
	"net/http"

	"github.com/anonto42/snapshare/backend/internal/middleware"
	"github.com/anonto42/snapshare/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles HTTP requests related to follows
type FollowHandler struct {
	followService *services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followService *services.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// RegisterFollowRoutes registers follow routes on an authenticated group
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/:userId", h.FollowUser)
	g.DELETE("/:userId", h.UnfollowUser)
	g.GET("/:userId/followers", h.GetFollowers)
	g.GET("/:userId/following", h.GetFollowing)
}

func (h *FollowHandler) FollowUser(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	follow, err := h.followService.Follow(c.Request().Context(), identity, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, follow)
}

func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	if err := h.followService.Unfollow(c.Request().Context(), identity, c.Param("userId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Unfollowed successfully"})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	followers, err := h.followService.Followers(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, followers)
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	following, err := h.followService.Following(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, following)
}
