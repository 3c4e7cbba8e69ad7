package handlers

import (
	"net/http"

	"github.com/anonto42/snapshare/backend/internal/middleware"
	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userService *services.UserService
	authService *services.AuthService
	cascade     *services.CascadeDeleter
	cookies     cookieWriter
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService, authService *services.AuthService, cascade *services.CascadeDeleter, secureCookies bool, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
		cascade:     cascade,
		cookies:     cookieWriter{secure: secureCookies},
		logger:      logger,
	}
}

// RegisterUserRoutes registers user routes on an authenticated group
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/me", h.GetMe)
	g.GET("", h.ListUsers)
	g.GET("/search", h.ListUsers)
	g.GET("/:id", h.GetUser)
	g.PUT("/:id", h.UpdateUser)
	g.PUT("/update-avatar/:id", h.UpdateAvatar)
	g.DELETE("/:id", h.DeleteUser)
}

// GetMe returns the authenticated user's profile
func (h *UserHandler) GetMe(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.userService.Me(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers pages through users, optionally filtered by ?search=
func (h *UserHandler) ListUsers(c echo.Context) error {
	page, err := h.userService.ListUsers(c.Request().Context(), c.QueryParam("search"), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetUser returns the public profile of the user in :id
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser edits the caller's own profile fields
func (h *UserHandler) UpdateUser(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), identity, c.Param("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateAvatar replaces the caller's avatar with the uploaded "avatar" file
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	img, err := formImage(c, "avatar")
	if err != nil {
		return err
	}
	if img == nil {
		return models.NewValidationError("Avatar image is required")
	}

	user, err := h.userService.UpdateAvatar(c.Request().Context(), identity, c.Param("id"), img)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser deletes the caller's account and everything it owns
func (h *UserHandler) DeleteUser(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	userID, err := h.userService.AuthorizeDelete(identity, c.Param("id"))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.cascade.DeleteUser(ctx, userID); err != nil {
		return err
	}
	// the account is gone either way; a failed revoke only leaves sessions that can no longer load a user
	if err := h.authService.RevokeAll(ctx, userID.Hex()); err != nil {
		h.logger.Warn("revoking sessions after account deletion", zap.String("user_id", userID.Hex()), zap.Error(err))
	}

	h.cookies.clear(c)
	return c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}
