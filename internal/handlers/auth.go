package handlers

import (
	"net/http"

	"github.com/anonto42/snapshare/backend/internal/auth"
	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles registration, login and the token cookies
type AuthHandler struct {
	authService *services.AuthService
	cookies     cookieWriter
}

// NewAuthHandler creates a new AuthHandler. secureCookies marks cookies Secure.
func NewAuthHandler(authService *services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookieWriter{secure: secureCookies}}
}

// RegisterAuthRoutes registers authentication routes; mw wraps the credential endpoints
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, mw ...echo.MiddlewareFunc) {
	g.POST("/register", h.Register, mw...)
	g.POST("/login", h.Login, mw...)
	g.POST("/refresh", h.Refresh, mw...)
	g.POST("/logout", h.Logout)
}

type authResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// Register handles multipart sign-up with an optional avatar file
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	avatar, err := formImage(c, "avatar")
	if err != nil {
		return err
	}

	session, err := h.authService.Register(c.Request().Context(), &req, avatar, c.Request().UserAgent())
	if err != nil {
		return err
	}

	h.cookies.setAccess(c, session.AccessToken)
	h.cookies.setRefresh(c, session.RefreshToken)
	return c.JSON(http.StatusCreated, authResponse{Message: "User registered successfully", User: session.User})
}

// Login handles username or email plus password sign-in
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return models.NewValidationError("Invalid request payload")
	}

	session, err := h.authService.Login(c.Request().Context(), &req, c.Request().UserAgent())
	if err != nil {
		return err
	}

	h.cookies.setAccess(c, session.AccessToken)
	h.cookies.setRefresh(c, session.RefreshToken)
	session.User.AvatarURL = session.User.AvatarOrDefault()
	return c.JSON(http.StatusOK, authResponse{Message: "Login successful", User: session.User})
}

// Refresh issues a new access cookie from the refresh cookie
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(auth.RefreshCookie)
	if err != nil || cookie.Value == "" {
		return models.NewUnauthorizedError("Refresh token missing")
	}

	access, err := h.authService.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return err
	}
	h.cookies.setAccess(c, access)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Token refreshed"})
}

// Logout revokes the refresh session and clears both cookies
func (h *AuthHandler) Logout(c echo.Context) error {
	var token string
	if cookie, err := c.Cookie(auth.RefreshCookie); err == nil {
		token = cookie.Value
	}
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	h.cookies.clear(c)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}
