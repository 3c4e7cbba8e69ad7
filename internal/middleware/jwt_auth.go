package middleware

import (
	"strings"

	"github.com/anonto42/snapshare/backend/internal/auth"
	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// JWTAuthMiddleware verifies the access token from the accessToken cookie, or
// from an "Authorization: Bearer" header when no cookie is sent, and stores the
// caller's Identity in the context.
func JWTAuthMiddleware(tokens *auth.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := accessToken(c)
			if tokenString == "" {
				return models.NewUnauthorizedError("Authentication required")
			}

			claims, err := tokens.Verify(tokenString, auth.AccessToken)
			if err != nil {
				return models.NewUnauthorizedError("Invalid or expired token")
			}
			identity, err := auth.IdentityFromClaims(claims)
			if err != nil {
				return models.NewUnauthorizedError("Invalid or expired token")
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// CurrentIdentity returns the identity stored by JWTAuthMiddleware
func CurrentIdentity(c echo.Context) (models.Identity, error) {
	identity, ok := c.Get(identityKey).(models.Identity)
	if !ok {
		return models.Identity{}, models.NewUnauthorizedError("Authentication required")
	}
	return identity, nil
}

func accessToken(c echo.Context) string {
	if cookie, err := c.Cookie(auth.AccessCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
