package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/snapshare/backend/internal/auth"
	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// MessageResponse is the body of endpoints that only confirm an action
type MessageResponse struct {
	Message string `json:"message"`
}

// bindAndValidate binds the request into req and runs the echo validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return models.NewValidationError("Invalid request payload")
	}
	return c.Validate(req)
}

// formImage reads an optional image field; a missing file yields nil
func formImage(c echo.Context, field string) (*storage.Image, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, models.NewValidationError("Invalid " + field + " upload")
	}
	return storage.ReadImage(fh)
}

func queryInt(c echo.Context, name string) int64 {
	n, err := strconv.ParseInt(c.QueryParam(name), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// cookieWriter sets and clears the auth cookies
type cookieWriter struct {
	secure bool
}

func (w cookieWriter) set(c echo.Context, name, value string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   w.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (w cookieWriter) setAccess(c echo.Context, token string) {
	w.set(c, auth.AccessCookie, token, int(auth.AccessTTL.Seconds()))
}

func (w cookieWriter) setRefresh(c echo.Context, token string) {
	w.set(c, auth.RefreshCookie, token, int(auth.RefreshTTL.Seconds()))
}

func (w cookieWriter) clear(c echo.Context) {
	w.set(c, auth.AccessCookie, "", -1)
	w.set(c, auth.RefreshCookie, "", -1)
}
