package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", models.NewValidationError("postId is required"), http.StatusBadRequest, `{"error":"postId is required","code":"VALIDATION_ERROR"}`},
		{"wrapped not found", fmt.Errorf("toggle: %w", models.NewNotFoundError("Post")), http.StatusNotFound, `{"error":"Post not found","code":"NOT_FOUND"}`},
		{"forbidden", models.NewForbiddenError("nope"), http.StatusForbidden, `{"error":"nope","code":"FORBIDDEN"}`},
		{"echo http error", echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), http.StatusTooManyRequests, `{"error":"slow down","code":"RATE_LIMITED"}`},
		{"echo not found", echo.ErrNotFound, http.StatusNotFound, `{"error":"Not Found","code":"NOT_FOUND"}`},
		{"internal details hidden", errors.New("mongo: connection refused"), http.StatusInternalServerError, `{"error":"Internal server error","code":"INTERNAL_ERROR"}`},
		{"object store", &models.ObjectStoreError{Op: "upload", Err: errors.New("quota")}, http.StatusInternalServerError, `{"error":"Internal server error","code":"INTERNAL_ERROR"}`},
	}

	handler := NewErrorHandler(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handler(tt.err, c)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}
