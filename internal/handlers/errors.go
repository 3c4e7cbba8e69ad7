package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// NewErrorHandler maps handler errors to {"error", "code"} responses. Only
// AppErrors and echo.HTTPErrors reach the client with their message; anything
// else is logged and answered with a generic 500.
func NewErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request error",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("writing error response", zap.Error(err))
		}
	}
}

func errorResponse(err error) (int, models.ErrorResponse) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if appErr.Code == models.CodeInternal {
			return http.StatusInternalServerError, models.ErrorResponse{Error: appErr.Message, Code: models.CodeInternal}
		}
		return appErr.Status(), models.ErrorResponse{Error: appErr.Message, Code: appErr.Code}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
		return httpErr.Code, models.ErrorResponse{Error: fmt.Sprint(httpErr.Message), Code: codeForStatus(httpErr.Code)}
	}

	return http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error", Code: models.CodeInternal}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return models.CodeValidation
	case http.StatusUnauthorized:
		return models.CodeUnauthorized
	case http.StatusForbidden:
		return models.CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return models.CodeNotFound
	case http.StatusConflict:
		return models.CodeConflict
	case http.StatusTooManyRequests:
		return models.CodeRateLimited
	}
	return models.CodeInternal
}
