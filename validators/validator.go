package validators

import (
	"regexp"
	"strings"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/go-playground/validator/v10"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 30
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// CustomValidator adapts go-playground/validator to echo.Validator
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the validator installed on the echo instance
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidateUsername(NormalizeUsername(fl.Field().String())) == nil
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator; failures are VALIDATION_ERROR AppErrors
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return models.NewValidationError(describe(verrs[0]))
		}
		return models.NewValidationError(err.Error())
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "url":
		return fe.Field() + " must be a valid URL"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "username":
		if err := ValidateUsername(NormalizeUsername(fe.Value().(string))); err != nil {
			return err.Error()
		}
	}
	return fe.Field() + " is invalid"
}

// NormalizeUsername trims and lowercases a username the way it is stored
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateUsername checks an already normalized username
func ValidateUsername(s string) error {
	if len(s) < UsernameMinLen {
		return models.NewValidationError("Username must be at least 3 characters")
	}
	if len(s) > UsernameMaxLen {
		return models.NewValidationError("Username must be at most 30 characters")
	}
	if !usernamePattern.MatchString(s) {
		return models.NewValidationError("Username can only contain letters, numbers, and underscores")
	}
	return nil
}
