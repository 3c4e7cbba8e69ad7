package validators

import (
	"testing"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"ab", true},
		{"valid_user1", false},
		{"abc", false},
		{"this_username_is_way_too_long_x", true},
		{"has space", true},
		{"dash-name", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := ValidateUsername(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, models.HasCode(err, models.CodeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername_LengthMessage(t *testing.T) {
	err := ValidateUsername(NormalizeUsername("  AB "))
	require.Error(t, err)
	assert.Equal(t, "Username must be at least 3 characters", err.Error())
}

func TestCustomValidator_Struct(t *testing.T) {
	v := NewValidator()

	ok := models.RegisterRequest{Username: "Valid_User1", Email: "a@b.co", Password: "secret1", DisplayName: "A"}
	assert.NoError(t, v.Validate(ok))

	bad := ok
	bad.Username = "ab"
	err := v.Validate(bad)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
	assert.Equal(t, "Username must be at least 3 characters", err.Error())

	bad = ok
	bad.Password = "123"
	assert.Error(t, v.Validate(bad))
}
