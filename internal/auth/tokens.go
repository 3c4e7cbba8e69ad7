// Package auth issues and verifies the signed session tokens stored in cookies.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Token kinds carried in the token_type claim
const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

// Cookie names the tokens travel in
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// Default lifetimes, matching the cookie max-age
const (
	AccessTTL  = 24 * time.Hour
	RefreshTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken covers every verification failure: bad signature, expiry, wrong kind
var ErrInvalidToken = errors.New("token is invalid or expired")

// TokenService signs HS256 tokens with a shared secret
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), now: time.Now}
}

// Issue signs a token of the given kind for the user. The returned claims
// carry the generated token id (jti) and expiry.
func (s *TokenService) Issue(user *models.User, kind string, ttl time.Duration) (string, *models.JwtCustomClaims, error) {
	now := s.now()
	claims := &models.JwtCustomClaims{
		UserID:    user.ID.Hex(),
		Username:  user.Username,
		Email:     user.Email,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, claims, nil
}

// Verify parses a token and checks signature, expiry and kind
func (s *TokenService) Verify(tokenString, kind string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.now(), true) {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != kind {
		return nil, ErrInvalidToken
	}
	if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IdentityFromClaims normalizes verified claims into the request identity
func IdentityFromClaims(claims *models.JwtCustomClaims) (models.Identity, error) {
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return models.Identity{}, ErrInvalidToken
	}
	return models.Identity{UserID: id, Username: claims.Username, Email: claims.Email}, nil
}
