package models

import (
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultBio is assigned at registration when the user leaves bio empty
const DefaultBio = "Hi, I'm using SnapShare!"

// User represents a SnapShare account stored in MongoDB
type User struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username       string             `json:"username" bson:"username"`
	Email          string             `json:"email" bson:"email"`
	HashPassword   string             `json:"-" bson:"hash_password"` // bcrypt hash, never serialized
	DisplayName    string             `json:"displayName" bson:"display_name"`
	AvatarURL      string             `json:"avatarUrl,omitempty" bson:"avatar_url,omitempty"`
	AvatarPublicID string             `json:"-" bson:"avatar_public_id,omitempty"` // object store identifier
	Bio            string             `json:"bio,omitempty" bson:"bio,omitempty"`
	Website        string             `json:"website,omitempty" bson:"website,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updated_at"`
}

// UserCompact is the author summary embedded in post, comment and follow listings
type UserCompact struct {
	ID        primitive.ObjectID `json:"id"`
	Username  string             `json:"username"`
	AvatarURL string             `json:"avatarUrl"`
}

// Compact returns the listing summary of the user
func (u *User) Compact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarOrDefault()}
}

// AvatarOrDefault returns the stored avatar URL or a generated placeholder
func (u *User) AvatarOrDefault() string {
	if u.AvatarURL != "" {
		return u.AvatarURL
	}
	return DefaultAvatarURL(u.DisplayName, u.Username)
}

// DefaultAvatarURL builds a ui-avatars placeholder from the best available name
func DefaultAvatarURL(displayName, username string) string {
	name := displayName
	if name == "" {
		name = username
	}
	if name == "" {
		name = "User"
	}
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&size=200&background=random&color=fff&bold=true", url.QueryEscape(name))
}

// RegisterRequest is the multipart form accepted by POST /register
type RegisterRequest struct {
	Username    string `form:"username" validate:"required,username"`
	Email       string `form:"email" validate:"required,email"`
	Password    string `form:"password" validate:"required,min=6"`
	DisplayName string `form:"displayName" validate:"required,max=60"`
	Bio         string `form:"bio" validate:"max=300"`
}

// LoginRequest accepts either a username or an email
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest whitelists the profile fields a user may change.
// Nil pointers mean "leave unchanged".
type UpdateUserRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=60"`
	Bio         *string `json:"bio" validate:"omitempty,max=300"`
	Website     *string `json:"website" validate:"omitempty,url"`
	Username    *string `json:"username"`
}

// Identity is the authenticated caller, resolved once from the access token
type Identity struct {
	UserID   primitive.ObjectID
	Username string
	Email    string
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}
