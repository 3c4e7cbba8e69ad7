package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents an image post stored in MongoDB
type Post struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"userId" bson:"user_id"`
	Title         string             `json:"title" bson:"title"`
	Caption       string             `json:"caption" bson:"caption"`
	ImageURL      string             `json:"imageUrl" bson:"image_url"`
	ImagePublicID string             `json:"-" bson:"image_public_id,omitempty"`
	LikeCount     int64              `json:"likeCount" bson:"like_count"` // denormalized, see LikeToggler
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updated_at"`
}

// PostWithAuthor is a post joined with its author's summary
type PostWithAuthor struct {
	Post
	Author *UserCompact `json:"author,omitempty"`
}

// CreatePostRequest holds the text fields of the multipart post form
type CreatePostRequest struct {
	Title   string `form:"title" validate:"required,max=150"`
	Caption string `form:"caption" validate:"max=2200"`
}
