package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like is a (user, post) pair; the pair is unique
type Like struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"user_id"`
	PostID    primitive.ObjectID `json:"postId" bson:"post_id"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// ToggleLikeRequest defines the request body for POST /api/likes/toggle
type ToggleLikeRequest struct {
	PostID string `json:"postId"`
}
