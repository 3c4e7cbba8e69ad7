package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow represents a directed follow edge between two users
type Follow struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FollowerID  primitive.ObjectID `json:"followerId" bson:"follower_id"`
	FollowingID primitive.ObjectID `json:"followingId" bson:"following_id"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
}

// FollowEntry is one row of a followers/following listing
type FollowEntry struct {
	ID        primitive.ObjectID `json:"id"`
	User      *UserCompact       `json:"user"`
	CreatedAt time.Time          `json:"createdAt"`
}
