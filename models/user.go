package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // user, admin
	XP           int                `bson:"xp" json:"xp"`

	// Vendor rating aggregates, recomputed from reviews. Never client-settable.
	RatingAverage float64 `bson:"rating_average" json:"rating_average"`
	TotalRatings  int     `bson:"total_ratings" json:"total_ratings"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
