package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service statuses.
const (
	ServiceActive          = "active"
	ServicePaused          = "paused"
	ServiceNotTakingOrders = "not_taking_orders"
)

type Service struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VendorID    primitive.ObjectID `bson:"vendor_id" json:"vendor_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"` // catering, photography, venue, music, ...
	Price       float64            `bson:"price" json:"price"`
	Status      string             `bson:"status" json:"status"`

	// Derived aggregates, written only by the counters package.
	RatingAverage     float64 `bson:"rating_average" json:"rating_average"`
	TotalRatings      int     `bson:"total_ratings" json:"total_ratings"`
	TotalBookings     int     `bson:"total_bookings" json:"total_bookings"`
	CompletedBookings int     `bson:"completed_bookings" json:"completed_bookings"`

	Images    []string  `bson:"images" json:"images"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
