package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DetailRatings struct {
	Quality       int `bson:"quality,omitempty" json:"quality,omitempty"`
	Communication int `bson:"communication,omitempty" json:"communication,omitempty"`
	Value         int `bson:"value,omitempty" json:"value,omitempty"`
}

type VendorResponse struct {
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookingID  primitive.ObjectID `bson:"booking_id" json:"booking_id"`
	ServiceID  primitive.ObjectID `bson:"service_id" json:"service_id"`
	EventID    primitive.ObjectID `bson:"event_id" json:"event_id"`
	ReviewerID primitive.ObjectID `bson:"reviewer_id" json:"reviewer_id"`
	VendorID   primitive.ObjectID `bson:"vendor_id" json:"vendor_id"`

	Rating        int            `bson:"rating" json:"rating"` // 1–5
	Text          string         `bson:"text,omitempty" json:"text,omitempty"`
	DetailRatings *DetailRatings `bson:"detail_ratings,omitempty" json:"detail_ratings,omitempty"`

	Response *VendorResponse `bson:"response,omitempty" json:"response,omitempty"`

	// HelpfulVotes is the set of users who marked this review helpful;
	// HelpfulCount mirrors its size exactly.
	HelpfulVotes []primitive.ObjectID `bson:"helpful_votes" json:"-"`
	HelpfulCount int                  `bson:"helpful_count" json:"helpful_count"`

	IsApproved       bool   `bson:"is_approved" json:"is_approved"`
	ModerationReason string `bson:"moderation_reason,omitempty" json:"moderation_reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasVoted reports whether userID is in the helpful-vote set.
func (r *Review) HasVoted(userID primitive.ObjectID) bool {
	for _, v := range r.HelpfulVotes {
		if v == userID {
			return true
		}
	}
	return false
}
