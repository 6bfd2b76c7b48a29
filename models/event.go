package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OrganizerID  primitive.ObjectID   `bson:"organizer_id" json:"organizer_id"`
	CoOrganizers []primitive.ObjectID `bson:"co_organizers,omitempty" json:"co_organizers,omitempty"`
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description,omitempty" json:"description,omitempty"`
	Location     string               `bson:"location,omitempty" json:"location,omitempty"`
	Date         time.Time            `bson:"date" json:"date"`

	// MaxAttendees is the capacity ceiling; nil means unlimited.
	MaxAttendees *int `bson:"max_attendees,omitempty" json:"max_attendees,omitempty"`

	// Derived from RSVP aggregation, never client-settable.
	CurrentAttendees int     `bson:"current_attendees" json:"current_attendees"`
	RSVPCount        int     `bson:"rsvp_count" json:"rsvp_count"`
	OverallRating    float64 `bson:"overall_rating" json:"overall_rating"`
	TotalRatings     int     `bson:"total_ratings" json:"total_ratings"`

	Status    string    `bson:"status" json:"status"` // draft, published, completed, cancelled
	Images    []string  `bson:"images" json:"images"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CanManage reports whether userID is the organizer or a co-organizer.
// Co-organizers share RSVP and booking management but not event deletion.
func (e *Event) CanManage(userID primitive.ObjectID) bool {
	if e.OrganizerID == userID {
		return true
	}
	for _, co := range e.CoOrganizers {
		if co == userID {
			return true
		}
	}
	return false
}
