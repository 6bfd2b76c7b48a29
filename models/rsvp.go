package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RSVP statuses.
const (
	RSVPGoing     = "going"
	RSVPMaybe     = "maybe"
	RSVPNotGoing  = "not_going"
	RSVPCancelled = "cancelled"
)

// MaxRSVPGuests bounds guests_count per RSVP.
const MaxRSVPGuests = 10

type RSVP struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID     primitive.ObjectID `bson:"event_id" json:"event_id"`
	AttendeeID  primitive.ObjectID `bson:"attendee_id" json:"attendee_id"`
	Status      string             `bson:"status" json:"status"`
	GuestsCount int                `bson:"guests_count" json:"guests_count"`

	CheckInCode string     `bson:"check_in_code" json:"check_in_code"`
	CheckedIn   bool       `bson:"checked_in" json:"checked_in"`
	CheckedInAt *time.Time `bson:"checked_in_at,omitempty" json:"checked_in_at,omitempty"`

	Attended    bool `bson:"attended" json:"attended"`
	EventRating int  `bson:"event_rating,omitempty" json:"event_rating,omitempty"` // 1–5, 0 = unrated

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Seats returns the attendee slots this RSVP occupies: 1 + guests when going,
// 0 otherwise.
func (r *RSVP) Seats() int {
	if r.Status == RSVPGoing {
		return 1 + r.GuestsCount
	}
	return 0
}

// CheckInCodeFor derives the check-in code deterministically from the event
// and attendee ids, so the code can be regenerated for lookup.
func CheckInCodeFor(eventID, attendeeID primitive.ObjectID) string {
	sum := sha256.Sum256([]byte(eventID.Hex() + ":" + attendeeID.Hex()))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}
