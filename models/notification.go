package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types emitted by the booking, RSVP and review flows.
const (
	NotifBookingRequested = "booking_requested"
	NotifBookingConfirmed = "booking_confirmed"
	NotifBookingCancelled = "booking_cancelled"
	NotifBookingCompleted = "booking_completed"
	NotifPaymentRecorded  = "payment_recorded"
	NotifReviewReceived   = "review_received"
	NotifReviewRejected   = "review_rejected"
)

// NotificationTTL is the default retention window.
const NotificationTTL = 30 * 24 * time.Hour

// RelatedRefs points a notification at the entities it concerns.
type RelatedRefs struct {
	BookingID *primitive.ObjectID `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	EventID   *primitive.ObjectID `bson:"event_id,omitempty" json:"event_id,omitempty"`
	ServiceID *primitive.ObjectID `bson:"service_id,omitempty" json:"service_id,omitempty"`
	ReviewID  *primitive.ObjectID `bson:"review_id,omitempty" json:"review_id,omitempty"`
}

type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	Type        string             `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Message     string             `bson:"message" json:"message"`
	Related     RelatedRefs        `bson:"related,omitempty" json:"related,omitempty"`
	Read        bool               `bson:"read" json:"read"`
	ExpiresAt   time.Time          `bson:"expires_at" json:"expires_at"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
