package core

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-marketplace-go/models"
)

// ErrNoDocument is returned by Get* methods when nothing matches. The mongo
// implementation translates mongo.ErrNoDocuments to this; callers turn it
// into a KindNotFound error with an entity-specific message.
var ErrNoDocument = &Error{Kind: KindNotFound, Message: "no document"}

// Store is the document-store capability the core operates against. It is
// per-document atomic only; cross-document consistency is eventual and
// repaired by the recount functions in counters.go.
type Store interface {
	BookingStore
	EventStore
	RSVPStore
	ServiceStore
	ReviewStore
	UserStore
}

type BookingStore interface {
	GetBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	// FindActiveBooking returns the non-cancelled/non-refunded booking for
	// (event, service), or ErrNoDocument.
	FindActiveBooking(ctx context.Context, eventID, serviceID primitive.ObjectID) (*models.Booking, error)
	InsertBooking(ctx context.Context, b *models.Booking) error
	UpdateBooking(ctx context.Context, b *models.Booking) error
}

type EventStore interface {
	GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	// CountEventAttendance re-derives attendance from the rsvps collection:
	// attendees = sum(1+guests) over going RSVPs, rsvps = count of
	// non-cancelled RSVPs.
	CountEventAttendance(ctx context.Context, eventID primitive.ObjectID) (attendees, rsvps int, err error)
	// AverageEventRating aggregates over rated RSVPs for the event.
	AverageEventRating(ctx context.Context, eventID primitive.ObjectID) (avg float64, n int, err error)
	SetEventAttendance(ctx context.Context, eventID primitive.ObjectID, attendees, rsvps int) error
	SetEventRating(ctx context.Context, eventID primitive.ObjectID, avg float64, n int) error
}

type RSVPStore interface {
	GetRSVP(ctx context.Context, id primitive.ObjectID) (*models.RSVP, error)
	FindRSVP(ctx context.Context, eventID, attendeeID primitive.ObjectID) (*models.RSVP, error)
	FindRSVPByCode(ctx context.Context, eventID primitive.ObjectID, code string) (*models.RSVP, error)
	InsertRSVP(ctx context.Context, r *models.RSVP) error
	UpdateRSVP(ctx context.Context, r *models.RSVP) error
}

type ServiceStore interface {
	GetService(ctx context.Context, id primitive.ObjectID) (*models.Service, error)
	SetServiceRating(ctx context.Context, serviceID primitive.ObjectID, avg float64, n int) error
	// IncServiceCounter increments total_bookings or completed_bookings.
	IncServiceCounter(ctx context.Context, serviceID primitive.ObjectID, field string) error
}

type ReviewStore interface {
	GetReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	FindReviewByBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Review, error)
	InsertReview(ctx context.Context, r *models.Review) error
	UpdateReview(ctx context.Context, r *models.Review) error
	// AverageServiceRating aggregates approved reviews for one service.
	AverageServiceRating(ctx context.Context, serviceID primitive.ObjectID) (avg float64, n int, err error)
	// AverageVendorRating aggregates approved reviews across every service
	// the vendor owns.
	AverageVendorRating(ctx context.Context, vendorID primitive.ObjectID) (avg float64, n int, err error)
}

type UserStore interface {
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetVendorRating(ctx context.Context, vendorID primitive.ObjectID, avg float64, n int) error
	AddUserXP(ctx context.Context, id primitive.ObjectID, points int) error
}
