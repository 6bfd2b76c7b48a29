package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/event-marketplace-go/models"
)

// EnsureIndexes creates the uniqueness and retention indexes the core relies
// on. Safe to call on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	// One user per email.
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	// One RSVP per (event, attendee).
	_, err = db.Collection("rsvps").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "attendee_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("rsvps index: %w", err)
	}

	// One review per booking.
	_, err = db.Collection("reviews").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "booking_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("reviews index: %w", err)
	}

	// At most one active booking per (event, service). Cancelled and refunded
	// bookings are retained, so uniqueness only covers the live statuses.
	_, err = db.Collection("bookings").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "service_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
			"status": bson.M{"$in": bson.A{
				models.BookingPending,
				models.BookingConfirmed,
				models.BookingInProgress,
				models.BookingCompleted,
			}},
		}),
	})
	if err != nil {
		return fmt.Errorf("bookings index: %w", err)
	}

	// Notifications expire on their own.
	_, err = db.Collection("notifications").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("notifications index: %w", err)
	}
	return nil
}
