package core

import (
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Counter fields maintained with increment semantics. Booking volume is low
// enough that these never need correction-on-read; everything else is
// recomputed from source records.
const (
	CounterTotalBookings     = "total_bookings"
	CounterCompletedBookings = "completed_bookings"
)

// Counters recomputes derived aggregate fields from their underlying
// collections. Every method is idempotent and safe to re-run as a repair
// mechanism after a crash between a write and its cascade.
//
// All mutating paths must route rating and attendance updates through here
// rather than duplicating the aggregation inline.
type Counters struct {
	store Store
}

func NewCounters(store Store) *Counters {
	return &Counters{store: store}
}

// RecountEventAttendance re-derives current_attendees and rsvp_count from the
// rsvps collection rather than incrementing blindly, so counts converge even
// after concurrent partial failures.
func (c *Counters) RecountEventAttendance(ctx context.Context, eventID primitive.ObjectID) error {
	attendees, rsvps, err := c.store.CountEventAttendance(ctx, eventID)
	if err != nil {
		return err
	}
	return c.store.SetEventAttendance(ctx, eventID, attendees, rsvps)
}

// RecountEventRating averages event_rating over rated RSVPs.
func (c *Counters) RecountEventRating(ctx context.Context, eventID primitive.ObjectID) error {
	avg, n, err := c.store.AverageEventRating(ctx, eventID)
	if err != nil {
		return err
	}
	return c.store.SetEventRating(ctx, eventID, round1(avg), n)
}

// RecountServiceRating averages approved reviews for the service and cascades
// to the owning vendor's aggregate.
func (c *Counters) RecountServiceRating(ctx context.Context, serviceID primitive.ObjectID) error {
	avg, n, err := c.store.AverageServiceRating(ctx, serviceID)
	if err != nil {
		return err
	}
	if err := c.store.SetServiceRating(ctx, serviceID, round1(avg), n); err != nil {
		return err
	}
	svc, err := c.store.GetService(ctx, serviceID)
	if err != nil {
		return err
	}
	return c.RecountVendorRating(ctx, svc.VendorID)
}

// RecountVendorRating averages approved reviews across all the vendor's
// services.
func (c *Counters) RecountVendorRating(ctx context.Context, vendorID primitive.ObjectID) error {
	avg, n, err := c.store.AverageVendorRating(ctx, vendorID)
	if err != nil {
		return err
	}
	return c.store.SetVendorRating(ctx, vendorID, round1(avg), n)
}

// IncrementServiceBookingCounters bumps a booking counter on the service.
// Called once per booking creation (total_bookings) and once per transition
// into completed (completed_bookings).
func (c *Counters) IncrementServiceBookingCounters(ctx context.Context, serviceID primitive.ObjectID, field string) error {
	return c.store.IncServiceCounter(ctx, serviceID, field)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
