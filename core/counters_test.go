package core

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-marketplace-go/models"
)

func (f *fixture) seedReview(t *testing.T, serviceID, vendorID primitive.ObjectID, rating int, approved bool) models.Review {
	t.Helper()
	r := models.Review{
		ID:         primitive.NewObjectID(),
		BookingID:  primitive.NewObjectID(),
		ServiceID:  serviceID,
		VendorID:   vendorID,
		ReviewerID: f.organizer,
		Rating:     rating,
		IsApproved: approved,
	}
	f.store.reviews[r.ID] = r
	return r
}

func TestRecountServiceRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedReview(t, f.service.ID, f.vendor, 4, true)
	f.seedReview(t, f.service.ID, f.vendor, 5, true)
	f.seedReview(t, f.service.ID, f.vendor, 1, false) // rejected, excluded

	if err := f.counters.RecountServiceRating(ctx, f.service.ID); err != nil {
		t.Fatalf("recount: %v", err)
	}

	svc := f.mustService(t, f.service.ID)
	if svc.RatingAverage != 4.5 || svc.TotalRatings != 2 {
		t.Fatalf("service rating = %v/%d, want 4.5/2", svc.RatingAverage, svc.TotalRatings)
	}

	// Cascades to the vendor aggregate.
	vendor := f.store.users[f.vendor]
	if vendor.RatingAverage != 4.5 || vendor.TotalRatings != 2 {
		t.Fatalf("vendor rating = %v/%d, want 4.5/2", vendor.RatingAverage, vendor.TotalRatings)
	}
}

func TestRecountServiceRatingIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedReview(t, f.service.ID, f.vendor, 3, true)
	f.seedReview(t, f.service.ID, f.vendor, 5, true)

	if err := f.counters.RecountServiceRating(ctx, f.service.ID); err != nil {
		t.Fatalf("first recount: %v", err)
	}
	first := f.mustService(t, f.service.ID)

	if err := f.counters.RecountServiceRating(ctx, f.service.ID); err != nil {
		t.Fatalf("second recount: %v", err)
	}
	second := f.mustService(t, f.service.ID)

	if first.RatingAverage != second.RatingAverage || first.TotalRatings != second.TotalRatings {
		t.Fatalf("recount not idempotent: %v/%d then %v/%d",
			first.RatingAverage, first.TotalRatings, second.RatingAverage, second.TotalRatings)
	}
}

func TestRatingRoundedToOneDecimal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedReview(t, f.service.ID, f.vendor, 3, true)
	f.seedReview(t, f.service.ID, f.vendor, 4, true)
	f.seedReview(t, f.service.ID, f.vendor, 4, true)

	if err := f.counters.RecountServiceRating(ctx, f.service.ID); err != nil {
		t.Fatalf("recount: %v", err)
	}

	// 11/3 = 3.666... rounds to 3.7.
	if got := f.mustService(t, f.service.ID).RatingAverage; got != 3.7 {
		t.Fatalf("rating = %v, want 3.7", got)
	}
}

func TestRecountVendorRatingAcrossServices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := f.seedService(f.vendor, models.ServiceActive)
	f.seedReview(t, f.service.ID, f.vendor, 5, true)
	f.seedReview(t, other.ID, f.vendor, 2, true)

	if err := f.counters.RecountVendorRating(ctx, f.vendor); err != nil {
		t.Fatalf("recount vendor: %v", err)
	}

	vendor := f.store.users[f.vendor]
	if vendor.RatingAverage != 3.5 || vendor.TotalRatings != 2 {
		t.Fatalf("vendor rating = %v/%d, want 3.5/2", vendor.RatingAverage, vendor.TotalRatings)
	}
}

func TestRecountWithNoReviewsZeroes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Stale values left by a previous state.
	svc := f.mustService(t, f.service.ID)
	svc.RatingAverage = 4.2
	svc.TotalRatings = 7
	f.store.services[svc.ID] = svc

	if err := f.counters.RecountServiceRating(ctx, f.service.ID); err != nil {
		t.Fatalf("recount: %v", err)
	}
	got := f.mustService(t, f.service.ID)
	if got.RatingAverage != 0 || got.TotalRatings != 0 {
		t.Fatalf("rating = %v/%d, want 0/0", got.RatingAverage, got.TotalRatings)
	}
}

func TestRecountEventAttendanceIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		u := f.seedUser("Attendee")
		if _, err := f.rsvps.Upsert(ctx, f.event.ID, u, models.RSVPGoing, 1); err != nil {
			t.Fatalf("rsvp: %v", err)
		}
	}

	if err := f.counters.RecountEventAttendance(ctx, f.event.ID); err != nil {
		t.Fatalf("recount: %v", err)
	}
	first := f.mustEvent(t, f.event.ID)
	if err := f.counters.RecountEventAttendance(ctx, f.event.ID); err != nil {
		t.Fatalf("recount again: %v", err)
	}
	second := f.mustEvent(t, f.event.ID)

	if first.CurrentAttendees != 6 || second.CurrentAttendees != 6 || first.RSVPCount != 3 || second.RSVPCount != 3 {
		t.Fatalf("attendance = %d/%d then %d/%d, want stable 6/3",
			first.CurrentAttendees, first.RSVPCount, second.CurrentAttendees, second.RSVPCount)
	}
}
