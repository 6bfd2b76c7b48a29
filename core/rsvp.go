package core

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-marketplace-go/models"
)

// XP awards granted by attendance and review side-effects.
const (
	XPAttendedEvent = 10
	XPWroteReview   = 5
)

// RSVPs serializes capacity-affecting writes per event so the sum of
// (1 + guests) over going RSVPs never exceeds max_attendees. Counts are
// re-derived from the rsvps collection after every mutation instead of
// incremented in place.
type RSVPs struct {
	store    Store
	counters *Counters
	notifier Notifier
	locks    *keyedMutex
}

func NewRSVPs(store Store, counters *Counters, notifier Notifier) *RSVPs {
	return &RSVPs{
		store:    store,
		counters: counters,
		notifier: notifier,
		locks:    newKeyedMutex(),
	}
}

// Upsert creates the attendee's RSVP for the event or updates it in place.
// An RSVP is unique per (event, attendee). The capacity check runs under the
// event lock, before the write commits.
func (s *RSVPs) Upsert(ctx context.Context, eventID, attendeeID primitive.ObjectID, status string, guestsCount int) (*models.RSVP, error) {
	switch status {
	case models.RSVPGoing, models.RSVPMaybe, models.RSVPNotGoing:
	default:
		return nil, errf(KindValidation, "invalid rsvp status %q", status)
	}
	if guestsCount < 0 || guestsCount > models.MaxRSVPGuests {
		return nil, errf(KindValidation, "guests_count must be between 0 and %d", models.MaxRSVPGuests)
	}

	unlock := s.locks.Lock("event:" + eventID.Hex())
	defer unlock()

	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, errf(KindNotFound, "event not found")
	}

	existing, err := s.store.FindRSVP(ctx, eventID, attendeeID)
	if err != nil && err != ErrNoDocument {
		return nil, err
	}

	oldSeats := 0
	if existing != nil {
		oldSeats = existing.Seats()
	}
	newSeats := 0
	if status == models.RSVPGoing {
		newSeats = 1 + guestsCount
	}
	if delta := newSeats - oldSeats; delta > 0 && event.MaxAttendees != nil {
		if event.CurrentAttendees+delta > *event.MaxAttendees {
			return nil, errf(KindCapacityExceeded, "event is at capacity")
		}
	}

	now := time.Now()
	var rsvp *models.RSVP
	if existing == nil {
		rsvp = &models.RSVP{
			ID:          primitive.NewObjectID(),
			EventID:     eventID,
			AttendeeID:  attendeeID,
			Status:      status,
			GuestsCount: guestsCount,
			CheckInCode: models.CheckInCodeFor(eventID, attendeeID),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.store.InsertRSVP(ctx, rsvp); err != nil {
			return nil, err
		}
	} else {
		existing.Status = status
		existing.GuestsCount = guestsCount
		existing.UpdatedAt = now
		if err := s.store.UpdateRSVP(ctx, existing); err != nil {
			return nil, err
		}
		rsvp = existing
	}

	// The write has committed; a recount failure is repaired by the next
	// recount, not surfaced as a failed rsvp.
	if err := s.counters.RecountEventAttendance(ctx, eventID); err != nil {
		log.Printf("recount attendance for event %s failed: %v", eventID.Hex(), err)
	}
	return rsvp, nil
}

// Cancel withdraws the attendee's own RSVP and frees its seats.
func (s *RSVPs) Cancel(ctx context.Context, rsvpID, callerID primitive.ObjectID) (*models.RSVP, error) {
	// First read only locates the event; the state is re-read under the lock.
	rsvp, err := s.store.GetRSVP(ctx, rsvpID)
	if err != nil {
		return nil, errf(KindNotFound, "rsvp not found")
	}

	unlock := s.locks.Lock("event:" + rsvp.EventID.Hex())
	defer unlock()

	rsvp, err = s.store.GetRSVP(ctx, rsvpID)
	if err != nil {
		return nil, errf(KindNotFound, "rsvp not found")
	}
	if rsvp.AttendeeID != callerID {
		return nil, errf(KindForbidden, "only the attendee can cancel their rsvp")
	}
	if rsvp.Status == models.RSVPCancelled {
		return nil, errf(KindInvalidState, "rsvp is already cancelled")
	}

	rsvp.Status = models.RSVPCancelled
	rsvp.UpdatedAt = time.Now()
	if err := s.store.UpdateRSVP(ctx, rsvp); err != nil {
		return nil, err
	}

	if err := s.counters.RecountEventAttendance(ctx, rsvp.EventID); err != nil {
		log.Printf("recount attendance for event %s failed: %v", rsvp.EventID.Hex(), err)
	}
	return rsvp, nil
}

// CheckIn marks the RSVP as arrived. Organizer or co-organizer only.
func (s *RSVPs) CheckIn(ctx context.Context, rsvpID, callerID primitive.ObjectID) (*models.RSVP, error) {
	rsvp, err := s.store.GetRSVP(ctx, rsvpID)
	if err != nil {
		return nil, errf(KindNotFound, "rsvp not found")
	}
	return s.checkIn(ctx, rsvp, callerID)
}

// CheckInByCode looks the RSVP up by its check-in code at the door.
func (s *RSVPs) CheckInByCode(ctx context.Context, eventID primitive.ObjectID, code string, callerID primitive.ObjectID) (*models.RSVP, error) {
	rsvp, err := s.store.FindRSVPByCode(ctx, eventID, code)
	if err != nil {
		return nil, errf(KindNotFound, "no rsvp matches that check-in code")
	}
	return s.checkIn(ctx, rsvp, callerID)
}

func (s *RSVPs) checkIn(ctx context.Context, rsvp *models.RSVP, callerID primitive.ObjectID) (*models.RSVP, error) {
	event, err := s.store.GetEvent(ctx, rsvp.EventID)
	if err != nil {
		return nil, errf(KindNotFound, "event not found")
	}
	if !event.CanManage(callerID) {
		return nil, errf(KindForbidden, "only the organizer or a co-organizer can check attendees in")
	}

	unlock := s.locks.Lock("event:" + rsvp.EventID.Hex())
	defer unlock()

	// Re-read under the lock; the whole-document replace below must not
	// revert a write committed after the initial lookup.
	rsvp, err = s.store.GetRSVP(ctx, rsvp.ID)
	if err != nil {
		return nil, errf(KindNotFound, "rsvp not found")
	}
	if rsvp.CheckedIn {
		return nil, errf(KindConflict, "attendee is already checked in")
	}

	now := time.Now()
	rsvp.CheckedIn = true
	rsvp.CheckedInAt = &now
	rsvp.UpdatedAt = now
	if err := s.store.UpdateRSVP(ctx, rsvp); err != nil {
		return nil, err
	}
	return rsvp, nil
}

// MarkAttended records post-event attendance and awards the attendee XP.
// Organizer or co-organizer only.
func (s *RSVPs) MarkAttended(ctx context.Context, rsvpID, callerID primitive.ObjectID) (*models.RSVP, error) {
	rsvp, err := s.store.GetRSVP(ctx, rsvpID)
	if err != nil {
		return nil, errf(KindNotFound, "rsvp not found")
	}
	event, err := s.store.GetEvent(ctx, rsvp.EventID)
	if err != nil {
		return nil, errf(KindNotFound, "event not found")
	}
	if !event.CanManage(callerID) {
		return nil, errf(KindForbidden, "only the organizer or a co-organizer can mark attendance")
	}

	unlock := s.locks.Lock("event:" + rsvp.EventID.Hex())
	defer unlock()

	rsvp, err = s.store.GetRSVP(ctx, rsvpID)
	if err != nil {
		return nil, errf(KindNotFound, "rsvp not found")
	}
	if rsvp.Attended {
		return nil, errf(KindInvalidState, "attendance already marked")
	}

	rsvp.Attended = true
	rsvp.UpdatedAt = time.Now()
	if err := s.store.UpdateRSVP(ctx, rsvp); err != nil {
		return nil, err
	}
	if err := s.store.AddUserXP(ctx, rsvp.AttendeeID, XPAttendedEvent); err != nil {
		return nil, err
	}
	return rsvp, nil
}

// RateEvent records the attendee's post-event rating and recounts the event's
// overall rating. Only allowed once the event date has passed; re-rating
// replaces the previous value.
func (s *RSVPs) RateEvent(ctx context.Context, rsvpID, callerID primitive.ObjectID, rating int) (*models.RSVP, error) {
	if rating < 1 || rating > 5 {
		return nil, errf(KindValidation, "rating must be between 1 and 5")
	}

	rsvp, err := s.store.GetRSVP(ctx, rsvpID)
	if err != nil {
		return nil, errf(KindNotFound, "rsvp not found")
	}
	if rsvp.AttendeeID != callerID {
		return nil, errf(KindForbidden, "only the attendee can rate the event")
	}
	event, err := s.store.GetEvent(ctx, rsvp.EventID)
	if err != nil {
		return nil, errf(KindNotFound, "event not found")
	}
	if event.Date.After(time.Now()) {
		return nil, errf(KindInvalidState, "the event has not happened yet")
	}

	unlock := s.locks.Lock("event:" + rsvp.EventID.Hex())
	defer unlock()

	rsvp, err = s.store.GetRSVP(ctx, rsvpID)
	if err != nil {
		return nil, errf(KindNotFound, "rsvp not found")
	}

	rsvp.EventRating = rating
	rsvp.UpdatedAt = time.Now()
	if err := s.store.UpdateRSVP(ctx, rsvp); err != nil {
		return nil, err
	}

	if err := s.counters.RecountEventRating(ctx, rsvp.EventID); err != nil {
		log.Printf("recount rating for event %s failed: %v", rsvp.EventID.Hex(), err)
	}
	return rsvp, nil
}
