package core

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-marketplace-go/models"
)

// Bookings owns the booking lifecycle: guarded status transitions, payment
// accounting, the service booking counters, and the notification side-effects
// of each transition.
//
// Transitions: pending → confirmed → in_progress → completed, with cancelled
// and refunded as side exits from any non-terminal state. A completed booking
// can never be cancelled.
type Bookings struct {
	store    Store
	counters *Counters
	notifier Notifier
	locks    *keyedMutex
}

func NewBookings(store Store, counters *Counters, notifier Notifier) *Bookings {
	return &Bookings{
		store:    store,
		counters: counters,
		notifier: notifier,
		locks:    newKeyedMutex(),
	}
}

// Create opens a pending booking for (event, service). The caller must be the
// event's organizer, the service must be taking orders, and no active booking
// may already exist for the pair.
func (s *Bookings) Create(ctx context.Context, organizerID, eventID, serviceID primitive.ObjectID, eventDate time.Time, priceAgreed float64) (*models.Booking, error) {
	if priceAgreed < 0 {
		return nil, errf(KindValidation, "price_agreed must not be negative")
	}

	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, errf(KindNotFound, "event not found")
	}
	if event.OrganizerID != organizerID {
		return nil, errf(KindForbidden, "only the event organizer can book services")
	}

	svc, err := s.store.GetService(ctx, serviceID)
	if err != nil {
		return nil, errf(KindNotFound, "service not found")
	}
	if svc.Status == models.ServiceNotTakingOrders {
		return nil, errf(KindInvalidState, "service is not taking orders")
	}

	// Serialize per (event, service) so two concurrent creates cannot both
	// pass the duplicate check.
	unlock := s.locks.Lock("pair:" + eventID.Hex() + ":" + serviceID.Hex())
	defer unlock()

	if _, err := s.store.FindActiveBooking(ctx, eventID, serviceID); err == nil {
		return nil, errf(KindConflict, "an active booking already exists for this event and service")
	}

	now := time.Now()
	booking := &models.Booking{
		ID:            primitive.NewObjectID(),
		EventID:       eventID,
		ServiceID:     serviceID,
		OrganizerID:   organizerID,
		VendorID:      svc.VendorID,
		EventDate:     eventDate,
		Status:        models.BookingPending,
		PriceAgreed:   priceAgreed,
		Payments:      []models.PaymentRecord{},
		PaymentStatus: models.PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.InsertBooking(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.counters.IncrementServiceBookingCounters(ctx, serviceID, CounterTotalBookings); err != nil {
		log.Printf("increment total_bookings for service %s failed: %v", serviceID.Hex(), err)
	}

	notify(ctx, s.notifier, svc.VendorID, models.NotifBookingRequested,
		"New booking request",
		"You have a new booking request for "+event.Title,
		models.RelatedRefs{BookingID: ref(booking.ID), EventID: ref(eventID), ServiceID: ref(serviceID)})

	return booking, nil
}

// Confirm moves a pending booking to confirmed. Vendor-only.
func (s *Bookings) Confirm(ctx context.Context, bookingID, callerID primitive.ObjectID) (*models.Booking, error) {
	unlock := s.locks.Lock("booking:" + bookingID.Hex())
	defer unlock()

	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, errf(KindNotFound, "booking not found")
	}
	if b.VendorID != callerID {
		return nil, errf(KindForbidden, "only the vendor can confirm a booking")
	}
	if b.Status != models.BookingPending {
		return nil, errf(KindInvalidState, "cannot confirm a booking in status %q", b.Status)
	}

	b.Status = models.BookingConfirmed
	b.UpdatedAt = time.Now()
	if err := s.store.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	notify(ctx, s.notifier, b.OrganizerID, models.NotifBookingConfirmed,
		"Booking confirmed",
		"The vendor confirmed your booking",
		models.RelatedRefs{BookingID: ref(b.ID), EventID: ref(b.EventID)})

	return b, nil
}

// Start moves a confirmed booking to in_progress. Vendor-only.
func (s *Bookings) Start(ctx context.Context, bookingID, callerID primitive.ObjectID) (*models.Booking, error) {
	unlock := s.locks.Lock("booking:" + bookingID.Hex())
	defer unlock()

	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, errf(KindNotFound, "booking not found")
	}
	if b.VendorID != callerID {
		return nil, errf(KindForbidden, "only the vendor can start a booking")
	}
	if b.Status != models.BookingConfirmed {
		return nil, errf(KindInvalidState, "cannot start a booking in status %q", b.Status)
	}

	b.Status = models.BookingInProgress
	b.UpdatedAt = time.Now()
	if err := s.store.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Cancel ends a booking from any non-terminal state. Organizer or vendor.
// Cancellation is terminal but the record is retained, never deleted.
func (s *Bookings) Cancel(ctx context.Context, bookingID, callerID primitive.ObjectID, reason string) (*models.Booking, error) {
	unlock := s.locks.Lock("booking:" + bookingID.Hex())
	defer unlock()

	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, errf(KindNotFound, "booking not found")
	}
	if b.OrganizerID != callerID && b.VendorID != callerID {
		return nil, errf(KindForbidden, "only the organizer or vendor can cancel")
	}
	if b.Status == models.BookingCompleted {
		return nil, errf(KindInvalidState, "a completed booking cannot be cancelled")
	}
	if b.IsTerminal() {
		return nil, errf(KindInvalidState, "booking is already %s", b.Status)
	}

	now := time.Now()
	b.Status = models.BookingCancelled
	b.CancelReason = reason
	b.CancelledBy = ref(callerID)
	b.CancelledAt = &now
	b.UpdatedAt = now
	if err := s.store.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	// Tell whichever party did not cancel.
	other := b.VendorID
	if callerID == b.VendorID {
		other = b.OrganizerID
	}
	notify(ctx, s.notifier, other, models.NotifBookingCancelled,
		"Booking cancelled",
		"The booking was cancelled: "+reason,
		models.RelatedRefs{BookingID: ref(b.ID), EventID: ref(b.EventID)})

	return b, nil
}

// Refund marks a non-terminal booking refunded. Vendor-only.
func (s *Bookings) Refund(ctx context.Context, bookingID, callerID primitive.ObjectID) (*models.Booking, error) {
	unlock := s.locks.Lock("booking:" + bookingID.Hex())
	defer unlock()

	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, errf(KindNotFound, "booking not found")
	}
	if b.VendorID != callerID {
		return nil, errf(KindForbidden, "only the vendor can refund a booking")
	}
	if b.IsTerminal() {
		return nil, errf(KindInvalidState, "cannot refund a booking in status %q", b.Status)
	}

	b.Status = models.BookingRefunded
	b.PaymentStatus = models.PaymentRefunded
	b.UpdatedAt = time.Now()
	if err := s.store.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	notify(ctx, s.notifier, b.OrganizerID, models.NotifBookingCancelled,
		"Booking refunded",
		"The vendor refunded your booking",
		models.RelatedRefs{BookingID: ref(b.ID), EventID: ref(b.EventID)})

	return b, nil
}

// Complete finishes a confirmed or in-progress booking. Organizer-only.
// Completion enables review creation for this booking.
func (s *Bookings) Complete(ctx context.Context, bookingID, callerID primitive.ObjectID) (*models.Booking, error) {
	unlock := s.locks.Lock("booking:" + bookingID.Hex())
	defer unlock()

	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, errf(KindNotFound, "booking not found")
	}
	if b.OrganizerID != callerID {
		return nil, errf(KindForbidden, "only the organizer can complete a booking")
	}
	if b.Status != models.BookingConfirmed && b.Status != models.BookingInProgress {
		return nil, errf(KindInvalidState, "cannot complete a booking in status %q", b.Status)
	}

	now := time.Now()
	b.Status = models.BookingCompleted
	b.CompletedAt = &now
	b.UpdatedAt = now
	if err := s.store.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	if err := s.counters.IncrementServiceBookingCounters(ctx, b.ServiceID, CounterCompletedBookings); err != nil {
		log.Printf("increment completed_bookings for service %s failed: %v", b.ServiceID.Hex(), err)
	}

	notify(ctx, s.notifier, b.VendorID, models.NotifBookingCompleted,
		"Booking completed",
		"The organizer marked the booking as completed",
		models.RelatedRefs{BookingID: ref(b.ID), EventID: ref(b.EventID)})

	return b, nil
}

// RecordPayment appends a payment fact already confirmed externally and
// re-derives total_paid and payment_status. Amounts are never checked against
// the remaining balance: overpayment is accepted and reported as paid.
func (s *Bookings) RecordPayment(ctx context.Context, bookingID, callerID primitive.ObjectID, amount float64, method, transactionID, notes string) (*models.Booking, error) {
	if amount <= 0 {
		return nil, errf(KindValidation, "payment amount must be greater than 0")
	}

	unlock := s.locks.Lock("booking:" + bookingID.Hex())
	defer unlock()

	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, errf(KindNotFound, "booking not found")
	}
	if b.OrganizerID != callerID && b.VendorID != callerID {
		return nil, errf(KindForbidden, "only the organizer or vendor can record payments")
	}
	if b.Status == models.BookingCancelled || b.Status == models.BookingRefunded {
		return nil, errf(KindInvalidState, "cannot record a payment on a %s booking", b.Status)
	}

	now := time.Now()
	b.Payments = append(b.Payments, models.PaymentRecord{
		ID:            uuid.NewString(),
		Amount:        amount,
		Method:        method,
		TransactionID: transactionID,
		PaidAt:        now,
		Notes:         notes,
	})
	b.TotalPaid = b.SumPayments()
	b.PaymentStatus = models.PaymentStatusFor(b.TotalPaid, b.PriceAgreed)
	b.UpdatedAt = now
	if err := s.store.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	other := b.VendorID
	if callerID == b.VendorID {
		other = b.OrganizerID
	}
	notify(ctx, s.notifier, other, models.NotifPaymentRecorded,
		"Payment recorded",
		"A payment was recorded on your booking",
		models.RelatedRefs{BookingID: ref(b.ID), EventID: ref(b.EventID)})

	return b, nil
}
