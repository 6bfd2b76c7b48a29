package core

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-marketplace-go/models"
)

func createBooking(t *testing.T, f *fixture) *models.Booking {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), f.organizer, f.event.ID, f.service.ID, f.event.Date, 1500)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	b := createBooking(t, f)

	if b.Status != models.BookingPending {
		t.Fatalf("new booking status = %q, want pending", b.Status)
	}
	if b.VendorID != f.vendor {
		t.Fatalf("vendor = %s, want service owner", b.VendorID.Hex())
	}
	if b.PaymentStatus != models.PaymentUnpaid {
		t.Fatalf("payment status = %q, want unpaid", b.PaymentStatus)
	}
	if got := f.mustService(t, f.service.ID).TotalBookings; got != 1 {
		t.Fatalf("total_bookings = %d, want 1", got)
	}
	if note, ok := f.notifier.last(); !ok || note.Kind != models.NotifBookingRequested || note.Recipient != f.vendor {
		t.Fatalf("expected booking_requested notification to vendor, got %+v", note)
	}
}

func TestCreateBookingGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bookings.Create(ctx, f.organizer, primitive.NewObjectID(), f.service.ID, f.event.Date, 100)
	wantKind(t, err, KindNotFound)

	_, err = f.bookings.Create(ctx, f.organizer, f.event.ID, primitive.NewObjectID(), f.event.Date, 100)
	wantKind(t, err, KindNotFound)

	_, err = f.bookings.Create(ctx, f.vendor, f.event.ID, f.service.ID, f.event.Date, 100)
	wantKind(t, err, KindForbidden)

	_, err = f.bookings.Create(ctx, f.organizer, f.event.ID, f.service.ID, f.event.Date, -1)
	wantKind(t, err, KindValidation)

	closed := f.seedService(f.vendor, models.ServiceNotTakingOrders)
	_, err = f.bookings.Create(ctx, f.organizer, f.event.ID, closed.ID, f.event.Date, 100)
	wantKind(t, err, KindInvalidState)
}

func TestCreateBookingDuplicateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	createBooking(t, f)
	_, err := f.bookings.Create(ctx, f.organizer, f.event.ID, f.service.ID, f.event.Date, 1500)
	wantKind(t, err, KindConflict)
}

func TestCancelFreesBookingSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := createBooking(t, f)
	if _, err := f.bookings.Cancel(ctx, b.ID, f.organizer, "venue changed"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// A cancelled booking no longer blocks the (event, service) pair.
	if _, err := f.bookings.Create(ctx, f.organizer, f.event.ID, f.service.ID, f.event.Date, 1500); err != nil {
		t.Fatalf("create after cancel: %v", err)
	}
}

func TestConfirmBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := createBooking(t, f)

	_, err := f.bookings.Confirm(ctx, b.ID, f.organizer)
	wantKind(t, err, KindForbidden)

	got, err := f.bookings.Confirm(ctx, b.ID, f.vendor)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got.Status != models.BookingConfirmed {
		t.Fatalf("status = %q, want confirmed", got.Status)
	}
	if note, ok := f.notifier.last(); !ok || note.Kind != models.NotifBookingConfirmed || note.Recipient != f.organizer {
		t.Fatalf("expected booking_confirmed notification to organizer, got %+v", note)
	}

	_, err = f.bookings.Confirm(ctx, b.ID, f.vendor)
	wantKind(t, err, KindInvalidState)
}

func TestStartBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := createBooking(t, f)

	_, err := f.bookings.Start(ctx, b.ID, f.vendor)
	wantKind(t, err, KindInvalidState)

	if _, err := f.bookings.Confirm(ctx, b.ID, f.vendor); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	got, err := f.bookings.Start(ctx, b.ID, f.vendor)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got.Status != models.BookingInProgress {
		t.Fatalf("status = %q, want in_progress", got.Status)
	}
}

func TestCompleteBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := createBooking(t, f)

	// Cannot complete straight from pending.
	_, err := f.bookings.Complete(ctx, b.ID, f.organizer)
	wantKind(t, err, KindInvalidState)

	if _, err := f.bookings.Confirm(ctx, b.ID, f.vendor); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	_, err = f.bookings.Complete(ctx, b.ID, f.vendor)
	wantKind(t, err, KindForbidden)

	got, err := f.bookings.Complete(ctx, b.ID, f.organizer)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Status != models.BookingCompleted || got.CompletedAt == nil {
		t.Fatalf("status = %q completed_at = %v, want completed with timestamp", got.Status, got.CompletedAt)
	}
	if got := f.mustService(t, f.service.ID).CompletedBookings; got != 1 {
		t.Fatalf("completed_bookings = %d, want 1", got)
	}
}

func TestCancelCompletedBookingFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := createBooking(t, f)

	if _, err := f.bookings.Confirm(ctx, b.ID, f.vendor); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := f.bookings.Complete(ctx, b.ID, f.organizer); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err := f.bookings.Cancel(ctx, b.ID, f.organizer, "changed my mind")
	wantKind(t, err, KindInvalidState)
}

func TestCancelPendingBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := createBooking(t, f)

	got, err := f.bookings.Cancel(ctx, b.ID, f.organizer, "venue flooded")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != models.BookingCancelled {
		t.Fatalf("status = %q, want cancelled", got.Status)
	}
	if got.CancelledBy == nil || *got.CancelledBy != f.organizer || got.CancelledAt == nil || got.CancelReason != "venue flooded" {
		t.Fatalf("cancellation metadata not recorded: %+v", got)
	}
	if note, ok := f.notifier.last(); !ok || note.Kind != models.NotifBookingCancelled || note.Recipient != f.vendor {
		t.Fatalf("expected booking_cancelled notification to vendor, got %+v", note)
	}

	// Cancelling twice is rejected, not silently absorbed.
	_, err = f.bookings.Cancel(ctx, b.ID, f.vendor, "again")
	wantKind(t, err, KindInvalidState)
}

func TestCancelByOutsiderFails(t *testing.T) {
	f := newFixture(t)
	b := createBooking(t, f)

	_, err := f.bookings.Cancel(context.Background(), b.ID, f.attendee, "not my booking")
	wantKind(t, err, KindForbidden)
}

func TestRefundBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := createBooking(t, f)

	_, err := f.bookings.Refund(ctx, b.ID, f.organizer)
	wantKind(t, err, KindForbidden)

	got, err := f.bookings.Refund(ctx, b.ID, f.vendor)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if got.Status != models.BookingRefunded || got.PaymentStatus != models.PaymentRefunded {
		t.Fatalf("status = %q/%q, want refunded/refunded", got.Status, got.PaymentStatus)
	}

	_, err = f.bookings.Refund(ctx, b.ID, f.vendor)
	wantKind(t, err, KindInvalidState)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := createBooking(t, f) // price agreed 1500

	_, err := f.bookings.RecordPayment(ctx, b.ID, f.organizer, 0, "CASH", "", "")
	wantKind(t, err, KindValidation)

	_, err = f.bookings.RecordPayment(ctx, b.ID, f.attendee, 100, "CASH", "", "")
	wantKind(t, err, KindForbidden)

	got, err := f.bookings.RecordPayment(ctx, b.ID, f.organizer, 500, "MPESA", "TX-1", "deposit")
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if got.TotalPaid != 500 || got.PaymentStatus != models.PaymentPartial {
		t.Fatalf("total_paid = %v status = %q, want 500 partial", got.TotalPaid, got.PaymentStatus)
	}

	got, err = f.bookings.RecordPayment(ctx, b.ID, f.vendor, 1000, "CASH", "", "")
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if got.TotalPaid != 1500 || got.PaymentStatus != models.PaymentPaid {
		t.Fatalf("total_paid = %v status = %q, want 1500 paid", got.TotalPaid, got.PaymentStatus)
	}

	// total_paid always mirrors the payment list.
	if sum := got.SumPayments(); sum != got.TotalPaid {
		t.Fatalf("total_paid %v != sum of payments %v", got.TotalPaid, sum)
	}
	if len(got.Payments) != 2 {
		t.Fatalf("payments = %d, want 2", len(got.Payments))
	}
	if note, ok := f.notifier.last(); !ok || note.Kind != models.NotifPaymentRecorded || note.Recipient != f.organizer {
		t.Fatalf("expected payment_recorded notification to organizer, got %+v", note)
	}
}

func TestRecordPaymentOverpaymentAccepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := createBooking(t, f)

	got, err := f.bookings.RecordPayment(ctx, b.ID, f.organizer, 2000, "STRIPE", "TX-9", "")
	if err != nil {
		t.Fatalf("overpayment rejected: %v", err)
	}
	if got.TotalPaid != 2000 || got.PaymentStatus != models.PaymentPaid {
		t.Fatalf("total_paid = %v status = %q, want 2000 paid", got.TotalPaid, got.PaymentStatus)
	}
}

func TestRecordPaymentOnCancelledBookingFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := createBooking(t, f)

	if _, err := f.bookings.Cancel(ctx, b.ID, f.vendor, "double booked"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := f.bookings.RecordPayment(ctx, b.ID, f.organizer, 100, "CASH", "", "")
	wantKind(t, err, KindInvalidState)
}

func TestFullLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.bookings.Create(ctx, f.organizer, f.event.ID, f.service.ID, time.Now().Add(7*24*time.Hour), 800)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.bookings.Confirm(ctx, b.ID, f.vendor); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := f.bookings.Complete(ctx, b.ID, f.organizer); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, err := f.bookings.RecordPayment(ctx, b.ID, f.organizer, 800, "MPESA", "TX-77", "")
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if got.PaymentStatus != models.PaymentPaid {
		t.Fatalf("payment status = %q, want paid", got.PaymentStatus)
	}

	if _, err := f.reviews.Create(ctx, b.ID, f.organizer, 5, "flawless", nil); err != nil {
		t.Fatalf("create review: %v", err)
	}
	_, err = f.reviews.Create(ctx, b.ID, f.organizer, 4, "second thoughts", nil)
	wantKind(t, err, KindConflict)
}
