package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking statuses.
const (
	BookingPending    = "pending"
	BookingConfirmed  = "confirmed"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
	BookingRefunded   = "refunded"
)

// Payment statuses, derived from total_paid vs price_agreed.
const (
	PaymentUnpaid   = "unpaid"
	PaymentPartial  = "partial"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

type PaymentRecord struct {
	ID            string    `bson:"id" json:"id"`
	Amount        float64   `bson:"amount" json:"amount"`
	Method        string    `bson:"method" json:"method"` // MPESA, STRIPE, CASH
	TransactionID string    `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	PaidAt        time.Time `bson:"paid_at" json:"paid_at"`
	Notes         string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

type Booking struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID     primitive.ObjectID `bson:"event_id" json:"event_id"`
	ServiceID   primitive.ObjectID `bson:"service_id" json:"service_id"`
	OrganizerID primitive.ObjectID `bson:"organizer_id" json:"organizer_id"`
	VendorID    primitive.ObjectID `bson:"vendor_id" json:"vendor_id"`
	EventDate   time.Time          `bson:"event_date" json:"event_date"`
	Status      string             `bson:"status" json:"status"`
	PriceAgreed float64            `bson:"price_agreed" json:"price_agreed"`

	Payments []PaymentRecord `bson:"payments" json:"payments"`
	// TotalPaid is always recomputed from Payments, never set independently.
	TotalPaid     float64 `bson:"total_paid" json:"total_paid"`
	PaymentStatus string  `bson:"payment_status" json:"payment_status"`

	CancelReason string              `bson:"cancel_reason,omitempty" json:"cancel_reason,omitempty"`
	CancelledBy  *primitive.ObjectID `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
	CancelledAt  *time.Time          `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CompletedAt  *time.Time          `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether no further status transition is allowed.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingCompleted, BookingCancelled, BookingRefunded:
		return true
	}
	return false
}

// IsActive reports whether the booking still occupies its (event, service)
// slot. At most one active booking may exist per pair.
func (b *Booking) IsActive() bool {
	return b.Status != BookingCancelled && b.Status != BookingRefunded
}

// SumPayments returns the sum of all recorded payment amounts.
func (b *Booking) SumPayments() float64 {
	var total float64
	for _, p := range b.Payments {
		total += p.Amount
	}
	return total
}

// PaymentStatusFor derives the payment status from the amount paid so far.
// Overpayment is accepted and reported as paid.
func PaymentStatusFor(totalPaid, priceAgreed float64) string {
	switch {
	case totalPaid <= 0:
		return PaymentUnpaid
	case totalPaid < priceAgreed:
		return PaymentPartial
	default:
		return PaymentPaid
	}
}
