package core

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-marketplace-go/models"
)

// Reviews ties a completed booking to at most one review and propagates
// rating changes into the service and vendor aggregates.
type Reviews struct {
	store    Store
	counters *Counters
	notifier Notifier
	locks    *keyedMutex
}

func NewReviews(store Store, counters *Counters, notifier Notifier) *Reviews {
	return &Reviews{
		store:    store,
		counters: counters,
		notifier: notifier,
		locks:    newKeyedMutex(),
	}
}

// Create attaches a review to a completed booking. Only the booking's
// organizer may review, and only once per booking. New reviews are approved
// by default and immediately feed the service rating recount.
func (s *Reviews) Create(ctx context.Context, bookingID, reviewerID primitive.ObjectID, rating int, text string, details *models.DetailRatings) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, errf(KindValidation, "rating must be between 1 and 5")
	}

	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, errf(KindNotFound, "booking not found")
	}
	if b.OrganizerID != reviewerID {
		return nil, errf(KindForbidden, "only the booking's organizer can leave a review")
	}
	if b.Status != models.BookingCompleted {
		return nil, errf(KindInvalidState, "only completed bookings can be reviewed")
	}

	unlock := s.locks.Lock("booking:" + bookingID.Hex())
	defer unlock()

	if _, err := s.store.FindReviewByBooking(ctx, bookingID); err == nil {
		return nil, errf(KindConflict, "this booking already has a review")
	}

	now := time.Now()
	review := &models.Review{
		ID:            primitive.NewObjectID(),
		BookingID:     bookingID,
		ServiceID:     b.ServiceID,
		EventID:       b.EventID,
		ReviewerID:    reviewerID,
		VendorID:      b.VendorID,
		Rating:        rating,
		Text:          text,
		DetailRatings: details,
		HelpfulVotes:  []primitive.ObjectID{},
		IsApproved:    true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.InsertReview(ctx, review); err != nil {
		return nil, err
	}

	if err := s.counters.RecountServiceRating(ctx, b.ServiceID); err != nil {
		return nil, err
	}
	if err := s.store.AddUserXP(ctx, reviewerID, XPWroteReview); err != nil {
		return nil, err
	}

	notify(ctx, s.notifier, b.VendorID, models.NotifReviewReceived,
		"New review",
		"Your service received a new review",
		models.RelatedRefs{ReviewID: ref(review.ID), ServiceID: ref(b.ServiceID), BookingID: ref(bookingID)})

	return review, nil
}

// AddVendorResponse records the vendor's reply, once per review.
func (s *Reviews) AddVendorResponse(ctx context.Context, reviewID, callerID primitive.ObjectID, text string) (*models.Review, error) {
	if text == "" {
		return nil, errf(KindValidation, "response text is required")
	}

	unlock := s.locks.Lock("review:" + reviewID.Hex())
	defer unlock()

	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, errf(KindNotFound, "review not found")
	}
	if review.VendorID != callerID {
		return nil, errf(KindForbidden, "only the reviewed vendor can respond")
	}
	if review.Response != nil {
		return nil, errf(KindConflict, "this review already has a response")
	}

	review.Response = &models.VendorResponse{Text: text, CreatedAt: time.Now()}
	review.UpdatedAt = time.Now()
	if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ToggleHelpful flips the caller's membership in the helpful-vote set. The
// count always mirrors the set size.
func (s *Reviews) ToggleHelpful(ctx context.Context, reviewID, callerID primitive.ObjectID) (*models.Review, error) {
	unlock := s.locks.Lock("review:" + reviewID.Hex())
	defer unlock()

	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, errf(KindNotFound, "review not found")
	}

	if review.HasVoted(callerID) {
		votes := review.HelpfulVotes[:0]
		for _, v := range review.HelpfulVotes {
			if v != callerID {
				votes = append(votes, v)
			}
		}
		review.HelpfulVotes = votes
	} else {
		review.HelpfulVotes = append(review.HelpfulVotes, callerID)
	}
	review.HelpfulCount = len(review.HelpfulVotes)
	review.UpdatedAt = time.Now()

	if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// Moderate sets the approval flag. Admin-only; authorization happens at the
// route. Approval feeds the rating recompute filter, so a flipped flag always
// re-runs the service recount. Rejection notifies the reviewer.
func (s *Reviews) Moderate(ctx context.Context, reviewID primitive.ObjectID, isApproved bool, reason string) (*models.Review, error) {
	unlock := s.locks.Lock("review:" + reviewID.Hex())
	defer unlock()

	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, errf(KindNotFound, "review not found")
	}

	review.IsApproved = isApproved
	review.ModerationReason = reason
	review.UpdatedAt = time.Now()
	if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, err
	}

	if err := s.counters.RecountServiceRating(ctx, review.ServiceID); err != nil {
		return nil, err
	}

	if !isApproved {
		notify(ctx, s.notifier, review.ReviewerID, models.NotifReviewRejected,
			"Review removed",
			"Your review was removed by a moderator: "+reason,
			models.RelatedRefs{ReviewID: ref(review.ID), ServiceID: ref(review.ServiceID)})
	}
	return review, nil
}
