package core

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-marketplace-go/models"
)

// memStore is a map-backed Store with the same semantics as the mongo
// implementation: value copies in and out, ErrNoDocument on misses, and
// recounts derived by scanning the source records.
type memStore struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]models.Booking
	events   map[primitive.ObjectID]models.Event
	rsvps    map[primitive.ObjectID]models.RSVP
	services map[primitive.ObjectID]models.Service
	reviews  map[primitive.ObjectID]models.Review
	users    map[primitive.ObjectID]models.User
}

func newMemStore() *memStore {
	return &memStore{
		bookings: make(map[primitive.ObjectID]models.Booking),
		events:   make(map[primitive.ObjectID]models.Event),
		rsvps:    make(map[primitive.ObjectID]models.RSVP),
		services: make(map[primitive.ObjectID]models.Service),
		reviews:  make(map[primitive.ObjectID]models.Review),
		users:    make(map[primitive.ObjectID]models.User),
	}
}

func copyBooking(b models.Booking) models.Booking {
	b.Payments = append([]models.PaymentRecord(nil), b.Payments...)
	return b
}

func copyReview(r models.Review) models.Review {
	r.HelpfulVotes = append([]primitive.ObjectID(nil), r.HelpfulVotes...)
	return r
}

// ---- bookings ----

func (m *memStore) GetBooking(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNoDocument
	}
	b = copyBooking(b)
	return &b, nil
}

func (m *memStore) FindActiveBooking(_ context.Context, eventID, serviceID primitive.ObjectID) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.EventID == eventID && b.ServiceID == serviceID && b.IsActive() {
			b = copyBooking(b)
			return &b, nil
		}
	}
	return nil, ErrNoDocument
}

func (m *memStore) InsertBooking(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = copyBooking(*b)
	return nil
}

func (m *memStore) UpdateBooking(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = copyBooking(*b)
	return nil
}

// ---- events ----

func (m *memStore) GetEvent(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, ErrNoDocument
	}
	e.CoOrganizers = append([]primitive.ObjectID(nil), e.CoOrganizers...)
	return &e, nil
}

func (m *memStore) CountEventAttendance(_ context.Context, eventID primitive.ObjectID) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	attendees, rsvps := 0, 0
	for _, r := range m.rsvps {
		if r.EventID != eventID {
			continue
		}
		if r.Status == models.RSVPGoing {
			attendees += 1 + r.GuestsCount
		}
		if r.Status != models.RSVPCancelled {
			rsvps++
		}
	}
	return attendees, rsvps, nil
}

func (m *memStore) AverageEventRating(_ context.Context, eventID primitive.ObjectID) (float64, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum, n := 0, 0
	for _, r := range m.rsvps {
		if r.EventID == eventID && r.EventRating > 0 {
			sum += r.EventRating
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

func (m *memStore) SetEventAttendance(_ context.Context, eventID primitive.ObjectID, attendees, rsvps int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return ErrNoDocument
	}
	e.CurrentAttendees = attendees
	e.RSVPCount = rsvps
	m.events[eventID] = e
	return nil
}

func (m *memStore) SetEventRating(_ context.Context, eventID primitive.ObjectID, avg float64, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return ErrNoDocument
	}
	e.OverallRating = avg
	e.TotalRatings = n
	m.events[eventID] = e
	return nil
}

// ---- rsvps ----

func (m *memStore) GetRSVP(_ context.Context, id primitive.ObjectID) (*models.RSVP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rsvps[id]
	if !ok {
		return nil, ErrNoDocument
	}
	return &r, nil
}

func (m *memStore) FindRSVP(_ context.Context, eventID, attendeeID primitive.ObjectID) (*models.RSVP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rsvps {
		if r.EventID == eventID && r.AttendeeID == attendeeID {
			r := r
			return &r, nil
		}
	}
	return nil, ErrNoDocument
}

func (m *memStore) FindRSVPByCode(_ context.Context, eventID primitive.ObjectID, code string) (*models.RSVP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rsvps {
		if r.EventID == eventID && r.CheckInCode == code {
			r := r
			return &r, nil
		}
	}
	return nil, ErrNoDocument
}

func (m *memStore) InsertRSVP(_ context.Context, r *models.RSVP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rsvps[r.ID] = *r
	return nil
}

func (m *memStore) UpdateRSVP(_ context.Context, r *models.RSVP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rsvps[r.ID] = *r
	return nil
}

// ---- services ----

func (m *memStore) GetService(_ context.Context, id primitive.ObjectID) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.services[id]
	if !ok {
		return nil, ErrNoDocument
	}
	return &s, nil
}

func (m *memStore) SetServiceRating(_ context.Context, serviceID primitive.ObjectID, avg float64, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.services[serviceID]
	if !ok {
		return ErrNoDocument
	}
	s.RatingAverage = avg
	s.TotalRatings = n
	m.services[serviceID] = s
	return nil
}

func (m *memStore) IncServiceCounter(_ context.Context, serviceID primitive.ObjectID, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.services[serviceID]
	if !ok {
		return ErrNoDocument
	}
	switch field {
	case CounterTotalBookings:
		s.TotalBookings++
	case CounterCompletedBookings:
		s.CompletedBookings++
	}
	m.services[serviceID] = s
	return nil
}

// ---- reviews ----

func (m *memStore) GetReview(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, ErrNoDocument
	}
	r = copyReview(r)
	return &r, nil
}

func (m *memStore) FindReviewByBooking(_ context.Context, bookingID primitive.ObjectID) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.BookingID == bookingID {
			r = copyReview(r)
			return &r, nil
		}
	}
	return nil, ErrNoDocument
}

func (m *memStore) InsertReview(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews[r.ID] = copyReview(*r)
	return nil
}

func (m *memStore) UpdateReview(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews[r.ID] = copyReview(*r)
	return nil
}

func (m *memStore) AverageServiceRating(_ context.Context, serviceID primitive.ObjectID) (float64, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum, n := 0, 0
	for _, r := range m.reviews {
		if r.ServiceID == serviceID && r.IsApproved {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

func (m *memStore) AverageVendorRating(_ context.Context, vendorID primitive.ObjectID) (float64, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum, n := 0, 0
	for _, r := range m.reviews {
		if r.VendorID == vendorID && r.IsApproved {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

// ---- users ----

func (m *memStore) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNoDocument
	}
	return &u, nil
}

func (m *memStore) SetVendorRating(_ context.Context, vendorID primitive.ObjectID, avg float64, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[vendorID]
	if !ok {
		return ErrNoDocument
	}
	u.RatingAverage = avg
	u.TotalRatings = n
	m.users[vendorID] = u
	return nil
}

func (m *memStore) AddUserXP(_ context.Context, id primitive.ObjectID, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNoDocument
	}
	u.XP += points
	m.users[id] = u
	return nil
}

// memNotifier records dispatched notifications for assertions.
type memNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

type sentNotification struct {
	Recipient primitive.ObjectID
	Kind      string
}

func (n *memNotifier) Notify(_ context.Context, recipientID primitive.ObjectID, kind, _, _ string, _ models.RelatedRefs) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Recipient: recipientID, Kind: kind})
	return nil
}

func (n *memNotifier) last() (sentNotification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentNotification{}, false
	}
	return n.sent[len(n.sent)-1], true
}
