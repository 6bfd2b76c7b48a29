package core

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-marketplace-go/models"
)

type fixture struct {
	store    *memStore
	notifier *memNotifier
	counters *Counters
	bookings *Bookings
	rsvps    *RSVPs
	reviews  *Reviews

	organizer primitive.ObjectID
	vendor    primitive.ObjectID
	attendee  primitive.ObjectID
	event     models.Event
	service   models.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := newMemStore()
	nt := &memNotifier{}
	counters := NewCounters(st)

	f := &fixture{
		store:    st,
		notifier: nt,
		counters: counters,
		bookings: NewBookings(st, counters, nt),
		rsvps:    NewRSVPs(st, counters, nt),
		reviews:  NewReviews(st, counters, nt),
	}

	f.organizer = f.seedUser("Olivia Organizer")
	f.vendor = f.seedUser("Victor Vendor")
	f.attendee = f.seedUser("Amara Attendee")
	f.event = f.seedEvent(f.organizer, nil, time.Now().Add(30*24*time.Hour))
	f.service = f.seedService(f.vendor, models.ServiceActive)
	return f
}

func (f *fixture) seedUser(name string) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.store.users[id] = models.User{ID: id, Name: name, Role: "user"}
	return id
}

func (f *fixture) seedEvent(organizer primitive.ObjectID, maxAttendees *int, date time.Time) models.Event {
	e := models.Event{
		ID:           primitive.NewObjectID(),
		OrganizerID:  organizer,
		Title:        "Garden Wedding",
		Date:         date,
		MaxAttendees: maxAttendees,
		Status:       "published",
	}
	f.store.events[e.ID] = e
	return e
}

func (f *fixture) seedService(vendor primitive.ObjectID, status string) models.Service {
	s := models.Service{
		ID:       primitive.NewObjectID(),
		VendorID: vendor,
		Title:    "Full Catering",
		Price:    1500,
		Status:   status,
	}
	f.store.services[s.ID] = s
	return s
}

func (f *fixture) mustEvent(t *testing.T, id primitive.ObjectID) models.Event {
	t.Helper()
	e, ok := f.store.events[id]
	if !ok {
		t.Fatalf("event %s missing from store", id.Hex())
	}
	return e
}

func (f *fixture) mustService(t *testing.T, id primitive.ObjectID) models.Service {
	t.Helper()
	s, ok := f.store.services[id]
	if !ok {
		t.Fatalf("service %s missing from store", id.Hex())
	}
	return s
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if !IsKind(err, kind) {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}
