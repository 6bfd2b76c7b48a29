package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCheckInCodeFor(t *testing.T) {
	event := primitive.NewObjectID()
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	code := CheckInCodeFor(event, a)
	if len(code) != 8 {
		t.Fatalf("code %q has length %d, want 8", code, len(code))
	}
	for _, c := range code {
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
			t.Fatalf("code %q contains non-hex character %q", code, c)
		}
	}

	if CheckInCodeFor(event, a) != code {
		t.Error("code is not deterministic for the same pair")
	}
	if CheckInCodeFor(event, b) == code {
		t.Error("different attendees produced the same code")
	}
}

func TestSeats(t *testing.T) {
	cases := []struct {
		status string
		guests int
		want   int
	}{
		{RSVPGoing, 0, 1},
		{RSVPGoing, 3, 4},
		{RSVPMaybe, 3, 0},
		{RSVPNotGoing, 0, 0},
		{RSVPCancelled, 2, 0},
	}
	for _, tc := range cases {
		r := RSVP{Status: tc.status, GuestsCount: tc.guests}
		if got := r.Seats(); got != tc.want {
			t.Errorf("Seats() for %s/%d guests = %d, want %d", tc.status, tc.guests, got, tc.want)
		}
	}
}
