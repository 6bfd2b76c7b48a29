package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	core "github.com/phillip/event-marketplace-go/core"
	models "github.com/phillip/event-marketplace-go/models"
)

// Mongo implements core.Store on a MongoDB database.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (m *Mongo) col(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// ---------------- bookings ----------------

func (m *Mongo) GetBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var b models.Booking
	err := m.col("bookings").FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, core.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

func (m *Mongo) FindActiveBooking(ctx context.Context, eventID, serviceID primitive.ObjectID) (*models.Booking, error) {
	var b models.Booking
	err := m.col("bookings").FindOne(ctx, bson.M{
		"event_id":   eventID,
		"service_id": serviceID,
		"status":     bson.M{"$nin": bson.A{models.BookingCancelled, models.BookingRefunded}},
	}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, core.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("find active booking: %w", err)
	}
	return &b, nil
}

func (m *Mongo) InsertBooking(ctx context.Context, b *models.Booking) error {
	if _, err := m.col("bookings").InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (m *Mongo) UpdateBooking(ctx context.Context, b *models.Booking) error {
	if _, err := m.col("bookings").ReplaceOne(ctx, bson.M{"_id": b.ID}, b); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	return nil
}

// ---------------- events ----------------

func (m *Mongo) GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	err := m.col("events").FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, core.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

func (m *Mongo) CountEventAttendance(ctx context.Context, eventID primitive.ObjectID) (int, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": eventID, "status": models.RSVPGoing}}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"attendees": bson.M{"$sum": bson.M{"$add": bson.A{1, "$guests_count"}}},
		}}},
	}
	cursor, err := m.col("rsvps").Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("count attendance: %w", err)
	}
	var rows []struct {
		Attendees int `bson:"attendees"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, fmt.Errorf("decode attendance: %w", err)
	}
	attendees := 0
	if len(rows) > 0 {
		attendees = rows[0].Attendees
	}

	rsvps, err := m.col("rsvps").CountDocuments(ctx, bson.M{
		"event_id": eventID,
		"status":   bson.M{"$ne": models.RSVPCancelled},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("count rsvps: %w", err)
	}
	return attendees, int(rsvps), nil
}

func (m *Mongo) AverageEventRating(ctx context.Context, eventID primitive.ObjectID) (float64, int, error) {
	return m.average(ctx, "rsvps", bson.M{
		"event_id":     eventID,
		"event_rating": bson.M{"$gt": 0},
	}, "$event_rating")
}

func (m *Mongo) SetEventAttendance(ctx context.Context, eventID primitive.ObjectID, attendees, rsvps int) error {
	_, err := m.col("events").UpdateOne(ctx, bson.M{"_id": eventID}, bson.M{"$set": bson.M{
		"current_attendees": attendees,
		"rsvp_count":        rsvps,
		"updated_at":        time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("set event attendance: %w", err)
	}
	return nil
}

func (m *Mongo) SetEventRating(ctx context.Context, eventID primitive.ObjectID, avg float64, n int) error {
	_, err := m.col("events").UpdateOne(ctx, bson.M{"_id": eventID}, bson.M{"$set": bson.M{
		"overall_rating": avg,
		"total_ratings":  n,
		"updated_at":     time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("set event rating: %w", err)
	}
	return nil
}

// ---------------- rsvps ----------------

func (m *Mongo) GetRSVP(ctx context.Context, id primitive.ObjectID) (*models.RSVP, error) {
	var r models.RSVP
	err := m.col("rsvps").FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, core.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("get rsvp: %w", err)
	}
	return &r, nil
}

func (m *Mongo) FindRSVP(ctx context.Context, eventID, attendeeID primitive.ObjectID) (*models.RSVP, error) {
	var r models.RSVP
	err := m.col("rsvps").FindOne(ctx, bson.M{"event_id": eventID, "attendee_id": attendeeID}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, core.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("find rsvp: %w", err)
	}
	return &r, nil
}

func (m *Mongo) FindRSVPByCode(ctx context.Context, eventID primitive.ObjectID, code string) (*models.RSVP, error) {
	var r models.RSVP
	err := m.col("rsvps").FindOne(ctx, bson.M{"event_id": eventID, "check_in_code": code}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, core.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("find rsvp by code: %w", err)
	}
	return &r, nil
}

func (m *Mongo) InsertRSVP(ctx context.Context, r *models.RSVP) error {
	if _, err := m.col("rsvps").InsertOne(ctx, r); err != nil {
		return fmt.Errorf("insert rsvp: %w", err)
	}
	return nil
}

func (m *Mongo) UpdateRSVP(ctx context.Context, r *models.RSVP) error {
	if _, err := m.col("rsvps").ReplaceOne(ctx, bson.M{"_id": r.ID}, r); err != nil {
		return fmt.Errorf("update rsvp: %w", err)
	}
	return nil
}

// ---------------- services ----------------

func (m *Mongo) GetService(ctx context.Context, id primitive.ObjectID) (*models.Service, error) {
	var s models.Service
	err := m.col("services").FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, core.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &s, nil
}

func (m *Mongo) SetServiceRating(ctx context.Context, serviceID primitive.ObjectID, avg float64, n int) error {
	_, err := m.col("services").UpdateOne(ctx, bson.M{"_id": serviceID}, bson.M{"$set": bson.M{
		"rating_average": avg,
		"total_ratings":  n,
		"updated_at":     time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("set service rating: %w", err)
	}
	return nil
}

func (m *Mongo) IncServiceCounter(ctx context.Context, serviceID primitive.ObjectID, field string) error {
	if field != core.CounterTotalBookings && field != core.CounterCompletedBookings {
		return fmt.Errorf("unknown service counter %q", field)
	}
	_, err := m.col("services").UpdateOne(ctx, bson.M{"_id": serviceID}, bson.M{
		"$inc": bson.M{field: 1},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("increment %s: %w", field, err)
	}
	return nil
}

// ---------------- reviews ----------------

func (m *Mongo) GetReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var r models.Review
	err := m.col("reviews").FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, core.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &r, nil
}

func (m *Mongo) FindReviewByBooking(ctx context.Context, bookingID primitive.ObjectID) (*models.Review, error) {
	var r models.Review
	err := m.col("reviews").FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, core.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("find review by booking: %w", err)
	}
	return &r, nil
}

func (m *Mongo) InsertReview(ctx context.Context, r *models.Review) error {
	if _, err := m.col("reviews").InsertOne(ctx, r); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (m *Mongo) UpdateReview(ctx context.Context, r *models.Review) error {
	if _, err := m.col("reviews").ReplaceOne(ctx, bson.M{"_id": r.ID}, r); err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (m *Mongo) AverageServiceRating(ctx context.Context, serviceID primitive.ObjectID) (float64, int, error) {
	return m.average(ctx, "reviews", bson.M{
		"service_id":  serviceID,
		"is_approved": true,
	}, "$rating")
}

func (m *Mongo) AverageVendorRating(ctx context.Context, vendorID primitive.ObjectID) (float64, int, error) {
	return m.average(ctx, "reviews", bson.M{
		"vendor_id":   vendorID,
		"is_approved": true,
	}, "$rating")
}

// ---------------- users ----------------

func (m *Mongo) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := m.col("users").FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, core.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (m *Mongo) SetVendorRating(ctx context.Context, vendorID primitive.ObjectID, avg float64, n int) error {
	_, err := m.col("users").UpdateOne(ctx, bson.M{"_id": vendorID}, bson.M{"$set": bson.M{
		"rating_average": avg,
		"total_ratings":  n,
		"updated_at":     time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("set vendor rating: %w", err)
	}
	return nil
}

func (m *Mongo) AddUserXP(ctx context.Context, id primitive.ObjectID, points int) error {
	_, err := m.col("users").UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"xp": points},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("add user xp: %w", err)
	}
	return nil
}

// average runs a group/avg pipeline and returns (0, 0) when nothing matches.
func (m *Mongo) average(ctx context.Context, collection string, match bson.M, field string) (float64, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": field},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := m.col(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate %s: %w", collection, err)
	}
	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, fmt.Errorf("decode %s aggregate: %w", collection, err)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Avg, rows[0].Count, nil
}
