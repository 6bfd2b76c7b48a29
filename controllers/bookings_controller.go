package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/phillip/event-marketplace-go/config"
	core "github.com/phillip/event-marketplace-go/core"
	models "github.com/phillip/event-marketplace-go/models"
)

// ---------------- CREATE ----------------
func CreateBooking(bookings *core.Bookings) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var input struct {
			EventID     string  `json:"event_id" binding:"required"`
			ServiceID   string  `json:"service_id" binding:"required"`
			EventDate   string  `json:"event_date" binding:"required"`
			PriceAgreed float64 `json:"price_agreed"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		eventID, err := primitive.ObjectIDFromHex(input.EventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}
		serviceID, err := primitive.ObjectIDFromHex(input.ServiceID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
			return
		}
		eventDate, ok := parseEventDate(input.EventDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_date format, use RFC3339 or YYYY-MM-DD"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		booking, err := bookings.Create(ctx, userID, eventID, serviceID, eventDate, input.PriceAgreed)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, booking)
	}
}

// ---------------- LIST ----------------
func ListBookings(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		col := cfg.DB().Collection("bookings")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// The caller sees bookings where they are a party, on either side.
		filter := bson.M{"$or": bson.A{
			bson.M{"organizer_id": userID},
			bson.M{"vendor_id": userID},
		}}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}
		if eventID := c.Query("event_id"); eventID != "" {
			if oid, err := primitive.ObjectIDFromHex(eventID); err == nil {
				filter["event_id"] = oid
			}
		}

		cursor, err := col.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch bookings"})
			return
		}

		var list []models.Booking
		if err := cursor.All(ctx, &list); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode bookings"})
			return
		}
		if list == nil {
			list = []models.Booking{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// ---------------- GET ----------------
func GetBooking(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
			return
		}

		var booking models.Booking
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err = cfg.DB().Collection("bookings").FindOne(ctx, bson.M{"_id": oid}).Decode(&booking)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}

		if booking.OrganizerID != userID && booking.VendorID != userID && c.GetString("role") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.JSON(http.StatusOK, booking)
	}
}

func bookingTransition(call func(ctx context.Context, bookingID, callerID primitive.ObjectID) (*models.Booking, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		booking, err := call(ctx, oid, userID)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusOK, booking)
	}
}

// ---------------- TRANSITIONS ----------------
func ConfirmBooking(bookings *core.Bookings) gin.HandlerFunc {
	return bookingTransition(bookings.Confirm)
}

func StartBooking(bookings *core.Bookings) gin.HandlerFunc {
	return bookingTransition(bookings.Start)
}

func CompleteBooking(bookings *core.Bookings) gin.HandlerFunc {
	return bookingTransition(bookings.Complete)
}

func RefundBooking(bookings *core.Bookings) gin.HandlerFunc {
	return bookingTransition(bookings.Refund)
}

func CancelBooking(bookings *core.Bookings) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
			return
		}

		var input struct {
			Reason string `json:"reason"`
		}
		// Reason is optional; ignore bind failures on an empty body.
		_ = c.ShouldBindJSON(&input)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		booking, err := bookings.Cancel(ctx, oid, userID, input.Reason)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusOK, booking)
	}
}

// ---------------- PAYMENTS ----------------
func RecordBookingPayment(bookings *core.Bookings) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
			return
		}

		var input struct {
			Amount        float64 `json:"amount" binding:"required"`
			Method        string  `json:"method" binding:"required"`
			TransactionID string  `json:"transaction_id"`
			Notes         string  `json:"notes"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		booking, err := bookings.RecordPayment(ctx, oid, userID, input.Amount, input.Method, input.TransactionID, input.Notes)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusOK, booking)
	}
}
