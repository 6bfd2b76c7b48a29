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

// ---------------- UPSERT ----------------
func UpsertRSVP(rsvps *core.RSVPs) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		var input struct {
			Status      string `json:"status" binding:"required"`
			GuestsCount int    `json:"guests_count"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		rsvp, err := rsvps.Upsert(ctx, eventID, userID, input.Status, input.GuestsCount)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusOK, rsvp)
	}
}

// ---------------- LIST ----------------
// ListEventRSVPs shows an event's RSVPs to its organizer or co-organizers.
func ListEventRSVPs(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var event models.Event
		if err := cfg.DB().Collection("events").FindOne(ctx, bson.M{"_id": eventID}).Decode(&event); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		if !event.CanManage(userID) && c.GetString("role") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		filter := bson.M{"event_id": eventID}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		cursor, err := cfg.DB().Collection("rsvps").Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch rsvps"})
			return
		}

		var list []models.RSVP
		if err := cursor.All(ctx, &list); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode rsvps"})
			return
		}
		if list == nil {
			list = []models.RSVP{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// ---------------- CANCEL ----------------
func CancelRSVP(rsvps *core.RSVPs) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rsvp id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		rsvp, err := rsvps.Cancel(ctx, oid, userID)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusOK, rsvp)
	}
}

// ---------------- CHECK-IN ----------------
func CheckInRSVP(rsvps *core.RSVPs) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rsvp id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		rsvp, err := rsvps.CheckIn(ctx, oid, userID)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusOK, rsvp)
	}
}

// CheckInByCode checks an attendee in at the door by their check-in code.
func CheckInByCode(rsvps *core.RSVPs) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		var input struct {
			Code string `json:"code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		rsvp, err := rsvps.CheckInByCode(ctx, eventID, input.Code, userID)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusOK, rsvp)
	}
}

// ---------------- ATTENDANCE / RATING ----------------
func MarkRSVPAttended(rsvps *core.RSVPs) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rsvp id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		rsvp, err := rsvps.MarkAttended(ctx, oid, userID)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusOK, rsvp)
	}
}

func RateEvent(rsvps *core.RSVPs) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rsvp id"})
			return
		}

		var input struct {
			Rating int `json:"rating" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		rsvp, err := rsvps.RateEvent(ctx, oid, userID, input.Rating)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusOK, rsvp)
	}
}
