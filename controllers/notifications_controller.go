package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	config "github.com/phillip/event-marketplace-go/config"
	models "github.com/phillip/event-marketplace-go/models"
)

// ---------------- LIST ----------------
func ListNotifications(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		col := cfg.DB().Collection("notifications")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		filter := bson.M{
			"recipient_id": userID,
			"expires_at":   bson.M{"$gt": time.Now()},
		}
		if c.Query("unread") == "true" {
			filter["read"] = false
		}

		opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(100)
		cursor, err := col.Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch notifications"})
			return
		}

		var list []models.Notification
		if err := cursor.All(ctx, &list); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode notifications"})
			return
		}
		if list == nil {
			list = []models.Notification{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// ---------------- MARK READ ----------------
func MarkNotificationRead(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
			return
		}

		col := cfg.DB().Collection("notifications")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := col.UpdateOne(ctx,
			bson.M{"_id": oid, "recipient_id": userID},
			bson.M{"$set": bson.M{"read": true}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update notification"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "notification marked as read", "id": oid.Hex()})
	}
}
