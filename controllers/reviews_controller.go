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
func CreateReview(reviews *core.Reviews) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var input struct {
			BookingID     string                `json:"booking_id" binding:"required"`
			Rating        int                   `json:"rating" binding:"required"`
			Text          string                `json:"text"`
			DetailRatings *models.DetailRatings `json:"detail_ratings"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		bookingID, err := primitive.ObjectIDFromHex(input.BookingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		review, err := reviews.Create(ctx, bookingID, userID, input.Rating, input.Text, input.DetailRatings)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}

// ---------------- LIST ----------------
// ListServiceReviews returns the approved reviews for one service.
func ListServiceReviews(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		serviceID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := cfg.DB().Collection("reviews").Find(ctx, bson.M{
			"service_id":  serviceID,
			"is_approved": true,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch reviews"})
			return
		}

		var list []models.Review
		if err := cursor.All(ctx, &list); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode reviews"})
			return
		}
		if list == nil {
			list = []models.Review{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// ---------------- VENDOR RESPONSE ----------------
func RespondToReview(reviews *core.Reviews) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
			return
		}

		var input struct {
			Text string `json:"text" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		review, err := reviews.AddVendorResponse(ctx, oid, userID, input.Text)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusOK, review)
	}
}

// ---------------- HELPFUL ----------------
func ToggleReviewHelpful(reviews *core.Reviews) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		review, err := reviews.ToggleHelpful(ctx, oid, userID)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"helpful_count": review.HelpfulCount})
	}
}

// ---------------- MODERATE ----------------
// ModerateReview approves or rejects a review. Admin-only (enforced at the
// route).
func ModerateReview(reviews *core.Reviews) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
			return
		}

		var input struct {
			IsApproved *bool  `json:"is_approved" binding:"required"`
			Reason     string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		review, err := reviews.Moderate(ctx, oid, *input.IsApproved, input.Reason)
		if err != nil {
			coreError(c, err)
			return
		}
		c.JSON(http.StatusOK, review)
	}
}
