package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	core "github.com/phillip/event-marketplace-go/core"
)

// The recount endpoints re-run the idempotent aggregate recomputations as a
// repair mechanism for counters that drifted after a crash between a write
// and its cascade. Admin-only.

func RecountEvent(counters *core.Counters) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := counters.RecountEventAttendance(ctx, oid); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "attendance recount failed"})
			return
		}
		if err := counters.RecountEventRating(ctx, oid); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rating recount failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "event counters recomputed", "id": oid.Hex()})
	}
}

func RecountService(counters *core.Counters) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := counters.RecountServiceRating(ctx, oid); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rating recount failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "service rating recomputed", "id": oid.Hex()})
	}
}
