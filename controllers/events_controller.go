package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/phillip/event-marketplace-go/config"
	models "github.com/phillip/event-marketplace-go/models"
	utils "github.com/phillip/event-marketplace-go/utils"
)

func parseEventDate(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	// Try fallback formats
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ---------------- CREATE ----------------
func CreateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var input struct {
			Title        string `form:"title" binding:"required"`
			Description  string `form:"description"`
			Location     string `form:"location"`
			Date         string `form:"date" binding:"required"`
			MaxAttendees *int   `form:"max_attendees"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		date, ok := parseEventDate(input.Date)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use RFC3339 or YYYY-MM-DD"})
			return
		}
		if input.MaxAttendees != nil && *input.MaxAttendees < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_attendees must be at least 1"})
			return
		}

		// --- Handle file uploads ---
		form, err := c.MultipartForm()
		if err != nil && err != http.ErrNotMultipart {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
			return
		}

		var imageURLs []string
		if form != nil {
			for _, fileHeader := range form.File["images"] {
				file, err := fileHeader.Open()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
					return
				}
				url, err := utils.UploadImage(file, "events")
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error":   "image upload failed",
						"details": err.Error(),
						"file":    fileHeader.Filename,
					})
					return
				}
				imageURLs = append(imageURLs, url)
			}
		}

		now := time.Now()
		event := models.Event{
			ID:           primitive.NewObjectID(),
			OrganizerID:  userID,
			Title:        input.Title,
			Description:  input.Description,
			Location:     input.Location,
			Date:         date,
			MaxAttendees: input.MaxAttendees,
			Status:       "published",
			Images:       imageURLs,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		col := cfg.DB().Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := col.InsertOne(ctx, event); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create event"})
			return
		}

		c.JSON(http.StatusCreated, event)
	}
}

// ---------------- LIST ----------------
func ListEvents(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		col := cfg.DB().Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Own events by default; ?all=true lists every published event.
		filter := bson.M{"$or": bson.A{
			bson.M{"organizer_id": userID},
			bson.M{"co_organizers": userID},
		}}
		if c.Query("all") == "true" {
			filter = bson.M{"status": "published"}
		}
		if q := c.Query("q"); q != "" {
			filter["title"] = bson.M{"$regex": q, "$options": "i"}
		}

		cursor, err := col.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
			return
		}

		var events []models.Event
		if err := cursor.All(ctx, &events); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode events"})
			return
		}

		if len(events) == 0 {
			c.JSON(http.StatusOK, []models.Event{})
			return
		}

		// --- Pick the most recently updated event ---
		latest := events[0]
		for _, ev := range events {
			if ev.UpdatedAt.After(latest.UpdatedAt) {
				latest = ev
			}
		}

		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, events)
	}
}

// ---------------- GET ----------------
func GetEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		var event models.Event
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err = cfg.DB().Collection("events").FindOne(ctx, bson.M{"_id": eventID}).Decode(&event)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		etag := utils.GenerateETag(event.ID, event.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		c.JSON(http.StatusOK, event)
	}
}

// ---------------- UPDATE ----------------
func UpdateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		col := cfg.DB().Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Event
		if err := col.FindOne(ctx, bson.M{"_id": objID}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		if role != "admin" && existing.OrganizerID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		// Derived attendance/rating fields are never accepted here; they are
		// owned by the recount functions.
		var input struct {
			Title        string   `form:"title"`
			Description  string   `form:"description"`
			Location     string   `form:"location"`
			Date         *string  `form:"date"`
			MaxAttendees *int     `form:"max_attendees"`
			Status       string   `form:"status"`
			CoOrganizers []string `form:"co_organizers"`
			Images       []string `form:"images"` // existing image URLs to keep
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		update := bson.M{"updated_at": time.Now()}

		if input.Title != "" {
			update["title"] = input.Title
		}
		if input.Description != "" {
			update["description"] = input.Description
		}
		if input.Location != "" {
			update["location"] = input.Location
		}
		if input.Status != "" {
			update["status"] = input.Status
		}
		if input.Date != nil && *input.Date != "" {
			date, ok := parseEventDate(*input.Date)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use RFC3339 or YYYY-MM-DD"})
				return
			}
			update["date"] = date
		}
		if input.MaxAttendees != nil {
			if *input.MaxAttendees < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "max_attendees must be at least 1"})
				return
			}
			update["max_attendees"] = *input.MaxAttendees
		}
		if input.CoOrganizers != nil {
			cos := make([]primitive.ObjectID, 0, len(input.CoOrganizers))
			for _, raw := range input.CoOrganizers {
				oid, err := primitive.ObjectIDFromHex(raw)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid co-organizer id"})
					return
				}
				cos = append(cos, oid)
			}
			update["co_organizers"] = cos
		}

		// --- Handle new image uploads ---
		newImageURLs := []string{}
		form, _ := c.MultipartForm()
		if form != nil {
			for _, fileHeader := range form.File["new_images"] {
				file, err := fileHeader.Open()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open image"})
					return
				}
				url, err := utils.UploadImage(file, "events")
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed", "details": err.Error()})
					return
				}
				newImageURLs = append(newImageURLs, url)
			}
		}
		if input.Images != nil || len(newImageURLs) > 0 {
			update["images"] = append(input.Images, newImageURLs...)
		}

		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		if _, err := col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update event"})
			return
		}

		var updated models.Event
		if err := col.FindOne(ctx, bson.M{"_id": objID}).Decode(&updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve updated event"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "event updated successfully",
			"event":   updated,
		})
	}
}

// ---------------- DELETE ----------------
func DeleteEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		col := cfg.DB().Collection("events")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Event
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		// Co-organizers share management but not deletion.
		if role != "admin" && existing.OrganizerID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete event"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		for _, img := range existing.Images {
			utils.DeleteImage(img)
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "event deleted successfully",
			"id":      oid.Hex(),
		})
	}
}
