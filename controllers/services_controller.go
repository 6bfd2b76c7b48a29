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

func validServiceStatus(s string) bool {
	switch s {
	case models.ServiceActive, models.ServicePaused, models.ServiceNotTakingOrders:
		return true
	}
	return false
}

// ---------------- CREATE ----------------
func CreateService(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendorID, ok := currentUserID(c)
		if !ok {
			return
		}

		var input struct {
			Title       string  `form:"title" binding:"required"`
			Description string  `form:"description"`
			Category    string  `form:"category"`
			Price       float64 `form:"price"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
			return
		}

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
				url, err := utils.UploadImage(file, "services")
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
		service := models.Service{
			ID:          primitive.NewObjectID(),
			VendorID:    vendorID,
			Title:       input.Title,
			Description: input.Description,
			Category:    input.Category,
			Price:       input.Price,
			Status:      models.ServiceActive,
			Images:      imageURLs,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		col := cfg.DB().Collection("services")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := col.InsertOne(ctx, service); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create service"})
			return
		}

		c.JSON(http.StatusCreated, service)
	}
}

// ---------------- LIST ----------------
func ListServices(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		col := cfg.DB().Collection("services")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		filter := bson.M{}
		if vendor := c.Query("vendor_id"); vendor != "" {
			if oid, err := primitive.ObjectIDFromHex(vendor); err == nil {
				filter["vendor_id"] = oid
			}
		}
		if category := c.Query("category"); category != "" {
			filter["category"] = category
		}
		if q := c.Query("q"); q != "" {
			filter["title"] = bson.M{"$regex": q, "$options": "i"}
		}

		cursor, err := col.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch services"})
			return
		}

		var services []models.Service
		if err := cursor.All(ctx, &services); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode services"})
			return
		}

		if len(services) == 0 {
			c.JSON(http.StatusOK, []models.Service{})
			return
		}

		latest := services[0]
		for _, s := range services {
			if s.UpdatedAt.After(latest.UpdatedAt) {
				latest = s
			}
		}

		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, services)
	}
}

// ---------------- GET ----------------
func GetService(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		serviceID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
			return
		}

		var service models.Service
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err = cfg.DB().Collection("services").FindOne(ctx, bson.M{"_id": serviceID}).Decode(&service)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
			return
		}

		etag := utils.GenerateETag(service.ID, service.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		c.JSON(http.StatusOK, service)
	}
}

// ---------------- UPDATE ----------------
func UpdateService(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
			return
		}

		col := cfg.DB().Collection("services")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Service
		if err := col.FindOne(ctx, bson.M{"_id": objID}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
			return
		}

		if role != "admin" && existing.VendorID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		// Rating and booking aggregates are derived; client input never
		// touches them.
		var input struct {
			Title       string   `form:"title"`
			Description string   `form:"description"`
			Category    string   `form:"category"`
			Price       *float64 `form:"price"`
			Status      string   `form:"status"`
			Images      []string `form:"images"`
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
		if input.Category != "" {
			update["category"] = input.Category
		}
		if input.Price != nil {
			if *input.Price < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
				return
			}
			update["price"] = *input.Price
		}
		if input.Status != "" {
			if !validServiceStatus(input.Status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service status"})
				return
			}
			update["status"] = input.Status
		}

		newImageURLs := []string{}
		form, _ := c.MultipartForm()
		if form != nil {
			for _, fileHeader := range form.File["new_images"] {
				file, err := fileHeader.Open()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open image"})
					return
				}
				url, err := utils.UploadImage(file, "services")
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
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update service"})
			return
		}

		var updated models.Service
		if err := col.FindOne(ctx, bson.M{"_id": objID}).Decode(&updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve updated service"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "service updated successfully",
			"service": updated,
		})
	}
}

// ---------------- DELETE ----------------
func DeleteService(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
			return
		}

		col := cfg.DB().Collection("services")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Service
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
			return
		}

		if role != "admin" && existing.VendorID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete service"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
			return
		}

		for _, img := range existing.Images {
			utils.DeleteImage(img)
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "service deleted successfully",
			"id":      oid.Hex(),
		})
	}
}
