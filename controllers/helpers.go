package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	core "github.com/phillip/event-marketplace-go/core"
)

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	uid, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return primitive.NilObjectID, false
	}
	return uid, true
}

// coreError maps the core error taxonomy onto HTTP statuses.
func coreError(c *gin.Context, err error) {
	ce, ok := err.(*core.Error)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch ce.Kind {
	case core.KindNotFound:
		status = http.StatusNotFound
	case core.KindForbidden:
		status = http.StatusForbidden
	case core.KindInvalidState, core.KindConflict, core.KindCapacityExceeded:
		status = http.StatusConflict
	case core.KindValidation:
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": ce.Message, "code": ce.Kind.String()})
}
