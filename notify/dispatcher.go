package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/phillip/event-marketplace-go/models"
	realtime "github.com/phillip/event-marketplace-go/realtime"
	utils "github.com/phillip/event-marketplace-go/utils"
)

// Dispatcher persists each notification for later retrieval and pushes it to
// the recipient's realtime routing key. Cancellation notices additionally go
// out by email. Every channel is best-effort: a delivery failure is logged
// and never fails the mutation that triggered the notification.
type Dispatcher struct {
	db        *mongo.Database
	publisher *realtime.Publisher // nil disables realtime push
}

func NewDispatcher(db *mongo.Database, publisher *realtime.Publisher) *Dispatcher {
	return &Dispatcher{db: db, publisher: publisher}
}

func (d *Dispatcher) Notify(ctx context.Context, recipientID primitive.ObjectID, kind, title, message string, refs models.RelatedRefs) error {
	now := time.Now()
	n := models.Notification{
		ID:          primitive.NewObjectID(),
		RecipientID: recipientID,
		Type:        kind,
		Title:       title,
		Message:     message,
		Related:     refs,
		ExpiresAt:   now.Add(models.NotificationTTL),
		CreatedAt:   now,
	}

	if _, err := d.db.Collection("notifications").InsertOne(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	if d.publisher != nil {
		key := "notifications." + recipientID.Hex()
		if err := d.publisher.PublishJSON(ctx, key, n); err != nil {
			log.Printf("realtime push to %s failed: %v", key, err)
		}
	}

	if kind == models.NotifBookingCancelled {
		d.emailRecipient(ctx, recipientID, title, message)
	}
	return nil
}

func (d *Dispatcher) emailRecipient(ctx context.Context, recipientID primitive.ObjectID, subject, body string) {
	var user models.User
	err := d.db.Collection("users").FindOne(ctx, bson.M{"_id": recipientID}).Decode(&user)
	if err != nil {
		log.Printf("email lookup for %s failed: %v", recipientID.Hex(), err)
		return
	}
	if err := utils.SendEmail(user.Email, subject, "<p>"+body+"</p>"); err != nil {
		log.Printf("email to %s failed: %v", user.Email, err)
	}
}
