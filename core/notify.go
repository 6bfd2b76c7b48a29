package core

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-marketplace-go/models"
)

// Notifier delivers a notification to one recipient. Delivery is advisory:
// a failed dispatch must never fail the mutation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, recipientID primitive.ObjectID, kind, title, message string, refs models.RelatedRefs) error
}

// notify dispatches best-effort and logs failures.
func notify(ctx context.Context, n Notifier, recipientID primitive.ObjectID, kind, title, message string, refs models.RelatedRefs) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, recipientID, kind, title, message, refs); err != nil {
		log.Printf("notify %s to %s failed: %v", kind, recipientID.Hex(), err)
	}
}

func ref(id primitive.ObjectID) *primitive.ObjectID { return &id }
