package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateETag builds a strong ETag from a document id and its last update.
func GenerateETag(id primitive.ObjectID, updatedAt time.Time) string {
	sum := md5.Sum([]byte(id.Hex() + updatedAt.UTC().Format(time.RFC3339Nano)))
	return fmt.Sprintf("\"%s\"", hex.EncodeToString(sum[:]))
}
