package interfaces

import (
	"context"

	"copool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageRepository interface {
	// Append assigns msg.Seq from the ride's monotonic counter and inserts
	// the message. Two concurrent appends never receive the same Seq, but
	// inserts may become visible out of Seq order, so callers serialize
	// appends per ride.
	Append(ctx context.Context, msg *models.Message) error

	// Since returns messages with Seq > lastSeq in ascending Seq order.
	// limit <= 0 means no limit.
	Since(ctx context.Context, rideID primitive.ObjectID, lastSeq int64, limit int) ([]*models.Message, error)

	CountByRide(ctx context.Context, rideID primitive.ObjectID) (int64, error)
}
