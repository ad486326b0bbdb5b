package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one entry in a ride's append-only chat log. Seq is allocated
// from a per-ride monotonic counter and gives messages a total order within
// the ride; clients poll with their last seen Seq as cursor.
type Message struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RideID     primitive.ObjectID `json:"ride_id" bson:"ride_id" validate:"required"`
	Seq        int64              `json:"seq" bson:"seq"`
	SenderID   primitive.ObjectID `json:"sender_id" bson:"sender_id" validate:"required"`
	SenderName string             `json:"sender_name,omitempty" bson:"sender_name"`
	Content    string             `json:"content" bson:"content" validate:"required,max=1000"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}
