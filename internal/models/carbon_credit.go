package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CarbonCredit is one ledger entry of credits awarded to a user, usually for
// a completed ride. The user's balance is maintained on the User document;
// entries are kept for history.
type CarbonCredit struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID  `json:"user_id" bson:"user_id" validate:"required"`
	RideID    *primitive.ObjectID `json:"ride_id,omitempty" bson:"ride_id"`
	// Credits may be negative for manual balance corrections.
	Credits   int                 `json:"credits" bson:"credits" validate:"required"`
	Reason    string              `json:"reason,omitempty" bson:"reason"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
}
