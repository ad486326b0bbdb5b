package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RiderPaymentStatus string
type GiverPaymentStatus string

const (
	RiderPaymentPending RiderPaymentStatus = "pending"
	RiderPaymentDone    RiderPaymentStatus = "done"

	GiverPaymentPending  GiverPaymentStatus = "pending"
	GiverPaymentReceived GiverPaymentStatus = "received"
)

// Payment tracks the informal UPI settlement between one rider and the ride
// giver. The two status fields are reported independently by their owning
// parties; contradictory reports are a legitimate, persisted state. Amount is
// snapshotted when the record is opened and never recomputed, even if the
// ride's price changes afterwards.
type Payment struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RideID        primitive.ObjectID `json:"ride_id" bson:"ride_id" validate:"required"`
	RiderID       primitive.ObjectID `json:"rider_id" bson:"rider_id" validate:"required"`
	RiderName     string             `json:"rider_name,omitempty" bson:"rider_name"`
	GiverID       primitive.ObjectID `json:"giver_id" bson:"giver_id" validate:"required"`
	GiverName     string             `json:"giver_name,omitempty" bson:"giver_name"`
	Seats         int                `json:"seats" bson:"seats" validate:"required,min=1"`
	Amount        float64            `json:"amount" bson:"amount" validate:"min=0"`
	RiderStatus   RiderPaymentStatus `json:"rider_status" bson:"rider_status" default:"pending"`
	GiverStatus   GiverPaymentStatus `json:"giver_status" bson:"giver_status" default:"pending"`
	AdminOverride bool               `json:"admin_override" bson:"admin_override" default:"false"`
	Voided        bool               `json:"voided" bson:"voided" default:"false"`
	VoidedAt      *time.Time         `json:"voided_at,omitempty" bson:"voided_at"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// Settled reports whether both parties are in their terminal state.
func (p *Payment) Settled() bool {
	return p.RiderStatus == RiderPaymentDone && p.GiverStatus == GiverPaymentReceived
}
