package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleType string

const (
	VehicleTypeCar       VehicleType = "car"
	VehicleTypeSUV       VehicleType = "suv"
	VehicleTypeHatchback VehicleType = "hatchback"
	VehicleTypeBike      VehicleType = "bike"
)

type Vehicle struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	VehicleType   VehicleType        `json:"vehicle_type" bson:"vehicle_type" validate:"required"`
	Make          string             `json:"make" bson:"make" validate:"required"`
	Model         string             `json:"model" bson:"model" validate:"required"`
	Color         string             `json:"color,omitempty" bson:"color"`
	VehicleNumber string             `json:"vehicle_number" bson:"vehicle_number" validate:"required"`
	// TotalSeats caps how many seats a ride on this vehicle may offer.
	TotalSeats int `json:"total_seats" bson:"total_seats" validate:"required,min=1"`
	// DefaultAvailableSeats pre-fills the offer form; givers usually keep a
	// seat or two for themselves or luggage.
	DefaultAvailableSeats int       `json:"default_available_seats" bson:"default_available_seats"`
	CreatedAt             time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" bson:"updated_at"`
}
