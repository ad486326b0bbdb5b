package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Corridor is a named, fixed commuter route within a city. Rides are grouped
// by corridor for discovery; corridors are administered centrally and users
// are assigned to the corridors they commute on.
type Corridor struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CityID          primitive.ObjectID `json:"city_id" bson:"city_id" validate:"required"`
	CityName        string             `json:"city_name,omitempty" bson:"city_name"`
	Name            string             `json:"name" bson:"name" validate:"required"`
	LocationFrom    string             `json:"location_from" bson:"location_from" validate:"required"`
	LocationTo      string             `json:"location_to" bson:"location_to" validate:"required"`
	PickupPoints    []string           `json:"pickup_points,omitempty" bson:"pickup_points"`
	TermsConditions string             `json:"terms_conditions,omitempty" bson:"terms_conditions"`
	IsActive        bool               `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// CorridorAssignment grants a user access to offer and browse rides on a
// corridor.
type CorridorAssignment struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	CorridorID primitive.ObjectID `json:"corridor_id" bson:"corridor_id" validate:"required"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}
