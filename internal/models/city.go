package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CityStatus string

const (
	CityStatusActive CityStatus = "active"
	CityStatusLocked CityStatus = "locked"
)

// City gates ride activity: corridors in a locked city accept no new rides.
type City struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name" validate:"required"`
	Status    CityStatus         `json:"status" bson:"status" default:"active"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
