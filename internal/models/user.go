package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email         string             `json:"email" bson:"email" validate:"required,email"`
	PasswordHash  string             `json:"-" bson:"password_hash"`
	Name          string             `json:"name" bson:"name" validate:"required"`
	Phone         string             `json:"phone,omitempty" bson:"phone"`
	City          string             `json:"city,omitempty" bson:"city"`
	Role          UserRole           `json:"role" bson:"role" default:"user"`
	// UPIID is the user's payment address. Riders build the pay deep link
	// from the giver's UPIID; nothing is charged through the platform.
	UPIID         string    `json:"upi_id,omitempty" bson:"upi_id"`
	CarbonCredits int       `json:"carbon_credits" bson:"carbon_credits" default:"0"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}
