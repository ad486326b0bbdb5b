package interfaces

import (
	"context"

	"copool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentRepository interface {
	// Open creates the record in (pending, pending) or returns the existing
	// one for the same (ride, rider) pair; it never duplicates.
	Open(ctx context.Context, payment *models.Payment) (*models.Payment, error)

	GetByRideAndRider(ctx context.Context, rideID, riderID primitive.ObjectID) (*models.Payment, error)
	ListByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Payment, error)

	SetRiderStatus(ctx context.Context, rideID, riderID primitive.ObjectID, status models.RiderPaymentStatus, adminOverride bool) error
	SetGiverStatus(ctx context.Context, rideID, riderID primitive.ObjectID, status models.GiverPaymentStatus, adminOverride bool) error

	// Void marks records as cancelled for audit; they are never deleted.
	Void(ctx context.Context, rideID, riderID primitive.ObjectID) error
	VoidByRide(ctx context.Context, rideID primitive.ObjectID) error
}
