package interfaces

import (
	"context"

	"copool/internal/models"
	"copool/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RideListFilter narrows ride listings. Nil/empty fields are ignored.
type RideListFilter struct {
	CorridorID *primitive.ObjectID
	GiverID    *primitive.ObjectID
	RiderID    *primitive.ObjectID
	Dates      []string
	Statuses   []models.RideStatus
}

type RideRepository interface {
	// Basic CRUD
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	List(ctx context.Context, filter *RideListFilter, params *utils.PaginationParams) ([]*models.Ride, int64, error)

	// Seat ledger. ReserveSeats appends the reservation and decrements
	// available_seats in one conditional atomic write; it fails with
	// services.ErrCapacityExceeded when the remaining seats don't cover the
	// request, services.ErrConflict when the rider already holds a
	// reservation or the ride is not joinable, services.ErrNotFound when
	// the ride is absent. ReleaseSeats is the inverse, conditional on the
	// exact reservation being present.
	ReserveSeats(ctx context.Context, id primitive.ObjectID, res models.SeatReservation) error
	ReleaseSeats(ctx context.Context, id primitive.ObjectID, riderID primitive.ObjectID, seats int) error

	// Terminal transitions, conditional on the current status so an illegal
	// transition observed concurrently fails with services.ErrConflict.
	// CancelRide atomically moves an open/full ride to cancelled, drops all
	// reservations and restores available_seats to total_seats.
	CancelRide(ctx context.Context, id primitive.ObjectID) error
	// CompleteRide moves an open/full ride to completed.
	CompleteRide(ctx context.Context, id primitive.ObjectID) error

	// Stats
	CountByDate(ctx context.Context, date string) (int64, error)
	CountSeatsReservedOn(ctx context.Context, date string) (int64, error)
}
