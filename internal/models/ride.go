package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideStatus string

const (
	RideStatusOpen      RideStatus = "open"
	RideStatusFull      RideStatus = "full"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"
)

// rideTransitions is the authoritative transition table for Ride.Status.
// completed and cancelled are terminal.
var rideTransitions = map[RideStatus][]RideStatus{
	RideStatusOpen:      {RideStatusFull, RideStatusCompleted, RideStatusCancelled},
	RideStatusFull:      {RideStatusOpen, RideStatusCompleted, RideStatusCancelled},
	RideStatusCompleted: {},
	RideStatusCancelled: {},
}

func (s RideStatus) CanTransitionTo(next RideStatus) bool {
	for _, allowed := range rideTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s RideStatus) IsTerminal() bool {
	return len(rideTransitions[s]) == 0
}

// SeatReservation is a rider's claim on seats of one ride. Reservations are
// embedded in the ride document so that appending a reservation and adjusting
// the seat counter happen in a single atomic write.
type SeatReservation struct {
	RiderID   primitive.ObjectID `json:"rider_id" bson:"rider_id" validate:"required"`
	RiderName string             `json:"rider_name,omitempty" bson:"rider_name"`
	Seats     int                `json:"seats" bson:"seats" validate:"required,min=1"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type Ride struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	GiverID          primitive.ObjectID `json:"giver_id" bson:"giver_id" validate:"required"`
	GiverName        string             `json:"giver_name,omitempty" bson:"giver_name"`
	CorridorID       primitive.ObjectID `json:"corridor_id" bson:"corridor_id" validate:"required"`
	CorridorName     string             `json:"corridor_name,omitempty" bson:"corridor_name"`
	VehicleID        primitive.ObjectID `json:"vehicle_id" bson:"vehicle_id" validate:"required"`
	VehicleInfo      *Vehicle           `json:"vehicle_info,omitempty" bson:"-"`
	RideDate         string             `json:"ride_date" bson:"ride_date" validate:"required"` // 2006-01-02
	RideTime         string             `json:"ride_time" bson:"ride_time" validate:"required"` // 15:04
	PickupPoint      string             `json:"pickup_point" bson:"pickup_point" validate:"required"`
	DropPoint        string             `json:"drop_point" bson:"drop_point" validate:"required"`
	RouteDescription string             `json:"route_description,omitempty" bson:"route_description"`
	PricePerSeat     float64            `json:"price_per_seat" bson:"price_per_seat" validate:"min=0"`
	TotalSeats       int                `json:"total_seats" bson:"total_seats" validate:"required,min=1"`
	AvailableSeats   int                `json:"available_seats" bson:"available_seats"`
	Reservations     []SeatReservation  `json:"reservations" bson:"reservations"`
	Status           RideStatus         `json:"status" bson:"status" default:"open"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty" bson:"completed_at"`
	CancelledAt      *time.Time         `json:"cancelled_at,omitempty" bson:"cancelled_at"`
}

// ReservationFor returns the rider's active reservation, if any.
func (r *Ride) ReservationFor(riderID primitive.ObjectID) *SeatReservation {
	for i := range r.Reservations {
		if r.Reservations[i].RiderID == riderID {
			return &r.Reservations[i]
		}
	}
	return nil
}

// ReservedSeats is the sum of seats over all active reservations.
// AvailableSeats must always equal TotalSeats - ReservedSeats.
func (r *Ride) ReservedSeats() int {
	total := 0
	for i := range r.Reservations {
		total += r.Reservations[i].Seats
	}
	return total
}

// DepartureTime parses the ride's date and time in the given location.
func (r *Ride) DepartureTime(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", r.RideDate+" "+r.RideTime, loc)
}
