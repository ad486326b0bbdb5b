package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRideStatusTransitions(t *testing.T) {
	tests := []struct {
		from    RideStatus
		to      RideStatus
		allowed bool
	}{
		{RideStatusOpen, RideStatusFull, true},
		{RideStatusOpen, RideStatusCompleted, true},
		{RideStatusOpen, RideStatusCancelled, true},
		{RideStatusFull, RideStatusOpen, true},
		{RideStatusFull, RideStatusCompleted, true},
		{RideStatusFull, RideStatusCancelled, true},
		{RideStatusCompleted, RideStatusOpen, false},
		{RideStatusCompleted, RideStatusCancelled, false},
		{RideStatusCancelled, RideStatusOpen, false},
		{RideStatusCancelled, RideStatusFull, false},
		{RideStatusOpen, RideStatusOpen, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestRideStatusTerminal(t *testing.T) {
	if RideStatusOpen.IsTerminal() || RideStatusFull.IsTerminal() {
		t.Error("open and full must not be terminal")
	}
	if !RideStatusCompleted.IsTerminal() || !RideStatusCancelled.IsTerminal() {
		t.Error("completed and cancelled must be terminal")
	}
}

func TestRideReservationHelpers(t *testing.T) {
	riderA := primitive.NewObjectID()
	riderB := primitive.NewObjectID()
	ride := &Ride{
		TotalSeats:     4,
		AvailableSeats: 1,
		Reservations: []SeatReservation{
			{RiderID: riderA, Seats: 2},
			{RiderID: riderB, Seats: 1},
		},
	}

	if got := ride.ReservedSeats(); got != 3 {
		t.Errorf("ReservedSeats() = %d, want 3", got)
	}
	if ride.TotalSeats-ride.ReservedSeats() != ride.AvailableSeats {
		t.Error("seat invariant does not hold on fixture")
	}

	if res := ride.ReservationFor(riderA); res == nil || res.Seats != 2 {
		t.Errorf("ReservationFor(riderA) = %+v, want 2 seats", res)
	}
	if res := ride.ReservationFor(primitive.NewObjectID()); res != nil {
		t.Errorf("ReservationFor(stranger) = %+v, want nil", res)
	}
}

func TestDepartureTime(t *testing.T) {
	ride := &Ride{RideDate: "2026-09-01", RideTime: "18:30"}
	departure, err := ride.DepartureTime(time.UTC)
	if err != nil {
		t.Fatalf("DepartureTime: %v", err)
	}
	if departure.Hour() != 18 || departure.Minute() != 30 {
		t.Errorf("departure = %v, want 18:30", departure)
	}

	bad := &Ride{RideDate: "tomorrow", RideTime: "18:30"}
	if _, err := bad.DepartureTime(time.UTC); err == nil {
		t.Error("expected error for malformed date")
	}
}
