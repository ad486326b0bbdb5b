package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"copool/internal/models"
	"copool/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type rideFixture struct {
	service  RideService
	rideRepo *memRideRepo
	payments *memPaymentRepo
	users    *memUserRepo
	credits  *memCreditRepo

	giverID    primitive.ObjectID
	corridorID primitive.ObjectID
	vehicleID  primitive.ObjectID
}

func newRideFixture(t *testing.T) *rideFixture {
	t.Helper()

	rideRepo := newMemRideRepo()
	payments := newMemPaymentRepo()
	users := newMemUserRepo()
	corridors := newMemCorridorRepo()
	cities := newMemCityRepo()
	vehicles := newMemVehicleRepo()
	credits := newMemCreditRepo()

	giverID := users.addUser("giver")

	city := &models.City{Name: "Bengaluru"}
	if err := cities.Create(context.Background(), city); err != nil {
		t.Fatalf("create city: %v", err)
	}
	corridor := &models.Corridor{CityID: city.ID, Name: "ORR", LocationFrom: "Silk Board", LocationTo: "Hebbal", IsActive: true}
	if err := corridors.Create(context.Background(), corridor); err != nil {
		t.Fatalf("create corridor: %v", err)
	}
	if err := corridors.Assign(context.Background(), giverID, corridor.ID); err != nil {
		t.Fatalf("assign corridor: %v", err)
	}
	vehicle := &models.Vehicle{UserID: giverID, VehicleType: models.VehicleTypeCar, Make: "Maruti", Model: "Swift", VehicleNumber: "KA01AB1234", TotalSeats: 4}
	if err := vehicles.Create(context.Background(), vehicle); err != nil {
		t.Fatalf("create vehicle: %v", err)
	}

	service := NewRideService(rideRepo, payments, users, corridors, cities, vehicles, credits, testLogger(), time.Local)

	return &rideFixture{
		service:    service,
		rideRepo:   rideRepo,
		payments:   payments,
		users:      users,
		credits:    credits,
		giverID:    giverID,
		corridorID: corridor.ID,
		vehicleID:  vehicle.ID,
	}
}

func (f *rideFixture) offerRide(t *testing.T, seats int, price float64) *models.Ride {
	t.Helper()
	ride, err := f.service.OfferRide(context.Background(), f.giverID, &OfferRideRequest{
		CorridorID:   f.corridorID,
		VehicleID:    f.vehicleID,
		RideDate:     time.Now().Format(utils.DateLayout),
		RideTime:     "23:59",
		PickupPoint:  "Silk Board",
		DropPoint:    "Hebbal",
		PricePerSeat: price,
		TotalSeats:   seats,
	})
	if err != nil {
		t.Fatalf("offer ride: %v", err)
	}
	return ride
}

func TestOfferRideValidation(t *testing.T) {
	f := newRideFixture(t)
	base := OfferRideRequest{
		CorridorID:   f.corridorID,
		VehicleID:    f.vehicleID,
		RideDate:     time.Now().Format(utils.DateLayout),
		RideTime:     "09:00",
		PickupPoint:  "A",
		DropPoint:    "B",
		PricePerSeat: 100,
		TotalSeats:   3,
	}

	tests := []struct {
		name    string
		mutate  func(r *OfferRideRequest)
		wantErr error
	}{
		{"zero seats", func(r *OfferRideRequest) { r.TotalSeats = 0 }, ErrInvalidInput},
		{"negative price", func(r *OfferRideRequest) { r.PricePerSeat = -1 }, ErrInvalidInput},
		{"date too far ahead", func(r *OfferRideRequest) {
			r.RideDate = time.Now().AddDate(0, 0, utils.BookingHorizonDays+1).Format(utils.DateLayout)
		}, ErrInvalidInput},
		{"date in the past", func(r *OfferRideRequest) {
			r.RideDate = time.Now().AddDate(0, 0, -1).Format(utils.DateLayout)
		}, ErrInvalidInput},
		{"seats beyond vehicle", func(r *OfferRideRequest) { r.TotalSeats = 5 }, ErrInvalidInput},
		{"missing vehicle", func(r *OfferRideRequest) { r.VehicleID = primitive.NewObjectID() }, ErrPrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := base
			tt.mutate(&request)
			_, err := f.service.OfferRide(context.Background(), f.giverID, &request)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOfferRideHorizonEdge(t *testing.T) {
	f := newRideFixture(t)
	// Last day of the window is bookable.
	_, err := f.service.OfferRide(context.Background(), f.giverID, &OfferRideRequest{
		CorridorID:   f.corridorID,
		VehicleID:    f.vehicleID,
		RideDate:     time.Now().AddDate(0, 0, utils.BookingHorizonDays).Format(utils.DateLayout),
		RideTime:     "09:00",
		PickupPoint:  "A",
		DropPoint:    "B",
		PricePerSeat: 50,
		TotalSeats:   2,
	})
	if err != nil {
		t.Fatalf("offer on horizon edge: %v", err)
	}
}

func TestJoinRideOpensPayment(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)
	riderID := f.users.addUser("rider")

	result, err := f.service.JoinRide(context.Background(), riderID, ride.ID, 3)
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	if result.Ride.AvailableSeats != 1 {
		t.Errorf("available seats = %d, want 1", result.Ride.AvailableSeats)
	}
	if result.Ride.Status != models.RideStatusOpen {
		t.Errorf("status = %s, want open", result.Ride.Status)
	}
	if result.Payment.Amount != 300 {
		t.Errorf("amount = %v, want 300", result.Payment.Amount)
	}
	if result.Payment.RiderStatus != models.RiderPaymentPending || result.Payment.GiverStatus != models.GiverPaymentPending {
		t.Errorf("payment not opened pending/pending: %+v", result.Payment)
	}
}

func TestJoinRideScenario(t *testing.T) {
	// Four seats at 100: A takes 3, B's 2-seat request loses, B's 1-seat
	// request fills the ride, then cancellation releases everything.
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)
	riderA := f.users.addUser("riderA")
	riderB := f.users.addUser("riderB")

	if _, err := f.service.JoinRide(context.Background(), riderA, ride.ID, 3); err != nil {
		t.Fatalf("rider A join: %v", err)
	}

	_, err := f.service.JoinRide(context.Background(), riderB, ride.ID, 2)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("rider B oversized join: got %v, want ErrCapacityExceeded", err)
	}
	current, _ := f.service.GetRide(context.Background(), ride.ID)
	if current.AvailableSeats != 1 {
		t.Fatalf("available after failed join = %d, want 1", current.AvailableSeats)
	}

	result, err := f.service.JoinRide(context.Background(), riderB, ride.ID, 1)
	if err != nil {
		t.Fatalf("rider B retry: %v", err)
	}
	if result.Ride.AvailableSeats != 0 || result.Ride.Status != models.RideStatusFull {
		t.Fatalf("ride not full after last seat: %+v", result.Ride)
	}

	if err := f.service.CancelRide(context.Background(), f.giverID, models.UserRoleUser, ride.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	cancelled, _ := f.service.GetRide(context.Background(), ride.ID)
	if cancelled.Status != models.RideStatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.AvailableSeats != 4 || len(cancelled.Reservations) != 0 {
		t.Errorf("reservations not released on cancel: %+v", cancelled)
	}
	for _, riderID := range []primitive.ObjectID{riderA, riderB} {
		if _, err := f.payments.GetByRideAndRider(context.Background(), ride.ID, riderID); !errors.Is(err, ErrNotFound) {
			t.Errorf("payment for %s not voided", riderID.Hex())
		}
	}
}

func TestJoinRideConcurrent(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)

	const riders = 8
	riderIDs := make([]primitive.ObjectID, riders)
	for i := range riderIDs {
		riderIDs[i] = f.users.addUser("rider")
	}

	var wg sync.WaitGroup
	results := make([]error, riders)
	for i := 0; i < riders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.service.JoinRide(context.Background(), riderIDs[i], ride.ID, 1)
		}(i)
	}
	wg.Wait()

	var succeeded, capacity int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrCapacityExceeded) || errors.Is(err, ErrConflict):
			capacity++
		default:
			t.Fatalf("unexpected join error: %v", err)
		}
	}
	if succeeded != 4 {
		t.Errorf("succeeded = %d, want 4", succeeded)
	}

	current, _ := f.service.GetRide(context.Background(), ride.ID)
	if current.AvailableSeats != 0 {
		t.Errorf("available = %d, want 0", current.AvailableSeats)
	}
	if got := current.ReservedSeats(); got != current.TotalSeats-current.AvailableSeats {
		t.Errorf("seat invariant broken: reserved=%d available=%d total=%d", got, current.AvailableSeats, current.TotalSeats)
	}
}

func TestJoinRideRollsBackOnPaymentFailure(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)
	riderID := f.users.addUser("rider")

	f.payments.failOpen = true
	_, err := f.service.JoinRide(context.Background(), riderID, ride.ID, 2)
	if err == nil {
		t.Fatal("join should fail when payment open fails")
	}

	current, _ := f.service.GetRide(context.Background(), ride.ID)
	if current.AvailableSeats != 4 || len(current.Reservations) != 0 {
		t.Errorf("reservation not rolled back: %+v", current)
	}
}

func TestJoinRideDuplicate(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)
	riderID := f.users.addUser("rider")

	if _, err := f.service.JoinRide(context.Background(), riderID, ride.ID, 1); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := f.service.JoinRide(context.Background(), riderID, ride.ID, 1); !errors.Is(err, ErrConflict) {
		t.Errorf("second join: got %v, want ErrConflict", err)
	}
}

func TestJoinOwnRideForbidden(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)

	if _, err := f.service.JoinRide(context.Background(), f.giverID, ride.ID, 1); !errors.Is(err, ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
}

func TestLeaveRideRoundTrip(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)
	riderID := f.users.addUser("rider")

	if _, err := f.service.JoinRide(context.Background(), riderID, ride.ID, 2); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := f.service.LeaveRide(context.Background(), riderID, ride.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}

	current, _ := f.service.GetRide(context.Background(), ride.ID)
	if current.AvailableSeats != 4 {
		t.Errorf("available = %d, want 4 after round trip", current.AvailableSeats)
	}
	if _, err := f.payments.GetByRideAndRider(context.Background(), ride.ID, riderID); !errors.Is(err, ErrNotFound) {
		t.Error("payment not voided after leave")
	}

	// Rejoining opens a fresh pending record.
	result, err := f.service.JoinRide(context.Background(), riderID, ride.ID, 2)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if result.Payment.RiderStatus != models.RiderPaymentPending {
		t.Errorf("rejoin payment status = %s, want pending", result.Payment.RiderStatus)
	}
}

func TestLeaveReopensFullRide(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 2, 100)
	riderID := f.users.addUser("rider")

	if _, err := f.service.JoinRide(context.Background(), riderID, ride.ID, 2); err != nil {
		t.Fatalf("join: %v", err)
	}
	full, _ := f.service.GetRide(context.Background(), ride.ID)
	if full.Status != models.RideStatusFull {
		t.Fatalf("status = %s, want full", full.Status)
	}

	if err := f.service.LeaveRide(context.Background(), riderID, ride.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	reopened, _ := f.service.GetRide(context.Background(), ride.ID)
	if reopened.Status != models.RideStatusOpen {
		t.Errorf("status = %s, want open after leave", reopened.Status)
	}
}

func TestLeaveWithoutReservation(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)
	riderID := f.users.addUser("rider")

	if err := f.service.LeaveRide(context.Background(), riderID, ride.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestCancelRidePermissions(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)
	strangerID := f.users.addUser("stranger")

	if err := f.service.CancelRide(context.Background(), strangerID, models.UserRoleUser, ride.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger cancel: got %v, want ErrForbidden", err)
	}
	if err := f.service.CancelRide(context.Background(), strangerID, models.UserRoleAdmin, ride.ID); err != nil {
		t.Errorf("admin cancel: %v", err)
	}
}

func TestCompletedRideIsTerminal(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)
	riderID := f.users.addUser("rider")

	if err := f.service.CompleteRide(context.Background(), f.giverID, models.UserRoleUser, ride.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := f.service.JoinRide(context.Background(), riderID, ride.ID, 1); !errors.Is(err, ErrConflict) {
		t.Errorf("join completed ride: got %v, want ErrConflict", err)
	}
	if err := f.service.CancelRide(context.Background(), f.giverID, models.UserRoleUser, ride.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("cancel completed ride: got %v, want ErrConflict", err)
	}
}

func TestCompleteRideAwardsCarbonCredits(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)
	riderID := f.users.addUser("rider")

	if _, err := f.service.JoinRide(context.Background(), riderID, ride.ID, 2); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := f.service.CompleteRide(context.Background(), f.giverID, models.UserRoleUser, ride.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	giver, _ := f.users.GetByID(context.Background(), f.giverID)
	if want := 2 * utils.CarbonCreditsPerSeat; giver.CarbonCredits != want {
		t.Errorf("giver credits = %d, want %d", giver.CarbonCredits, want)
	}
	rider, _ := f.users.GetByID(context.Background(), riderID)
	if want := 2 * utils.CarbonCreditsPerSeat; rider.CarbonCredits != want {
		t.Errorf("rider credits = %d, want %d", rider.CarbonCredits, want)
	}

	entries, _ := f.credits.ListByUser(context.Background(), riderID)
	if len(entries) != 1 {
		t.Errorf("credit entries = %d, want 1", len(entries))
	}
}

func TestUpdateRidePriceKeepsPaymentSnapshot(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)
	riderID := f.users.addUser("rider")

	result, err := f.service.JoinRide(context.Background(), riderID, ride.ID, 2)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if result.Payment.Amount != 200 {
		t.Fatalf("amount = %v, want 200", result.Payment.Amount)
	}

	newPrice := 150.0
	updated, err := f.service.UpdateRide(context.Background(), f.giverID, ride.ID, &UpdateRideRequest{PricePerSeat: &newPrice})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PricePerSeat != 150 {
		t.Errorf("price = %v, want 150", updated.PricePerSeat)
	}

	payment, err := f.payments.GetByRideAndRider(context.Background(), ride.ID, riderID)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if payment.Amount != 200 {
		t.Errorf("snapshot amount = %v, want 200 after price edit", payment.Amount)
	}

	// A join after the edit pays the new price.
	secondID := f.users.addUser("second")
	second, err := f.service.JoinRide(context.Background(), secondID, ride.ID, 1)
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if second.Payment.Amount != 150 {
		t.Errorf("second amount = %v, want 150", second.Payment.Amount)
	}
}

func TestUpdateRidePermissions(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)

	desc := "via outer ring road"
	strangerID := f.users.addUser("stranger")
	if _, err := f.service.UpdateRide(context.Background(), strangerID, ride.ID, &UpdateRideRequest{RouteDescription: &desc}); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger edit: err = %v, want ErrForbidden", err)
	}

	if err := f.service.CancelRide(context.Background(), f.giverID, models.UserRoleUser, ride.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.service.UpdateRide(context.Background(), f.giverID, ride.ID, &UpdateRideRequest{RouteDescription: &desc}); !errors.Is(err, ErrConflict) {
		t.Errorf("edit after cancel: err = %v, want ErrConflict", err)
	}

	ride = f.offerRide(t, 4, 100)
	if _, err := f.service.UpdateRide(context.Background(), f.giverID, ride.ID, &UpdateRideRequest{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty edit: err = %v, want ErrInvalidInput", err)
	}
}

// A reader racing joins and leaves must never see the seat counter and the
// status disagree: zero seats on an open ride, or free seats on a full one.
func TestStatusAndSeatCountChangeTogether(t *testing.T) {
	f := newRideFixture(t)
	ride := f.offerRide(t, 4, 100)

	riderIDs := make([]primitive.ObjectID, 4)
	for i := range riderIDs {
		riderIDs[i] = f.users.addUser("rider")
	}

	stop := make(chan struct{})
	var observer sync.WaitGroup
	observer.Add(1)
	go func() {
		defer observer.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			got, err := f.service.GetRide(context.Background(), ride.ID)
			if err != nil {
				continue
			}
			if got.Status == models.RideStatusOpen && got.AvailableSeats == 0 {
				t.Error("observed open ride with zero seats")
				return
			}
			if got.Status == models.RideStatusFull && got.AvailableSeats > 0 {
				t.Errorf("observed full ride with %d free seats", got.AvailableSeats)
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for _, riderID := range riderIDs {
		wg.Add(1)
		go func(riderID primitive.ObjectID) {
			defer wg.Done()
			if _, err := f.service.JoinRide(context.Background(), riderID, ride.ID, 1); err != nil {
				t.Errorf("join: %v", err)
			}
			if err := f.service.LeaveRide(context.Background(), riderID, ride.ID); err != nil {
				t.Errorf("leave: %v", err)
			}
		}(riderID)
	}
	wg.Wait()
	close(stop)
	observer.Wait()

	final, err := f.service.GetRide(context.Background(), ride.ID)
	if err != nil {
		t.Fatal(err)
	}
	if final.Status != models.RideStatusOpen || final.AvailableSeats != 4 {
		t.Errorf("final state = %s/%d seats, want open/4", final.Status, final.AvailableSeats)
	}
}

func TestTerminalRideDropsLock(t *testing.T) {
	f := newRideFixture(t)
	svc := f.service.(*rideService)

	ride := f.offerRide(t, 4, 100)
	if err := f.service.CompleteRide(context.Background(), f.giverID, models.UserRoleUser, ride.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, held := svc.rideLocks.Load(ride.ID); held {
		t.Error("lock entry kept after completion")
	}

	ride = f.offerRide(t, 4, 100)
	if err := f.service.CancelRide(context.Background(), f.giverID, models.UserRoleUser, ride.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, held := svc.rideLocks.Load(ride.ID); held {
		t.Error("lock entry kept after cancellation")
	}
}
