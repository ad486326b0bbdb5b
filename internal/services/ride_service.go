package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"copool/internal/models"
	"copool/internal/repositories/interfaces"
	"copool/internal/utils"
	"copool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideService interface {
	OfferRide(ctx context.Context, giverID primitive.ObjectID, request *OfferRideRequest) (*models.Ride, error)
	UpdateRide(ctx context.Context, callerID primitive.ObjectID, rideID primitive.ObjectID, request *UpdateRideRequest) (*models.Ride, error)
	GetRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error)
	ListRides(ctx context.Context, filter *interfaces.RideListFilter, params *utils.PaginationParams) ([]*models.Ride, int64, error)

	JoinRide(ctx context.Context, riderID primitive.ObjectID, rideID primitive.ObjectID, seats int) (*JoinRideResult, error)
	LeaveRide(ctx context.Context, riderID primitive.ObjectID, rideID primitive.ObjectID) error
	CancelRide(ctx context.Context, callerID primitive.ObjectID, callerRole models.UserRole, rideID primitive.ObjectID) error
	CompleteRide(ctx context.Context, callerID primitive.ObjectID, callerRole models.UserRole, rideID primitive.ObjectID) error
}

type OfferRideRequest struct {
	CorridorID       primitive.ObjectID `json:"corridor_id" validate:"required"`
	VehicleID        primitive.ObjectID `json:"vehicle_id" validate:"required"`
	RideDate         string             `json:"ride_date" validate:"required,ride_date"`
	RideTime         string             `json:"ride_time" validate:"required,ride_time"`
	PickupPoint      string             `json:"pickup_point" validate:"required"`
	DropPoint        string             `json:"drop_point" validate:"required"`
	RouteDescription string             `json:"route_description"`
	PricePerSeat     float64            `json:"price_per_seat" validate:"min=0"`
	TotalSeats       int                `json:"total_seats" validate:"required,min=1"`
}

// UpdateRideRequest edits a ride's presentation details. Price changes apply
// to future joins only; payment records already opened keep their snapshotted
// amount.
type UpdateRideRequest struct {
	PickupPoint      *string  `json:"pickup_point"`
	DropPoint        *string  `json:"drop_point"`
	RouteDescription *string  `json:"route_description"`
	PricePerSeat     *float64 `json:"price_per_seat"`
	RideTime         *string  `json:"ride_time"`
}

type JoinRideResult struct {
	Ride    *models.Ride    `json:"ride"`
	Payment *models.Payment `json:"payment"`
}

type rideService struct {
	rideRepo     interfaces.RideRepository
	paymentRepo  interfaces.PaymentRepository
	userRepo     interfaces.UserRepository
	corridorRepo interfaces.CorridorRepository
	cityRepo     interfaces.CityRepository
	vehicleRepo  interfaces.VehicleRepository
	creditRepo   interfaces.CarbonCreditRepository
	logger       *logger.Logger
	location     *time.Location

	// One mutex per live ride so join/leave/cancel on the same ride
	// serialize while different rides proceed independently. Entries are
	// dropped once the ride reaches a terminal state.
	rideLocks sync.Map
}

func NewRideService(
	rideRepo interfaces.RideRepository,
	paymentRepo interfaces.PaymentRepository,
	userRepo interfaces.UserRepository,
	corridorRepo interfaces.CorridorRepository,
	cityRepo interfaces.CityRepository,
	vehicleRepo interfaces.VehicleRepository,
	creditRepo interfaces.CarbonCreditRepository,
	log *logger.Logger,
	location *time.Location,
) RideService {
	if location == nil {
		location = time.Local
	}
	return &rideService{
		rideRepo:     rideRepo,
		paymentRepo:  paymentRepo,
		userRepo:     userRepo,
		corridorRepo: corridorRepo,
		cityRepo:     cityRepo,
		vehicleRepo:  vehicleRepo,
		creditRepo:   creditRepo,
		logger:       log,
		location:     location,
	}
}

func (s *rideService) lockRide(rideID primitive.ObjectID) func() {
	value, _ := s.rideLocks.LoadOrStore(rideID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// forgetRideLock drops a terminal ride's mutex entry so the map does not grow
// for the process lifetime. A goroutine still queued on the old mutex is
// harmless: every conditional write it attempts fails on the status guard.
func (s *rideService) forgetRideLock(rideID primitive.ObjectID) {
	s.rideLocks.Delete(rideID)
}

func (s *rideService) OfferRide(ctx context.Context, giverID primitive.ObjectID, request *OfferRideRequest) (*models.Ride, error) {
	if request.TotalSeats < 1 || request.TotalSeats > utils.MaxSeatsPerRide {
		return nil, fmt.Errorf("%w: total_seats must be between 1 and %d", ErrInvalidInput, utils.MaxSeatsPerRide)
	}
	if request.PricePerSeat < 0 || request.PricePerSeat > utils.MaxPricePerSeat {
		return nil, fmt.Errorf("%w: price_per_seat out of range", ErrInvalidInput)
	}
	if request.PickupPoint == "" || request.DropPoint == "" {
		return nil, fmt.Errorf("%w: pickup and drop points are required", ErrInvalidInput)
	}

	rideDate, err := utils.ParseRideDate(request.RideDate, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ride_date", ErrInvalidInput)
	}
	if _, err := time.Parse(utils.TimeLayout, request.RideTime); err != nil {
		return nil, fmt.Errorf("%w: invalid ride_time", ErrInvalidInput)
	}
	if !utils.WithinBookingHorizon(rideDate, time.Now().In(s.location)) {
		return nil, fmt.Errorf("%w: ride_date outside the booking window", ErrInvalidInput)
	}

	giver, err := s.userRepo.GetByID(ctx, giverID)
	if err != nil {
		return nil, err
	}

	corridor, err := s.corridorRepo.GetByID(ctx, request.CorridorID)
	if err != nil {
		return nil, err
	}
	if !corridor.IsActive {
		return nil, fmt.Errorf("%w: corridor is not active", ErrInvalidInput)
	}
	city, err := s.cityRepo.GetByID(ctx, corridor.CityID)
	if err != nil {
		return nil, err
	}
	if city.Status != models.CityStatusActive {
		return nil, fmt.Errorf("%w: city is locked for new rides", ErrInvalidInput)
	}

	hasAccess, err := s.corridorRepo.HasAccess(ctx, giverID, request.CorridorID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, fmt.Errorf("%w: corridor not assigned to user", ErrForbidden)
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, request.VehicleID)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: no registered vehicle", ErrPrecondition)
		}
		return nil, err
	}
	if vehicle.UserID != giverID {
		return nil, fmt.Errorf("%w: vehicle belongs to another user", ErrForbidden)
	}
	if request.TotalSeats > vehicle.TotalSeats {
		return nil, fmt.Errorf("%w: total_seats exceeds vehicle capacity", ErrInvalidInput)
	}

	ride := &models.Ride{
		GiverID:          giverID,
		GiverName:        giver.Name,
		CorridorID:       corridor.ID,
		CorridorName:     corridor.Name,
		VehicleID:        vehicle.ID,
		RideDate:         request.RideDate,
		RideTime:         request.RideTime,
		PickupPoint:      request.PickupPoint,
		DropPoint:        request.DropPoint,
		RouteDescription: request.RouteDescription,
		PricePerSeat:     request.PricePerSeat,
		TotalSeats:       request.TotalSeats,
		AvailableSeats:   request.TotalSeats,
		Reservations:     []models.SeatReservation{},
		Status:           models.RideStatusOpen,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"ride_id":  ride.ID.Hex(),
		"giver_id": giverID.Hex(),
		"corridor": corridor.Name,
		"date":     ride.RideDate,
		"seats":    ride.TotalSeats,
	}).Info("Ride offered")

	return ride, nil
}

func (s *rideService) UpdateRide(ctx context.Context, callerID primitive.ObjectID, rideID primitive.ObjectID, request *UpdateRideRequest) (*models.Ride, error) {
	unlock := s.lockRide(rideID)
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.GiverID != callerID {
		return nil, fmt.Errorf("%w: only the giver may edit the ride", ErrForbidden)
	}
	if ride.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: ride is %s", ErrConflict, ride.Status)
	}

	updates := map[string]interface{}{}
	if request.PickupPoint != nil {
		if *request.PickupPoint == "" {
			return nil, fmt.Errorf("%w: pickup_point must not be empty", ErrInvalidInput)
		}
		updates["pickup_point"] = *request.PickupPoint
	}
	if request.DropPoint != nil {
		if *request.DropPoint == "" {
			return nil, fmt.Errorf("%w: drop_point must not be empty", ErrInvalidInput)
		}
		updates["drop_point"] = *request.DropPoint
	}
	if request.RouteDescription != nil {
		updates["route_description"] = *request.RouteDescription
	}
	if request.PricePerSeat != nil {
		if *request.PricePerSeat < 0 || *request.PricePerSeat > utils.MaxPricePerSeat {
			return nil, fmt.Errorf("%w: price_per_seat out of range", ErrInvalidInput)
		}
		updates["price_per_seat"] = *request.PricePerSeat
	}
	if request.RideTime != nil {
		if _, err := time.Parse(utils.TimeLayout, *request.RideTime); err != nil {
			return nil, fmt.Errorf("%w: invalid ride_time", ErrInvalidInput)
		}
		updates["ride_time"] = *request.RideTime
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	if err := s.rideRepo.Update(ctx, rideID, updates); err != nil {
		return nil, err
	}

	return s.rideRepo.GetByID(ctx, rideID)
}

func (s *rideService) GetRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	// Vehicle details are denormalized onto the detail view only; a deleted
	// vehicle just leaves the field empty.
	if vehicle, verr := s.vehicleRepo.GetByID(ctx, ride.VehicleID); verr == nil {
		ride.VehicleInfo = vehicle
	}

	return ride, nil
}

func (s *rideService) ListRides(ctx context.Context, filter *interfaces.RideListFilter, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return s.rideRepo.List(ctx, filter, params)
}

func (s *rideService) JoinRide(ctx context.Context, riderID primitive.ObjectID, rideID primitive.ObjectID, seats int) (*JoinRideResult, error) {
	if seats < 1 {
		return nil, fmt.Errorf("%w: seats must be at least 1", ErrInvalidInput)
	}

	unlock := s.lockRide(rideID)
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.GiverID == riderID {
		return nil, fmt.Errorf("%w: cannot join own ride", ErrForbidden)
	}
	if ride.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: ride is %s", ErrConflict, ride.Status)
	}
	if departed, derr := s.hasDeparted(ride); derr == nil && departed {
		return nil, fmt.Errorf("%w: ride time has passed", ErrConflict)
	}

	rider, err := s.userRepo.GetByID(ctx, riderID)
	if err != nil {
		return nil, err
	}

	reservation := models.SeatReservation{
		RiderID:   riderID,
		RiderName: rider.Name,
		Seats:     seats,
	}
	if err := s.rideRepo.ReserveSeats(ctx, rideID, reservation); err != nil {
		return nil, err
	}

	// Amount is snapshotted at join time; later price edits never touch it.
	payment, err := s.paymentRepo.Open(ctx, &models.Payment{
		RideID:    rideID,
		RiderID:   riderID,
		RiderName: rider.Name,
		GiverID:   ride.GiverID,
		GiverName: ride.GiverName,
		Seats:     seats,
		Amount:    float64(seats) * ride.PricePerSeat,
	})
	if err != nil {
		// Roll the reservation back so the ledger and the tracker never
		// diverge. A rollback that itself fails is fatal.
		if releaseErr := s.rideRepo.ReleaseSeats(ctx, rideID, riderID, seats); releaseErr != nil {
			s.logger.WithFields(map[string]interface{}{
				"ride_id":  rideID.Hex(),
				"rider_id": riderID.Hex(),
				"seats":    seats,
			}).WithError(releaseErr).Error("Failed to roll back reservation after payment open failure")
			return nil, fmt.Errorf("%w: reservation rollback failed: %v", ErrInternal, releaseErr)
		}
		return nil, fmt.Errorf("failed to open payment record: %w", err)
	}

	updated, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"ride_id":  rideID.Hex(),
		"rider_id": riderID.Hex(),
		"seats":    seats,
		"amount":   payment.Amount,
	}).Info("Rider joined ride")

	return &JoinRideResult{Ride: updated, Payment: payment}, nil
}

func (s *rideService) LeaveRide(ctx context.Context, riderID primitive.ObjectID, rideID primitive.ObjectID) error {
	unlock := s.lockRide(rideID)
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.Status.IsTerminal() {
		return fmt.Errorf("%w: ride is %s", ErrConflict, ride.Status)
	}

	reservation := ride.ReservationFor(riderID)
	if reservation == nil {
		return fmt.Errorf("%w: no reservation for rider", ErrNotFound)
	}

	if err := s.rideRepo.ReleaseSeats(ctx, rideID, riderID, reservation.Seats); err != nil {
		return err
	}

	// Kept for audit, not deleted.
	if err := s.paymentRepo.Void(ctx, rideID, riderID); err != nil && !IsNotFound(err) {
		s.logger.WithFields(map[string]interface{}{
			"ride_id":  rideID.Hex(),
			"rider_id": riderID.Hex(),
		}).WithError(err).Error("Failed to void payment after leave")
		return fmt.Errorf("%w: payment void failed: %v", ErrInternal, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"ride_id":  rideID.Hex(),
		"rider_id": riderID.Hex(),
		"seats":    reservation.Seats,
	}).Info("Rider left ride")

	return nil
}

func (s *rideService) CancelRide(ctx context.Context, callerID primitive.ObjectID, callerRole models.UserRole, rideID primitive.ObjectID) error {
	unlock := s.lockRide(rideID)
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.GiverID != callerID && callerRole != models.UserRoleAdmin {
		return fmt.Errorf("%w: only the giver may cancel", ErrForbidden)
	}

	if err := s.rideRepo.CancelRide(ctx, rideID); err != nil {
		return err
	}
	s.forgetRideLock(rideID)

	if err := s.paymentRepo.VoidByRide(ctx, rideID); err != nil {
		s.logger.WithField("ride_id", rideID.Hex()).WithError(err).Error("Failed to void payments after cancel")
		return fmt.Errorf("%w: payment void failed: %v", ErrInternal, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"ride_id":      rideID.Hex(),
		"cancelled_by": callerID.Hex(),
		"reservations": len(ride.Reservations),
	}).Info("Ride cancelled")

	return nil
}

func (s *rideService) CompleteRide(ctx context.Context, callerID primitive.ObjectID, callerRole models.UserRole, rideID primitive.ObjectID) error {
	unlock := s.lockRide(rideID)
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.GiverID != callerID && callerRole != models.UserRoleAdmin {
		return fmt.Errorf("%w: only the giver may complete", ErrForbidden)
	}

	if err := s.rideRepo.CompleteRide(ctx, rideID); err != nil {
		return err
	}
	s.forgetRideLock(rideID)

	s.awardCompletionCredits(ctx, ride)

	s.logger.WithFields(map[string]interface{}{
		"ride_id":      rideID.Hex(),
		"completed_by": callerID.Hex(),
		"riders":       len(ride.Reservations),
	}).Info("Ride completed")

	return nil
}

// awardCompletionCredits grants carbon credits to everyone who shared the
// ride. Award failures are logged but do not undo the completion.
func (s *rideService) awardCompletionCredits(ctx context.Context, ride *models.Ride) {
	occupied := ride.ReservedSeats()
	if occupied == 0 {
		return
	}

	award := func(userID primitive.ObjectID, credits int) {
		entry := &models.CarbonCredit{
			UserID:  userID,
			RideID:  &ride.ID,
			Credits: credits,
			Reason:  "ride completed",
		}
		if err := s.creditRepo.Award(ctx, entry); err != nil {
			s.logger.WithField("user_id", userID.Hex()).WithError(err).Warn("Failed to record carbon credit entry")
			return
		}
		if err := s.userRepo.IncrementCarbonCredits(ctx, userID, credits); err != nil {
			s.logger.WithField("user_id", userID.Hex()).WithError(err).Warn("Failed to update carbon credit balance")
		}
	}

	award(ride.GiverID, occupied*utils.CarbonCreditsPerSeat)
	for _, reservation := range ride.Reservations {
		award(reservation.RiderID, reservation.Seats*utils.CarbonCreditsPerSeat)
	}
}

func (s *rideService) hasDeparted(ride *models.Ride) (bool, error) {
	departure, err := ride.DepartureTime(s.location)
	if err != nil {
		return false, err
	}
	return time.Now().In(s.location).After(departure), nil
}
