package services

import (
	"context"
	"fmt"

	"copool/internal/models"
	"copool/internal/repositories/interfaces"
	"copool/internal/utils"
	"copool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleService interface {
	RegisterVehicle(ctx context.Context, ownerID primitive.ObjectID, request *RegisterVehicleRequest) (*models.Vehicle, error)
	GetVehicle(ctx context.Context, callerID primitive.ObjectID, vehicleID primitive.ObjectID) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, callerID primitive.ObjectID, vehicleID primitive.ObjectID, request *UpdateVehicleRequest) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, callerID primitive.ObjectID, vehicleID primitive.ObjectID) error
	ListVehicles(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Vehicle, error)
}

type RegisterVehicleRequest struct {
	VehicleType           models.VehicleType `json:"vehicle_type" validate:"required"`
	Make                  string             `json:"make" validate:"required"`
	Model                 string             `json:"model" validate:"required"`
	Color                 string             `json:"color"`
	VehicleNumber         string             `json:"vehicle_number" validate:"required"`
	TotalSeats            int                `json:"total_seats" validate:"required,min=1"`
	DefaultAvailableSeats int                `json:"default_available_seats"`
}

type UpdateVehicleRequest struct {
	Color                 *string `json:"color"`
	TotalSeats            *int    `json:"total_seats"`
	DefaultAvailableSeats *int    `json:"default_available_seats"`
}

type vehicleService struct {
	vehicleRepo interfaces.VehicleRepository
	logger      *logger.Logger
}

func NewVehicleService(vehicleRepo interfaces.VehicleRepository, log *logger.Logger) VehicleService {
	return &vehicleService{
		vehicleRepo: vehicleRepo,
		logger:      log,
	}
}

func (s *vehicleService) RegisterVehicle(ctx context.Context, ownerID primitive.ObjectID, request *RegisterVehicleRequest) (*models.Vehicle, error) {
	if request.TotalSeats < 1 || request.TotalSeats > utils.MaxSeatsPerRide {
		return nil, fmt.Errorf("%w: total_seats must be between 1 and %d", ErrInvalidInput, utils.MaxSeatsPerRide)
	}
	if request.DefaultAvailableSeats < 0 || request.DefaultAvailableSeats > request.TotalSeats {
		return nil, fmt.Errorf("%w: default_available_seats out of range", ErrInvalidInput)
	}
	if request.VehicleNumber == "" {
		return nil, fmt.Errorf("%w: vehicle_number is required", ErrInvalidInput)
	}

	vehicle := &models.Vehicle{
		UserID:                ownerID,
		VehicleType:           request.VehicleType,
		Make:                  request.Make,
		Model:                 request.Model,
		Color:                 request.Color,
		VehicleNumber:         request.VehicleNumber,
		TotalSeats:            request.TotalSeats,
		DefaultAvailableSeats: request.DefaultAvailableSeats,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"vehicle_id": vehicle.ID.Hex(),
		"user_id":    ownerID.Hex(),
	}).Info("Vehicle registered")

	return vehicle, nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, callerID primitive.ObjectID, vehicleID primitive.ObjectID) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.UserID != callerID {
		return nil, fmt.Errorf("%w: vehicle belongs to another user", ErrForbidden)
	}
	return vehicle, nil
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, callerID primitive.ObjectID, vehicleID primitive.ObjectID, request *UpdateVehicleRequest) (*models.Vehicle, error) {
	vehicle, err := s.GetVehicle(ctx, callerID, vehicleID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if request.Color != nil {
		updates["color"] = *request.Color
	}
	if request.TotalSeats != nil {
		if *request.TotalSeats < 1 || *request.TotalSeats > utils.MaxSeatsPerRide {
			return nil, fmt.Errorf("%w: total_seats must be between 1 and %d", ErrInvalidInput, utils.MaxSeatsPerRide)
		}
		updates["total_seats"] = *request.TotalSeats
	}
	if request.DefaultAvailableSeats != nil {
		total := vehicle.TotalSeats
		if request.TotalSeats != nil {
			total = *request.TotalSeats
		}
		if *request.DefaultAvailableSeats < 0 || *request.DefaultAvailableSeats > total {
			return nil, fmt.Errorf("%w: default_available_seats out of range", ErrInvalidInput)
		}
		updates["default_available_seats"] = *request.DefaultAvailableSeats
	}

	if len(updates) > 0 {
		if err := s.vehicleRepo.Update(ctx, vehicleID, updates); err != nil {
			return nil, err
		}
	}

	return s.vehicleRepo.GetByID(ctx, vehicleID)
}

func (s *vehicleService) DeleteVehicle(ctx context.Context, callerID primitive.ObjectID, vehicleID primitive.ObjectID) error {
	if _, err := s.GetVehicle(ctx, callerID, vehicleID); err != nil {
		return err
	}
	return s.vehicleRepo.Delete(ctx, vehicleID)
}

func (s *vehicleService) ListVehicles(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Vehicle, error) {
	return s.vehicleRepo.ListByUser(ctx, ownerID)
}
