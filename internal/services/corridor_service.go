package services

import (
	"context"
	"errors"
	"fmt"

	"copool/internal/models"
	"copool/internal/repositories/interfaces"
	"copool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CorridorService administers the city/corridor directory and per-user
// corridor assignments. Mutating operations are admin-only and enforced at
// the route layer.
type CorridorService interface {
	CreateCity(ctx context.Context, name string) (*models.City, error)
	ListCities(ctx context.Context) ([]*models.City, error)
	SetCityStatus(ctx context.Context, cityID primitive.ObjectID, status models.CityStatus) error

	CreateCorridor(ctx context.Context, request *CreateCorridorRequest) (*models.Corridor, error)
	GetCorridor(ctx context.Context, corridorID primitive.ObjectID) (*models.Corridor, error)
	UpdateCorridor(ctx context.Context, corridorID primitive.ObjectID, updates map[string]interface{}) error
	DeleteCorridor(ctx context.Context, corridorID primitive.ObjectID) error
	ListCorridors(ctx context.Context, cityID *primitive.ObjectID, activeOnly bool) ([]*models.Corridor, error)

	AssignCorridor(ctx context.Context, userID, corridorID primitive.ObjectID) error
	ListUserCorridors(ctx context.Context, userID primitive.ObjectID) ([]*models.Corridor, error)
}

type CreateCorridorRequest struct {
	CityID          primitive.ObjectID `json:"city_id" validate:"required"`
	Name            string             `json:"name" validate:"required"`
	LocationFrom    string             `json:"location_from" validate:"required"`
	LocationTo      string             `json:"location_to" validate:"required"`
	PickupPoints    []string           `json:"pickup_points"`
	TermsConditions string             `json:"terms_conditions"`
}

type corridorService struct {
	corridorRepo interfaces.CorridorRepository
	cityRepo     interfaces.CityRepository
	userRepo     interfaces.UserRepository
	logger       *logger.Logger
}

func NewCorridorService(corridorRepo interfaces.CorridorRepository, cityRepo interfaces.CityRepository, userRepo interfaces.UserRepository, log *logger.Logger) CorridorService {
	return &corridorService{
		corridorRepo: corridorRepo,
		cityRepo:     cityRepo,
		userRepo:     userRepo,
		logger:       log,
	}
}

func (s *corridorService) CreateCity(ctx context.Context, name string) (*models.City, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: city name is required", ErrInvalidInput)
	}

	city := &models.City{Name: name, Status: models.CityStatusActive}
	if err := s.cityRepo.Create(ctx, city); err != nil {
		return nil, err
	}

	s.logger.WithField("city", name).Info("City created")

	return city, nil
}

func (s *corridorService) ListCities(ctx context.Context) ([]*models.City, error) {
	return s.cityRepo.List(ctx)
}

func (s *corridorService) SetCityStatus(ctx context.Context, cityID primitive.ObjectID, status models.CityStatus) error {
	if status != models.CityStatusActive && status != models.CityStatusLocked {
		return fmt.Errorf("%w: unknown city status %q", ErrInvalidInput, status)
	}
	return s.cityRepo.UpdateStatus(ctx, cityID, status)
}

func (s *corridorService) CreateCorridor(ctx context.Context, request *CreateCorridorRequest) (*models.Corridor, error) {
	if request.Name == "" || request.LocationFrom == "" || request.LocationTo == "" {
		return nil, fmt.Errorf("%w: name and endpoints are required", ErrInvalidInput)
	}

	city, err := s.cityRepo.GetByID(ctx, request.CityID)
	if err != nil {
		return nil, err
	}

	corridor := &models.Corridor{
		CityID:          city.ID,
		CityName:        city.Name,
		Name:            request.Name,
		LocationFrom:    request.LocationFrom,
		LocationTo:      request.LocationTo,
		PickupPoints:    request.PickupPoints,
		TermsConditions: request.TermsConditions,
		IsActive:        true,
	}
	if err := s.corridorRepo.Create(ctx, corridor); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"corridor": corridor.Name,
		"city":     city.Name,
	}).Info("Corridor created")

	return corridor, nil
}

func (s *corridorService) GetCorridor(ctx context.Context, corridorID primitive.ObjectID) (*models.Corridor, error) {
	return s.corridorRepo.GetByID(ctx, corridorID)
}

func (s *corridorService) UpdateCorridor(ctx context.Context, corridorID primitive.ObjectID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	return s.corridorRepo.Update(ctx, corridorID, updates)
}

func (s *corridorService) DeleteCorridor(ctx context.Context, corridorID primitive.ObjectID) error {
	corridor, err := s.corridorRepo.GetByID(ctx, corridorID)
	if err != nil {
		return err
	}
	if err := s.corridorRepo.Delete(ctx, corridorID); err != nil {
		return err
	}

	s.logger.WithField("corridor", corridor.Name).Warn("Corridor deleted")
	return nil
}

func (s *corridorService) ListCorridors(ctx context.Context, cityID *primitive.ObjectID, activeOnly bool) ([]*models.Corridor, error) {
	return s.corridorRepo.List(ctx, cityID, activeOnly)
}

func (s *corridorService) AssignCorridor(ctx context.Context, userID, corridorID primitive.ObjectID) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.corridorRepo.GetByID(ctx, corridorID); err != nil {
		return err
	}

	err := s.corridorRepo.Assign(ctx, userID, corridorID)
	if err != nil {
		// Assigning twice is harmless.
		if errors.Is(err, ErrConflict) {
			return nil
		}
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":     userID.Hex(),
		"corridor_id": corridorID.Hex(),
	}).Info("Corridor assigned")

	return nil
}

func (s *corridorService) ListUserCorridors(ctx context.Context, userID primitive.ObjectID) ([]*models.Corridor, error) {
	return s.corridorRepo.ListByUser(ctx, userID)
}
