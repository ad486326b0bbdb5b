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

// UserService covers the admin user directory and the carbon credit ledger.
type UserService interface {
	ListUsers(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error)
	GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	SetUserRole(ctx context.Context, userID primitive.ObjectID, role models.UserRole) error

	// AdjustCarbonCredits applies a manual balance correction and records a
	// ledger entry for it.
	AdjustCarbonCredits(ctx context.Context, userID primitive.ObjectID, delta int, reason string) error
	ListCarbonCredits(ctx context.Context, userID primitive.ObjectID) ([]*models.CarbonCredit, error)
}

type userService struct {
	userRepo   interfaces.UserRepository
	creditRepo interfaces.CarbonCreditRepository
	logger     *logger.Logger
}

func NewUserService(userRepo interfaces.UserRepository, creditRepo interfaces.CarbonCreditRepository, log *logger.Logger) UserService {
	return &userService{
		userRepo:   userRepo,
		creditRepo: creditRepo,
		logger:     log,
	}
}

func (s *userService) ListUsers(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, params)
}

func (s *userService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) SetUserRole(ctx context.Context, userID primitive.ObjectID, role models.UserRole) error {
	if role != models.UserRoleUser && role != models.UserRoleAdmin {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"role": role}); err != nil {
		return err
	}

	s.logger.WithUserID(userID).WithField("role", role).Warn("User role changed")
	return nil
}

func (s *userService) AdjustCarbonCredits(ctx context.Context, userID primitive.ObjectID, delta int, reason string) error {
	if delta == 0 {
		return fmt.Errorf("%w: delta must not be zero", ErrInvalidInput)
	}
	if reason == "" {
		reason = "manual adjustment"
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	entry := &models.CarbonCredit{
		UserID:  userID,
		Credits: delta,
		Reason:  reason,
	}
	if err := s.creditRepo.Award(ctx, entry); err != nil {
		return err
	}
	if err := s.userRepo.IncrementCarbonCredits(ctx, userID, delta); err != nil {
		return err
	}

	s.logger.WithUserID(userID).WithFields(map[string]interface{}{
		"delta":  delta,
		"reason": reason,
	}).Warn("Carbon credit balance adjusted")
	return nil
}

func (s *userService) ListCarbonCredits(ctx context.Context, userID primitive.ObjectID) ([]*models.CarbonCredit, error) {
	return s.creditRepo.ListByUser(ctx, userID)
}
