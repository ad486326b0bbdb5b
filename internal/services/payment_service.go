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

type PaymentService interface {
	// GetPayment returns the rider's live payment record plus the UPI deep
	// link built from the giver's stored payment address. Only the two
	// parties (or an admin) may read it.
	GetPayment(ctx context.Context, callerID primitive.ObjectID, callerRole models.UserRole, rideID, riderID primitive.ObjectID) (*PaymentDetail, error)
	ListPayments(ctx context.Context, callerID primitive.ObjectID, callerRole models.UserRole, rideID primitive.ObjectID) ([]*models.Payment, error)

	// MarkPaid sets rider_status=done. Only the record's rider may call it.
	MarkPaid(ctx context.Context, callerID primitive.ObjectID, rideID primitive.ObjectID) error
	// MarkReceived sets giver_status=received for one rider's record. Only
	// the ride's giver may call it.
	MarkReceived(ctx context.Context, callerID primitive.ObjectID, rideID, riderID primitive.ObjectID) error

	// Admin overrides flip either field regardless of party, leaving an
	// audit mark on the record.
	OverrideRiderStatus(ctx context.Context, rideID, riderID primitive.ObjectID, status models.RiderPaymentStatus) error
	OverrideGiverStatus(ctx context.Context, rideID, riderID primitive.ObjectID, status models.GiverPaymentStatus) error
}

type PaymentDetail struct {
	Payment *models.Payment `json:"payment"`
	// PayURI is empty when the giver has no UPI address on file.
	PayURI string `json:"pay_uri,omitempty"`
}

type paymentService struct {
	paymentRepo interfaces.PaymentRepository
	userRepo    interfaces.UserRepository
	logger      *logger.Logger
}

func NewPaymentService(paymentRepo interfaces.PaymentRepository, userRepo interfaces.UserRepository, log *logger.Logger) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		logger:      log,
	}
}

func (s *paymentService) GetPayment(ctx context.Context, callerID primitive.ObjectID, callerRole models.UserRole, rideID, riderID primitive.ObjectID) (*PaymentDetail, error) {
	payment, err := s.paymentRepo.GetByRideAndRider(ctx, rideID, riderID)
	if err != nil {
		return nil, err
	}
	if callerID != payment.RiderID && callerID != payment.GiverID && callerRole != models.UserRoleAdmin {
		return nil, fmt.Errorf("%w: not a party to this payment", ErrForbidden)
	}

	detail := &PaymentDetail{Payment: payment}

	giver, err := s.userRepo.GetByID(ctx, payment.GiverID)
	if err != nil {
		return nil, err
	}
	if giver.UPIID != "" {
		note := fmt.Sprintf("ride %s x%d seats", rideID.Hex(), payment.Seats)
		uri, err := utils.BuildUPIPayURI(giver.UPIID, giver.Name, payment.Amount, note)
		if err == nil {
			detail.PayURI = uri
		}
	}

	return detail, nil
}

func (s *paymentService) ListPayments(ctx context.Context, callerID primitive.ObjectID, callerRole models.UserRole, rideID primitive.ObjectID) ([]*models.Payment, error) {
	payments, err := s.paymentRepo.ListByRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if callerRole == models.UserRoleAdmin {
		return payments, nil
	}

	// The giver sees every record on their ride; a rider only their own.
	visible := make([]*models.Payment, 0, len(payments))
	for _, p := range payments {
		if p.GiverID == callerID || p.RiderID == callerID {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (s *paymentService) MarkPaid(ctx context.Context, callerID primitive.ObjectID, rideID primitive.ObjectID) error {
	payment, err := s.paymentRepo.GetByRideAndRider(ctx, rideID, callerID)
	if err != nil {
		return err
	}
	if payment.RiderID != callerID {
		return fmt.Errorf("%w: only the rider may mark paid", ErrForbidden)
	}
	// pending -> done is one-way.
	if payment.RiderStatus == models.RiderPaymentDone {
		return nil
	}

	if err := s.paymentRepo.SetRiderStatus(ctx, rideID, callerID, models.RiderPaymentDone, false); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"ride_id":  rideID.Hex(),
		"rider_id": callerID.Hex(),
	}).Info("Rider marked payment done")

	return nil
}

func (s *paymentService) MarkReceived(ctx context.Context, callerID primitive.ObjectID, rideID, riderID primitive.ObjectID) error {
	payment, err := s.paymentRepo.GetByRideAndRider(ctx, rideID, riderID)
	if err != nil {
		return err
	}
	if payment.GiverID != callerID {
		return fmt.Errorf("%w: only the giver may mark received", ErrForbidden)
	}
	if payment.GiverStatus == models.GiverPaymentReceived {
		return nil
	}

	if err := s.paymentRepo.SetGiverStatus(ctx, rideID, riderID, models.GiverPaymentReceived, false); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"ride_id":  rideID.Hex(),
		"rider_id": riderID.Hex(),
		"giver_id": callerID.Hex(),
	}).Info("Giver marked payment received")

	return nil
}

func (s *paymentService) OverrideRiderStatus(ctx context.Context, rideID, riderID primitive.ObjectID, status models.RiderPaymentStatus) error {
	if status != models.RiderPaymentPending && status != models.RiderPaymentDone {
		return fmt.Errorf("%w: unknown rider status %q", ErrInvalidInput, status)
	}
	if err := s.paymentRepo.SetRiderStatus(ctx, rideID, riderID, status, true); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"ride_id":  rideID.Hex(),
		"rider_id": riderID.Hex(),
		"status":   status,
	}).Warn("Admin override on rider payment status")

	return nil
}

func (s *paymentService) OverrideGiverStatus(ctx context.Context, rideID, riderID primitive.ObjectID, status models.GiverPaymentStatus) error {
	if status != models.GiverPaymentPending && status != models.GiverPaymentReceived {
		return fmt.Errorf("%w: unknown giver status %q", ErrInvalidInput, status)
	}
	if err := s.paymentRepo.SetGiverStatus(ctx, rideID, riderID, status, true); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"ride_id":  rideID.Hex(),
		"rider_id": riderID.Hex(),
		"status":   status,
	}).Warn("Admin override on giver payment status")

	return nil
}
