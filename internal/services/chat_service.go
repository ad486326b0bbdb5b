package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"copool/internal/models"
	"copool/internal/repositories/interfaces"
	"copool/internal/utils"
	"copool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChatService interface {
	// PostMessage appends to the ride's log and returns the stored message
	// with its sequence number assigned.
	PostMessage(ctx context.Context, senderID primitive.ObjectID, rideID primitive.ObjectID, content string) (*models.Message, error)

	// MessagesSince returns messages with seq > lastSeq, ascending. This is
	// the polling cursor: repeated calls with the last seen seq never skip
	// or repeat a message.
	MessagesSince(ctx context.Context, callerID primitive.ObjectID, rideID primitive.ObjectID, lastSeq int64, limit int) ([]*models.Message, error)

	// MessageCount returns the length of the ride's full log, which is also
	// the highest assigned seq.
	MessageCount(ctx context.Context, callerID primitive.ObjectID, rideID primitive.ObjectID) (int64, error)
}

type chatService struct {
	messageRepo interfaces.MessageRepository
	rideRepo    interfaces.RideRepository
	logger      *logger.Logger

	// Seq allocation and the message insert are two separate writes in the
	// repository, so appends to one ride serialize here. Without this a
	// poller could advance its cursor past a seq whose insert has not landed
	// yet and never see that message.
	appendLocks sync.Map
}

func (s *chatService) lockAppend(rideID primitive.ObjectID) func() {
	value, _ := s.appendLocks.LoadOrStore(rideID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func NewChatService(messageRepo interfaces.MessageRepository, rideRepo interfaces.RideRepository, log *logger.Logger) ChatService {
	return &chatService{
		messageRepo: messageRepo,
		rideRepo:    rideRepo,
		logger:      log,
	}
}

func (s *chatService) PostMessage(ctx context.Context, senderID primitive.ObjectID, rideID primitive.ObjectID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message text is empty", ErrInvalidInput)
	}
	if len(content) > utils.MaxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", ErrInvalidInput, utils.MaxMessageLength)
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	sender, err := s.requireParticipant(ctx, ride, senderID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		RideID:     rideID,
		SenderID:   senderID,
		SenderName: sender,
		Content:    content,
	}
	unlock := s.lockAppend(rideID)
	err = s.messageRepo.Append(ctx, msg)
	unlock()
	if err != nil {
		return nil, err
	}

	return msg, nil
}

func (s *chatService) MessagesSince(ctx context.Context, callerID primitive.ObjectID, rideID primitive.ObjectID, lastSeq int64, limit int) ([]*models.Message, error) {
	if lastSeq < 0 {
		return nil, fmt.Errorf("%w: cursor must not be negative", ErrInvalidInput)
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireParticipant(ctx, ride, callerID); err != nil {
		return nil, err
	}

	return s.messageRepo.Since(ctx, rideID, lastSeq, limit)
}

func (s *chatService) MessageCount(ctx context.Context, callerID primitive.ObjectID, rideID primitive.ObjectID) (int64, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return 0, err
	}
	if _, err := s.requireParticipant(ctx, ride, callerID); err != nil {
		return 0, err
	}

	return s.messageRepo.CountByRide(ctx, rideID)
}

// requireParticipant admits the giver and reservation holders and returns the
// caller's display name for denormalizing onto messages.
func (s *chatService) requireParticipant(ctx context.Context, ride *models.Ride, userID primitive.ObjectID) (string, error) {
	if ride.GiverID == userID {
		return ride.GiverName, nil
	}
	if res := ride.ReservationFor(userID); res != nil {
		return res.RiderName, nil
	}
	return "", fmt.Errorf("%w: not a participant of this ride", ErrForbidden)
}
