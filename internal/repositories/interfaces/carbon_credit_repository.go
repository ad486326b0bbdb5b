package interfaces

import (
	"context"

	"copool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CarbonCreditRepository interface {
	Award(ctx context.Context, entry *models.CarbonCredit) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.CarbonCredit, error)
}
