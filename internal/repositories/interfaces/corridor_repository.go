package interfaces

import (
	"context"

	"copool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CorridorRepository interface {
	Create(ctx context.Context, corridor *models.Corridor) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Corridor, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, cityID *primitive.ObjectID, activeOnly bool) ([]*models.Corridor, error)

	// Per-user corridor access
	Assign(ctx context.Context, userID, corridorID primitive.ObjectID) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Corridor, error)
	HasAccess(ctx context.Context, userID, corridorID primitive.ObjectID) (bool, error)
}

type CityRepository interface {
	Create(ctx context.Context, city *models.City) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.City, error)
	List(ctx context.Context) ([]*models.City, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.CityStatus) error
}
