package mongodb

import (
	"context"
	"fmt"
	"time"

	"copool/internal/models"
	"copool/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type carbonCreditRepository struct {
	collection *mongo.Collection
}

func NewCarbonCreditRepository(db *mongo.Database) interfaces.CarbonCreditRepository {
	return &carbonCreditRepository{
		collection: db.Collection("carbon_credits"),
	}
}

func (r *carbonCreditRepository) Award(ctx context.Context, entry *models.CarbonCredit) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to award carbon credits: %w", err)
	}

	return nil
}

func (r *carbonCreditRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.CarbonCredit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list carbon credits: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*models.CarbonCredit
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode carbon credits: %w", err)
	}

	return entries, nil
}
