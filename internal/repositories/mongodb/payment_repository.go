package mongodb

import (
	"context"
	"fmt"
	"time"

	"copool/internal/models"
	"copool/internal/repositories/interfaces"
	"copool/internal/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type paymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) interfaces.PaymentRepository {
	return &paymentRepository{
		collection: db.Collection("payments"),
	}
}

func (r *paymentRepository) Open(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	now := time.Now()

	// Upsert keyed on the partial unique (ride_id, rider_id) index: the
	// first open wins and later opens return that record untouched. Voided
	// records are invisible here so a rider who left and rejoined gets a
	// fresh one.
	filter := bson.M{
		"ride_id":  payment.RideID,
		"rider_id": payment.RiderID,
		"voided":   false,
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":            primitive.NewObjectID(),
			"ride_id":        payment.RideID,
			"rider_id":       payment.RiderID,
			"rider_name":     payment.RiderName,
			"giver_id":       payment.GiverID,
			"giver_name":     payment.GiverName,
			"seats":          payment.Seats,
			"amount":         payment.Amount,
			"rider_status":   models.RiderPaymentPending,
			"giver_status":   models.GiverPaymentPending,
			"admin_override": false,
			"voided":         false,
			"created_at":     now,
			"updated_at":     now,
		},
	}

	var opened models.Payment
	err := r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&opened)
	if err != nil {
		return nil, fmt.Errorf("failed to open payment: %w", err)
	}

	return &opened, nil
}

func (r *paymentRepository) GetByRideAndRider(ctx context.Context, rideID, riderID primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{
		"ride_id":  rideID,
		"rider_id": riderID,
		"voided":   false,
	}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) ListByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"ride_id": rideID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}

	return payments, nil
}

func (r *paymentRepository) SetRiderStatus(ctx context.Context, rideID, riderID primitive.ObjectID, status models.RiderPaymentStatus, adminOverride bool) error {
	updates := bson.M{
		"rider_status": status,
		"updated_at":   time.Now(),
	}
	if adminOverride {
		updates["admin_override"] = true
	}

	return r.setStatus(ctx, rideID, riderID, updates)
}

func (r *paymentRepository) SetGiverStatus(ctx context.Context, rideID, riderID primitive.ObjectID, status models.GiverPaymentStatus, adminOverride bool) error {
	updates := bson.M{
		"giver_status": status,
		"updated_at":   time.Now(),
	}
	if adminOverride {
		updates["admin_override"] = true
	}

	return r.setStatus(ctx, rideID, riderID, updates)
}

func (r *paymentRepository) setStatus(ctx context.Context, rideID, riderID primitive.ObjectID, updates bson.M) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"ride_id": rideID, "rider_id": riderID, "voided": false},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrNotFound
	}

	return nil
}

func (r *paymentRepository) Void(ctx context.Context, rideID, riderID primitive.ObjectID) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"ride_id": rideID, "rider_id": riderID, "voided": false},
		bson.M{"$set": bson.M{"voided": true, "voided_at": now, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to void payment: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrNotFound
	}

	return nil
}

func (r *paymentRepository) VoidByRide(ctx context.Context, rideID primitive.ObjectID) error {
	now := time.Now()
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"ride_id": rideID, "voided": false},
		bson.M{"$set": bson.M{"voided": true, "voided_at": now, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to void ride payments: %w", err)
	}

	return nil
}
