package mongodb

import (
	"context"
	"fmt"
	"time"

	"copool/internal/models"
	"copool/internal/repositories/interfaces"
	"copool/internal/services"
	"copool/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type rideRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewRideRepository(db *mongo.Database, cache services.CacheService) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection("rides"),
		cache:      cache,
	}
}

// Basic CRUD operations
func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = ride.CreatedAt
	if ride.Status == "" {
		ride.Status = models.RideStatusOpen
	}
	if ride.Reservations == nil {
		ride.Reservations = []models.SeatReservation{}
	}

	_, err := r.collection.InsertOne(ctx, ride)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	r.cacheRide(ctx, ride)

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	// Try cache first
	if ride := r.getRideFromCache(ctx, id); ride != nil {
		return ride, nil
	}

	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	if !ride.Status.IsTerminal() {
		r.cacheRide(ctx, &ride)
	}

	return &ride, nil
}

func (r *rideRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update ride: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrNotFound
	}

	r.invalidateRideCache(ctx, id)

	return nil
}

func (r *rideRepository) List(ctx context.Context, filter *interfaces.RideListFilter, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	query := bson.M{}
	if filter != nil {
		if filter.CorridorID != nil {
			query["corridor_id"] = *filter.CorridorID
		}
		if filter.GiverID != nil {
			query["giver_id"] = *filter.GiverID
		}
		if filter.RiderID != nil {
			query["reservations.rider_id"] = *filter.RiderID
		}
		if len(filter.Dates) > 0 {
			query["ride_date"] = bson.M{"$in": filter.Dates}
		}
		if len(filter.Statuses) > 0 {
			query["status"] = bson.M{"$in": filter.Statuses}
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	cursor, err := r.collection.Find(ctx, query, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	if err := cursor.All(ctx, &rides); err != nil {
		return nil, 0, fmt.Errorf("failed to decode rides: %w", err)
	}

	return rides, total, nil
}

// Seat ledger operations

func (r *rideRepository) ReserveSeats(ctx context.Context, id primitive.ObjectID, res models.SeatReservation) error {
	res.CreatedAt = time.Now()

	// One conditional write: the filter guards capacity, joinable status and
	// the no-double-reservation rule, so two concurrent joins can never
	// oversell the ride. The pipeline also flips the ride to full when the
	// counter reaches zero, so no reader ever sees an open ride with zero
	// seats left.
	filter := bson.M{
		"_id":                   id,
		"status":                bson.M{"$in": []models.RideStatus{models.RideStatusOpen, models.RideStatusFull}},
		"available_seats":       bson.M{"$gte": res.Seats},
		"reservations.rider_id": bson.M{"$ne": res.RiderID},
	}
	remaining := bson.M{"$subtract": bson.A{"$available_seats", res.Seats}}
	update := []bson.M{{"$set": bson.M{
		"reservations":    bson.M{"$concatArrays": bson.A{"$reservations", bson.A{bson.M{"$literal": res}}}},
		"available_seats": remaining,
		"status": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{remaining, 0}},
			models.RideStatusFull,
			"$status",
		}},
		"updated_at": time.Now(),
	}}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve seats: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.diagnoseReserveFailure(ctx, id, res)
	}

	r.invalidateRideCache(ctx, id)

	return nil
}

// diagnoseReserveFailure re-reads the ride to turn a no-match reserve into the
// precise domain error.
func (r *rideRepository) diagnoseReserveFailure(ctx context.Context, id primitive.ObjectID, res models.SeatReservation) error {
	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return services.ErrNotFound
		}
		return fmt.Errorf("failed to reserve seats: %w", err)
	}

	switch {
	case ride.ReservationFor(res.RiderID) != nil:
		return services.ErrConflict
	case ride.Status != models.RideStatusOpen && ride.Status != models.RideStatusFull:
		return services.ErrConflict
	case ride.AvailableSeats < res.Seats:
		return services.ErrCapacityExceeded
	default:
		return services.ErrConflict
	}
}

func (r *rideRepository) ReleaseSeats(ctx context.Context, id primitive.ObjectID, riderID primitive.ObjectID, seats int) error {
	filter := bson.M{
		"_id": id,
		"reservations": bson.M{"$elemMatch": bson.M{
			"rider_id": riderID,
			"seats":    seats,
		}},
	}
	// Freeing seats on a full ride reopens it, in the same write that drops
	// the reservation and restores the counter.
	update := []bson.M{{"$set": bson.M{
		"reservations": bson.M{"$filter": bson.M{
			"input": "$reservations",
			"as":    "res",
			"cond":  bson.M{"$ne": bson.A{"$$res.rider_id", riderID}},
		}},
		"available_seats": bson.M{"$add": bson.A{"$available_seats", seats}},
		"status": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$status", models.RideStatusFull}},
			models.RideStatusOpen,
			"$status",
		}},
		"updated_at": time.Now(),
	}}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrNotFound
	}

	r.invalidateRideCache(ctx, id)

	return nil
}

// Status operations

func (r *rideRepository) CancelRide(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	// Pipeline update so clearing reservations and restoring the counter to
	// total_seats land in the same atomic write as the status flip.
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": []models.RideStatus{models.RideStatusOpen, models.RideStatusFull}}},
		[]bson.M{{"$set": bson.M{
			"status":          models.RideStatusCancelled,
			"cancelled_at":    now,
			"updated_at":      now,
			"reservations":    []models.SeatReservation{},
			"available_seats": "$total_seats",
		}}},
	)
	if err != nil {
		return fmt.Errorf("failed to cancel ride: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.statusMismatch(ctx, id)
	}

	r.invalidateRideCache(ctx, id)

	return nil
}

func (r *rideRepository) CompleteRide(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": []models.RideStatus{models.RideStatusOpen, models.RideStatusFull}}},
		bson.M{"$set": bson.M{
			"status":       models.RideStatusCompleted,
			"completed_at": now,
			"updated_at":   now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to complete ride: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.statusMismatch(ctx, id)
	}

	r.invalidateRideCache(ctx, id)

	return nil
}

func (r *rideRepository) statusMismatch(ctx context.Context, id primitive.ObjectID) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check ride: %w", err)
	}
	if count == 0 {
		return services.ErrNotFound
	}
	return services.ErrConflict
}

// Stats operations

func (r *rideRepository) CountByDate(ctx context.Context, date string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"ride_date": date,
		"status":    bson.M{"$ne": models.RideStatusCancelled},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count rides: %w", err)
	}
	return count, nil
}

func (r *rideRepository) CountSeatsReservedOn(ctx context.Context, date string) (int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{
			"ride_date": date,
			"status":    bson.M{"$ne": models.RideStatusCancelled},
		}},
		{"$unwind": "$reservations"},
		{"$group": bson.M{
			"_id":   nil,
			"seats": bson.M{"$sum": "$reservations.seats"},
		}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate reserved seats: %w", err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		Seats int64 `bson:"seats"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, fmt.Errorf("failed to decode reserved seats: %w", err)
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Seats, nil
}

// Cache helpers

func (r *rideRepository) cacheRide(ctx context.Context, ride *models.Ride) {
	if r.cache == nil {
		return
	}
	_ = r.cache.CacheRide(ctx, ride, 5*time.Minute)
}

func (r *rideRepository) getRideFromCache(ctx context.Context, id primitive.ObjectID) *models.Ride {
	if r.cache == nil {
		return nil
	}
	ride, err := r.cache.GetCachedRide(ctx, id)
	if err != nil {
		return nil
	}
	return ride
}

func (r *rideRepository) invalidateRideCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache == nil {
		return
	}
	_ = r.cache.InvalidateRide(ctx, id)
}
