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

type corridorRepository struct {
	collection  *mongo.Collection
	assignments *mongo.Collection
	cache       services.CacheService
}

func NewCorridorRepository(db *mongo.Database, cache services.CacheService) interfaces.CorridorRepository {
	return &corridorRepository{
		collection:  db.Collection("corridors"),
		assignments: db.Collection("user_corridors"),
		cache:       cache,
	}
}

func (r *corridorRepository) Create(ctx context.Context, corridor *models.Corridor) error {
	corridor.ID = primitive.NewObjectID()
	corridor.CreatedAt = time.Now()
	corridor.UpdatedAt = corridor.CreatedAt

	_, err := r.collection.InsertOne(ctx, corridor)
	if err != nil {
		return fmt.Errorf("failed to create corridor: %w", err)
	}

	r.invalidateListCache(ctx)

	return nil
}

func (r *corridorRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Corridor, error) {
	var corridor models.Corridor
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&corridor)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get corridor: %w", err)
	}

	return &corridor, nil
}

func (r *corridorRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update corridor: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrNotFound
	}

	r.invalidateListCache(ctx)

	return nil
}

func (r *corridorRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete corridor: %w", err)
	}
	if result.DeletedCount == 0 {
		return services.ErrNotFound
	}

	_, err = r.assignments.DeleteMany(ctx, bson.M{"corridor_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete corridor assignments: %w", err)
	}

	r.invalidateListCache(ctx)

	return nil
}

func (r *corridorRepository) List(ctx context.Context, cityID *primitive.ObjectID, activeOnly bool) ([]*models.Corridor, error) {
	// The full listings are small and hot; serve them from cache.
	cacheKey := r.listCacheKey(cityID, activeOnly)
	if r.cache != nil && cacheKey != "" {
		if corridors, err := r.cache.GetCachedCorridors(ctx, cacheKey); err == nil && corridors != nil {
			return corridors, nil
		}
	}

	query := bson.M{}
	if cityID != nil {
		query["city_id"] = *cityID
	}
	if activeOnly {
		query["is_active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list corridors: %w", err)
	}
	defer cursor.Close(ctx)

	var corridors []*models.Corridor
	if err := cursor.All(ctx, &corridors); err != nil {
		return nil, fmt.Errorf("failed to decode corridors: %w", err)
	}

	if r.cache != nil && cacheKey != "" {
		_ = r.cache.CacheCorridors(ctx, cacheKey, corridors, 5*time.Minute)
	}

	return corridors, nil
}

func (r *corridorRepository) listCacheKey(cityID *primitive.ObjectID, activeOnly bool) string {
	if cityID != nil {
		return ""
	}
	if activeOnly {
		return "active"
	}
	return "all"
}

func (r *corridorRepository) Assign(ctx context.Context, userID, corridorID primitive.ObjectID) error {
	assignment := models.CorridorAssignment{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		CorridorID: corridorID,
		CreatedAt:  time.Now(),
	}

	_, err := r.assignments.InsertOne(ctx, assignment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return services.ErrConflict
		}
		return fmt.Errorf("failed to assign corridor: %w", err)
	}

	return nil
}

func (r *corridorRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Corridor, error) {
	cursor, err := r.assignments.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list corridor assignments: %w", err)
	}
	defer cursor.Close(ctx)

	var assignments []models.CorridorAssignment
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, fmt.Errorf("failed to decode corridor assignments: %w", err)
	}

	if len(assignments) == 0 {
		return []*models.Corridor{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.CorridorID)
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	corridorCursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list user corridors: %w", err)
	}
	defer corridorCursor.Close(ctx)

	var corridors []*models.Corridor
	if err := corridorCursor.All(ctx, &corridors); err != nil {
		return nil, fmt.Errorf("failed to decode user corridors: %w", err)
	}

	return corridors, nil
}

func (r *corridorRepository) HasAccess(ctx context.Context, userID, corridorID primitive.ObjectID) (bool, error) {
	count, err := r.assignments.CountDocuments(ctx, bson.M{
		"user_id":     userID,
		"corridor_id": corridorID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check corridor access: %w", err)
	}

	return count > 0, nil
}

func (r *corridorRepository) invalidateListCache(ctx context.Context) {
	if r.cache == nil {
		return
	}
	_ = r.cache.InvalidateCorridors(ctx)
}

type cityRepository struct {
	collection *mongo.Collection
}

func NewCityRepository(db *mongo.Database) interfaces.CityRepository {
	return &cityRepository{
		collection: db.Collection("cities"),
	}
}

func (r *cityRepository) Create(ctx context.Context, city *models.City) error {
	city.ID = primitive.NewObjectID()
	city.CreatedAt = time.Now()
	city.UpdatedAt = city.CreatedAt
	if city.Status == "" {
		city.Status = models.CityStatusActive
	}

	_, err := r.collection.InsertOne(ctx, city)
	if err != nil {
		return fmt.Errorf("failed to create city: %w", err)
	}

	return nil
}

func (r *cityRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.City, error) {
	var city models.City
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&city)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get city: %w", err)
	}

	return &city, nil
}

func (r *cityRepository) List(ctx context.Context) ([]*models.City, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer cursor.Close(ctx)

	var cities []*models.City
	if err := cursor.All(ctx, &cities); err != nil {
		return nil, fmt.Errorf("failed to decode cities: %w", err)
	}

	return cities, nil
}

func (r *cityRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.CityStatus) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update city status: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrNotFound
	}

	return nil
}
