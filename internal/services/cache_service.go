package services

import (
	"context"
	"fmt"
	"time"

	"copool/internal/models"
	"copool/pkg/cache"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CacheService interface {
	// Basic cache operations
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Increment(ctx context.Context, key string, expiration time.Duration) (int64, error)

	// Application-specific cache operations
	CacheRide(ctx context.Context, ride *models.Ride, expiration time.Duration) error
	GetCachedRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error)
	InvalidateRide(ctx context.Context, rideID primitive.ObjectID) error
	CacheCorridors(ctx context.Context, key string, corridors []*models.Corridor, expiration time.Duration) error
	GetCachedCorridors(ctx context.Context, key string) ([]*models.Corridor, error)
	InvalidateCorridors(ctx context.Context) error
}

type cacheService struct {
	redis *cache.RedisCache
}

func NewCacheService(redis *cache.RedisCache) CacheService {
	return &cacheService{redis: redis}
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return s.redis.Get(ctx, key, dest)
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.redis.Set(ctx, key, value, expiration)
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) error {
	return s.redis.Delete(ctx, keys...)
}

func (s *cacheService) Increment(ctx context.Context, key string, expiration time.Duration) (int64, error) {
	count, err := s.redis.Increment(ctx, key)
	if err != nil {
		return 0, err
	}
	if count == 1 && expiration > 0 {
		if err := s.redis.SetExpire(ctx, key, expiration); err != nil {
			return count, err
		}
	}
	return count, nil
}

func rideCacheKey(rideID primitive.ObjectID) string {
	return fmt.Sprintf("ride:%s", rideID.Hex())
}

const corridorsCacheKeyPrefix = "corridors:"

func (s *cacheService) CacheRide(ctx context.Context, ride *models.Ride, expiration time.Duration) error {
	return s.redis.Set(ctx, rideCacheKey(ride.ID), ride, expiration)
}

func (s *cacheService) GetCachedRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error) {
	var ride models.Ride
	err := s.redis.Get(ctx, rideCacheKey(rideID), &ride)
	if err != nil {
		if cache.IsMiss(err) {
			return nil, nil
		}
		return nil, err
	}
	return &ride, nil
}

func (s *cacheService) InvalidateRide(ctx context.Context, rideID primitive.ObjectID) error {
	return s.redis.Delete(ctx, rideCacheKey(rideID))
}

func (s *cacheService) CacheCorridors(ctx context.Context, key string, corridors []*models.Corridor, expiration time.Duration) error {
	return s.redis.Set(ctx, corridorsCacheKeyPrefix+key, corridors, expiration)
}

func (s *cacheService) GetCachedCorridors(ctx context.Context, key string) ([]*models.Corridor, error) {
	var corridors []*models.Corridor
	err := s.redis.Get(ctx, corridorsCacheKeyPrefix+key, &corridors)
	if err != nil {
		if cache.IsMiss(err) {
			return nil, nil
		}
		return nil, err
	}
	return corridors, nil
}

func (s *cacheService) InvalidateCorridors(ctx context.Context) error {
	// Corridor listings are cached under a handful of fixed keys.
	return s.redis.Delete(ctx,
		corridorsCacheKeyPrefix+"all",
		corridorsCacheKeyPrefix+"active",
	)
}
