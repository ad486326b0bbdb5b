package services

import (
	"context"
	"time"

	"copool/internal/repositories/interfaces"
	"copool/internal/utils"
	"copool/pkg/logger"
)

type DailyStats struct {
	Date          string `json:"date"`
	Rides         int64  `json:"rides"`
	SeatsReserved int64  `json:"seats_reserved"`
	GeneratedAt   string `json:"generated_at"`
}

// StatsService aggregates daily ride activity. Results are cached briefly
// since the landing page polls them.
type StatsService interface {
	DailyStats(ctx context.Context, date string) (*DailyStats, error)
}

type statsService struct {
	rideRepo interfaces.RideRepository
	cache    CacheService
	logger   *logger.Logger
}

func NewStatsService(rideRepo interfaces.RideRepository, cache CacheService, log *logger.Logger) StatsService {
	return &statsService{
		rideRepo: rideRepo,
		cache:    cache,
		logger:   log,
	}
}

func (s *statsService) DailyStats(ctx context.Context, date string) (*DailyStats, error) {
	cacheKey := "stats:daily:" + date

	if s.cache != nil {
		var cached DailyStats
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && cached.Date == date {
			return &cached, nil
		}
	}

	rides, err := s.rideRepo.CountByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	seats, err := s.rideRepo.CountSeatsReservedOn(ctx, date)
	if err != nil {
		return nil, err
	}

	stats := &DailyStats{
		Date:          date,
		Rides:         rides,
		SeatsReserved: seats,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, utils.StatsCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache daily stats")
		}
	}

	return stats, nil
}
