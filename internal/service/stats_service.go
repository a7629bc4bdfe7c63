package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/betsymikaodi/gestion-formation-api/internal/models"
	appErrors "github.com/betsymikaodi/gestion-formation-api/pkg/errors"
)

type statsRepository interface {
	Totals(ctx context.Context) (models.DashboardStats, error)
	MonthlyEnrollments(ctx context.Context) ([]models.MonthlyCount, error)
	MonthlyRevenue(ctx context.Context) ([]models.MonthlyAmount, error)
	RecentActivities(ctx context.Context, limit int) ([]models.Activity, error)
}

type popularCourseLister interface {
	Popular(ctx context.Context, limit int) ([]models.PopularCourse, error)
}

const (
	dashboardCacheKey  = "stats:dashboard"
	activitiesCacheKey = "stats:activities"
)

// StatsService assembles the dashboard figures, caching the result since the
// aggregates span every table.
type StatsService struct {
	repo     statsRepository
	courses  popularCourseLister
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewStatsService constructs the stats service. The cache may be nil.
func NewStatsService(repo statsRepository, courses popularCourseLister, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *StatsService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, courses: courses, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Dashboard returns the aggregated dashboard payload.
func (s *StatsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var cached models.DashboardStats
	if s.cache != nil {
		if hit, _ := s.cache.Get(ctx, dashboardCacheKey, &cached); hit {
			return &cached, nil
		}
	}

	stats, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate dashboard totals")
	}
	if stats.MonthlyCounts, err = s.repo.MonthlyEnrollments(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate monthly enrollments")
	}
	if stats.MonthlyRevenue, err = s.repo.MonthlyRevenue(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate monthly revenue")
	}
	if stats.PopularCourses, err = s.courses.Popular(ctx, 5); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank courses")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, &stats, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
		}
	}
	return &stats, nil
}

// RecentActivities returns the merged enrollment and payment feed.
func (s *StatsService) RecentActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	var cached []models.Activity
	if s.cache != nil && limit <= 0 {
		if hit, _ := s.cache.Get(ctx, activitiesCacheKey, &cached); hit {
			return cached, nil
		}
	}

	activities, err := s.repo.RecentActivities(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activities")
	}

	if s.cache != nil && limit <= 0 {
		if err := s.cache.Set(ctx, activitiesCacheKey, activities, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache activities", zap.Error(err))
		}
	}
	return activities, nil
}

// InvalidateCache drops the cached dashboard payloads after a mutation.
func (s *StatsService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "stats:*"); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}
