package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/learnhub-io/learnhub-api/internal/models"
	appErrors "github.com/learnhub-io/learnhub-api/pkg/errors"
)

const (
	catalogPublishedCacheKey = "catalog:published:v1"
	catalogStatsCacheKey     = "catalog:stats:v1"
	catalogCachePattern      = "catalog:*"
)

type catalogCourseRepository interface {
	ListPublished(ctx context.Context) ([]models.Course, error)
	CountPublished(ctx context.Context) (int, error)
}

type catalogProfileRepository interface {
	CountByRole(ctx context.Context, role models.ProfileRole) (int, error)
}

// CatalogService serves the public marketing surface: the curated featured
// rail, the published course listing, and headline platform numbers.
type CatalogService struct {
	courses  catalogCourseRepository
	profiles catalogProfileRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService constructs a CatalogService. The cache may be nil.
func NewCatalogService(courses catalogCourseRepository, profiles catalogProfileRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &CatalogService{
		courses:  courses,
		profiles: profiles,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Featured returns the curated courses shown on the landing page. The rail is
// editorial, not data-driven, so the entries are fixed.
func (s *CatalogService) Featured() []models.FeaturedCourse {
	return []models.FeaturedCourse{
		{
			Title:      "Complete React Development Bootcamp",
			Instructor: "Sarah Johnson",
			Duration:   "40 hours",
			Students:   12500,
			Rating:     4.9,
			Price:      "$89",
			Image:      "https://images.unsplash.com/photo-1633356122544-f134324a6cee?w=400&h=250&fit=crop&crop=face",
			Category:   "Programming",
			Level:      "Intermediate",
			Featured:   true,
		},
		{
			Title:      "Machine Learning with Python",
			Instructor: "Dr. Michael Chen",
			Duration:   "60 hours",
			Students:   8900,
			Rating:     4.8,
			Price:      "$129",
			Image:      "https://images.unsplash.com/photo-1555949963-aa79dcee981c?w=400&h=250&fit=crop",
			Category:   "Data Science",
			Level:      "Advanced",
		},
		{
			Title:      "UI/UX Design Fundamentals",
			Instructor: "Emma Williams",
			Duration:   "25 hours",
			Students:   15600,
			Rating:     4.7,
			Price:      "$69",
			Image:      "https://images.unsplash.com/photo-1558655146-9f40138edfeb?w=400&h=250&fit=crop",
			Category:   "Design",
			Level:      "Beginner",
		},
		{
			Title:      "Digital Marketing Mastery",
			Instructor: "David Rodriguez",
			Duration:   "35 hours",
			Students:   20100,
			Rating:     4.6,
			Price:      "$79",
			Image:      "https://images.unsplash.com/photo-1460925895917-afdab827c52f?w=400&h=250&fit=crop",
			Category:   "Marketing",
			Level:      "Intermediate",
		},
		{
			Title:      "Cybersecurity Essentials",
			Instructor: "Lisa Thompson",
			Duration:   "45 hours",
			Students:   7800,
			Rating:     4.8,
			Price:      "$99",
			Image:      "https://images.unsplash.com/photo-1550751827-4bd374c3f58b?w=400&h=250&fit=crop",
			Category:   "Security",
			Level:      "Intermediate",
		},
		{
			Title:      "Photography for Beginners",
			Instructor: "James Park",
			Duration:   "20 hours",
			Students:   11200,
			Rating:     4.5,
			Price:      "$49",
			Image:      "https://images.unsplash.com/photo-1606983340126-99ab4feaa64a?w=400&h=250&fit=crop",
			Category:   "Creative",
			Level:      "Beginner",
		},
	}
}

// Published returns every published course, newest first, serving from cache
// when available.
func (s *CatalogService) Published(ctx context.Context) ([]models.Course, error) {
	var cached []models.Course
	if hit, err := s.cache.Get(ctx, catalogPublishedCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	courses, err := s.courses.ListPublished(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list published courses")
	}

	if err := s.cache.Set(ctx, catalogPublishedCacheKey, courses, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache published catalog", zap.Error(err))
	}
	return courses, nil
}

// Stats returns the headline numbers for the marketing pages.
func (s *CatalogService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	var cached models.PlatformStats
	if hit, err := s.cache.Get(ctx, catalogStatsCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	published, err := s.courses.CountPublished(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count published courses")
	}
	instructors, err := s.profiles.CountByRole(ctx, models.ProfileRoleInstructor)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count instructors")
	}

	stats := &models.PlatformStats{
		PublishedCourses: published,
		Instructors:      instructors,
	}
	if err := s.cache.Set(ctx, catalogStatsCacheKey, stats, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache platform stats", zap.Error(err))
	}
	return stats, nil
}

// InvalidatePublished drops the cached catalog after instructor writes.
func (s *CatalogService) InvalidatePublished(ctx context.Context) error {
	return s.cache.Invalidate(ctx, catalogCachePattern)
}
