package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/learnhub-io/learnhub-api/internal/models"
	appErrors "github.com/learnhub-io/learnhub-api/pkg/errors"
)

type courseRepository interface {
	ListByInstructor(ctx context.Context, instructorID string) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	SetPublished(ctx context.Context, id, instructorID string, published bool) error
	Delete(ctx context.Context, id, instructorID string) error
}

type catalogInvalidator interface {
	InvalidatePublished(ctx context.Context) error
}

// CreateCourseRequest carries the fields for a new course.
type CreateCourseRequest struct {
	Title           string                 `json:"title" validate:"required"`
	Description     string                 `json:"description" validate:"required"`
	Price           float64                `json:"price" validate:"gte=0"`
	DurationMinutes int                    `json:"duration_minutes" validate:"gte=0"`
	DifficultyLevel models.DifficultyLevel `json:"difficulty_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Category        string                 `json:"category" validate:"required"`
	ThumbnailURL    string                 `json:"thumbnail_url"`
	IsPublished     bool                   `json:"is_published"`
}

// UpdateCourseRequest carries the full field set for overwriting a course.
type UpdateCourseRequest struct {
	Title           string                 `json:"title" validate:"required"`
	Description     string                 `json:"description" validate:"required"`
	Price           float64                `json:"price" validate:"gte=0"`
	DurationMinutes int                    `json:"duration_minutes" validate:"gte=0"`
	DifficultyLevel models.DifficultyLevel `json:"difficulty_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Category        string                 `json:"category" validate:"required"`
	ThumbnailURL    string                 `json:"thumbnail_url"`
	IsPublished     bool                   `json:"is_published"`
}

// CourseService coordinates instructor-scoped course CRUD. It mirrors store
// state into a per-instructor cached list: every confirmed mutation patches
// the cache deterministically, and a failed mutation leaves it untouched.
type CourseService struct {
	repo      courseRepository
	catalog   catalogInvalidator
	validator *validator.Validate
	logger    *zap.Logger

	mu     sync.RWMutex
	cached map[string][]models.Course
}

// NewCourseService constructs a CourseService. The catalog invalidator may
// be nil when no public catalog cache is configured.
func NewCourseService(repo courseRepository, catalog catalogInvalidator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		repo:      repo,
		catalog:   catalog,
		validator: validate,
		logger:    logger,
		cached:    make(map[string][]models.Course),
	}
}

// List returns the instructor's courses, newest first, and refreshes the
// cached list from the store.
func (s *CourseService) List(ctx context.Context, instructorID string) ([]models.Course, error) {
	courses, err := s.repo.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	s.storeCache(instructorID, courses)
	return courses, nil
}

// Create validates and inserts a new course owned by the instructor. The
// returned row is canonical and is prepended to the cached list.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest, instructorID string) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	level := req.DifficultyLevel
	if level == "" {
		level = models.DifficultyBeginner
	}
	course := &models.Course{
		InstructorID:    instructorID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		DifficultyLevel: level,
		Category:        strings.TrimSpace(req.Category),
		ThumbnailURL:    strings.TrimSpace(req.ThumbnailURL),
		IsPublished:     req.IsPublished,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.patchCache(instructorID, func(list []models.Course) []models.Course {
		return prependCourse(list, *course)
	})
	s.invalidateCatalog(ctx)
	return course, nil
}

// Update overwrites the identified course with the supplied field set.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest, instructorID string) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	existing, err := s.ownedCourse(ctx, id, instructorID)
	if err != nil {
		return nil, err
	}

	level := req.DifficultyLevel
	if level == "" {
		level = models.DifficultyBeginner
	}
	existing.Title = strings.TrimSpace(req.Title)
	existing.Description = strings.TrimSpace(req.Description)
	existing.Price = req.Price
	existing.DurationMinutes = req.DurationMinutes
	existing.DifficultyLevel = level
	existing.Category = strings.TrimSpace(req.Category)
	existing.ThumbnailURL = strings.TrimSpace(req.ThumbnailURL)
	existing.IsPublished = req.IsPublished

	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.patchCache(instructorID, func(list []models.Course) []models.Course {
		return replaceCourse(list, *existing)
	})
	s.invalidateCatalog(ctx)
	return existing, nil
}

// TogglePublish flips the publication flag. The cached list is patched only
// after the store confirms the flip; applying the operation twice restores
// the original state.
func (s *CourseService) TogglePublish(ctx context.Context, id, instructorID string) (*models.Course, error) {
	existing, err := s.ownedCourse(ctx, id, instructorID)
	if err != nil {
		return nil, err
	}

	target := !existing.IsPublished
	if err := s.repo.SetPublished(ctx, id, instructorID, target); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	existing.IsPublished = target
	s.patchCache(instructorID, func(list []models.Course) []models.Course {
		return replaceCourse(list, *existing)
	})
	s.invalidateCatalog(ctx)
	return existing, nil
}

// Delete removes an owned course. Not reversible.
func (s *CourseService) Delete(ctx context.Context, id, instructorID string) error {
	if _, err := s.ownedCourse(ctx, id, instructorID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, instructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	s.patchCache(instructorID, func(list []models.Course) []models.Course {
		return removeCourse(list, id)
	})
	s.invalidateCatalog(ctx)
	return nil
}

func (s *CourseService) ownedCourse(ctx context.Context, id, instructorID string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.InstructorID != instructorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "course belongs to another instructor")
	}
	return course, nil
}

func (s *CourseService) storeCache(instructorID string, courses []models.Course) {
	cp := make([]models.Course, len(courses))
	copy(cp, courses)
	s.mu.Lock()
	s.cached[instructorID] = cp
	s.mu.Unlock()
}

func (s *CourseService) patchCache(instructorID string, patch func([]models.Course) []models.Course) {
	s.mu.Lock()
	s.cached[instructorID] = patch(s.cached[instructorID])
	s.mu.Unlock()
}

func (s *CourseService) cachedCourses(instructorID string) []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]models.Course, len(s.cached[instructorID]))
	copy(cp, s.cached[instructorID])
	return cp
}

func (s *CourseService) invalidateCatalog(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.InvalidatePublished(ctx); err != nil {
		s.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}
