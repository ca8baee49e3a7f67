package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/learnhub-io/learnhub-api/internal/models"
	appErrors "github.com/learnhub-io/learnhub-api/pkg/errors"
)

type materialRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Material, error)
	FindByID(ctx context.Context, id string) (*models.Material, error)
	CountByCourse(ctx context.Context, courseID string) (int, error)
	Create(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id, instructorID string) error
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type materialBlobStore interface {
	Upload(objectPath string, data []byte) (string, error)
	PublicURL(objectPath string) string
}

type downloadSigner interface {
	Generate(materialID, objectPath string) (string, time.Time, error)
}

// CreateMaterialRequest carries the fields for a new material.
type CreateMaterialRequest struct {
	Title        string              `json:"title" validate:"required"`
	MaterialType models.MaterialType `json:"material_type" validate:"omitempty,oneof=video pdf document quiz assignment"`
	ContentText  string              `json:"content_text"`
	IsFree       bool                `json:"is_free"`
}

// FileUpload is an optional attachment supplied with a new material.
type FileUpload struct {
	Name string
	Data []byte
}

// DownloadLink is a resolvable reference to a material file. Non-free
// materials get a signed, expiring link.
type DownloadLink struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// MaterialService coordinates CRUD for course materials. New materials are
// appended: sort_order is assigned from the current count of the course's
// materials at call time. Two concurrent creators can observe the same count
// and assign the same position; the ordering contract is append-only, not
// guaranteed-unique.
type MaterialService struct {
	repo      materialRepository
	courses   courseFinder
	store     materialBlobStore
	signer    downloadSigner
	validator *validator.Validate
	logger    *zap.Logger

	mu     sync.RWMutex
	cached map[string][]models.Material
}

// NewMaterialService constructs a MaterialService. The signer may be nil
// when signed downloads are not configured.
func NewMaterialService(repo materialRepository, courses courseFinder, store materialBlobStore, signer downloadSigner, validate *validator.Validate, logger *zap.Logger) *MaterialService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{
		repo:      repo,
		courses:   courses,
		store:     store,
		signer:    signer,
		validator: validate,
		logger:    logger,
		cached:    make(map[string][]models.Material),
	}
}

// List returns the course's materials ordered by sort position ascending and
// refreshes the cached list.
func (s *MaterialService) List(ctx context.Context, courseID string) ([]models.Material, error) {
	materials, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materials")
	}
	s.storeCache(courseID, materials)
	return materials, nil
}

// Create adds a material to an owned course. When a file is supplied it is
// uploaded first; the object path is scoped under the course and named by
// the current timestamp plus the original extension.
func (s *MaterialService) Create(ctx context.Context, courseID string, req CreateMaterialRequest, upload *FileUpload, instructorID string) (*models.Material, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid material payload")
	}

	if err := s.requireOwnedCourse(ctx, courseID, instructorID); err != nil {
		return nil, err
	}

	fileURL := ""
	if upload != nil {
		ext := strings.ToLower(filepath.Ext(upload.Name))
		objectPath := fmt.Sprintf("%s/%d%s", courseID, time.Now().UnixMilli(), ext)
		stored, err := s.store.Upload(objectPath, upload.Data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upload file")
		}
		fileURL = s.store.PublicURL(stored)
	}

	count, err := s.repo.CountByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count materials")
	}

	materialType := req.MaterialType
	if materialType == "" {
		materialType = models.MaterialTypeVideo
	}
	material := &models.Material{
		CourseID:     courseID,
		Title:        strings.TrimSpace(req.Title),
		MaterialType: materialType,
		FileURL:      fileURL,
		ContentText:  req.ContentText,
		SortOrder:    count,
		IsFree:       req.IsFree,
	}
	if err := s.repo.Create(ctx, material); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create material")
	}

	s.patchCache(courseID, func(list []models.Material) []models.Material {
		return appendMaterial(list, *material)
	})
	return material, nil
}

// Delete removes a material belonging to one of the instructor's courses.
func (s *MaterialService) Delete(ctx context.Context, id, instructorID string) error {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}

	if err := s.repo.Delete(ctx, id, instructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrForbidden, "material belongs to another instructor")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete material")
	}

	s.patchCache(material.CourseID, func(list []models.Material) []models.Material {
		return removeMaterial(list, id)
	})
	return nil
}

// DownloadLink resolves the file reference for a material. Free previews get
// the public URL directly; everything else gets a signed, expiring link.
func (s *MaterialService) DownloadLink(ctx context.Context, id string) (*DownloadLink, error) {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	if material.FileURL == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "material has no file")
	}

	if material.IsFree || s.signer == nil {
		return &DownloadLink{URL: material.FileURL}, nil
	}

	token, expiresAt, err := s.signer.Generate(material.ID, material.FileURL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &DownloadLink{
		URL:       fmt.Sprintf("%s?token=%s", material.FileURL, token),
		ExpiresAt: &expiresAt,
	}, nil
}

func (s *MaterialService) requireOwnedCourse(ctx context.Context, courseID, instructorID string) error {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.InstructorID != instructorID {
		return appErrors.Clone(appErrors.ErrForbidden, "course belongs to another instructor")
	}
	return nil
}

func (s *MaterialService) storeCache(courseID string, materials []models.Material) {
	cp := make([]models.Material, len(materials))
	copy(cp, materials)
	s.mu.Lock()
	s.cached[courseID] = cp
	s.mu.Unlock()
}

func (s *MaterialService) patchCache(courseID string, patch func([]models.Material) []models.Material) {
	s.mu.Lock()
	s.cached[courseID] = patch(s.cached[courseID])
	s.mu.Unlock()
}

func (s *MaterialService) cachedMaterials(courseID string) []models.Material {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]models.Material, len(s.cached[courseID]))
	copy(cp, s.cached[courseID])
	return cp
}
