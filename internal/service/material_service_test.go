package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub-io/learnhub-api/internal/models"
	appErrors "github.com/learnhub-io/learnhub-api/pkg/errors"
)

type materialRepoStub struct {
	materials map[string]*models.Material
	list      []models.Material
	count     int
	createErr error
	deleteErr error

	created []*models.Material
	deleted []string
}

func (s *materialRepoStub) ListByCourse(ctx context.Context, courseID string) ([]models.Material, error) {
	return s.list, nil
}

func (s *materialRepoStub) FindByID(ctx context.Context, id string) (*models.Material, error) {
	if material, ok := s.materials[id]; ok {
		cp := *material
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *materialRepoStub) CountByCourse(ctx context.Context, courseID string) (int, error) {
	return s.count, nil
}

func (s *materialRepoStub) Create(ctx context.Context, material *models.Material) error {
	if s.createErr != nil {
		return s.createErr
	}
	material.ID = "generated"
	s.created = append(s.created, material)
	s.count++
	return nil
}

func (s *materialRepoStub) Delete(ctx context.Context, id, instructorID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type courseFinderStub struct {
	courses map[string]*models.Course
}

func (s courseFinderStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if course, ok := s.courses[id]; ok {
		return course, nil
	}
	return nil, sql.ErrNoRows
}

type blobStoreStub struct {
	uploads map[string][]byte
}

func (s *blobStoreStub) Upload(objectPath string, data []byte) (string, error) {
	if s.uploads == nil {
		s.uploads = make(map[string][]byte)
	}
	s.uploads[objectPath] = data
	return objectPath, nil
}

func (s *blobStoreStub) PublicURL(objectPath string) string {
	return "http://localhost:8080/files/" + objectPath
}

type signerStub struct{}

func (signerStub) Generate(materialID, objectPath string) (string, time.Time, error) {
	return "signed-" + materialID, time.Now().Add(time.Hour), nil
}

func ownedCourseFinder() courseFinderStub {
	return courseFinderStub{courses: map[string]*models.Course{
		"c1": {ID: "c1", InstructorID: "p1"},
	}}
}

func TestMaterialServiceCreateAssignsSequentialSortOrder(t *testing.T) {
	repo := &materialRepoStub{}
	svc := NewMaterialService(repo, ownedCourseFinder(), &blobStoreStub{}, nil, nil, nil)

	first, err := svc.Create(context.Background(), "c1", CreateMaterialRequest{Title: "Intro"}, nil, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, first.SortOrder)

	second, err := svc.Create(context.Background(), "c1", CreateMaterialRequest{Title: "Next"}, nil, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, second.SortOrder)
}

func TestMaterialServiceCreateDefaultsToVideo(t *testing.T) {
	repo := &materialRepoStub{}
	svc := NewMaterialService(repo, ownedCourseFinder(), &blobStoreStub{}, nil, nil, nil)

	material, err := svc.Create(context.Background(), "c1", CreateMaterialRequest{Title: "Intro"}, nil, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.MaterialTypeVideo, material.MaterialType)
	assert.False(t, material.IsFree)
}

func TestMaterialServiceCreateUploadsUnderCoursePath(t *testing.T) {
	repo := &materialRepoStub{}
	store := &blobStoreStub{}
	svc := NewMaterialService(repo, ownedCourseFinder(), store, nil, nil, nil)

	material, err := svc.Create(context.Background(), "c1", CreateMaterialRequest{Title: "Slides", MaterialType: models.MaterialTypePDF}, &FileUpload{
		Name: "Week1.PDF",
		Data: []byte("pdf-bytes"),
	}, "p1")
	require.NoError(t, err)

	require.Len(t, store.uploads, 1)
	for path := range store.uploads {
		assert.True(t, strings.HasPrefix(path, "c1/"), "object path %q must be scoped under the course", path)
		assert.True(t, strings.HasSuffix(path, ".pdf"), "extension should be lowercased in %q", path)
	}
	assert.True(t, strings.HasPrefix(material.FileURL, "http://localhost:8080/files/c1/"))
}

func TestMaterialServiceCreateForbiddenForOtherInstructor(t *testing.T) {
	svc := NewMaterialService(&materialRepoStub{}, ownedCourseFinder(), &blobStoreStub{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), "c1", CreateMaterialRequest{Title: "Intro"}, nil, "intruder")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMaterialServiceCreateUnknownCourse(t *testing.T) {
	svc := NewMaterialService(&materialRepoStub{}, ownedCourseFinder(), &blobStoreStub{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), "missing", CreateMaterialRequest{Title: "Intro"}, nil, "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMaterialServiceListPatchesCacheOnCreateAndDelete(t *testing.T) {
	repo := &materialRepoStub{
		list: []models.Material{{ID: "m1", CourseID: "c1", SortOrder: 0}},
		materials: map[string]*models.Material{
			"m1": {ID: "m1", CourseID: "c1"},
		},
	}
	svc := NewMaterialService(repo, ownedCourseFinder(), &blobStoreStub{}, nil, nil, nil)

	_, err := svc.List(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, svc.cachedMaterials("c1"), 1)

	_, err = svc.Create(context.Background(), "c1", CreateMaterialRequest{Title: "Next"}, nil, "p1")
	require.NoError(t, err)
	assert.Len(t, svc.cachedMaterials("c1"), 2)

	require.NoError(t, svc.Delete(context.Background(), "m1", "p1"))
	cached := svc.cachedMaterials("c1")
	require.Len(t, cached, 1)
	assert.Equal(t, "generated", cached[0].ID)
}

func TestMaterialServiceDeleteForbiddenWhenOwnershipMismatch(t *testing.T) {
	repo := &materialRepoStub{
		materials: map[string]*models.Material{
			"m1": {ID: "m1", CourseID: "c1"},
		},
		deleteErr: sql.ErrNoRows,
	}
	svc := NewMaterialService(repo, ownedCourseFinder(), &blobStoreStub{}, nil, nil, nil)

	err := svc.Delete(context.Background(), "m1", "intruder")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMaterialServiceDownloadLinkFreeUsesPublicURL(t *testing.T) {
	repo := &materialRepoStub{
		materials: map[string]*models.Material{
			"m1": {ID: "m1", CourseID: "c1", FileURL: "http://localhost:8080/files/c1/a.mp4", IsFree: true},
		},
	}
	svc := NewMaterialService(repo, ownedCourseFinder(), &blobStoreStub{}, signerStub{}, nil, nil)

	link, err := svc.DownloadLink(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/c1/a.mp4", link.URL)
	assert.Nil(t, link.ExpiresAt)
}

func TestMaterialServiceDownloadLinkPaidIsSigned(t *testing.T) {
	repo := &materialRepoStub{
		materials: map[string]*models.Material{
			"m1": {ID: "m1", CourseID: "c1", FileURL: "http://localhost:8080/files/c1/a.mp4", IsFree: false},
		},
	}
	svc := NewMaterialService(repo, ownedCourseFinder(), &blobStoreStub{}, signerStub{}, nil, nil)

	link, err := svc.DownloadLink(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/c1/a.mp4?token=signed-m1", link.URL)
	require.NotNil(t, link.ExpiresAt)
}

func TestMaterialServiceDownloadLinkNoFile(t *testing.T) {
	repo := &materialRepoStub{
		materials: map[string]*models.Material{
			"m1": {ID: "m1", CourseID: "c1", MaterialType: models.MaterialTypeQuiz},
		},
	}
	svc := NewMaterialService(repo, ownedCourseFinder(), &blobStoreStub{}, nil, nil, nil)

	_, err := svc.DownloadLink(context.Background(), "m1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
