package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub-io/learnhub-api/internal/models"
	appErrors "github.com/learnhub-io/learnhub-api/pkg/errors"
)

type courseRepoStub struct {
	courses    map[string]*models.Course
	listResult []models.Course
	listErr    error
	createErr  error
	updateErr  error
	publishErr error
	deleteErr  error

	created   []*models.Course
	published map[string]bool
	deleted   []string
}

func (s *courseRepoStub) ListByInstructor(ctx context.Context, instructorID string) ([]models.Course, error) {
	return s.listResult, s.listErr
}

func (s *courseRepoStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if course, ok := s.courses[id]; ok {
		cp := *course
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *courseRepoStub) Create(ctx context.Context, course *models.Course) error {
	if s.createErr != nil {
		return s.createErr
	}
	course.ID = "generated"
	s.created = append(s.created, course)
	return nil
}

func (s *courseRepoStub) Update(ctx context.Context, course *models.Course) error {
	return s.updateErr
}

func (s *courseRepoStub) SetPublished(ctx context.Context, id, instructorID string, published bool) error {
	if s.publishErr != nil {
		return s.publishErr
	}
	if s.published == nil {
		s.published = make(map[string]bool)
	}
	s.published[id] = published
	if course, ok := s.courses[id]; ok {
		course.IsPublished = published
	}
	return nil
}

func (s *courseRepoStub) Delete(ctx context.Context, id, instructorID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type catalogInvalidatorStub struct {
	calls int
	err   error
}

func (s *catalogInvalidatorStub) InvalidatePublished(ctx context.Context) error {
	s.calls++
	return s.err
}

func TestCourseServiceListRefreshesCache(t *testing.T) {
	repo := &courseRepoStub{listResult: []models.Course{{ID: "c1", InstructorID: "p1"}}}
	svc := NewCourseService(repo, nil, nil, nil)

	list, err := svc.List(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c1", svc.cachedCourses("p1")[0].ID)
}

func TestCourseServiceCreatePrependsToCache(t *testing.T) {
	repo := &courseRepoStub{listResult: []models.Course{{ID: "old", InstructorID: "p1"}}}
	catalog := &catalogInvalidatorStub{}
	svc := NewCourseService(repo, catalog, nil, nil)

	_, err := svc.List(context.Background(), "p1")
	require.NoError(t, err)

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Title:       "  Go Basics  ",
		Description: "intro",
		Category:    "Development",
	}, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", course.Title)
	assert.Equal(t, models.DifficultyBeginner, course.DifficultyLevel)

	cached := svc.cachedCourses("p1")
	require.Len(t, cached, 2)
	assert.Equal(t, "generated", cached[0].ID)
	assert.Equal(t, "old", cached[1].ID)
	assert.Equal(t, 1, catalog.calls)
}

func TestCourseServiceCreateValidation(t *testing.T) {
	svc := NewCourseService(&courseRepoStub{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateCourseRequest{Title: "no category"}, "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdateForbiddenForOtherInstructor(t *testing.T) {
	repo := &courseRepoStub{courses: map[string]*models.Course{
		"c1": {ID: "c1", InstructorID: "owner"},
	}}
	svc := NewCourseService(repo, nil, nil, nil)

	_, err := svc.Update(context.Background(), "c1", UpdateCourseRequest{
		Title:       "t",
		Description: "d",
		Category:    "c",
	}, "intruder")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdateNotFound(t *testing.T) {
	svc := NewCourseService(&courseRepoStub{}, nil, nil, nil)

	_, err := svc.Update(context.Background(), "missing", UpdateCourseRequest{
		Title:       "t",
		Description: "d",
		Category:    "c",
	}, "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceTogglePublishTwiceRestoresState(t *testing.T) {
	repo := &courseRepoStub{courses: map[string]*models.Course{
		"c1": {ID: "c1", InstructorID: "p1", IsPublished: false},
	}}
	svc := NewCourseService(repo, nil, nil, nil)

	first, err := svc.TogglePublish(context.Background(), "c1", "p1")
	require.NoError(t, err)
	assert.True(t, first.IsPublished)

	second, err := svc.TogglePublish(context.Background(), "c1", "p1")
	require.NoError(t, err)
	assert.False(t, second.IsPublished)
}

func TestCourseServiceTogglePublishPatchesCacheAfterConfirm(t *testing.T) {
	repo := &courseRepoStub{
		listResult: []models.Course{{ID: "c1", InstructorID: "p1", IsPublished: false}},
		courses: map[string]*models.Course{
			"c1": {ID: "c1", InstructorID: "p1", IsPublished: false},
		},
	}
	svc := NewCourseService(repo, nil, nil, nil)

	_, err := svc.List(context.Background(), "p1")
	require.NoError(t, err)

	_, err = svc.TogglePublish(context.Background(), "c1", "p1")
	require.NoError(t, err)
	assert.True(t, svc.cachedCourses("p1")[0].IsPublished)
}

func TestCourseServiceTogglePublishFailureLeavesCacheUntouched(t *testing.T) {
	repo := &courseRepoStub{
		listResult: []models.Course{{ID: "c1", InstructorID: "p1", IsPublished: false}},
		courses: map[string]*models.Course{
			"c1": {ID: "c1", InstructorID: "p1", IsPublished: false},
		},
		publishErr: assert.AnError,
	}
	svc := NewCourseService(repo, nil, nil, nil)

	_, err := svc.List(context.Background(), "p1")
	require.NoError(t, err)

	_, err = svc.TogglePublish(context.Background(), "c1", "p1")
	require.Error(t, err)
	assert.False(t, svc.cachedCourses("p1")[0].IsPublished)
}

func TestCourseServiceDeleteRemovesFromCache(t *testing.T) {
	repo := &courseRepoStub{
		listResult: []models.Course{
			{ID: "c1", InstructorID: "p1"},
			{ID: "c2", InstructorID: "p1"},
		},
		courses: map[string]*models.Course{
			"c1": {ID: "c1", InstructorID: "p1"},
			"c2": {ID: "c2", InstructorID: "p1"},
		},
	}
	svc := NewCourseService(repo, nil, nil, nil)

	_, err := svc.List(context.Background(), "p1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "c1", "p1"))
	cached := svc.cachedCourses("p1")
	require.Len(t, cached, 1)
	assert.Equal(t, "c2", cached[0].ID)
	assert.Equal(t, []string{"c1"}, repo.deleted)
}

func TestCourseServiceCatalogInvalidationFailureIsSwallowed(t *testing.T) {
	repo := &courseRepoStub{}
	catalog := &catalogInvalidatorStub{err: assert.AnError}
	svc := NewCourseService(repo, catalog, nil, nil)

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		Title:       "t",
		Description: "d",
		Category:    "c",
	}, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.calls)
}
