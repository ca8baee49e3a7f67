package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub-io/learnhub-api/internal/models"
	"github.com/learnhub-io/learnhub-api/internal/service"
)

type catalogCourseRepoMock struct {
	published []models.Course
}

func (m *catalogCourseRepoMock) ListPublished(ctx context.Context) ([]models.Course, error) {
	return m.published, nil
}

func (m *catalogCourseRepoMock) CountPublished(ctx context.Context) (int, error) {
	return len(m.published), nil
}

type catalogProfileRepoMock struct {
	instructors int
}

func (m *catalogProfileRepoMock) CountByRole(ctx context.Context, role models.ProfileRole) (int, error) {
	return m.instructors, nil
}

func newCatalogTestHandler(courses *catalogCourseRepoMock, profiles *catalogProfileRepoMock) *CatalogHandler {
	svc := service.NewCatalogService(courses, profiles, nil, 0, nil)
	return NewCatalogHandler(svc)
}

func TestCatalogHandlerFeatured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCatalogTestHandler(&catalogCourseRepoMock{}, &catalogProfileRepoMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/catalog/featured", nil)
	c.Request = req

	handler.Featured(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.FeaturedCourse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 6)
	assert.True(t, body.Data[0].Featured)
}

func TestCatalogHandlerPublished(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCatalogTestHandler(&catalogCourseRepoMock{
		published: []models.Course{{ID: "c1", Title: "Go Basics", IsPublished: true}},
	}, &catalogProfileRepoMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/catalog/courses", nil)
	c.Request = req

	handler.Published(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.Course `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Go Basics", body.Data[0].Title)
}

func TestCatalogHandlerStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCatalogTestHandler(&catalogCourseRepoMock{
		published: []models.Course{{ID: "c1"}, {ID: "c2"}},
	}, &catalogProfileRepoMock{instructors: 7})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/catalog/stats", nil)
	c.Request = req

	handler.Stats(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.PlatformStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.PublishedCourses)
	assert.Equal(t, 7, body.Data.Instructors)
}
