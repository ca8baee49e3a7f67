package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub-io/learnhub-api/internal/models"
	appErrors "github.com/learnhub-io/learnhub-api/pkg/errors"
)

type catalogCourseStub struct {
	published  []models.Course
	listCalls  int
	countCalls int
}

func (s *catalogCourseStub) ListPublished(ctx context.Context) ([]models.Course, error) {
	s.listCalls++
	return s.published, nil
}

func (s *catalogCourseStub) CountPublished(ctx context.Context) (int, error) {
	s.countCalls++
	return len(s.published), nil
}

type catalogProfileStub struct {
	instructors int
}

func (s *catalogProfileStub) CountByRole(ctx context.Context, role models.ProfileRole) (int, error) {
	if role == models.ProfileRoleInstructor {
		return s.instructors, nil
	}
	return 0, nil
}

// memoryCacheRepo is an in-process CacheRepository backed by a map. Values
// round-trip through JSON the same way the redis-backed repository does.
type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (r *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = raw
	return nil
}

func (r *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string][]byte)
	return nil
}

func newTestCatalogService(courses *catalogCourseStub, profiles *catalogProfileStub, repo CacheRepository) *CatalogService {
	var cache *CacheService
	if repo != nil {
		cache = NewCacheService(repo, nil, time.Minute, nil, true)
	}
	return NewCatalogService(courses, profiles, cache, time.Minute, nil)
}

func TestCatalogServiceFeaturedIsCurated(t *testing.T) {
	svc := newTestCatalogService(&catalogCourseStub{}, &catalogProfileStub{}, nil)

	featured := svc.Featured()

	require.Len(t, featured, 6)
	assert.True(t, featured[0].Featured)
	for _, course := range featured[1:] {
		assert.False(t, course.Featured)
	}
	assert.Equal(t, "Complete React Development Bootcamp", featured[0].Title)
}

func TestCatalogServicePublishedWithoutCache(t *testing.T) {
	courses := &catalogCourseStub{published: []models.Course{{ID: "c1", Title: "Go Basics"}}}
	svc := newTestCatalogService(courses, &catalogProfileStub{}, nil)

	listed, err := svc.Published(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = svc.Published(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, courses.listCalls)
}

func TestCatalogServicePublishedServesFromCache(t *testing.T) {
	courses := &catalogCourseStub{published: []models.Course{{ID: "c1", Title: "Go Basics"}}}
	svc := newTestCatalogService(courses, &catalogProfileStub{}, newMemoryCacheRepo())

	first, err := svc.Published(context.Background())
	require.NoError(t, err)
	second, err := svc.Published(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, courses.listCalls)
}

func TestCatalogServiceStats(t *testing.T) {
	courses := &catalogCourseStub{published: []models.Course{{ID: "c1"}, {ID: "c2"}}}
	profiles := &catalogProfileStub{instructors: 5}
	svc := newTestCatalogService(courses, profiles, newMemoryCacheRepo())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PublishedCourses)
	assert.Equal(t, 5, stats.Instructors)

	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, courses.countCalls)
}

func TestCatalogServiceInvalidateDropsCachedCatalog(t *testing.T) {
	courses := &catalogCourseStub{published: []models.Course{{ID: "c1"}}}
	svc := newTestCatalogService(courses, &catalogProfileStub{}, newMemoryCacheRepo())

	_, err := svc.Published(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.InvalidatePublished(context.Background()))

	_, err = svc.Published(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, courses.listCalls)
}
