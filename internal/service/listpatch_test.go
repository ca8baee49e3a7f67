package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/learnhub-io/learnhub-api/internal/models"
)

func TestPrependCourseLeavesOriginalUntouched(t *testing.T) {
	original := []models.Course{{ID: "c1"}, {ID: "c2"}}

	patched := prependCourse(original, models.Course{ID: "c0"})

	assert.Equal(t, []string{"c0", "c1", "c2"}, courseIDs(patched))
	assert.Equal(t, []string{"c1", "c2"}, courseIDs(original))
}

func TestReplaceCourseSwapsMatchingEntryOnly(t *testing.T) {
	original := []models.Course{{ID: "c1", Title: "Old"}, {ID: "c2", Title: "Other"}}

	patched := replaceCourse(original, models.Course{ID: "c1", Title: "New"})

	assert.Equal(t, "New", patched[0].Title)
	assert.Equal(t, "Other", patched[1].Title)
	assert.Equal(t, "Old", original[0].Title)
}

func TestReplaceCourseUnknownIDIsNoop(t *testing.T) {
	original := []models.Course{{ID: "c1"}}

	patched := replaceCourse(original, models.Course{ID: "missing"})

	assert.Equal(t, courseIDs(original), courseIDs(patched))
}

func TestRemoveCourse(t *testing.T) {
	original := []models.Course{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}}

	patched := removeCourse(original, "c2")

	assert.Equal(t, []string{"c1", "c3"}, courseIDs(patched))
	assert.Len(t, original, 3)
}

func TestAppendMaterialKeepsOrder(t *testing.T) {
	original := []models.Material{{ID: "m1"}, {ID: "m2"}}

	patched := appendMaterial(original, models.Material{ID: "m3"})

	assert.Equal(t, []string{"m1", "m2", "m3"}, materialIDs(patched))
	assert.Len(t, original, 2)
}

func TestRemoveMaterial(t *testing.T) {
	original := []models.Material{{ID: "m1"}, {ID: "m2"}}

	patched := removeMaterial(original, "m1")

	assert.Equal(t, []string{"m2"}, materialIDs(patched))
}

func courseIDs(list []models.Course) []string {
	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	return ids
}

func materialIDs(list []models.Material) []string {
	ids := make([]string, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.ID)
	}
	return ids
}
