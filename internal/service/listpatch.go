package service

import "github.com/learnhub-io/learnhub-api/internal/models"

// Deterministic patch helpers for cached lists. Mutating operations apply
// one of these only after the store confirms the write; on failure the
// cached slice is left untouched.

func prependCourse(list []models.Course, course models.Course) []models.Course {
	out := make([]models.Course, 0, len(list)+1)
	out = append(out, course)
	return append(out, list...)
}

func replaceCourse(list []models.Course, course models.Course) []models.Course {
	out := make([]models.Course, len(list))
	copy(out, list)
	for i := range out {
		if out[i].ID == course.ID {
			out[i] = course
		}
	}
	return out
}

func removeCourse(list []models.Course, id string) []models.Course {
	out := make([]models.Course, 0, len(list))
	for _, c := range list {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func appendMaterial(list []models.Material, material models.Material) []models.Material {
	out := make([]models.Material, 0, len(list)+1)
	out = append(out, list...)
	return append(out, material)
}

func removeMaterial(list []models.Material, id string) []models.Material {
	out := make([]models.Material, 0, len(list))
	for _, m := range list {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}
