package models

import "time"

// DifficultyLevel enumerates course difficulty.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// Course represents a persisted course row owned by an instructor profile.
type Course struct {
	ID              string          `db:"id" json:"id"`
	InstructorID    string          `db:"instructor_id" json:"instructor_id"`
	Title           string          `db:"title" json:"title"`
	Description     string          `db:"description" json:"description"`
	Price           float64         `db:"price" json:"price"`
	DurationMinutes int             `db:"duration_minutes" json:"duration_minutes"`
	DifficultyLevel DifficultyLevel `db:"difficulty_level" json:"difficulty_level"`
	Category        string          `db:"category" json:"category"`
	ThumbnailURL    string          `db:"thumbnail_url" json:"thumbnail_url"`
	IsPublished     bool            `db:"is_published" json:"is_published"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
