package models

import "time"

// MaterialType enumerates the kinds of course materials.
type MaterialType string

const (
	MaterialTypeVideo      MaterialType = "video"
	MaterialTypePDF        MaterialType = "pdf"
	MaterialTypeDocument   MaterialType = "document"
	MaterialTypeQuiz       MaterialType = "quiz"
	MaterialTypeAssignment MaterialType = "assignment"
)

// Valid reports whether the material type is one of the known values.
func (t MaterialType) Valid() bool {
	switch t {
	case MaterialTypeVideo, MaterialTypePDF, MaterialTypeDocument, MaterialTypeQuiz, MaterialTypeAssignment:
		return true
	}
	return false
}

// Material represents a single course material row. Materials are ordered by
// sort_order ascending; new materials are appended at the current count.
type Material struct {
	ID           string       `db:"id" json:"id"`
	CourseID     string       `db:"course_id" json:"course_id"`
	Title        string       `db:"title" json:"title"`
	MaterialType MaterialType `db:"material_type" json:"material_type"`
	FileURL      string       `db:"file_url" json:"file_url"`
	ContentText  string       `db:"content_text" json:"content_text"`
	SortOrder    int          `db:"sort_order" json:"sort_order"`
	IsFree       bool         `db:"is_free" json:"is_free"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}
