package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/learnhub-io/learnhub-api/internal/models"
)

const materialColumns = "id, course_id, title, material_type, file_url, content_text, sort_order, is_free, created_at"

// MaterialRepository provides persistence for course materials.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository creates the repository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// ListByCourse returns the course's materials ordered by sort position.
func (r *MaterialRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_materials WHERE course_id = $1 ORDER BY sort_order ASC`, materialColumns)
	materials := []models.Material{}
	if err := r.db.SelectContext(ctx, &materials, query, courseID); err != nil {
		return nil, fmt.Errorf("list materials by course: %w", err)
	}
	return materials, nil
}

// FindByID returns a material by identifier.
func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_materials WHERE id = $1 LIMIT 1`, materialColumns)
	var material models.Material
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find material by id: %w", err)
	}
	return &material, nil
}

// CountByCourse returns how many materials the course currently has.
func (r *MaterialRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM course_materials WHERE course_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID); err != nil {
		return 0, fmt.Errorf("count materials by course: %w", err)
	}
	return count, nil
}

// Create inserts a new material row.
func (r *MaterialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	if material.CreatedAt.IsZero() {
		material.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO course_materials (id, course_id, title, material_type, file_url, content_text, sort_order, is_free, created_at)
VALUES (:id, :course_id, :title, :material_type, :file_url, :content_text, :sort_order, :is_free, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

// Delete removes a material whose course is owned by the given instructor.
func (r *MaterialRepository) Delete(ctx context.Context, id, instructorID string) error {
	const query = `DELETE FROM course_materials USING courses
WHERE course_materials.id = $1 AND courses.id = course_materials.course_id AND courses.instructor_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, instructorID)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete material rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
