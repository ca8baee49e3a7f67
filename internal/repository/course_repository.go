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

const courseColumns = "id, instructor_id, title, description, price, duration_minutes, difficulty_level, category, thumbnail_url, is_published, created_at, updated_at"

// CourseRepository provides persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListByInstructor returns all courses owned by the given profile, newest
// creation timestamp first.
func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE instructor_id = $1 ORDER BY created_at DESC`, courseColumns)
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, query, instructorID); err != nil {
		return nil, fmt.Errorf("list courses by instructor: %w", err)
	}
	return courses, nil
}

// ListPublished returns all published courses, newest first.
func (r *CourseRepository) ListPublished(ctx context.Context) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE is_published = TRUE ORDER BY created_at DESC`, courseColumns)
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list published courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1 LIMIT 1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by id: %w", err)
	}
	return &course, nil
}

// Create inserts a new course row.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, instructor_id, title, description, price, duration_minutes, difficulty_level, category, thumbnail_url, is_published, created_at, updated_at)
VALUES (:id, :instructor_id, :title, :description, :price, :duration_minutes, :difficulty_level, :category, :thumbnail_url, :is_published, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update overwrites an existing course. Ownership is part of the predicate;
// updating a course the instructor does not own affects zero rows and
// returns sql.ErrNoRows.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = :title, description = :description, price = :price,
duration_minutes = :duration_minutes, difficulty_level = :difficulty_level, category = :category,
thumbnail_url = :thumbnail_url, is_published = :is_published, updated_at = :updated_at
WHERE id = :id AND instructor_id = :instructor_id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update course rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetPublished flips the publication flag for an owned course.
func (r *CourseRepository) SetPublished(ctx context.Context, id, instructorID string, published bool) error {
	const query = `UPDATE courses SET is_published = $3, updated_at = $4 WHERE id = $1 AND instructor_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, instructorID, published, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set course published: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set course published rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an owned course.
func (r *CourseRepository) Delete(ctx context.Context, id, instructorID string) error {
	const query = `DELETE FROM courses WHERE id = $1 AND instructor_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, instructorID)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountPublished returns the number of published courses.
func (r *CourseRepository) CountPublished(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM courses WHERE is_published = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count published courses: %w", err)
	}
	return count, nil
}
