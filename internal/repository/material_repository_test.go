package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub-io/learnhub-api/internal/models"
)

func newMaterialRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMaterialRepositoryListByCourse(t *testing.T) {
	db, mock, cleanup := newMaterialRepoMock(t)
	defer cleanup()
	repo := NewMaterialRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "title", "material_type", "file_url", "content_text", "sort_order", "is_free", "created_at"}).
		AddRow("m1", "c1", "Intro", "video", "http://files/c1/a.mp4", "", 0, true, time.Now()).
		AddRow("m2", "c1", "Slides", "pdf", "http://files/c1/b.pdf", "", 1, false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_materials WHERE course_id = $1 ORDER BY sort_order ASC")).
		WithArgs("c1").
		WillReturnRows(rows)

	list, err := repo.ListByCourse(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 0, list[0].SortOrder)
	assert.Equal(t, 1, list[1].SortOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaterialRepositoryCountByCourse(t *testing.T) {
	db, mock, cleanup := newMaterialRepoMock(t)
	defer cleanup()
	repo := NewMaterialRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM course_materials WHERE course_id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByCourse(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaterialRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMaterialRepoMock(t)
	defer cleanup()
	repo := NewMaterialRepository(db)

	mock.ExpectExec("INSERT INTO course_materials").
		WillReturnResult(sqlmock.NewResult(1, 1))

	material := &models.Material{CourseID: "c1", Title: "Intro", MaterialType: models.MaterialTypeVideo, SortOrder: 0}
	require.NoError(t, repo.Create(context.Background(), material))
	assert.NotEmpty(t, material.ID)
	assert.False(t, material.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaterialRepositoryDeleteRequiresOwnership(t *testing.T) {
	db, mock, cleanup := newMaterialRepoMock(t)
	defer cleanup()
	repo := NewMaterialRepository(db)

	mock.ExpectExec("DELETE FROM course_materials USING courses").
		WithArgs("m1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "m1", "intruder")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
