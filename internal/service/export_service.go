package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/learnhub-io/learnhub-api/internal/models"
	appErrors "github.com/learnhub-io/learnhub-api/pkg/errors"
	"github.com/learnhub-io/learnhub-api/pkg/export"
)

type exportCourseRepository interface {
	ListByInstructor(ctx context.Context, instructorID string) ([]models.Course, error)
}

type exportMaterialRepository interface {
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult carries a rendered report ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders an instructor's course portfolio as CSV or PDF.
type ExportService struct {
	courses   exportCourseRepository
	materials exportMaterialRepository
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(courses exportCourseRepository, materials exportMaterialRepository, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		courses:   courses,
		materials: materials,
		csv:       csv,
		pdf:       pdf,
		logger:    logger,
	}
}

// CourseReport builds the course report for an instructor and renders it in
// the requested format.
func (s *ExportService) CourseReport(ctx context.Context, instructorID string, format models.ReportFormat) (*ExportResult, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}

	dataset, err := s.buildCourseDataset(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	var payload []byte
	contentType := "text/csv"
	switch format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Course Report")
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	timestamp := time.Now().UTC().Format("20060102_150405")
	return &ExportResult{
		Filename:    fmt.Sprintf("courses_%s.%s", timestamp, format),
		ContentType: contentType,
		Data:        payload,
	}, nil
}

func (s *ExportService) buildCourseDataset(ctx context.Context, instructorID string) (export.Dataset, error) {
	courses, err := s.courses.ListByInstructor(ctx, instructorID)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	rows := make([]map[string]string, 0, len(courses))
	for _, course := range courses {
		materialCount := 0
		if s.materials != nil {
			count, err := s.materials.CountByCourse(ctx, course.ID)
			if err != nil {
				s.logger.Warn("failed to count materials for report",
					zap.String("course_id", course.ID),
					zap.Error(err))
			} else {
				materialCount = count
			}
		}
		published := "no"
		if course.IsPublished {
			published = "yes"
		}
		rows = append(rows, map[string]string{
			"Title":          course.Title,
			"Category":       course.Category,
			"Level":          string(course.DifficultyLevel),
			"Price":          fmt.Sprintf("%.2f", course.Price),
			"Duration (min)": fmt.Sprintf("%d", course.DurationMinutes),
			"Materials":      fmt.Sprintf("%d", materialCount),
			"Published":      published,
			"Created At":     course.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return export.Dataset{
		Headers: []string{"Title", "Category", "Level", "Price", "Duration (min)", "Materials", "Published", "Created At"},
		Rows:    rows,
	}, nil
}
