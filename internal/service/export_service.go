package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sportsgrades-api/internal/dto"
	"github.com/noah-isme/sportsgrades-api/internal/models"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
	"github.com/noah-isme/sportsgrades-api/pkg/export"
)

type gradeReporter interface {
	CourseGrades(ctx context.Context, requester models.Requester, studentID int64) (*models.GradeReport, bool, error)
}

type studentDirectory interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(title string, sections []export.Section) ([]byte, error)
}

var gradeCSVHeaders = []string{"Course", "Short Name", "Term", "Section", "Item", "Type", "Weight", "Grade", "Max", "Percentage", "Contribution", "Letter"}

var gradePDFHeaders = []string{"Item", "Module", "Weight", "Grade", "Max", "Percentage", "Contribution"}

// ExportService renders a student's grade report as a downloadable file.
type ExportService struct {
	grades gradeReporter
	users  studentDirectory
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(grades gradeReporter, users studentDirectory, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{grades: grades, users: users, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// GradeReport renders the student's grades in the requested format. Access rules match the grade view.
func (s *ExportService) GradeReport(ctx context.Context, requester models.Requester, studentID int64, format dto.ExportFormat) (*dto.GradeExport, error) {
	if format != dto.ExportFormatCSV && format != dto.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	report, _, err := s.grades.CourseGrades(ctx, requester, studentID)
	if err != nil {
		return nil, err
	}
	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	var (
		body        []byte
		contentType string
	)
	switch format {
	case dto.ExportFormatCSV:
		body, err = s.csv.Render(gradeDataset(report))
		contentType = "text/csv"
	case dto.ExportFormatPDF:
		body, err = s.pdf.Render(fmt.Sprintf("Grades for %s", student.SortName()), gradeSections(report))
		contentType = "application/pdf"
	}
	if err != nil {
		s.logger.Error("grade export failed", zap.Int64("student_id", studentID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render grade report")
	}

	return &dto.GradeExport{
		Filename:    s.buildFilename(student, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (s *ExportService) buildFilename(student *models.User, format dto.ExportFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	name := student.Username
	if name == "" {
		name = fmt.Sprintf("student_%d", student.ID)
	}
	return fmt.Sprintf("grades_%s_%s.%s", sanitizeFilename(name), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

// gradeDataset flattens the report: one course-total row per course followed by its items.
func gradeDataset(report *models.GradeReport) export.Dataset {
	data := export.Dataset{Headers: gradeCSVHeaders}
	for _, course := range report.Courses {
		base := map[string]string{
			"Course":     course.FullName,
			"Short Name": course.ShortName,
			"Term":       course.Term,
			"Section":    course.Section,
		}
		total := copyRow(base)
		total["Item"] = "Course total"
		total["Type"] = models.GradeItemTypeCourse
		total["Grade"] = course.FinalGradeFormatted
		total["Letter"] = course.LetterGrade
		data.Rows = append(data.Rows, total)

		for _, item := range course.GradeItems {
			row := copyRow(base)
			row["Item"] = item.Name
			row["Type"] = item.Type
			row["Weight"] = item.WeightFormatted
			row["Grade"] = item.GradeFormatted
			row["Max"] = formatNumber(item.GradeMax)
			row["Percentage"] = item.PercentageFormatted
			row["Contribution"] = item.ContributionFormatted
			data.Rows = append(data.Rows, row)
		}
	}
	return data
}

func gradeSections(report *models.GradeReport) []export.Section {
	sections := make([]export.Section, 0, len(report.Courses))
	for _, course := range report.Courses {
		parts := make([]string, 0, 3)
		if course.Term != "" {
			parts = append(parts, "Term: "+course.Term)
		}
		if course.Section != "" {
			parts = append(parts, "Section: "+course.Section)
		}
		parts = append(parts, fmt.Sprintf("Final grade: %s (%s)", course.FinalGradeFormatted, course.LetterGrade))

		data := export.Dataset{Headers: gradePDFHeaders}
		for _, item := range course.GradeItems {
			data.Rows = append(data.Rows, map[string]string{
				"Item":         item.Name,
				"Module":       item.Module,
				"Weight":       item.WeightFormatted,
				"Grade":        item.GradeFormatted,
				"Max":          formatNumber(item.GradeMax),
				"Percentage":   item.PercentageFormatted,
				"Contribution": item.ContributionFormatted,
			})
		}
		sections = append(sections, export.Section{
			Title:    fmt.Sprintf("%s (%s)", course.FullName, course.ShortName),
			Subtitle: strings.Join(parts, " | "),
			Data:     data,
		})
	}
	return sections
}

func copyRow(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src)+8)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
