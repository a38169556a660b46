package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sportsgrades-api/internal/dto"
	"github.com/noah-isme/sportsgrades-api/internal/middleware"
	"github.com/noah-isme/sportsgrades-api/internal/models"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
	"github.com/noah-isme/sportsgrades-api/pkg/response"
)

type gradeReader interface {
	CourseGrades(ctx context.Context, requester models.Requester, studentID int64) (*models.GradeReport, bool, error)
	PurgeCache(ctx context.Context, requester models.Requester, studentID int64) error
}

type gradeExporter interface {
	GradeReport(ctx context.Context, requester models.Requester, studentID int64, format dto.ExportFormat) (*dto.GradeExport, error)
}

// GradeHandler serves per-course grade breakdowns.
type GradeHandler struct {
	grades  gradeReader
	exports gradeExporter
}

// NewGradeHandler constructs GradeHandler. exports may be nil when downloads are disabled.
func NewGradeHandler(grades gradeReader, exports gradeExporter) *GradeHandler {
	return &GradeHandler{grades: grades, exports: exports}
}

// Grades godoc
// @Summary Course grades of a student
// @Tags Grades
// @Produce json
// @Param id path int true "Student user ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/grades [get]
func (h *GradeHandler) Grades(c *gin.Context) {
	requester, err := requesterFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	report, cacheHit, err := h.grades.CourseGrades(c.Request.Context(), requester, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, report, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download a student's grade report
// @Tags Grades
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Student user ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /students/{id}/grades/export [get]
func (h *GradeHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	requester, err := requesterFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	format := dto.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(dto.ExportFormatCSV))))
	file, err := h.exports.GradeReport(c.Request.Context(), requester, studentID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// PurgeCache godoc
// @Summary Drop a student's cached grade report
// @Tags Grades
// @Param id path int true "Student user ID"
// @Success 204
// @Router /students/{id}/grades/cache [delete]
func (h *GradeHandler) PurgeCache(c *gin.Context) {
	requester, err := requesterFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.grades.PurgeCache(c.Request.Context(), requester, studentID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
