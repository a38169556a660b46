package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sportsgrades-api/internal/dto"
	"github.com/noah-isme/sportsgrades-api/internal/middleware"
	"github.com/noah-isme/sportsgrades-api/internal/models"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
)

type fakeGradeSrv struct {
	report    *models.GradeReport
	hit       bool
	err       error
	studentID int64
	purged    int64
}

func (f *fakeGradeSrv) CourseGrades(_ context.Context, _ models.Requester, studentID int64) (*models.GradeReport, bool, error) {
	f.studentID = studentID
	return f.report, f.hit, f.err
}

func (f *fakeGradeSrv) PurgeCache(_ context.Context, _ models.Requester, studentID int64) error {
	f.purged = studentID
	return f.err
}

type fakeExportSrv struct {
	format dto.ExportFormat
}

func (f *fakeExportSrv) GradeReport(_ context.Context, _ models.Requester, _ int64, format dto.ExportFormat) (*dto.GradeExport, error) {
	f.format = format
	return &dto.GradeExport{Filename: "grades_jdoe1.csv", ContentType: "text/csv", Body: []byte("Course\n")}, nil
}

func newTestContext(method, target string, role models.UserRole) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, nil)
	if role != "" {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7, Username: "coach", Role: role})
	}
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGradeHandlerGradesReportsCacheHit(t *testing.T) {
	srv := &fakeGradeSrv{report: &models.GradeReport{StudentID: 11, Courses: []models.CourseGrade{}}, hit: true}
	h := NewGradeHandler(srv, nil)
	c, rec := newTestContext(http.MethodGet, "/students/11/grades", models.RoleMentor)
	c.Params = gin.Params{{Key: "id", Value: "11"}}

	h.Grades(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(11), srv.studentID)
	body := decodeEnvelope(t, rec)
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, true, meta["cache_hit"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, data["courses"])
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestGradeHandlerGradesErrors(t *testing.T) {
	h := NewGradeHandler(&fakeGradeSrv{err: appErrors.Clone(appErrors.ErrNoAccess, "")}, nil)

	c, rec := newTestContext(http.MethodGet, "/students/abc/grades", models.RoleMentor)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	h.Grades(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/students/11/grades", models.RoleMentor)
	c.Params = gin.Params{{Key: "id", Value: "11"}}
	h.Grades(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	errBody := decodeEnvelope(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, appErrors.ErrNoAccess.Message, errBody["message"])

	c, rec = newTestContext(http.MethodGet, "/students/11/grades", "")
	c.Params = gin.Params{{Key: "id", Value: "11"}}
	h.Grades(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGradeHandlerExport(t *testing.T) {
	exports := &fakeExportSrv{}
	h := NewGradeHandler(&fakeGradeSrv{}, exports)
	c, rec := newTestContext(http.MethodGet, "/students/11/grades/export?format=PDF", models.RoleMentor)
	c.Params = gin.Params{{Key: "id", Value: "11"}}

	h.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.ExportFormatPDF, exports.format)
	assert.Equal(t, `attachment; filename="grades_jdoe1.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Course\n", rec.Body.String())

	h = NewGradeHandler(&fakeGradeSrv{}, nil)
	c, rec = newTestContext(http.MethodGet, "/students/11/grades/export", models.RoleMentor)
	c.Params = gin.Params{{Key: "id", Value: "11"}}
	h.Export(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGradeHandlerPurgeCache(t *testing.T) {
	srv := &fakeGradeSrv{}
	h := NewGradeHandler(srv, nil)
	c, _ := newTestContext(http.MethodDelete, "/students/11/grades/cache", models.RoleAdmin)
	c.Params = gin.Params{{Key: "id", Value: "11"}}

	h.PurgeCache(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, int64(11), srv.purged)
}
