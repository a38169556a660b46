package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sportsgrades-api/internal/dto"
	"github.com/noah-isme/sportsgrades-api/internal/models"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
	"github.com/noah-isme/sportsgrades-api/pkg/response"
)

type studentSearcher interface {
	Search(ctx context.Context, filter models.StudentSearchFilter, requester models.Requester) (*dto.SearchResponse, error)
}

// StudentHandler exposes student search.
type StudentHandler struct {
	search studentSearcher
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(search studentSearcher) *StudentHandler {
	return &StudentHandler{search: search}
}

// Search godoc
// @Summary Search student-athletes visible to the caller
// @Tags Students
// @Produce json
// @Param universal_id query string false "University ID (substring)"
// @Param username query string false "Username (substring)"
// @Param firstname query string false "First name (substring)"
// @Param lastname query string false "Last name (substring)"
// @Param major query string false "Major (substring)"
// @Param classification query string false "Classification code (FR, SO, JR, SR, GR)"
// @Param sport query string false "Sport code"
// @Success 200 {object} response.Envelope
// @Router /students/search [get]
func (h *StudentHandler) Search(c *gin.Context) {
	requester, err := requesterFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var filter models.StudentSearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid search query"))
		return
	}
	result, err := h.search.Search(c.Request.Context(), filter, requester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
