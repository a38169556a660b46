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

type accessManager interface {
	Resolve(ctx context.Context, requester models.Requester) (*models.AccessPolicy, error)
	ListGrants(ctx context.Context) ([]dto.AccessGrantGroup, error)
	CreateGrants(ctx context.Context, actor models.Requester, req dto.CreateAccessGrantRequest) ([]models.AccessGrant, error)
	DeleteGrant(ctx context.Context, actor models.Requester, id int64) error
	ListStudentGrants(ctx context.Context) ([]models.StudentGrantDetail, error)
	CreateStudentGrant(ctx context.Context, actor models.Requester, req dto.CreateStudentGrantRequest) (*models.StudentGrant, error)
	DeleteStudentGrant(ctx context.Context, actor models.Requester, id int64) error
}

// AccessHandler exposes the caller's policy and grant administration.
type AccessHandler struct {
	access accessManager
}

// NewAccessHandler constructs AccessHandler.
func NewAccessHandler(access accessManager) *AccessHandler {
	return &AccessHandler{access: access}
}

// Me godoc
// @Summary Resolved access policy of the caller
// @Tags Access
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /access/me [get]
func (h *AccessHandler) Me(c *gin.Context) {
	requester, err := requesterFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	policy, err := h.access.Resolve(c.Request.Context(), requester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, policy)
}

// ListGrants godoc
// @Summary List sport access grants grouped by sport
// @Tags Access
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /access/grants [get]
func (h *AccessHandler) ListGrants(c *gin.Context) {
	groups, err := h.access.ListGrants(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups)
}

// CreateGrants godoc
// @Summary Grant users access to a sport, or to all sports when sport_id is empty or 0
// @Tags Access
// @Accept json
// @Produce json
// @Param payload body dto.CreateAccessGrantRequest true "Grant payload"
// @Success 201 {object} response.Envelope
// @Router /access/grants [post]
func (h *AccessHandler) CreateGrants(c *gin.Context) {
	actor, err := requesterFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateAccessGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	grants, err := h.access.CreateGrants(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grants)
}

// DeleteGrant godoc
// @Summary Remove a sport access grant
// @Tags Access
// @Param id path int true "Grant ID"
// @Success 204
// @Router /access/grants/{id} [delete]
func (h *AccessHandler) DeleteGrant(c *gin.Context) {
	actor, err := requesterFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.access.DeleteGrant(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListStudentGrants godoc
// @Summary List direct student grants
// @Tags Access
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /access/student-grants [get]
func (h *AccessHandler) ListStudentGrants(c *gin.Context) {
	grants, err := h.access.ListStudentGrants(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grants)
}

// CreateStudentGrant godoc
// @Summary Grant a user access to one student
// @Tags Access
// @Accept json
// @Produce json
// @Param payload body dto.CreateStudentGrantRequest true "Student grant payload"
// @Success 201 {object} response.Envelope
// @Router /access/student-grants [post]
func (h *AccessHandler) CreateStudentGrant(c *gin.Context) {
	actor, err := requesterFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateStudentGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	grant, err := h.access.CreateStudentGrant(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grant)
}

// DeleteStudentGrant godoc
// @Summary Remove a direct student grant
// @Tags Access
// @Param id path int true "Student grant ID"
// @Success 204
// @Router /access/student-grants/{id} [delete]
func (h *AccessHandler) DeleteStudentGrant(c *gin.Context) {
	actor, err := requesterFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.access.DeleteStudentGrant(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
