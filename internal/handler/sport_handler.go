package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sportsgrades-api/internal/models"
	"github.com/noah-isme/sportsgrades-api/pkg/response"
)

type sportLister interface {
	List(ctx context.Context) ([]models.Sport, error)
}

// SportHandler lists sports.
type SportHandler struct {
	sports sportLister
}

// NewSportHandler constructs SportHandler.
func NewSportHandler(sports sportLister) *SportHandler {
	return &SportHandler{sports: sports}
}

// List godoc
// @Summary List sports
// @Tags Sports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sports [get]
func (h *SportHandler) List(c *gin.Context) {
	sports, err := h.sports.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sports)
}
