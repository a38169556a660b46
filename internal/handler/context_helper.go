package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sportsgrades-api/internal/middleware"
	"github.com/noah-isme/sportsgrades-api/internal/models"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
)

func requesterFromContext(c *gin.Context) (models.Requester, error) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return models.Requester{}, appErrors.ErrUnauthorized
	}
	return claims.Requester(), nil
}

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}
