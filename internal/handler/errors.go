package handler

import (
	"errors"
	"net/http"

	"github.com/yourorg/internship-platform/internal/middleware"
	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/service"
	"github.com/yourorg/internship-platform/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a service error to an HTTP response. Unexpected errors
// are logged and answered with fallback.
func respondError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		utils.SendErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		utils.SendErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidTransition):
		utils.SendErrorResponse(c, http.StatusConflict, err.Error())
	default:
		logger.Error(fallback, zap.Error(err), zap.String("path", c.FullPath()))
		utils.SendErrorResponse(c, http.StatusInternalServerError, fallback)
	}
}

// actorFrom returns the authenticated actor, answering 401 when absent
func actorFrom(c *gin.Context) (model.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.SendErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
	}
	return actor, ok
}
