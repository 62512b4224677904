package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kebab-storefront/services"
	"github.com/yeremiapane/kebab-storefront/utils"
)

var errInternal = errors.New("internal server error")

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsSignatureFailure(err):
		utils.RespondError(c, http.StatusUnauthorized, err)
	case services.IsNotFound(err):
		utils.RespondError(c, http.StatusNotFound, err)
	case services.IsValidation(err):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.ErrorLogger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		utils.RespondError(c, http.StatusInternalServerError, errInternal)
	}
}
