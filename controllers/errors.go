package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reachout-backend/services"
	"reachout-backend/utils"
)

// respondServiceError maps service sentinels onto HTTP status codes.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrDonorNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, services.ErrHospitalNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidTransition):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// parseIDParam reads a positive numeric path parameter, responding 400 on
// anything else.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}
