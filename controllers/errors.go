package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"hotel-platform/services"
	"hotel-platform/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses. Unexpected errors are
// attached to the gin context for the request logger and answered with a
// generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.JSONError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.JSONError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrRoomUnavailable),
		errors.Is(err, services.ErrRoomBooked),
		errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrDuplicateTransaction),
		errors.Is(err, services.ErrDuplicate),
		errors.Is(err, services.ErrInUse):
		utils.JSONError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		utils.JSONError(c, http.StatusInternalServerError, "internal server error")
	}
}

func forbidden(c *gin.Context) {
	utils.JSONError(c, http.StatusForbidden, "access denied")
}

func badRequest(c *gin.Context, msg string) {
	utils.JSONError(c, http.StatusBadRequest, msg)
}

// uintParam reads a positive integer path parameter, answering 400 when it
// is malformed.
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

func optionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		badRequest(c, "invalid "+name)
		return nil, false
	}
	id := uint(v)
	return &id, true
}
