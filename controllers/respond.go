package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/JJublanc/tidimondo-sub001/logger"
	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrForbidden, http.StatusForbidden},
	{services.ErrInvalid, http.StatusBadRequest},
	{services.ErrConflict, http.StatusConflict},
	{services.ErrPlanLimit, http.StatusPaymentRequired},
	{services.ErrRateLimited, http.StatusTooManyRequests},
	{services.ErrNotConfigured, http.StatusServiceUnavailable},
}

// respondError maps service errors to statuses. Anything unexpected is
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, gin.H{"error": err.Error()})
			return
		}
	}
	logger.Error("request failed",
		zap.String("request_id", c.GetString("requestID")),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// idParam reads a positive numeric path parameter, answering 400 itself
// when it is malformed.
func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}
