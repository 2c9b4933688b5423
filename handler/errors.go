package handler

import (
	"errors"
	"net/http"

	"github.com/aman1195/risk-scan-pro/pkg/logger"
	"github.com/aman1195/risk-scan-pro/provider"
	"github.com/aman1195/risk-scan-pro/service"
	"github.com/gin-gonic/gin"
)

// statusFor maps workflow errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, provider.ErrUnknownBackend):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, provider.ErrNotConfigured),
		errors.Is(err, service.ErrQueueFull),
		errors.Is(err, service.ErrPoolStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, provider.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg} with the status err maps to
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && !errors.Is(err, service.ErrPersistence) {
		msg = "Internal server error"
	}
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed", "status", status, "error", err)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}
